package output

import (
	"context"

	"grupy/internal/domain/entities"
)

// NotificationSink records a notification for its recipient and returns the new notification ID.
// The ID field of the argument is ignored.
type NotificationSink interface {
	Emit(ctx context.Context, notification entities.Notification) (string, error)
}
