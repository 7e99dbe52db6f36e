package input

import (
	"context"

	"grupy/internal/domain/entities"
)

// InboxUseCase is the read path the CRUD layer exposes over what the sweep writes.
type InboxUseCase interface {
	ListNotifications(ctx context.Context, recipient string) ([]entities.Notification, error)
	MarkRead(ctx context.Context, recipient, notificationID string) error
	GetProfile(ctx context.Context, username string) (*entities.Profile, error)
}
