package input

import (
	"context"

	"grupy/internal/application/report"
)

// Sweeper runs one sweep pass. Safe to call concurrently and repeatedly.
type Sweeper interface {
	Sweep(ctx context.Context) (report.SweepReport, error)
}
