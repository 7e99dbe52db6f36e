package app

import (
	"context"
	"fmt"
	"io"

	"grupy/internal/application/report"
	"grupy/internal/logger"
)

// SweepOnce runs a single pass and prints a summary plus one line per failing group.
func (a *App) SweepOnce(ctx context.Context, w io.Writer) (report.SweepReport, error) {
	ctx = logger.WithName(ctx, "oneshot")
	rep, err := a.engine.Sweep(ctx)

	_, _ = fmt.Fprintln(w, a.translator.T(a.cfg.Locale, "sweep.summary", map[string]any{
		"Groups":       len(rep.Groups),
		"Attendance":   rep.AttendanceMarked(),
		"VoteRequests": rep.VoteRequestsSent(),
		"Failed":       len(rep.Failed()) + len(rep.DataQualityErrors()),
	}))
	for _, g := range rep.DataQualityErrors() {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", g.GroupID, g.DataQualityErr)
	}
	for _, g := range rep.Failed() {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", g.GroupID, g.Err())
	}
	return rep, err
}
