package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"grupy/internal/application/report"
	"grupy/internal/domain"
	"grupy/internal/domain/entities"
	"grupy/internal/domain/rules"
	"grupy/internal/logger"
	"grupy/internal/ports/input"
	"grupy/internal/ports/output"
)

var _ input.Sweeper = (*SweepEngine)(nil)

// Message keys rendered through the translator.
const (
	msgVoteRequest = "notification.vote_request"
)

// SweepEngine applies the time-based group transitions.
//
// It holds no per-sweep state: every mutation goes through the store's
// conditional primitives, so any number of sweeps may overlap.
type SweepEngine struct {
	store       output.EntityStore
	sink        output.NotificationSink
	rules       rules.Rules
	clock       output.TimeSource
	translator  output.T
	locale      string
	observer    output.SweepObserver
	concurrency int
}

// SweepOption customises a SweepEngine.
type SweepOption func(*SweepEngine)

// WithClock replaces the wall clock.
func WithClock(clock output.TimeSource) SweepOption {
	return func(e *SweepEngine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTranslator renders notification messages in locale.
func WithTranslator(t output.T, locale string) SweepOption {
	return func(e *SweepEngine) {
		e.translator = t
		e.locale = locale
	}
}

// WithObserver reports sweep outcomes to o.
func WithObserver(o output.SweepObserver) SweepOption {
	return func(e *SweepEngine) {
		e.observer = o
	}
}

// WithConcurrency processes up to n groups at once. n <= 1 is sequential.
func WithConcurrency(n int) SweepOption {
	return func(e *SweepEngine) {
		e.concurrency = n
	}
}

// NewSweepEngine wires the engine to its store, sink and rules.
func NewSweepEngine(
	store output.EntityStore,
	sink output.NotificationSink,
	r rules.Rules,
	opts ...SweepOption,
) *SweepEngine {
	e := &SweepEngine{
		store:       store,
		sink:        sink,
		rules:       r,
		clock:       output.SystemClock,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// Sweep runs one pass over the candidate groups.
//
// Only a failure to list groups is returned as an error. Per-group failures are
// isolated and reported in the SweepReport; they are retried by the next pass.
func (e *SweepEngine) Sweep(ctx context.Context) (report.SweepReport, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "sweep"), "sweep_id", uuid.NewString())

	now := e.clock.Now()
	rep := report.SweepReport{StartedAt: now}

	groups, err := e.listGroups(ctx)
	if err != nil {
		rep.FinishedAt = e.clock.Now()
		err = fmt.Errorf("%w: list groups: %w", domain.ErrStore, err)
		logger.ErrorKV(ctx, "Sweep aborted", "error", err)
		e.observeSweep(rep, err)
		return rep, err
	}

	outcomes := make([]report.GroupOutcome, len(groups))
	done := make([]bool, len(groups))

	eg := new(errgroup.Group)
	eg.SetLimit(e.concurrency)
	for i := range groups {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = e.sweepGroup(ctx, &groups[i], now)
			done[i] = true
			return nil
		})
	}
	_ = eg.Wait()

	for i := range outcomes {
		if done[i] {
			rep.Groups = append(rep.Groups, outcomes[i])
		}
	}
	rep.FinishedAt = e.clock.Now()

	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("sweep interrupted after %d of %d groups: %w", len(rep.Groups), len(groups), err)
		logger.WarnKV(ctx, "Sweep interrupted", "processed", len(rep.Groups), "candidates", len(groups))
		e.observeSweep(rep, err)
		return rep, err
	}

	logger.InfoKV(ctx, "Sweep finished",
		"candidates", len(groups),
		"attendance_marked", rep.AttendanceMarked(),
		"vote_requests", rep.VoteRequestsSent(),
		"failed", len(rep.Failed()),
		"data_quality", len(rep.DataQualityErrors()),
		"duration", rep.Duration(),
	)
	e.observeSweep(rep, nil)

	return rep, nil
}

func (e *SweepEngine) listGroups(ctx context.Context) ([]entities.Group, error) {
	if lister, ok := e.store.(output.CandidateLister); ok {
		return lister.ListSweepCandidates(ctx)
	}
	return e.store.ListGroups(ctx)
}

func (e *SweepEngine) sweepGroup(ctx context.Context, g *entities.Group, now time.Time) report.GroupOutcome {
	ctx = logger.WithKV(ctx, "group_id", g.ID)
	out := report.GroupOutcome{GroupID: g.ID}

	ev := e.rules.Evaluate(g, now)
	if ev.Err != nil {
		out.DataQualityErr = ev.Err
		logger.WarnKV(ctx, "Group skipped: unusable schedule",
			"date", g.ScheduledDate, "time", g.ScheduledTime, "error", ev.Err)
		return out
	}
	out.Expired = ev.Expired

	if ev.MarkAttendance {
		if err := e.markAttendance(ctx, g, &out); err != nil {
			// Attendance must settle before vote requests go out in the same pass.
			out.Errs = append(out.Errs, err)
			logger.ErrorKV(ctx, "Attendance marking failed", "error", err)
			return out
		}
	}

	for _, recipient := range ev.VoteRequestPending {
		vr, err := e.sendVoteRequest(ctx, g, recipient, now)
		if err != nil {
			out.Errs = append(out.Errs, err)
			logger.ErrorKV(ctx, "Vote request failed", "recipient", recipient, "error", err)
		}
		if vr != nil {
			out.VoteRequests = append(out.VoteRequests, *vr)
		}
	}

	return out
}

// markAttendance flips the flag and, only for the winner of the flip, bumps every participant's counter.
// A counter failure after a successful flip is reported and never retried.
func (e *SweepEngine) markAttendance(ctx context.Context, g *entities.Group, out *report.GroupOutcome) error {
	flipped, err := e.store.TryMarkAttendanceProcessed(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("%w: mark attendance: %w", domain.ErrStore, err)
	}
	if !flipped {
		out.AttendanceRaced = true
		logger.DebugKV(ctx, "Attendance already processed by another sweep")
		return nil
	}
	out.AttendanceMarked = true

	participants := g.DistinctParticipants()
	for _, p := range participants {
		if err := e.store.IncrementAttendanceStats(ctx, p); err != nil {
			err = fmt.Errorf("%w: increment attendance of %s: %w", domain.ErrStore, p, err)
			out.Errs = append(out.Errs, err)
			logger.ErrorKV(ctx, "Attendance counter lost", "recipient", p, "error", err)
		}
	}
	logger.InfoKV(ctx, "Attendance marked", "participants", len(participants))
	return nil
}

// sendVoteRequest records the recipient first and emits only if the record is new.
// A nil VoteRequest means nothing was recorded by this call.
func (e *SweepEngine) sendVoteRequest(
	ctx context.Context,
	g *entities.Group,
	recipient string,
	now time.Time,
) (*report.VoteRequest, error) {
	inserted, err := e.store.TryRecordVoteRequestSent(ctx, g.ID, recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: record vote request for %s: %w", domain.ErrStore, recipient, err)
	}
	if !inserted {
		return nil, nil
	}

	vr := &report.VoteRequest{Recipient: recipient}
	id, err := e.sink.Emit(ctx, entities.Notification{
		Recipient: recipient,
		Kind:      entities.KindVoteRequest,
		GroupID:   g.ID,
		Message:   e.voteRequestMessage(g),
		CreatedAt: now,
	})
	if err != nil {
		// The recipient is already recorded: this notification is lost, never duplicated.
		return vr, fmt.Errorf("%w: emit vote request to %s: %w", domain.ErrSink, recipient, err)
	}
	vr.NotificationID = id
	logger.InfoKV(ctx, "Vote request sent", "recipient", recipient, "notification_id", id)
	return vr, nil
}

func (e *SweepEngine) voteRequestMessage(g *entities.Group) string {
	if e.translator == nil {
		return fmt.Sprintf("How did %q go? Leave your feedback for the other participants.", g.Name)
	}
	return e.translator.T(e.locale, msgVoteRequest, map[string]any{"Group": g.Name})
}

func (e *SweepEngine) observeSweep(rep report.SweepReport, err error) {
	if e.observer == nil {
		return
	}
	e.observer.SweepFinished(rep.Duration(), err)
	e.observer.AttendanceMarked(rep.AttendanceMarked())
	e.observer.VoteRequestsSent(rep.VoteRequestsSent())
	for _, g := range rep.Groups {
		if g.DataQualityErr != nil {
			e.observer.GroupFailed(report.FailureDataQuality)
		}
		for _, gerr := range g.Errs {
			e.observer.GroupFailed(report.FailureKind(gerr))
		}
	}
}
