// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driving"
)

// Compile-time interface satisfaction check.
var _ driving.WatchReader = (*PollService)(nil)

// snapshotRequest asks the poll loop for a copy of its state.
type snapshotRequest struct {
	done chan model.WatchSnapshot
}

// PollService runs the fixed-interval poll loop: fetch the open sections,
// advance the suppression table and dispatch the resulting alerts.
// All table access happens on the goroutine running Start.
type PollService struct {
	source     driven.OpenSectionSource
	table      *SuppressionTable
	dispatcher *NotificationDispatcher
	query      model.Query
	interval   time.Duration
	logger     *slog.Logger
	snapshotCh chan snapshotRequest
	stats      model.PollStats
	now        func() time.Time
}

// NewPollService creates a new PollService with all required dependencies.
func NewPollService(
	source driven.OpenSectionSource,
	table *SuppressionTable,
	dispatcher *NotificationDispatcher,
	query model.Query,
	interval time.Duration,
	logger *slog.Logger,
) *PollService {
	return &PollService{
		source:     source,
		table:      table,
		dispatcher: dispatcher,
		query:      query,
		interval:   interval,
		logger:     logger,
		snapshotCh: make(chan snapshotRequest),
		now:        time.Now,
	}
}

// Start runs an immediate poll, then polls on the configured interval until
// the context is canceled. Ticks missed while a poll is still running are
// collapsed into one pending tick; polls never overlap. Start also answers
// Snapshot requests between ticks.
func (s *PollService) Start(ctx context.Context) {
	_ = s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll service stopped")
			return
		case <-ticker.C:
			_ = s.Tick(ctx)
		case req := <-s.snapshotCh:
			req.done <- s.snapshot()
		}
	}
}

// Tick runs a single poll iteration. On a fetch error the error is logged
// and returned and the suppression table is left untouched.
// Tick must not be called concurrently with Start.
func (s *PollService) Tick(ctx context.Context) error {
	start := s.now()

	open, err := s.source.FetchOpenSections(ctx, s.query)
	s.stats.Ticks++
	s.stats.LastPollAt = start
	if err != nil {
		s.stats.FailedTicks++
		s.stats.LastPollFailed = true
		if ctx.Err() == nil {
			s.logger.Error("failed to query open sections", "error", err)
		}
		return err
	}
	s.stats.LastPollFailed = false

	alerts := s.table.Apply(open, start)
	for _, alert := range alerts {
		s.dispatcher.SendOpen(ctx, alert)
	}
	s.stats.AlertsFired += int64(len(alerts))

	s.logger.Debug("poll cycle complete",
		"open", len(open),
		"alerts", len(alerts),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// Snapshot returns a copy of the suppression table and loop counters. It
// blocks until the poll loop is between ticks or the context is canceled.
func (s *PollService) Snapshot(ctx context.Context) (model.WatchSnapshot, error) {
	done := make(chan model.WatchSnapshot, 1)
	req := snapshotRequest{done: done}

	select {
	case s.snapshotCh <- req:
	case <-ctx.Done():
		return model.WatchSnapshot{}, ctx.Err()
	}

	select {
	case snap := <-done:
		return snap, nil
	case <-ctx.Done():
		return model.WatchSnapshot{}, ctx.Err()
	}
}

// Interval returns the configured poll interval.
func (s *PollService) Interval() time.Duration {
	return s.interval
}

func (s *PollService) snapshot() model.WatchSnapshot {
	return model.WatchSnapshot{
		Watches: s.table.Snapshot(),
		Stats:   s.stats,
		TakenAt: s.now(),
	}
}
