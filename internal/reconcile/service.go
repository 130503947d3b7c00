package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oureum/reserve/internal/goldledger"
	"github.com/oureum/reserve/internal/tokenops"
)

// EntrySource lists physical intake entries.
type EntrySource interface {
	List(ctx context.Context, limit int) ([]goldledger.Entry, error)
}

// EventSource lists raw supply events. Best effort: callers treat a failure as
// an empty feed, since intake and operation data fail independently.
type EventSource interface {
	ListRaw(ctx context.Context, limit, offset int) ([]tokenops.RawEvent, error)
}

const fetchWindow = 200

// Service computes reconciliation snapshots from the two upstream sources.
type Service struct {
	entries EntrySource
	events  EventSource
	repo    SnapshotRepository // optional
}

// NewService creates a reconciliation service. The snapshot repository may be
// nil, in which case Generate only computes and does not persist.
func NewService(entries EntrySource, events EventSource, repo SnapshotRepository) *Service {
	return &Service{entries: entries, events: events, repo: repo}
}

// Snapshot fetches both sources concurrently and folds them. An entry-source
// failure is fatal; an event-source failure degrades to intake-only totals.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	type entriesResult struct {
		entries []goldledger.Entry
		err     error
	}
	type eventsResult struct {
		events []tokenops.RawEvent
		err    error
	}

	entriesCh := make(chan entriesResult, 1)
	eventsCh := make(chan eventsResult, 1)

	go func() {
		entries, err := s.entries.List(ctx, fetchWindow)
		entriesCh <- entriesResult{entries, err}
	}()

	go func() {
		events, err := s.events.ListRaw(ctx, fetchWindow, 0)
		eventsCh <- eventsResult{events, err}
	}()

	er := <-entriesCh
	ev := <-eventsCh

	if er.err != nil {
		return Snapshot{}, fmt.Errorf("fetching ledger entries: %w", er.err)
	}

	degraded := false
	events := ev.events
	if ev.err != nil {
		slog.Warn("event source unavailable, reconciling from intake alone", "error", ev.err)
		events = nil
		degraded = true
	}

	snap := Compute(er.entries, events)
	snap.Degraded = degraded

	if err := snap.Validate(); err != nil {
		slog.Error("reconciliation produced a negative supply",
			"current_supply_g", snap.CurrentSupplyG,
			"total_intake_g", snap.TotalIntakeG,
			"total_mint_g", snap.TotalMintG,
			"total_burn_g", snap.TotalBurnG)
		return snap, err
	}

	return snap, nil
}

// Generate computes a snapshot and persists it for the historical series.
func (s *Service) Generate(ctx context.Context) (Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, snap); err != nil {
			return Snapshot{}, fmt.Errorf("saving snapshot: %w", err)
		}
	}
	return snap, nil
}

// Latest returns the most recently persisted snapshot.
func (s *Service) Latest(ctx context.Context) (Snapshot, error) {
	if s.repo == nil {
		return Snapshot{}, fmt.Errorf("snapshot history not configured")
	}
	return s.repo.GetLatest(ctx)
}
