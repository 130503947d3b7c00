package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/oureum/reserve/internal/reconcile"
)

// SnapshotGenerator defines the interface for computing and persisting
// reconciliation snapshots.
type SnapshotGenerator interface {
	Generate(ctx context.Context) (reconcile.Snapshot, error)
}

// AfterReportHook is called after each successful snapshot generation.
type AfterReportHook interface {
	Export(ctx context.Context) error
}

// ReportWorker periodically persists a reconciliation snapshot.
type ReportWorker struct {
	generator SnapshotGenerator
	interval  time.Duration
	hook      AfterReportHook // optional
}

// NewReportWorker creates a new ReportWorker with an optional post-generation hook.
func NewReportWorker(generator SnapshotGenerator, interval time.Duration, hook AfterReportHook) *ReportWorker {
	return &ReportWorker{
		generator: generator,
		interval:  interval,
		hook:      hook,
	}
}

func (w *ReportWorker) runHook(ctx context.Context) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx); err != nil {
		slog.Error("ReportWorker: export hook failed", "error", err)
	} else {
		slog.Info("ReportWorker: export hook completed")
	}
}

func (w *ReportWorker) generate(ctx context.Context) {
	snap, err := w.generator.Generate(ctx)
	if err != nil {
		slog.Error("ReportWorker: generation failed", "error", err)
		return
	}
	slog.Info("ReportWorker: snapshot generated",
		"supply_g", snap.CurrentSupplyG, "degraded", snap.Degraded)
	w.runHook(ctx)
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting")

	// Generate immediately on startup
	w.generate(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.generate(ctx)
		}
	}
}
