package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oureum/reserve/internal/reconcile"
)

type mockGenerator struct {
	callCount atomic.Int32
	err       error
}

func (m *mockGenerator) Generate(_ context.Context) (reconcile.Snapshot, error) {
	m.callCount.Add(1)
	return reconcile.Snapshot{}, m.err
}

type mockHook struct {
	callCount atomic.Int32
}

func (m *mockHook) Export(_ context.Context) error {
	m.callCount.Add(1)
	return nil
}

func TestReportWorkerRunsImmediately(t *testing.T) {
	gen := &mockGenerator{}
	w := NewReportWorker(gen, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := gen.callCount.Load(); got != 1 {
		t.Errorf("call count = %d, want 1", got)
	}
}

func TestReportWorkerCallsHook(t *testing.T) {
	gen := &mockGenerator{}
	hook := &mockHook{}
	w := NewReportWorker(gen, time.Hour, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := hook.callCount.Load(); got != 1 {
		t.Errorf("hook call count = %d, want 1", got)
	}
}

func TestReportWorkerSkipsHookOnFailure(t *testing.T) {
	gen := &mockGenerator{err: errors.New("store down")}
	hook := &mockHook{}
	w := NewReportWorker(gen, time.Hour, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := hook.callCount.Load(); got != 0 {
		t.Errorf("hook call count = %d, want 0", got)
	}
}
