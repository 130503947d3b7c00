package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/reconcile"
	"github.com/oureum/reserve/internal/tokenops"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stubSnapshots struct {
	snap reconcile.Snapshot
	err  error
}

func (s *stubSnapshots) Snapshot(context.Context) (reconcile.Snapshot, error) {
	return s.snap, s.err
}

type stubOps struct {
	ops []tokenops.Op
}

func (s *stubOps) ListRecent(context.Context, int) ([]tokenops.Op, error) {
	return s.ops, nil
}

type captureWriter struct {
	report Report
	called bool
}

func (c *captureWriter) Write(_ context.Context, report Report) error {
	c.report = report
	c.called = true
	return nil
}

func TestExportPassesSnapshotAndOps(t *testing.T) {
	txHash := "0xabc"
	snapshots := &stubSnapshots{snap: reconcile.Snapshot{
		TotalIntakeG:   d("100"),
		CurrentSupplyG: d("75"),
	}}
	ops := &stubOps{ops: []tokenops.Op{
		{Wallet: "0xwallet", Type: tokenops.KindMint, Grams: d("2"), TxHash: &txHash},
	}}
	writer := &captureWriter{}

	svc := NewService(snapshots, ops, writer)
	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !writer.called {
		t.Fatal("writer was not called")
	}
	if !writer.report.Snapshot.CurrentSupplyG.Equal(d("75")) {
		t.Errorf("snapshot supply = %s, want 75", writer.report.Snapshot.CurrentSupplyG)
	}
	if len(writer.report.Ops) != 1 {
		t.Errorf("ops = %d, want 1", len(writer.report.Ops))
	}
	if writer.report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestExportSnapshotFailure(t *testing.T) {
	snapshots := &stubSnapshots{err: errors.New("store down")}
	writer := &captureWriter{}

	svc := NewService(snapshots, &stubOps{}, writer)
	if err := svc.Export(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if writer.called {
		t.Error("writer should not be called on snapshot failure")
	}
}

func TestBuildReconRows(t *testing.T) {
	report := Report{
		Snapshot: reconcile.Snapshot{
			TotalIntakeG:     d("100"),
			TotalMintG:       d("30"),
			TotalBurnG:       d("5"),
			CurrentSupplyG:   d("75"),
			AveragePurityPct: d("99.99"),
			EntryCount:       3,
			Degraded:         true,
		},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	rows := buildReconRows(report)
	if len(rows) != 9 {
		t.Fatalf("rows = %d, want 9", len(rows))
	}
	if rows[0][0] != "Metric" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[5][1] != 75.0 {
		t.Errorf("current supply cell = %v, want 75", rows[5][1])
	}
	if rows[8][1] != 1 {
		t.Errorf("degraded cell = %v, want 1", rows[8][1])
	}
}

func TestBuildOpsRows(t *testing.T) {
	txHash := "0xdeadbeef"
	ops := []tokenops.Op{
		{
			Wallet:    "0x1234",
			Type:      tokenops.KindBurn,
			Grams:     d("1.5"),
			AmountMYR: d("735"),
			PricePerG: d("490"),
			TxHash:    &txHash,
			CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{Wallet: "0x5678", Type: tokenops.KindMint, Grams: d("2")},
	}

	rows := buildOpsRows(ops)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header + 2)", len(rows))
	}
	if rows[1][2] != "SELL_BURN" {
		t.Errorf("type cell = %v, want SELL_BURN", rows[1][2])
	}
	if rows[1][6] != "0xdeadbeef" {
		t.Errorf("tx hash cell = %v", rows[1][6])
	}
	if rows[2][6] != "" {
		t.Errorf("missing tx hash cell = %v, want empty", rows[2][6])
	}
}
