// Package export writes the audit workbook: the reconciliation summary plus
// the recent operation log, either to a local .xlsx file or to a shared
// Google spreadsheet. Both destinations carry the same two sheets.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/reconcile"
	"github.com/oureum/reserve/internal/tokenops"
)

const opsLimit = 500

// Report is one export run: the supply snapshot and the operations behind it.
type Report struct {
	Snapshot    reconcile.Snapshot
	Ops         []tokenops.Op
	GeneratedAt time.Time
}

// SheetWriter writes a report to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, report Report) error
}

// SnapshotSource produces the current reconciliation snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (reconcile.Snapshot, error)
}

// OpsSource lists recent operations across all wallets.
type OpsSource interface {
	ListRecent(ctx context.Context, limit int) ([]tokenops.Op, error)
}

// Service assembles a report and delegates writing to a SheetWriter.
type Service struct {
	snapshots SnapshotSource
	ops       OpsSource
	writer    SheetWriter
}

// NewService creates a new export Service.
func NewService(snapshots SnapshotSource, ops OpsSource, writer SheetWriter) *Service {
	return &Service{snapshots: snapshots, ops: ops, writer: writer}
}

// Export computes a fresh snapshot, collects recent operations, and writes
// both to the configured destination. Implements worker.AfterReportHook.
func (s *Service) Export(ctx context.Context) error {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("computing reconciliation snapshot: %w", err)
	}

	ops, err := s.ops.ListRecent(ctx, opsLimit)
	if err != nil {
		return fmt.Errorf("listing recent operations: %w", err)
	}

	return s.writer.Write(ctx, Report{
		Snapshot:    snap,
		Ops:         ops,
		GeneratedAt: time.Now().UTC(),
	})
}

// buildReconRows builds the RECON sheet data.
// Columns: Metric | Value
func buildReconRows(report Report) [][]any {
	s := report.Snapshot
	degraded := 0
	if s.Degraded {
		degraded = 1
	}
	return [][]any{
		{"Metric", "Value"},
		{"Generated At", report.GeneratedAt.Format(time.RFC3339)},
		{"Total Intake (g)", toFloat(s.TotalIntakeG)},
		{"Total Minted (g)", toFloat(s.TotalMintG)},
		{"Total Burned (g)", toFloat(s.TotalBurnG)},
		{"Current Supply (g)", toFloat(s.CurrentSupplyG)},
		{"Average Purity (%)", toFloat(s.AveragePurityPct)},
		{"Ledger Entries", s.EntryCount},
		{"Degraded", degraded},
	}
}

// buildOpsRows builds the OPS sheet data.
// Columns: Date | Wallet | Type | Grams | Amount MYR | Price MYR/g | Tx Hash
func buildOpsRows(ops []tokenops.Op) [][]any {
	header := []any{"Date", "Wallet", "Type", "Grams", "Amount MYR", "Price MYR/g", "Tx Hash"}
	rows := lo.Map(ops, func(op tokenops.Op, _ int) []any {
		txHash := ""
		if op.TxHash != nil {
			txHash = *op.TxHash
		}
		return []any{
			op.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			op.Wallet,
			string(op.Type),
			toFloat(op.Grams),
			toFloat(op.AmountMYR),
			toFloat(op.PricePerG),
			txHash,
		}
	})
	return append([][]any{header}, rows...)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
