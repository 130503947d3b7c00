package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oureum/reserve/internal/domain"
)

// SnapshotRepository defines persistent storage for the snapshot series.
type SnapshotRepository interface {
	Save(ctx context.Context, s Snapshot) error
	GetLatest(ctx context.Context) (Snapshot, error)
}

// PgSnapshotRepository implements SnapshotRepository with PostgreSQL.
type PgSnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewPgSnapshotRepository creates a new PostgreSQL snapshot repository.
func NewPgSnapshotRepository(pool *pgxpool.Pool) *PgSnapshotRepository {
	return &PgSnapshotRepository{pool: pool}
}

func (r *PgSnapshotRepository) Save(ctx context.Context, s Snapshot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reconciliation_snapshots
		   (total_intake_g, total_mint_g, total_burn_g, current_supply_g,
		    average_purity_pct, entry_count, degraded, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.TotalIntakeG, s.TotalMintG, s.TotalBurnG, s.CurrentSupplyG,
		s.AveragePurityPct, s.EntryCount, s.Degraded, s.GeneratedAt)
	if err != nil {
		return fmt.Errorf("saving reconciliation snapshot: %w", err)
	}
	return nil
}

func (r *PgSnapshotRepository) GetLatest(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT total_intake_g, total_mint_g, total_burn_g, current_supply_g,
		        average_purity_pct, entry_count, degraded, generated_at
		 FROM reconciliation_snapshots
		 ORDER BY generated_at DESC
		 LIMIT 1`).
		Scan(&s.TotalIntakeG, &s.TotalMintG, &s.TotalBurnG, &s.CurrentSupplyG,
			&s.AveragePurityPct, &s.EntryCount, &s.Degraded, &s.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, domain.ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return s, nil
}
