package pgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screwyprof/airdrop/snapshot"
	"github.com/screwyprof/airdrop/snapshot/store/dbrow"
)

// Sentinel errors for store operations
var (
	ErrTransactionFailed = errors.New("transaction failed")
	ErrTempTableFailed   = errors.New("temporary table operation failed")
	ErrCopyFailed        = errors.New("bulk copy operation failed")
	ErrUpsertFailed      = errors.New("upsert operation failed")
	ErrQueryFailed       = errors.New("snapshot query failed")
	ErrInvalidRecord     = errors.New("record cannot be stored")
)

// Store persists final snapshot records using pgx
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL store with an existing connection pool
// Returns the store and a closer function
func New(pool *pgxpool.Pool) (*Store, func()) {
	store := &Store{pool: pool}
	closer := func() {
		pool.Close()
	}
	return store, closer
}

// Save upserts records keyed by address, so re-running a snapshot overwrites older values.
// Within one batch the last record for an address wins.
func (s *Store) Save(ctx context.Context, records []snapshot.Record, takenAt time.Time) error {
	if len(records) == 0 {
		return nil
	}

	rows, err := dbrow.SnapshotRecordsToRows(records, takenAt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // No-op if commit succeeds

	_, err = tx.Exec(ctx, `
		CREATE TEMPORARY TABLE temp_airdrop_snapshots (
			address TEXT,
			sequence BIGINT,
			airdrop_amount TEXT,
			staked_amount TEXT,
			taken_at TIMESTAMP WITH TIME ZONE
		) ON COMMIT DROP
	`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTempTableFailed, err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"temp_airdrop_snapshots"},
		dbrow.Columns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO airdrop_snapshots (address, sequence, airdrop_amount, staked_amount, taken_at)
		SELECT address, sequence, airdrop_amount::numeric, staked_amount::numeric, taken_at
		FROM temp_airdrop_snapshots
		ON CONFLICT (address) DO UPDATE SET
			sequence = EXCLUDED.sequence,
			airdrop_amount = EXCLUDED.airdrop_amount,
			staked_amount = EXCLUDED.staked_amount,
			taken_at = EXCLUDED.taken_at
	`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpsertFailed, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	return nil
}

// Count returns the number of stored snapshots
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM airdrop_snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return n, nil
}

// Find returns the stored snapshot for address
func (s *Store) Find(ctx context.Context, address string) (dbrow.Record, error) {
	var row dbrow.Record
	err := s.pool.QueryRow(ctx, `
		SELECT address, sequence, airdrop_amount::text, staked_amount::text, taken_at
		FROM airdrop_snapshots WHERE address = $1
	`, address).Scan(&row.Address, &row.Sequence, &row.AirdropAmount, &row.StakedAmount, &row.TakenAt)
	if err != nil {
		return dbrow.Record{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return row, nil
}
