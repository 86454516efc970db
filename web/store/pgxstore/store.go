package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screwyprof/airdrop/web/snapshots"
	"github.com/screwyprof/airdrop/web/store/dbrow"
)

// Sentinel errors for store operations
var (
	ErrQueryFailed = errors.New("snapshot query failed")
)

// SnapshotsFinder implements snapshot querying using pgx
type SnapshotsFinder struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL snapshots finder with an existing connection pool
// Returns the finder and a closer function
func New(pool *pgxpool.Pool) (*SnapshotsFinder, func()) {
	finder := &SnapshotsFinder{pool: pool}
	closer := func() {
		pool.Close()
	}
	return finder, closer
}

// FindSnapshots queries snapshots based on the provided criteria
// Uses LIMIT n+1 technique for efficient pagination without separate count query
func (f *SnapshotsFinder) FindSnapshots(ctx context.Context, criteria snapshots.SnapshotsCriteria) (*snapshots.SnapshotsPage, error) {
	query, args := NewSnapshotsQuery().ForCriteria(criteria).Build()

	rows, err := f.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByPos[dbrow.Snapshot])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	found := make([]snapshots.Snapshot, len(collected))
	for i, row := range collected {
		found[i] = snapshots.Snapshot{
			Address:       row.Address,
			Sequence:      uint64(row.Sequence),
			AirdropAmount: row.AirdropAmount,
			StakedAmount:  row.StakedAmount,
			TakenAt:       row.TakenAt,
		}
	}

	hasMore := len(found) > int(criteria.ItemsPerPage())
	if hasMore {
		found = found[:criteria.ItemsPerPage()]
	}

	return &snapshots.SnapshotsPage{
		Snapshots: found,
		HasMore:   hasMore,
		Number:    criteria.Page,
		Size:      criteria.Size,
	}, nil
}
