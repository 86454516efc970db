package dbrow

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/screwyprof/airdrop/snapshot"
)

// ErrSequenceOutOfRange is returned for sequences that do not fit the BIGINT column
var ErrSequenceOutOfRange = errors.New("sequence exceeds BIGINT range")

// Record represents a snapshot record as stored in the database.
// Amounts travel as decimal text and are cast to NUMERIC by the queries.
type Record struct {
	Address       string    `db:"address"`
	Sequence      int64     `db:"sequence"`
	AirdropAmount string    `db:"airdrop_amount"`
	StakedAmount  string    `db:"staked_amount"`
	TakenAt       time.Time `db:"taken_at"`
}

// Columns lists the copied columns in row order
var Columns = []string{"address", "sequence", "airdrop_amount", "staked_amount", "taken_at"}

// SnapshotRecordsToRows converts snapshot records to [][]any for pgx.CopyFromRows.
// Records sharing an address collapse into one row holding the last record's values,
// placed where the address first appeared; an upsert may touch each address only once.
func SnapshotRecordsToRows(records []snapshot.Record, takenAt time.Time) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	seen := make(map[string]int, len(records))

	for _, r := range records {
		if r.Sequence > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %s has sequence %d", ErrSequenceOutOfRange, r.Address, r.Sequence)
		}

		row := []any{
			r.Address,
			int64(r.Sequence),
			r.AirdropAmount.String(),
			r.StakedAmount.String(),
			takenAt,
		}

		if i, ok := seen[r.Address]; ok {
			rows[i] = row
			continue
		}
		seen[r.Address] = len(rows)
		rows = append(rows, row)
	}

	return rows, nil
}
