package dbrow

import (
	"time"
)

// Snapshot represents a snapshot record as queried from the database
type Snapshot struct {
	Address       string    `db:"address"`
	Sequence      int64     `db:"sequence"`
	AirdropAmount string    `db:"airdrop_amount"`
	StakedAmount  string    `db:"staked_amount"`
	TakenAt       time.Time `db:"taken_at"`
}
