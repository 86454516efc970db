package snapshot

import (
	"context"
	"time"

	"github.com/screwyprof/airdrop/pkg/cosmosgrpc"
)

// Default configuration values
const (
	DefaultMaxBatchSize = 5
	DefaultCallTimeout  = 30 * time.Second
)

// Client queries the account and staking state of one address
// ------------------------------------------------------------
type Client interface {
	Account(ctx context.Context, address string) (cosmosgrpc.Account, error)
	DelegatorDelegations(ctx context.Context, delegator string) ([]cosmosgrpc.Delegation, error)
	Close() error
}

// DialFunc opens a Client. Aggregate dials once per address and closes the client when done.
type DialFunc func(ctx context.Context) (Client, error)

// Normalizer rewrites an address to the destination chain encoding
type Normalizer interface {
	Normalize(raw string) (string, error)
}

// Clock abstracts time for production and testing
// ------------------------------------------------
type Clock interface {
	Now() time.Time
}

// Allocation is one airdrop input: who gets how much
type Allocation struct {
	Address string `json:"address"`
	Amount  Amount `json:"amount"`
}

// Record is the on-chain snapshot of one allocation
type Record struct {
	Address       string `json:"address"`
	Sequence      uint64 `json:"sequence"`
	AirdropAmount Amount `json:"airdrop_amount"`
	StakedAmount  Amount `json:"staked_amount"`
}

// Event represents a batch lifecycle event
// ----------------------------------------
type Event any

type BatchStarted struct {
	StartedAt time.Time
	Requested int
	Accepted  int
}

type RecordProduced struct {
	Index  int
	Record Record
}

type AddressFailed struct {
	Index   int
	Address string
	Err     error
}

type BatchDone struct {
	Report   Report
	Duration time.Duration
}

type BatchFailed struct {
	Err error
}
