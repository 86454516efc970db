package snapshots

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for snapshot criteria construction
var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidPerPage = errors.New("invalid per_page")
)

// SnapshotsFinder defines the interface for querying stored snapshots
type SnapshotsFinder interface {
	FindSnapshots(ctx context.Context, criteria SnapshotsCriteria) (*SnapshotsPage, error)
}

// Snapshot is a stored airdrop snapshot record. Amounts are decimal strings of up to 39 digits.
type Snapshot struct {
	Address       string
	Sequence      uint64
	AirdropAmount string
	StakedAmount  string
	TakenAt       time.Time
}

// SnapshotsCriteria specifies criteria for querying snapshots using domain Value Objects
type SnapshotsCriteria struct {
	Address Address // Exact address filter; empty means all addresses
	Page    Page    // 1-based page number
	Size    PerPage // Items per page
}

// ItemsPerPage returns the number of items requested per page
func (c SnapshotsCriteria) ItemsPerPage() uint64 {
	return c.Size.Uint64()
}

// ItemsToSkip returns the number of items to skip for pagination
func (c SnapshotsCriteria) ItemsToSkip() uint64 {
	return c.Page.Offset(c.Size)
}

// NewSnapshotsCriteria creates SnapshotsCriteria from raw values with validation
func NewSnapshotsCriteria(address string, page, perPage uint64) (SnapshotsCriteria, error) {
	a, err := ParseAddress(address)
	if err != nil {
		return SnapshotsCriteria{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	pp, err := ParsePerPageFromUint64(perPage)
	if err != nil {
		return SnapshotsCriteria{}, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
	}

	return SnapshotsCriteria{
		Address: a,
		Page:    ParsePageFromUint64(page),
		Size:    pp,
	}, nil
}

// SnapshotsPage represents a page of snapshot results with navigation metadata
type SnapshotsPage struct {
	Snapshots []Snapshot
	HasMore   bool    // True if there are more pages after this one
	Number    Page    // Current page number
	Size      PerPage // Page size
}

// Helper methods for pagination state
func (p *SnapshotsPage) HasNext() bool     { return p.HasMore }
func (p *SnapshotsPage) HasPrevious() bool { return p.Number > 1 }
