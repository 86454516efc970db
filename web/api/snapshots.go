package api

// SnapshotsRequest represents the query parameters for GET /snapshots
type SnapshotsRequest struct {
	Address string `query:"address"`  // Optional exact address filter
	Page    uint64 `query:"page"`     // Page number for pagination (default: 1)
	PerPage uint64 `query:"per_page"` // Number of items per page (default: 50, max: 100)
}

// Snapshot represents a single snapshot in the API response.
// Amounts are decimal strings so clients never lose precision.
type Snapshot struct {
	Address       string `json:"address"`
	Sequence      uint64 `json:"sequence"`
	AirdropAmount string `json:"airdrop_amount"`
	StakedAmount  string `json:"staked_amount"`
	TakenAt       string `json:"taken_at"`
}

// SnapshotsResponse represents the API response format for GET /snapshots
type SnapshotsResponse struct {
	Data []Snapshot `json:"data"`
}
