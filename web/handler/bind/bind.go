package bind

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/screwyprof/airdrop/web/api"
	"github.com/screwyprof/airdrop/web/snapshots"
)

// Sentinel errors for request binding
var (
	ErrInvalidPage    = errors.New("invalid page parameter")
	ErrInvalidPerPage = errors.New("invalid per_page parameter")

	ErrPageNotNumeric  = errors.New("page must be numeric")
	ErrPageNotPositive = errors.New("page must be positive")

	ErrPerPageNotNumeric  = errors.New("per_page must be numeric")
	ErrPerPageNotPositive = errors.New("per_page must be positive")
	ErrPerPageTooLarge    = fmt.Errorf("per_page must be between 1 and %d", snapshots.MaxPerPage)
)

// GetSnapshotsRequest binds HTTP request to SnapshotsRequest with defaults
func GetSnapshotsRequest(r *http.Request) (api.SnapshotsRequest, error) {
	query := r.URL.Query()

	// Address validation belongs to the domain criteria
	req := api.SnapshotsRequest{
		Address: query.Get("address"),
		Page:    snapshots.DefaultPage,
		PerPage: snapshots.DefaultPerPage,
	}

	page, err := positiveParam(query.Get("page"), req.Page, ErrPageNotNumeric, ErrPageNotPositive)
	if err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidPage, err)
	}
	req.Page = page

	perPage, err := positiveParam(query.Get("per_page"), req.PerPage, ErrPerPageNotNumeric, ErrPerPageNotPositive)
	if err == nil && perPage > snapshots.MaxPerPage {
		err = ErrPerPageTooLarge
	}
	if err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
	}
	req.PerPage = perPage

	return req, nil
}

// positiveParam parses a positive integer query value, falling back to def when the value is absent
func positiveParam(raw string, def uint64, errNotNumeric, errNotPositive error) (uint64, error) {
	if raw == "" {
		return def, nil
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	switch {
	case err != nil:
		return 0, errNotNumeric
	case n == 0:
		return 0, errNotPositive
	default:
		return n, nil
	}
}

// GetSnapshotsResponse binds domain snapshots to API response format
func GetSnapshotsResponse(found []snapshots.Snapshot) api.SnapshotsResponse {
	data := make([]api.Snapshot, len(found))
	for i, s := range found {
		data[i] = api.Snapshot{
			Address:       s.Address,
			Sequence:      s.Sequence,
			AirdropAmount: s.AirdropAmount,
			StakedAmount:  s.StakedAmount,
			TakenAt:       s.TakenAt.UTC().Format(time.RFC3339),
		}
	}

	return api.SnapshotsResponse{
		Data: data,
	}
}
