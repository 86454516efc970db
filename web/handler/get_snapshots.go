package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/screwyprof/airdrop/pkg/httpkit"
	"github.com/screwyprof/airdrop/web/api"
	"github.com/screwyprof/airdrop/web/handler/bind"
	"github.com/screwyprof/airdrop/web/snapshots"
)

const GetSnapshotsRoute = http.MethodGet + " " + "/snapshots"

// Sentinel errors
var (
	ErrQueryFailed = errors.New("failed to query snapshots")
)

// Normalizer rewrites an address filter to the stored address encoding
type Normalizer interface {
	Normalize(raw string) (string, error)
}

type GetSnapshots struct {
	finder       snapshots.SnapshotsFinder
	normalizer   Normalizer
	queryTimeout time.Duration
}

// Option configures GetSnapshots
type Option func(*GetSnapshots)

// WithNormalizer rewrites the address filter before querying. Without one, addresses match verbatim.
func WithNormalizer(n Normalizer) Option {
	return func(h *GetSnapshots) { h.normalizer = n }
}

// WithQueryTimeout bounds each finder call; a zero duration means no bound
func WithQueryTimeout(d time.Duration) Option {
	return func(h *GetSnapshots) { h.queryTimeout = d }
}

func NewGetSnapshots(finder snapshots.SnapshotsFinder, opts ...Option) *GetSnapshots {
	h := &GetSnapshots{finder: finder}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *GetSnapshots) AddRoutes(m *http.ServeMux) {
	m.Handle(GetSnapshotsRoute, httpkit.HandlerFunc(h.GetSnapshots))
}

func (h *GetSnapshots) GetSnapshots(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	req, err := bind.GetSnapshotsRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	address := req.Address
	if address != "" && h.normalizer != nil {
		if address, err = h.normalizer.Normalize(address); err != nil {
			return httpkit.JsonError(api.BadRequest(fmt.Errorf("%w: %w", snapshots.ErrInvalidAddress, err)))
		}
	}

	criteria, err := snapshots.NewSnapshotsCriteria(address, req.Page, req.PerPage)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	ctx := r.Context()
	if h.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.queryTimeout)
		defer cancel()
	}

	page, err := h.finder.FindSnapshots(ctx, criteria)
	if err != nil {
		return httpkit.JsonError(api.Wrap(fmt.Errorf("%w: %w", ErrQueryFailed, err)))
	}

	if linkHeader := buildPaginationLinks(page, r.URL); linkHeader != "" {
		w.Header().Set("Link", linkHeader)
	}

	return httpkit.JSON(bind.GetSnapshotsResponse(page.Snapshots))
}

// buildPaginationLinks creates GitHub-style Link header for pagination navigation.
// Only prev and next are emitted; last would need a count query.
func buildPaginationLinks(page *snapshots.SnapshotsPage, baseURL *url.URL) string {
	var links []string

	u := *baseURL
	query := u.Query()

	if page.HasPrevious() {
		query.Set("page", fmt.Sprintf("%d", page.Number.Prev()))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, u.String()))
	}

	if page.HasNext() {
		query.Set("page", fmt.Sprintf("%d", page.Number.Next()))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, u.String()))
	}

	return strings.Join(links, ", ")
}
