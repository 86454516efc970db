package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/pkg/bech32addr"
	"github.com/screwyprof/airdrop/web/api"
	"github.com/screwyprof/airdrop/web/handler"
	"github.com/screwyprof/airdrop/web/snapshots"
)

const (
	marsAddress   = "mars1qqqsyqcyq5rqwzqfpg9scrgwpugpzysn7tgryz"
	cosmosAddress = "cosmos1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnrk363e"
)

var errFinderDown = errors.New("finder down")

func TestGetSnapshots(t *testing.T) {
	t.Parallel()

	t.Run("it returns a page of snapshots", func(t *testing.T) {
		t.Parallel()

		// Arrange
		finder := &finderStub{page: &snapshots.SnapshotsPage{
			Snapshots: []snapshots.Snapshot{{
				Address:       marsAddress,
				Sequence:      4,
				AirdropAmount: "340282366920938463463374607431768211455",
				StakedAmount:  "17",
				TakenAt:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			}},
			Number: 1,
			Size:   50,
		}}

		// Act
		rec := serve(t, handler.NewGetSnapshots(finder), "/snapshots")

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Link"))

		var resp api.SnapshotsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "340282366920938463463374607431768211455", resp.Data[0].AirdropAmount)
		assert.Equal(t, "2024-03-01T12:00:00Z", resp.Data[0].TakenAt)
	})

	t.Run("it passes pagination to the finder", func(t *testing.T) {
		t.Parallel()

		// Arrange
		finder := &finderStub{page: &snapshots.SnapshotsPage{Number: 3, Size: 10}}

		// Act
		serve(t, handler.NewGetSnapshots(finder), "/snapshots?page=3&per_page=10")

		// Assert
		assert.Equal(t, uint64(20), finder.criteria.ItemsToSkip())
		assert.Equal(t, uint64(10), finder.criteria.ItemsPerPage())
	})

	t.Run("it links to neighbouring pages", func(t *testing.T) {
		t.Parallel()

		// Arrange
		finder := &finderStub{page: &snapshots.SnapshotsPage{HasMore: true, Number: 2, Size: 10}}

		// Act
		rec := serve(t, handler.NewGetSnapshots(finder), "/snapshots?page=2&per_page=10")

		// Assert
		link := rec.Header().Get("Link")
		assert.Contains(t, link, `page=1&per_page=10>; rel="prev"`)
		assert.Contains(t, link, `page=3&per_page=10>; rel="next"`)
	})

	t.Run("it normalizes the address filter", func(t *testing.T) {
		t.Parallel()

		// Arrange
		normalizer, err := bech32addr.New("mars")
		require.NoError(t, err)
		finder := &finderStub{page: &snapshots.SnapshotsPage{Number: 1, Size: 50}}

		// Act
		rec := serve(t, handler.NewGetSnapshots(finder, handler.WithNormalizer(normalizer)), "/snapshots?address="+cosmosAddress)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, marsAddress, finder.criteria.Address.String())
	})

	t.Run("it rejects bad requests", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name  string
			query string
		}{
			{name: "zero page", query: "page=0"},
			{name: "per_page above maximum", query: "per_page=500"},
			{name: "address without checksum", query: "address=mars1nope"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Arrange
				finder := &finderStub{}

				// Act
				rec := serve(t, handler.NewGetSnapshots(finder), "/snapshots?"+tc.query)

				// Assert
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.False(t, finder.called, "finder must not be queried")
			})
		}
	})

	t.Run("it hides finder failures behind a generic error", func(t *testing.T) {
		t.Parallel()

		// Arrange
		finder := &finderStub{err: errFinderDown}

		// Act
		rec := serve(t, handler.NewGetSnapshots(finder), "/snapshots")

		// Assert
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), errFinderDown.Error())
	})

	t.Run("it reports a timed out query as unavailable", func(t *testing.T) {
		t.Parallel()

		// Arrange
		finder := &finderStub{err: context.DeadlineExceeded}

		// Act
		rec := serve(t, handler.NewGetSnapshots(finder), "/snapshots")

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("it bounds the query with the configured timeout", func(t *testing.T) {
		t.Parallel()

		// Arrange
		h := handler.NewGetSnapshots(blockingFinder{}, handler.WithQueryTimeout(10*time.Millisecond))

		// Act
		rec := serve(t, h, "/snapshots")

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// blockingFinder waits until the query context ends
type blockingFinder struct{}

func (blockingFinder) FindSnapshots(ctx context.Context, _ snapshots.SnapshotsCriteria) (*snapshots.SnapshotsPage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type finderStub struct {
	page     *snapshots.SnapshotsPage
	err      error
	called   bool
	criteria snapshots.SnapshotsCriteria
}

func (f *finderStub) FindSnapshots(_ context.Context, criteria snapshots.SnapshotsCriteria) (*snapshots.SnapshotsPage, error) {
	f.called = true
	f.criteria = criteria
	return f.page, f.err
}

func serve(t *testing.T, h *handler.GetSnapshots, target string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	h.AddRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}
