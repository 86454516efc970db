package bind_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/web/handler/bind"
	"github.com/screwyprof/airdrop/web/snapshots"
)

func TestGetSnapshotsRequest(t *testing.T) {
	t.Parallel()

	t.Run("it applies defaults", func(t *testing.T) {
		t.Parallel()

		// Act
		req, err := bind.GetSnapshotsRequest(httptest.NewRequest("GET", "/snapshots", nil))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(snapshots.DefaultPage), req.Page)
		assert.Equal(t, uint64(snapshots.DefaultPerPage), req.PerPage)
		assert.Empty(t, req.Address)
	})

	t.Run("it binds all parameters", func(t *testing.T) {
		t.Parallel()

		// Act
		req, err := bind.GetSnapshotsRequest(httptest.NewRequest("GET", "/snapshots?page=3&per_page=20&address=mars1abc", nil))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(3), req.Page)
		assert.Equal(t, uint64(20), req.PerPage)
		assert.Equal(t, "mars1abc", req.Address)
	})

	t.Run("it rejects invalid pagination", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name        string
			query       string
			expectedErr error
		}{
			{name: "non-numeric page", query: "page=abc", expectedErr: bind.ErrPageNotNumeric},
			{name: "zero page", query: "page=0", expectedErr: bind.ErrPageNotPositive},
			{name: "negative per_page", query: "per_page=-1", expectedErr: bind.ErrPerPageNotNumeric},
			{name: "zero per_page", query: "per_page=0", expectedErr: bind.ErrPerPageNotPositive},
			{name: "per_page above maximum", query: "per_page=101", expectedErr: bind.ErrPerPageTooLarge},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				_, err := bind.GetSnapshotsRequest(httptest.NewRequest("GET", "/snapshots?"+tc.query, nil))

				// Assert
				require.ErrorIs(t, err, tc.expectedErr)
			})
		}
	})
}

func TestGetSnapshotsResponse(t *testing.T) {
	t.Parallel()

	t.Run("it formats timestamps as RFC3339 UTC", func(t *testing.T) {
		t.Parallel()

		// Arrange
		takenAt := time.Date(2024, 3, 1, 14, 0, 0, 0, time.FixedZone("CET", 3600))

		// Act
		resp := bind.GetSnapshotsResponse([]snapshots.Snapshot{{
			Address:       "mars1abc",
			Sequence:      3,
			AirdropAmount: "1000",
			StakedAmount:  "250",
			TakenAt:       takenAt,
		}})

		// Assert
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "2024-03-01T13:00:00Z", resp.Data[0].TakenAt)
		assert.Equal(t, "250", resp.Data[0].StakedAmount)
	})

	t.Run("it renders an empty page as an empty array", func(t *testing.T) {
		t.Parallel()

		// Act
		resp := bind.GetSnapshotsResponse(nil)

		// Assert
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
	})
}
