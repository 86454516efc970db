package snapshots_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/web/snapshots"
)

func TestParsePageFromUint64(t *testing.T) {
	t.Parallel()

	t.Run("when page is zero", func(t *testing.T) {
		t.Parallel()

		// Act
		page := snapshots.ParsePageFromUint64(0)

		// Assert
		assert.Equal(t, snapshots.Page(snapshots.DefaultPage), page, "Zero should default to first page")
	})

	t.Run("when page is positive", func(t *testing.T) {
		t.Parallel()

		for _, input := range []uint64{1, 2, 999, ^uint64(0)} {
			// Act
			page := snapshots.ParsePageFromUint64(input)

			// Assert
			assert.Equal(t, input, page.Uint64())
		}
	})
}

func TestParsePerPageFromUint64(t *testing.T) {
	t.Parallel()

	t.Run("when per_page is zero", func(t *testing.T) {
		t.Parallel()

		// Act
		perPage, err := snapshots.ParsePerPageFromUint64(0)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(snapshots.DefaultPerPage), perPage.Uint64())
	})

	t.Run("when per_page is within valid range", func(t *testing.T) {
		t.Parallel()

		for _, input := range []uint64{1, 5, snapshots.DefaultPerPage, snapshots.MaxPerPage} {
			// Act
			perPage, err := snapshots.ParsePerPageFromUint64(input)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, input, perPage.Uint64())
		}
	})

	t.Run("when per_page exceeds maximum", func(t *testing.T) {
		t.Parallel()

		for _, input := range []uint64{snapshots.MaxPerPage + 1, 999999} {
			// Act
			_, err := snapshots.ParsePerPageFromUint64(input)

			// Assert
			require.ErrorIs(t, err, snapshots.ErrPerPageTooLarge)
		}
	})
}

func TestPageNavigation(t *testing.T) {
	t.Parallel()

	t.Run("it computes the row offset", func(t *testing.T) {
		t.Parallel()

		// Act & Assert
		assert.Equal(t, uint64(0), snapshots.Page(1).Offset(20))
		assert.Equal(t, uint64(40), snapshots.Page(3).Offset(20))
	})

	t.Run("it steps between pages without going below the first", func(t *testing.T) {
		t.Parallel()

		// Act & Assert
		assert.Equal(t, snapshots.Page(2), snapshots.Page(3).Prev())
		assert.Equal(t, snapshots.Page(1), snapshots.Page(1).Prev())
		assert.Equal(t, snapshots.Page(4), snapshots.Page(3).Next())
	})
}
