package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/screwyprof/airdrop/pkg/clock"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("it reports system time in UTC", func(t *testing.T) {
		t.Parallel()

		// Act
		now := clock.SystemClock{}.Now()

		// Assert
		assert.Equal(t, time.UTC, now.Location())
		assert.WithinDuration(t, time.Now(), now, time.Second)
	})

	t.Run("it pins a fixed instant", func(t *testing.T) {
		t.Parallel()

		// Arrange
		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		clk := clock.Fixed(at)

		// Act & Assert
		assert.Equal(t, at, clk.Now())
		assert.Equal(t, clk.Now(), clk.Now())
	})
}
