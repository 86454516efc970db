package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/web/api"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name            string
		err             error
		expectedCode    int
		expectedMessage string
	}{
		{
			name:            "it hides database details behind a generic message",
			err:             errors.New("snapshot query failed: password authentication failed for user 'airdrop'"),
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Internal Server Error",
		},
		{
			name:            "it reports a timed out query as unavailable",
			err:             fmt.Errorf("snapshot query failed: %w", context.DeadlineExceeded),
			expectedCode:    http.StatusServiceUnavailable,
			expectedMessage: "Service Unavailable",
		},
		{
			name:            "it reports an abandoned request as unavailable",
			err:             fmt.Errorf("snapshot query failed: %w", context.Canceled),
			expectedCode:    http.StatusServiceUnavailable,
			expectedMessage: "Service Unavailable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Act
			apiErr := api.Wrap(tc.err)

			// Assert
			require.NotNil(t, apiErr)
			assert.Equal(t, tc.expectedCode, apiErr.HTTPCode())
			assert.Equal(t, tc.expectedMessage, apiErr.Error())
			assert.Equal(t, tc.err, apiErr.Cause(), "cause is kept for logging")
		})
	}

	t.Run("it passes API errors through unchanged", func(t *testing.T) {
		t.Parallel()

		// Arrange
		badRequest := api.BadRequest(errors.New("invalid page parameter"))

		// Act
		wrapped := api.Wrap(fmt.Errorf("handler: %w", badRequest))

		// Assert
		assert.Same(t, badRequest, wrapped)
	})

	t.Run("it returns nil for nil", func(t *testing.T) {
		t.Parallel()

		// Act & Assert
		assert.Nil(t, api.Wrap(nil))
	})
}

func TestBadRequest(t *testing.T) {
	t.Parallel()

	t.Run("it exposes the validation message as JSON", func(t *testing.T) {
		t.Parallel()

		// Arrange
		cause := errors.New("invalid address: address is not a valid bech32 string")

		// Act
		body, err := json.Marshal(api.BadRequest(cause))

		// Assert
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":400,"message":"invalid address: address is not a valid bech32 string"}`, string(body))
	})

	t.Run("it matches the cause chain", func(t *testing.T) {
		t.Parallel()

		// Arrange
		sentinel := errors.New("per_page must be positive")
		apiErr := api.BadRequest(fmt.Errorf("invalid per_page parameter: %w", sentinel))

		// Act & Assert
		assert.ErrorIs(t, apiErr, sentinel)
		assert.Equal(t, apiErr.Cause(), errors.Unwrap(apiErr))
	})
}
