package snapshot_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/pkg/cosmosgrpc"
	"github.com/screwyprof/airdrop/snapshot"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	t.Run("it accepts plain decimal integers up to 128 bits", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"0", "250", "18446744073709551616", maxUint128} {
			// Act
			amount, err := snapshot.ParseAmount(input)

			// Assert
			require.NoError(t, err, input)
			assert.Equal(t, input, amount.String())
		}
	})

	t.Run("it reads leading zeros as decimal", func(t *testing.T) {
		t.Parallel()

		// Act
		amount, err := snapshot.ParseAmount("010")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "10", amount.String())
	})

	t.Run("it rejects anything but digits", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"", "-1", "+1", "1.5", "1e3", "0x10", " 1", "abc"} {
			// Act
			_, err := snapshot.ParseAmount(input)

			// Assert
			require.ErrorIs(t, err, snapshot.ErrInvalidAmount, "input %q", input)
		}
	})

	t.Run("it rejects values wider than 128 bits", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := snapshot.ParseAmount("340282366920938463463374607431768211456")

		// Assert
		require.ErrorIs(t, err, snapshot.ErrAmountOverflow)
	})
}

func TestAmountAdd(t *testing.T) {
	t.Parallel()

	t.Run("it adds across the 64-bit boundary", func(t *testing.T) {
		t.Parallel()

		// Act
		sum, err := snapshot.MustParseAmount("18446744073709551615").Add(snapshot.AmountFrom64(1))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "18446744073709551616", sum.String())
	})

	t.Run("it fails instead of wrapping around", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := snapshot.MustParseAmount(maxUint128).Add(snapshot.AmountFrom64(1))

		// Assert
		require.ErrorIs(t, err, snapshot.ErrAmountOverflow)
	})
}

func TestAmountJSON(t *testing.T) {
	t.Parallel()

	t.Run("it writes a bare number without rounding", func(t *testing.T) {
		t.Parallel()

		// Arrange
		record := snapshot.Record{
			Address:       "mars1abc",
			Sequence:      3,
			AirdropAmount: snapshot.MustParseAmount(maxUint128),
			StakedAmount:  snapshot.MustParseAmount("250"),
		}

		// Act
		data, err := json.Marshal(record)

		// Assert
		require.NoError(t, err)
		assert.JSONEq(t, `{"address":"mars1abc","sequence":3,"airdrop_amount":`+maxUint128+`,"staked_amount":250}`, string(data))
		assert.Contains(t, string(data), `"airdrop_amount":`+maxUint128)
	})

	t.Run("it reads a string or a number", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name     string
			input    string
			expected string
		}{
			{name: "string", input: `{"address":"mars1abc","amount":"1000"}`, expected: "1000"},
			{name: "number", input: `{"address":"mars1abc","amount":1000}`, expected: "1000"},
			{name: "wide number", input: `{"address":"mars1abc","amount":` + maxUint128 + `}`, expected: maxUint128},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				var alloc snapshot.Allocation
				err := json.Unmarshal([]byte(tc.input), &alloc)

				// Assert
				require.NoError(t, err)
				assert.Equal(t, tc.expected, alloc.Amount.String())
			})
		}
	})

	t.Run("it rejects fractional, negative and null amounts", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{`1.5`, `-3`, `1e3`, `"12abc"`, `null`, `true`} {
			// Act
			var amount snapshot.Amount
			err := json.Unmarshal([]byte(input), &amount)

			// Assert
			require.Error(t, err, "input %s", input)
		}
	})
}

func TestSumDelegations(t *testing.T) {
	t.Parallel()

	t.Run("it sums [5, missing, 12] to 17", func(t *testing.T) {
		t.Parallel()

		// Arrange
		delegations := []cosmosgrpc.Delegation{
			{Validator: "a", Balance: &cosmosgrpc.Coin{Denom: "umars", Amount: "5"}},
			{Validator: "b"},
			{Validator: "c", Balance: &cosmosgrpc.Coin{Denom: "umars", Amount: "12"}},
		}

		// Act
		total, err := snapshot.SumDelegations(delegations)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "17", total.String())
	})

	t.Run("it sums an empty set to zero", func(t *testing.T) {
		t.Parallel()

		// Act
		total, err := snapshot.SumDelegations(nil)

		// Assert
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("it names the validator of an unparseable balance", func(t *testing.T) {
		t.Parallel()

		// Arrange
		delegations := []cosmosgrpc.Delegation{
			{Validator: "marsvaloper1bad", Balance: &cosmosgrpc.Coin{Denom: "umars", Amount: "-4"}},
		}

		// Act
		_, err := snapshot.SumDelegations(delegations)

		// Assert
		require.ErrorIs(t, err, snapshot.ErrInvalidAmount)
		assert.Contains(t, err.Error(), "marsvaloper1bad")
	})
}
