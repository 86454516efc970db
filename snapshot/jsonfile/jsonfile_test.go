package jsonfile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/snapshot"
	"github.com/screwyprof/airdrop/snapshot/jsonfile"
)

func TestRead(t *testing.T) {
	t.Parallel()

	t.Run("it reads an array of allocations", func(t *testing.T) {
		t.Parallel()

		// Arrange
		input := `[
			{"address": "mars1abc", "amount": "1000"},
			{"address": "mars1def", "amount": 25}
		]`

		// Act
		allocations, err := jsonfile.Read(strings.NewReader(input))

		// Assert
		require.NoError(t, err)
		assertAllocations(t, allocations, "mars1abc=1000", "mars1def=25")
	})

	t.Run("it reads a stream of allocation objects", func(t *testing.T) {
		t.Parallel()

		// Arrange
		input := "{\"address\":\"mars1abc\",\"amount\":\"1\"}\n{\"address\":\"mars1def\",\"amount\":\"2\"}\n"

		// Act
		allocations, err := jsonfile.Read(strings.NewReader(input))

		// Assert
		require.NoError(t, err)
		assertAllocations(t, allocations, "mars1abc=1", "mars1def=2")
	})

	t.Run("it reads an empty array", func(t *testing.T) {
		t.Parallel()

		// Act
		allocations, err := jsonfile.Read(strings.NewReader(" [] "))

		// Assert
		require.NoError(t, err)
		assert.Empty(t, allocations)
	})

	t.Run("it fails the whole read on any malformed entry", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name  string
			input string
		}{
			{name: "empty input", input: "   "},
			{name: "invalid json", input: `[{"address": "mars1abc", "amount": }]`},
			{name: "unparseable amount", input: `[{"address":"mars1abc","amount":"12x"}]`},
			{name: "negative amount", input: `[{"address":"mars1abc","amount":-1}]`},
			{name: "missing amount", input: `[{"address":"mars1abc"}]`},
			{name: "missing address", input: `[{"amount":"1"}]`},
			{name: "trailing garbage", input: `[{"address":"mars1abc","amount":"1"}] {`},
			{name: "broken stream entry", input: `{"address":"mars1abc","amount":"1"} {"address":`},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				allocations, err := jsonfile.Read(strings.NewReader(tc.input))

				// Assert
				require.ErrorIs(t, err, snapshot.ErrParse)
				assert.Nil(t, allocations)
			})
		}
	})
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("it reports a missing file as an io failure", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := jsonfile.ReadFile(filepath.Join(t.TempDir(), "missing.json"))

		// Assert
		require.ErrorIs(t, err, snapshot.ErrIO)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("it writes a pretty-printed array with bare numbers", func(t *testing.T) {
		t.Parallel()

		// Arrange
		records := []snapshot.Record{{
			Address:       "mars1abc",
			Sequence:      3,
			AirdropAmount: snapshot.MustParseAmount("1000"),
			StakedAmount:  snapshot.MustParseAmount("250"),
		}}
		var buf bytes.Buffer

		// Act
		err := jsonfile.Write(&buf, records)

		// Assert
		require.NoError(t, err)
		expected := `[
  {
    "address": "mars1abc",
    "sequence": 3,
    "airdrop_amount": 1000,
    "staked_amount": 250
  }
]
`
		assert.Equal(t, expected, buf.String())
	})

	t.Run("it writes an empty array for no records", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var buf bytes.Buffer

		// Act
		err := jsonfile.Write(&buf, nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("it writes one compact line per record", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var buf bytes.Buffer
		record := snapshot.Record{Address: "mars1abc", Sequence: 1, AirdropAmount: snapshot.AmountFrom64(2), StakedAmount: snapshot.AmountFrom64(3)}

		// Act
		err := jsonfile.WriteLine(&buf, record)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "{\"address\":\"mars1abc\",\"sequence\":1,\"airdrop_amount\":2,\"staked_amount\":3}\n", buf.String())
	})

	t.Run("it round-trips through a file", func(t *testing.T) {
		t.Parallel()

		// Arrange
		path := filepath.Join(t.TempDir(), "output.json")
		records := []snapshot.Record{{Address: "mars1abc", Sequence: 9, AirdropAmount: snapshot.AmountFrom64(1), StakedAmount: snapshot.AmountFrom64(0)}}

		// Act
		err := jsonfile.WriteFile(path, records)

		// Assert
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"sequence": 9`)
	})
}

func assertAllocations(t *testing.T, allocations []snapshot.Allocation, expected ...string) {
	t.Helper()

	actual := make([]string, 0, len(allocations))
	for _, a := range allocations {
		actual = append(actual, a.Address+"="+a.Amount.String())
	}
	assert.Equal(t, expected, actual)
}
