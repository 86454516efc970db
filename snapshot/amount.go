package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"lukechampine.com/uint128"
)

// Amount parse and arithmetic errors
var (
	ErrInvalidAmount  = errors.New("amount is not a non-negative decimal integer")
	ErrAmountOverflow = errors.New("amount overflows 128 bits")
)

// Amount is an unsigned 128-bit token amount.
// It is written to JSON as a bare number and read from either a number or a string.
type Amount struct {
	v uint128.Uint128
}

// AmountFrom64 converts a uint64 into an Amount
func AmountFrom64(v uint64) Amount {
	return Amount{v: uint128.From64(v)}
}

// ParseAmount parses a plain decimal string. Signs, prefixes and fractions are rejected.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if n.BitLen() > 128 {
		return Amount{}, fmt.Errorf("%w: %s", ErrAmountOverflow, s)
	}
	return Amount{v: uint128.FromBig(n)}, nil
}

// MustParseAmount is ParseAmount that panics on error
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b, failing instead of wrapping around
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a.v.AddWrap(b.v)
	if sum.Cmp(a.v) < 0 {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrAmountOverflow, a, b)
	}
	return Amount{v: sum}, nil
}

// IsZero reports whether a is zero
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares a and b, returning -1, 0 or +1
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(b.v)
}

// String returns the decimal form of a
func (a Amount) String() string {
	return a.v.String()
}

// MarshalJSON writes a as a bare JSON number
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.v.String()), nil
}

// UnmarshalJSON accepts a JSON number or a decimal string
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidAmount)
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
		}
	}

	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
