package snapshots

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Address filter validation errors
var (
	ErrAddressNotBech32 = errors.New("address is not a valid bech32 string")
)

// Address is an optional exact-match filter on the snapshot address. Empty means no filter.
type Address string

// ParseAddress validates a bech32 address filter; the result is lowercase
func ParseAddress(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, _, _, err := bech32.DecodeGeneric(raw); err != nil {
		return "", errors.Join(ErrAddressNotBech32, err)
	}
	return Address(strings.ToLower(raw)), nil
}

// IsSet reports whether the filter is active
func (a Address) IsSet() bool {
	return a != ""
}

func (a Address) String() string {
	return string(a)
}
