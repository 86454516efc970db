// Package bech32addr rewrites bech32 addresses under a different human-readable prefix
package bech32addr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Sentinel errors for address normalization
var (
	ErrInvalidPrefix  = errors.New("invalid bech32 prefix")
	ErrInvalidAddress = errors.New("invalid bech32 address")
	ErrUnknownVariant = errors.New("unknown bech32 checksum variant")
)

// Normalizer re-encodes addresses under a fixed destination prefix.
// The payload and checksum variant of the source address are preserved.
type Normalizer struct {
	prefix string
}

// New creates a Normalizer for the given destination prefix, e.g. "mars"
func New(prefix string) (*Normalizer, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: prefix must not be empty", ErrInvalidPrefix)
	}
	if prefix != strings.ToLower(prefix) {
		return nil, fmt.Errorf("%w: prefix must be lowercase: %q", ErrInvalidPrefix, prefix)
	}
	return &Normalizer{prefix: prefix}, nil
}

// Prefix returns the destination prefix
func (n *Normalizer) Prefix() string {
	return n.prefix
}

// Normalize decodes raw and re-encodes its payload under the destination prefix
func (n *Normalizer) Normalize(raw string) (string, error) {
	_, data, version, err := bech32.DecodeGeneric(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, raw, err)
	}

	var encoded string
	switch version {
	case bech32.Version0:
		encoded, err = bech32.Encode(n.prefix, data)
	case bech32.VersionM:
		encoded, err = bech32.EncodeM(n.prefix, data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, raw)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, raw, err)
	}

	return encoded, nil
}
