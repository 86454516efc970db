package snapshots

import (
	"errors"
	"fmt"
)

// Pagination defaults and limits for snapshot listings
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 100
)

var ErrPerPageTooLarge = errors.New("per_page exceeds maximum limit")

// Page is a 1-based page number
type Page uint64

// PerPage is the number of snapshots on one page
type PerPage uint64

// ParsePageFromUint64 treats zero as the first page
func ParsePageFromUint64(page uint64) Page {
	return Page(max(page, DefaultPage))
}

// ParsePerPageFromUint64 treats zero as the default size and rejects sizes above MaxPerPage
func ParsePerPageFromUint64(perPage uint64) (PerPage, error) {
	switch {
	case perPage == 0:
		return DefaultPerPage, nil
	case perPage > MaxPerPage:
		return 0, fmt.Errorf("%w: must be between 1 and %d", ErrPerPageTooLarge, MaxPerPage)
	default:
		return PerPage(perPage), nil
	}
}

func (p Page) Uint64() uint64 { return uint64(p) }

// Offset is the number of rows preceding this page
func (p Page) Offset(size PerPage) uint64 {
	return (p.Uint64() - 1) * size.Uint64()
}

// Prev returns the preceding page; the first page has none and returns itself
func (p Page) Prev() Page {
	if p <= DefaultPage {
		return DefaultPage
	}
	return p - 1
}

// Next returns the following page
func (p Page) Next() Page { return p + 1 }

func (pp PerPage) Uint64() uint64 { return uint64(pp) }
