package snapshot

import (
	"github.com/hashicorp/go-multierror"
)

// Failure is an allocation that produced no record
type Failure struct {
	Index   int
	Address string
	Err     error
}

// Report is the outcome of a batch; records and failures keep input order
type Report struct {
	Records   []Record
	Failures  []Failure
	Requested int
	Accepted  int
}

// Err aggregates all failures, or returns nil if every address succeeded
func (r Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f.Err)
	}
	return result.ErrorOrNil()
}
