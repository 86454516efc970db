package snapshot

import (
	"errors"
	"fmt"
)

// Kind classifies a snapshot failure
type Kind int

const (
	KindIO Kind = iota + 1
	KindParse
	KindDecode
	KindTransport
	KindStatus
	KindAddress
	KindAccountNotFound
)

// Sentinel errors, one per Kind, for errors.Is matching
var (
	ErrIO              = errors.New("io error")
	ErrParse           = errors.New("parse error")
	ErrDecode          = errors.New("decode error")
	ErrTransport       = errors.New("transport error")
	ErrStatus          = errors.New("status error")
	ErrAddress         = errors.New("address error")
	ErrAccountNotFound = errors.New("account not found")
)

var kindSentinels = map[Kind]error{
	KindIO:              ErrIO,
	KindParse:           ErrParse,
	KindDecode:          ErrDecode,
	KindTransport:       ErrTransport,
	KindStatus:          ErrStatus,
	KindAddress:         ErrAddress,
	KindAccountNotFound: ErrAccountNotFound,
}

var kindNames = map[Kind]string{
	KindIO:              "io",
	KindParse:           "parse",
	KindDecode:          "decode",
	KindTransport:       "transport",
	KindStatus:          "status",
	KindAddress:         "address",
	KindAccountNotFound: "account_not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a failure tagged with its Kind and, when known, the offending address
type Error struct {
	Kind    Kind
	Address string
	Cause   error
}

func newError(kind Kind, address string, cause error) *Error {
	return &Error{Kind: kind, Address: address, Cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		msg = sentinel.Error()
	}
	if e.Address != "" {
		msg += ": " + e.Address
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's Kind
func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

// KindOf extracts the Kind of a snapshot error anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var snapErr *Error
	if errors.As(err, &snapErr) {
		return snapErr.Kind, true
	}
	return 0, false
}
