// Package clock lets batch timing be pinned in tests
package clock

import "time"

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current time in UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant
type Fixed time.Time

// Now returns the fixed instant
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
