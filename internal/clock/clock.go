package clock

import "time"

// Clock abstracts wall-clock reads so the advance-notice and refund
// policies can be exercised at fixed instants in tests.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
