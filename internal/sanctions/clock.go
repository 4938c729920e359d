package sanctions

import "time"

// Clock provides time operations that can be mocked for testing.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
