package entry

import "time"

// DefaultSplash is how long the landing screen shows before advancing on its own.
const DefaultSplash = 3000 * time.Millisecond

// Stopper disarms a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Stopper

func timeAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}
