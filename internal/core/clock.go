package core

import (
	"sync"
	"time"
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

func systemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// secondsClock converts a Clock into unix seconds that never decrease, even
// if the wall clock steps backwards.
type secondsClock struct {
	mu    sync.Mutex
	clock Clock
	last  uint64
}

func newSecondsClock(clock Clock) *secondsClock {
	if clock == nil {
		clock = systemClock()
	}
	return &secondsClock{clock: clock}
}

func (c *secondsClock) Now() uint64 {
	var secs uint64
	if unix := c.clock.Now().Unix(); unix > 0 {
		secs = uint64(unix)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if secs < c.last {
		return c.last
	}
	c.last = secs
	return secs
}
