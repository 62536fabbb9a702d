package core

import (
	"testing"
	"time"
)

func TestSecondsClockNeverGoesBackwards(t *testing.T) {
	readings := []int64{100, 105, 90, 105, 110, -5}
	i := 0
	c := newSecondsClock(ClockFunc(func() time.Time {
		v := readings[i]
		i++
		return time.Unix(v, 0)
	}))
	want := []uint64{100, 105, 105, 105, 110, 110}
	for _, w := range want {
		if got := c.Now(); got != w {
			t.Fatalf("expected %d got %d", w, got)
		}
	}
}

func TestSystemClockDefault(t *testing.T) {
	c := newSecondsClock(nil)
	if c.Now() == 0 {
		t.Fatalf("expected wall clock seconds")
	}
}
