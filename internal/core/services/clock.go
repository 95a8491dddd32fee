package services

import (
	"time"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

// Clock returns the current instant. Services sample it once per call.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func todayIn(now Clock, loc *time.Location) time.Time {
	return streaks.Today(now(), loc)
}
