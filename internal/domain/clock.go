package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source for update timestamps, the future-year
// check, and the deactivation window. Tests freeze it via SetClock so
// assembly output is fully deterministic.
var clock = clockwork.NewRealClock()

// SetClock swaps the package time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
