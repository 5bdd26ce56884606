package domain

import "github.com/jonboulle/clockwork"

// clock supplies the ProcessedAt timestamp on normalized records. Tests
// freeze it with SetClock for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the normalization time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
