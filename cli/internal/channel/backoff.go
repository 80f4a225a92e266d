package channel

import (
	"math"
	"time"
)

// Backoff is the reconnect delay policy: Base for the first retry, doubled
// for each further consecutive failure, never more than Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff is used when Config leaves Backoff zero.
var DefaultBackoff = Backoff{Base: 500 * time.Millisecond, Max: 30 * time.Second}

// Delay returns the wait before retry number attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	if b.Base <= 0 {
		return 0
	}
	delay := b.Base
	for i := 1; i < attempt; i++ {
		if (b.Max > 0 && delay >= b.Max) || delay > math.MaxInt64/2 {
			break
		}
		delay *= 2
	}
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}
	return delay
}
