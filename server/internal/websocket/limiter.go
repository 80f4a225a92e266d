package websocket

import (
	"math"

	"golang.org/x/time/rate"
)

// newChatLimiter returns a per-socket limiter allowing perSecond messages with
// a burst of twice that. It returns nil when limiting is disabled.
func newChatLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(math.Ceil(perSecond * 2))
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
