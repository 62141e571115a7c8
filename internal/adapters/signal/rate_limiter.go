package signal

import "golang.org/x/time/rate"

// eventLimiter caps how fast one connection may submit events.
// A zero rate disables the cap.
type eventLimiter struct {
	lim *rate.Limiter
}

func newEventLimiter(perSec float64, burst int) *eventLimiter {
	if perSec <= 0 {
		return &eventLimiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &eventLimiter{lim: rate.NewLimiter(rate.Limit(perSec), burst)}
}

func (l *eventLimiter) Allow() bool {
	if l == nil || l.lim == nil {
		return true
	}
	return l.lim.Allow()
}
