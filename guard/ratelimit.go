package guard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/l7aromeo/meocord/registry"
)

// RateLimit rejects events that exceed a per-key token bucket. The dispatcher
// gives no mutual exclusion between in-flight handlers, so exclusivity is the
// guard's job, keyed on request-scoped identity. The default key is the
// acting user's ID.
//
// A RateLimit value carries state (the per-key limiters), so share one
// instance across registrations — use a singleton container binding or a
// package-level value, not a transient spec.
type RateLimit struct {
	// Every is the minimum interval between allowed events per key.
	Every time.Duration
	// Burst is the bucket size; zero means 1.
	Burst int
	// KeyFunc derives the limiter key from the event. Nil means Event.UserID.
	KeyFunc func(ev *registry.Event) string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimit returns a guard allowing burst events per key, refilling one
// every interval.
func NewRateLimit(every time.Duration, burst int) *RateLimit {
	return &RateLimit{Every: every, Burst: burst}
}

func (g *RateLimit) CanActivate(_ context.Context, ev *registry.Event) (bool, error) {
	key := ev.UserID()
	if g.KeyFunc != nil {
		key = g.KeyFunc(ev)
	}
	return g.limiter(key).Allow(), nil
}

func (g *RateLimit) limiter(key string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.limiters == nil {
		g.limiters = make(map[string]*rate.Limiter)
	}
	lim, ok := g.limiters[key]
	if !ok {
		burst := g.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Every(g.Every), burst)
		g.limiters[key] = lim
	}
	return lim
}
