package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a client may perform another write.
type Limiter interface {
	Allow(key string) bool
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryLimiter keeps one token bucket per key. Buckets idle for longer
// than idleTTL are dropped on the next sweep.
type InMemoryLimiter struct {
	mu        sync.Mutex
	clients   map[string]*entry
	r         rate.Limit
	b         int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

var _ Limiter = (*InMemoryLimiter)(nil)

// NewInMemoryLimiter allows requests per duration with the given burst.
// NewInMemoryLimiter(10, 10*time.Second, 5) refills one token a second, five at once.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}

	idle := per * 10
	if idle < time.Minute {
		idle = time.Minute
	}

	return &InMemoryLimiter{
		clients: make(map[string]*entry),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
		idleTTL: idle,
		now:     time.Now,
	}
}

func (l *InMemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.clients[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.r, l.b)}
		l.clients[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// Len reports how many buckets are tracked.
func (l *InMemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *InMemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now

	for key, e := range l.clients {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
}
