// Package ratelimit is the in-process request counter used by the API
// pipeline. State is per process; several instances each count separately.
package ratelimit

import (
	"sync"
	"time"
)

// Clock lets tests control time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Policy struct {
	Name   string
	Max    int
	Window time.Duration
}

var (
	Read   = Policy{Name: "read", Max: 100, Window: 15 * time.Minute}
	Write  = Policy{Name: "write", Max: 20, Window: 15 * time.Minute}
	Delete = Policy{Name: "delete", Max: 10, Window: 15 * time.Minute}
)

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type bucket struct {
	count  int
	start  time.Time
	window time.Duration
}

type Limiter struct {
	clock   Clock
	mu      sync.Mutex
	buckets map[string]*bucket
}

type Option func(*Limiter)

func WithClock(c Clock) Option { return func(l *Limiter) { l.clock = c } }

func New(opts ...Option) *Limiter {
	l := &Limiter{clock: systemClock{}, buckets: map[string]*bucket{}}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Allow counts one request for id under p. A window opens on the first
// request and resets once it has fully elapsed. Expired buckets of every key
// are pruned on each call.
func (l *Limiter) Allow(id string, p Policy) Decision {
	now := l.clock.Now()
	key := id + "|" + p.Name

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, b := range l.buckets {
		if now.Sub(b.start) >= b.window {
			delete(l.buckets, k)
		}
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{start: now, window: p.Window}
		l.buckets[key] = b
	}
	d := Decision{Limit: p.Max, ResetAt: b.start.Add(b.window)}
	if b.count >= p.Max {
		return d
	}
	b.count++
	d.Allowed = true
	d.Remaining = p.Max - b.count
	return d
}

// Len reports how many buckets are live.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
