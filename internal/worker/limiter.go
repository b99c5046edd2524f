package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-agent rate limiting so that a burst of workflow
// requests cannot flood a single specialist endpoint.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with the given default per-agent rate.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the named agent's limiter grants a slot, or ctx ends.
func (l *Limiter) Wait(ctx context.Context, agent string) error {
	return l.getLimiter(agent).Wait(ctx)
}

// Allow reports whether a request to the named agent may proceed now.
func (l *Limiter) Allow(agent string) bool {
	return l.getLimiter(agent).Allow()
}

// SetAgentRate overrides the rate for one agent.
func (l *Limiter) SetAgentRate(agent string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[agent] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) getLimiter(agent string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[agent]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[agent]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[agent] = limiter
	return limiter
}
