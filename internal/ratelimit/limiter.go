// Package ratelimit spaces out requests made to the same ATS platform.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const DefaultInterval = time.Second

// Limiter keeps one single-slot limiter per platform. A platform's first request passes
// immediately and every following request waits until a full interval has elapsed since the
// previous one. Platforms never delay each other.
type Limiter struct {
	mu        sync.Mutex
	interval  time.Duration
	overrides map[string]time.Duration
	platforms map[string]*rate.Limiter
}

// New builds a Limiter using interval for every platform without an override. A non-positive
// interval disables waiting for that platform.
func New(interval time.Duration, overrides map[string]time.Duration) *Limiter {
	normalized := make(map[string]time.Duration, len(overrides))
	for platform, value := range overrides {
		normalized[key(platform)] = value
	}
	return &Limiter{
		interval:  interval,
		overrides: normalized,
		platforms: map[string]*rate.Limiter{},
	}
}

// Wait blocks until platform may issue its next request or ctx is done.
func (l *Limiter) Wait(ctx context.Context, platform string) error {
	if l == nil {
		return ctx.Err()
	}
	return l.forPlatform(platform).Wait(ctx)
}

// Interval returns the delay enforced between requests to platform.
func (l *Limiter) Interval(platform string) time.Duration {
	if value, ok := l.overrides[key(platform)]; ok {
		return value
	}
	return l.interval
}

func (l *Limiter) forPlatform(platform string) *rate.Limiter {
	k := key(platform)

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.platforms[k]; ok {
		return limiter
	}
	limit := rate.Inf
	if interval := l.Interval(platform); interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	l.platforms[k] = limiter
	return limiter
}

// key folds case and drops spaces, hyphens, underscores and dots, the same way platform names
// are matched in the adapter registry, so "smart-recruiters" and "SmartRecruiters" share a limiter.
func key(platform string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(platform)))
}
