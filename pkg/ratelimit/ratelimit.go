// Package ratelimit is the in-process limiter used when Redis is not configured.
package ratelimit

import (
	"sync"
	"time"
)

// FixedWindow counts hits per key in fixed windows that start at the key's first hit
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
	sweepAt time.Time
}

type bucket struct {
	start time.Time
	count int
}

// NewFixedWindow allows limit hits per key per window
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow records a hit for key. When the key is over its limit it returns false and the
// time left until its window resets.
func (f *FixedWindow) Allow(key string) (bool, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	f.sweep(now)

	b, ok := f.buckets[key]
	if !ok || now.Sub(b.start) >= f.window {
		f.buckets[key] = &bucket{start: now, count: 1}
		return true, 0
	}
	if b.count >= f.limit {
		return false, b.start.Add(f.window).Sub(now)
	}
	b.count++
	return true, 0
}

// sweep drops expired buckets at most once per window
func (f *FixedWindow) sweep(now time.Time) {
	if now.Before(f.sweepAt) {
		return
	}
	for k, b := range f.buckets {
		if now.Sub(b.start) >= f.window {
			delete(f.buckets, k)
		}
	}
	f.sweepAt = now.Add(f.window)
}

// Len number of tracked keys
func (f *FixedWindow) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buckets)
}
