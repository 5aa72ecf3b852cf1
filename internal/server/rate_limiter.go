package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter per key. Stale windows are
// pruned lazily so the map stays bounded by the set of recent clients.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]rateBucket
	sweepAt time.Time
}

type rateBucket struct {
	start time.Time
	count int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]rateBucket),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.After(r.sweepAt) {
		r.sweep(now)
		r.sweepAt = now.Add(r.window)
	}

	bucket, ok := r.buckets[key]
	if !ok || now.Sub(bucket.start) > r.window {
		bucket = rateBucket{start: now}
	}
	if bucket.count >= r.limit {
		return false
	}
	bucket.count++
	r.buckets[key] = bucket
	return true
}

func (r *rateLimiter) sweep(now time.Time) {
	for key, bucket := range r.buckets {
		if now.Sub(bucket.start) > r.window {
			delete(r.buckets, key)
		}
	}
}
