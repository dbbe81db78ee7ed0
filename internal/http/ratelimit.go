package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Limits sized for a single-operator dashboard: lesson entry and
// settings edits arrive one form post at a time, so 30 writes per
// minute per client leaves headroom without letting a script hammer
// the backend.
const (
	writeLimit  = 30
	writeWindow = time.Minute
	staleAfter  = 10 * time.Minute
	sweepEvery  = 5 * time.Minute
)

// rateLimiter counts mutating requests per client IP over a fixed
// window.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientWindow
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientWindow struct {
	start time.Time
	seen  int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow reports whether another mutating request from the client fits
// in the current window, counting rejections into the metrics.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[clientIP]
	if !ok || now.Sub(w.start) > writeWindow {
		rl.clients[clientIP] = &clientWindow{start: now, seen: 1}
		return true
	}

	w.seen++
	if w.seen > writeLimit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweepStale()
		case <-rl.stopCleanup:
			return
		}
	}
}

// sweepStale drops windows that have been idle long enough that the
// client would get a fresh window anyway.
func (rl *rateLimiter) sweepStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for ip, w := range rl.clients {
		if w.start.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop ends the sweep goroutine. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
