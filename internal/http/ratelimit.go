package http

import (
	"sync"
	"time"
)

const (
	mutationLimit  = 60
	mutationWindow = time.Minute

	limiterSweepEvery = 5 * time.Minute
	limiterStaleAfter = 10 * time.Minute
)

// rateLimiter throttles mutating requests per client with a fixed window
// counter. Read traffic is never throttled; the dashboard polls freely.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

type window struct {
	startedAt time.Time
	count     int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*window),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go rl.sweepLoop()
	return rl
}

// allow records one mutation for the client and reports whether it is still
// inside the window budget.
func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[client]
	if !ok || now.Sub(w.startedAt) > mutationWindow {
		rl.windows[client] = &window{startedAt: now, count: 1}
		return true
	}

	w.count++
	return w.count <= mutationLimit
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

// sweep drops windows idle past limiterStaleAfter so one-off clients do not
// accumulate forever.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterStaleAfter)
	for client, w := range rl.windows {
		if w.startedAt.Before(cutoff) {
			delete(rl.windows, client)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
