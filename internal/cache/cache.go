package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface shared by cache implementations.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry sweeps over its registered caches. Register
// everything before calling StartCleanup; registration is not synced.
type Manager struct {
	cleaners []Cleaner
	done     chan struct{}
	finished chan struct{}
	started  bool
}

func NewManager() *Manager {
	return &Manager{
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.cleaners = append(m.cleaners, c)
}

// StartCleanup launches the sweep loop. Call Stop to end it.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go func() {
		defer close(m.finished)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.done:
				return
			}
		}
	}()
}

func (m *Manager) sweep() {
	removed := 0
	for _, c := range m.cleaners {
		removed += c.CleanExpired()
	}
	if removed > 0 {
		slog.Debug("Cache sweep complete", "entries_removed", removed)
	}
}

// Stop ends the sweep loop and waits for it to exit. Safe to call more than
// once, and a no-op when the loop was never started.
func (m *Manager) Stop() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	if m.started {
		<-m.finished
	}
}
