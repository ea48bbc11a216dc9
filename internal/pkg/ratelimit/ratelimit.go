package ratelimit

import (
	"sync"
	"time"
)

// Window is the trailing interval requests are counted over.
const Window = 60 * time.Second

type key struct {
	ip       string
	endpoint string
}

// Limiter tracks request timestamps per (client IP, endpoint) pair over a
// sliding window. The result is advisory: HTTP middleware turns false into
// a 429, the socket gateway silently drops the event.
type Limiter struct {
	mu      sync.Mutex
	windows map[key][]time.Time
	limits  map[string]int
	def     int
	now     func() time.Time
}

// New builds a Limiter from an endpoint→cap table. The empty-string entry
// is the fallback cap for unlisted endpoints; without one it defaults to 200.
func New(limits map[string]int) *Limiter {
	def := 200
	table := make(map[string]int, len(limits))
	for endpoint, limit := range limits {
		if endpoint == "" {
			def = limit
			continue
		}
		table[endpoint] = limit
	}
	return &Limiter{
		windows: make(map[key][]time.Time),
		limits:  table,
		def:     def,
		now:     time.Now,
	}
}

// SetClock overrides the limiter's time source. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Allow reports whether a request from ip against endpoint fits the window.
// The check and the append happen under one lock hold so concurrent callers
// cannot both slip past the cap.
func (l *Limiter) Allow(ip, endpoint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-Window)
	k := key{ip: ip, endpoint: endpoint}

	stamps := l.windows[k]
	live := stamps[:0]
	for _, ts := range stamps {
		if !ts.Before(cutoff) {
			live = append(live, ts)
		}
	}

	limit, ok := l.limits[endpoint]
	if !ok {
		limit = l.def
	}
	if len(live) >= limit {
		l.windows[k] = live
		return false
	}
	l.windows[k] = append(live, now)
	return true
}

// Prune drops keys with no timestamps inside the current window. Correctness
// never depends on it; it only bounds memory on long-running processes.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-Window)
	removed := 0
	for k, stamps := range l.windows {
		alive := false
		for _, ts := range stamps {
			if !ts.Before(cutoff) {
				alive = true
				break
			}
		}
		if !alive {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

// Keys reports the number of tracked (ip, endpoint) pairs.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
