package debounce

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a label is suppressed after an emission
const DefaultCooldown = 45 * time.Second

// Limiter suppresses repeat emissions of the same label inside a
// cooldown window. A face that stays in front of the camera produces
// a match on nearly every frame; only the first one should turn into
// an attendance event.
type Limiter struct {
	cooldown time.Duration
	lastSeen map[string]time.Time
	mu       sync.Mutex
}

// New creates a limiter. A non-positive cooldown falls back to DefaultCooldown.
func New(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{
		cooldown: cooldown,
		lastSeen: make(map[string]time.Time),
	}
}

// ShouldEmit reports whether the label is outside its cooldown window
// and, if so, starts a new window at now.
func (l *Limiter) ShouldEmit(label string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastSeen[label]; ok && now.Sub(last) < l.cooldown {
		return false
	}

	l.lastSeen[label] = now
	return true
}

// Reset forgets all cooldown state
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSeen = make(map[string]time.Time)
}
