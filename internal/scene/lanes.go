package scene

import (
	"strconv"
	"strings"
	"sync"
)

// Lanes holds the lane count typed for each crossline. It satisfies
// crossline.LaneSource.
type Lanes struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewLanes creates a Lanes seeded with initial counts.
func NewLanes(initial map[string]int) *Lanes {
	l := &Lanes{counts: make(map[string]int, len(initial))}
	for name, n := range initial {
		l.counts[name] = n
	}
	return l
}

// Set stores n for name.
func (l *Lanes) Set(name string, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[name] = n
}

// SetText stores a lane count typed as text. Anything that is not a
// positive integer is stored as 1.
func (l *Lanes) SetText(name, text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		n = 1
	}
	l.Set(name, n)
	return n
}

// Lanes returns the count stored for name.
func (l *Lanes) Lanes(name string) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.counts[name]
	return n, ok
}
