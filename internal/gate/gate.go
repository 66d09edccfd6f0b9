// Package gate debounces repeated identical requests to the completion API.
package gate

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum spacing between two identical queries.
const DefaultCooldown = time.Second

// Gate admits a query unless it repeats the last admitted query within the
// cooldown. It keeps no queue; rejected queries are simply dropped.
type Gate struct {
	mu        sync.Mutex
	cooldown  time.Duration
	lastQuery string
	last      time.Time
	admitted  bool
}

func New(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{cooldown: cooldown}
}

// Admit reports whether query may go ahead at now. An admitted query is
// recorded before Admit returns, so the caller must call Admit before it
// issues the request.
func (g *Gate) Admit(query string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.admitted && query == g.lastQuery && now.Sub(g.last) < g.cooldown {
		return false
	}
	g.lastQuery = query
	g.last = now
	g.admitted = true
	return true
}

// Last returns the most recently admitted query and when it was admitted.
func (g *Gate) Last() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastQuery, g.last
}
