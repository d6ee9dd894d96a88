package validation

import "sync"

// Ticket identifies one validation request for a field.
type Ticket struct {
	ID  string
	Seq uint64
}

// Guard hands out monotonically increasing tickets per field. A result is
// only applied if its ticket is still the latest one for that field.
type Guard struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

// Begin starts a request for id and returns its ticket.
func (g *Guard) Begin(id string) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seqs == nil {
		g.seqs = make(map[string]uint64)
	}
	g.seqs[id]++
	return Ticket{ID: id, Seq: g.seqs[id]}
}

// Bump invalidates every outstanding ticket for id. Call it when the value
// changes.
func (g *Guard) Bump(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seqs == nil {
		g.seqs = make(map[string]uint64)
	}
	g.seqs[id]++
}

// Current reports whether t is still the latest ticket for its field.
func (g *Guard) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seqs[t.ID] == t.Seq
}
