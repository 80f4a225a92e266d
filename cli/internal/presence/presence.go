// Package presence projects agent status events onto a table keyed by agent
// id. Entries are advisory: each event replaces the previous record in full
// and nothing is ever pruned.
package presence

import (
	"sort"
	"sync"

	"github.com/opsx/collab/shared/wire"
)

// Table is a concurrency-safe agent presence table.
type Table struct {
	mu     sync.RWMutex
	agents map[wire.ID]wire.Agent
}

// New returns an empty Table.
func New() *Table {
	return &Table{agents: make(map[wire.ID]wire.Agent)}
}

// Apply replaces the record for agentID, inserting it if absent. The stored
// record always carries agentID as its id.
func (t *Table) Apply(agentID wire.ID, rec wire.Agent) {
	rec.ID = agentID
	t.mu.Lock()
	t.agents[agentID] = rec
	t.mu.Unlock()
}

// Get returns the record for agentID.
func (t *Table) Get(agentID wire.ID) (wire.Agent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.agents[agentID]
	return rec, ok
}

// Snapshot returns every record sorted by agent id.
func (t *Table) Snapshot() []wire.Agent {
	t.mu.RLock()
	out := make([]wire.Agent, 0, len(t.agents))
	for _, rec := range t.agents {
		out = append(out, rec)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
