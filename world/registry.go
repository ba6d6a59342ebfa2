package world

import (
	"sort"
	"sync"
)

// ID identifies a tracked entity for its lifetime. Zero means unassigned.
type ID uint64

// Entity is the minimal contract the board needs. Concrete species carry
// their own stats and behavior; the board only cares about occupancy and,
// for tracked entities, identity.
type Entity interface {
	// Tracked reports whether the entity takes part in the tick pipeline.
	// Untracked entities (scenery) occupy tiles but never appear in the
	// registry.
	Tracked() bool
	ID() ID
	SetID(ID)
}

// Handle is a registry snapshot entry.
type Handle struct {
	ID  ID
	Pos Position
}

// EntityManager maps live tracked entities to their positions. Tiles keep
// it consistent: placing and removing an entity updates the registry in
// the same call, so the two can never disagree between phases.
type EntityManager struct {
	mu     sync.RWMutex
	nextID ID
	active map[ID]Position
}

func NewEntityManager() *EntityManager {
	return &EntityManager{active: make(map[ID]Position)}
}

// Register records an entity at pos, assigning a fresh ID if it has none.
// An entity re-registered after a detach keeps its ID; its position entry
// is simply restored.
func (m *EntityManager) Register(e Entity, pos Position) ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := e.ID()
	if id == 0 {
		m.nextID++
		id = m.nextID
		e.SetID(id)
	}
	m.active[id] = pos
	return id
}

// Unregister drops the position entry for id. The entity keeps its ID so
// it can be re-registered later (detach during processing) or retired for
// good (death).
func (m *EntityManager) Unregister(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, id)
}

// Relocate moves an existing entry. Unknown IDs return ErrUnknownEntity;
// the caller decides whether that is fatal.
func (m *EntityManager) Relocate(id ID, pos Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[id]; !ok {
		return ErrUnknownEntity
	}
	m.active[id] = pos
	return nil
}

// Lookup returns the registered position for id.
func (m *EntityManager) Lookup(id ID) (Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.active[id]
	return pos, ok
}

// Len reports the number of live tracked entities.
func (m *EntityManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// Snapshot returns all live entries ordered by ID. Iterating the snapshot
// gives every phase a stable, deterministic entity order regardless of map
// iteration order.
func (m *EntityManager) Snapshot() []Handle {
	m.mu.RLock()
	out := make([]Handle, 0, len(m.active))
	for id, pos := range m.active {
		out = append(out, Handle{ID: id, Pos: pos})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
