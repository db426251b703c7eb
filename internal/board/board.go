package board

import (
	"sync"
	"time"
)

// Slot is the last value written to one display position.
type Slot struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Board is a thread-safe in-memory presentation sink.
// Only slots registered at construction can be written; other ids are ignored.
type Board struct {
	mu    sync.RWMutex
	slots map[string]Slot
	known map[string]struct{}
	now   func() time.Time
}

// New constructs a Board accepting writes to the given slot ids.
func New(slotIDs []string) *Board {
	known := make(map[string]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		known[id] = struct{}{}
	}
	return &Board{
		slots: make(map[string]Slot, len(slotIDs)),
		known: known,
		now:   time.Now,
	}
}

// SetText replaces the value of slot. Writes to unknown slots are a no-op.
func (b *Board) SetText(slot, value string) {
	if _, ok := b.known[slot]; !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[slot] = Slot{Value: value, UpdatedAt: b.now()}
}

// Get returns the current value of slot.
func (b *Board) Get(slot string) (Slot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.slots[slot]
	return s, ok
}

// Has reports whether slot is registered, written or not.
func (b *Board) Has(slot string) bool {
	_, ok := b.known[slot]
	return ok
}

// Snapshot returns a copy of every written slot.
func (b *Board) Snapshot() map[string]Slot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]Slot, len(b.slots))
	for id, s := range b.slots {
		out[id] = s
	}
	return out
}
