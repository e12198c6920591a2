package scan

import (
	"sync"

	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// Batch is the operator's session-scoped running list for the "several
// volumes" flow. It is a convenience view only; the durable truth is the
// record log. A crash or logout loses it without losing any entries.
type Batch struct {
	mu    sync.Mutex
	seq   int
	items []models.BatchItem
}

// Add appends an item and returns its sequence number, starting at 1.
func (b *Batch) Add(transport, order string, divergent bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.items = append(b.items, models.BatchItem{
		Seq:           b.seq,
		TransportCode: transport,
		OrderCode:     order,
		Divergent:     divergent,
	})
	return b.seq
}

// Reset clears the list and the sequence counter; the next Add returns 1.
func (b *Batch) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq = 0
	b.items = nil
}

// Count returns the number of items in the current batch.
func (b *Batch) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns the most recent limit items in scan order. limit <= 0
// returns everything.
func (b *Batch) Items(limit int) []models.BatchItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := 0
	if limit > 0 && len(b.items) > limit {
		start = len(b.items) - limit
	}

	out := make([]models.BatchItem, len(b.items)-start)
	copy(out, b.items[start:])
	return out
}
