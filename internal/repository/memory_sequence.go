package repository

import (
	"context"
	"sync"
	"time"

	"github.com/platformhq/support-service/internal/domain"
)

// memorySequenceAllocator guards the counter with a process-wide mutex.
// Suitable when a single process is the only number authority, and for tests.
type memorySequenceAllocator struct {
	mu       sync.Mutex
	sequence domain.TicketSequence
}

// NewMemorySequenceAllocator builds an in-memory allocator.
func NewMemorySequenceAllocator() SequenceAllocator {
	return &memorySequenceAllocator{}
}

func (a *memorySequenceAllocator) NextTicketNumber(_ context.Context, now time.Time) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	year := now.UTC().Year()
	if a.sequence.CurrentYear != year {
		a.sequence.CurrentYear = year
		a.sequence.CurrentSequence = 0
	}
	a.sequence.CurrentSequence++
	return domain.FormatTicketNumber(year, a.sequence.CurrentSequence), nil
}
