package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySequenceAllocatorMonotonic(t *testing.T) {
	allocator := NewMemorySequenceAllocator()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	first, err := allocator.NextTicketNumber(context.Background(), now)
	require.NoError(t, err)
	second, err := allocator.NextTicketNumber(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "TKT-202400001", first)
	assert.Equal(t, "TKT-202400002", second)
}

func TestMemorySequenceAllocatorYearRollover(t *testing.T) {
	allocator := NewMemorySequenceAllocator()
	decemberish := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	january := time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC)

	_, err := allocator.NextTicketNumber(context.Background(), decemberish)
	require.NoError(t, err)
	_, err = allocator.NextTicketNumber(context.Background(), decemberish)
	require.NoError(t, err)

	rolled, err := allocator.NextTicketNumber(context.Background(), january)
	require.NoError(t, err)
	assert.Equal(t, "TKT-202500001", rolled)
}

func TestMemorySequenceAllocatorConcurrentUniqueness(t *testing.T) {
	allocator := NewMemorySequenceAllocator()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := allocator.NextTicketNumber(context.Background(), now)
			assert.NoError(t, err)
			results <- number
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{}, workers)
	for number := range results {
		_, dup := seen[number]
		assert.False(t, dup, "duplicate ticket number %s", number)
		seen[number] = struct{}{}
	}
	assert.Len(t, seen, workers)
}
