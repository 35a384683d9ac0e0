package memory

import (
	"sort"
	"sync"
	"time"
)

// Tracker records native Mat allocations so leaks can be reported when a
// session or batch job ends. It implements safe.MemoryTracker.
type Tracker struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
}

type AllocationRecord struct {
	ID        uint64
	Tag       string
	Size      int64
	CreatedAt time.Time
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakBytes      int64
}

func NewTracker() *Tracker {
	return &Tracker{
		allocations: make(map[uint64]*AllocationRecord),
	}
}

func (t *Tracker) TrackAllocation(id uint64, size int64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.allocations[id] = &AllocationRecord{
		ID:        id,
		Tag:       tag,
		Size:      size,
		CreatedAt: time.Now(),
	}
	t.stats.TotalAllocated += size
	t.stats.ActiveMats++

	if live := t.stats.TotalAllocated - t.stats.TotalReleased; live > t.stats.PeakBytes {
		t.stats.PeakBytes = live
	}
}

func (t *Tracker) TrackDeallocation(id uint64, _ string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, exists := t.allocations[id]
	if !exists {
		return
	}

	delete(t.allocations, id)
	t.stats.TotalReleased += record.Size
	t.stats.ActiveMats--
}

func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.stats
}

// Leaks returns the allocations still open, oldest first.
func (t *Tracker) Leaks() []AllocationRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaks := make([]AllocationRecord, 0, len(t.allocations))
	for _, record := range t.allocations {
		leaks = append(leaks, *record)
	}
	sort.Slice(leaks, func(i, j int) bool { return leaks[i].ID < leaks[j].ID })

	return leaks
}
