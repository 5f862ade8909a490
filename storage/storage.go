// Package storage implements the bounded, per-filter spot queues described
// by spec.md §4.5: one FIFO per FilterSpec, a global byte budget shared
// across all of them, and sequence numbers that survive eviction. Grounded
// in the teacher's per-shard RWMutex-plus-atomic-totals idiom, generalized
// from a single shared map to one lock per queue per spec.md §5/§9.
package storage

import (
	"fmt"
	"sync"
	"sync/atomic"

	"rbnfeed/filter"
	"rbnfeed/spot"
)

// StoredSpot pairs a spot with the monotonically increasing sequence number
// it was assigned on enqueue into one particular queue.
type StoredSpot struct {
	Seq  uint64
	Spot spot.Spot
}

// filterQueue is one FilterSpec's bounded FIFO. entries is ordered oldest
// first; nextSeq never goes backwards and is never reused, even across
// eviction, per spec.md §4.5.
type filterQueue struct {
	mu sync.RWMutex

	name string
	spec filter.Spec
	cap  int

	entries []StoredSpot
	nextSeq uint64

	sizeBytes uint64
	overflow  atomic.Uint64
}

func newFilterQueue(name string, spec filter.Spec, defaultCap int) *filterQueue {
	cap := defaultCap
	if spec.MaxKeptEntries != nil {
		cap = *spec.MaxKeptEntries
	}
	if cap < 1 {
		cap = 1
	}
	return &filterQueue{name: name, spec: spec, cap: cap}
}

// evictOldestLocked removes the head entry; caller must hold the write lock.
func (q *filterQueue) evictOldestLocked() {
	if len(q.entries) == 0 {
		return
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	q.sizeBytes -= uint64(head.Spot.Size())
	q.overflow.Add(1)
}

func (q *filterQueue) lenLocked() int { return len(q.entries) }

// Storage is the full StorageState: an ordered collection of filterQueues,
// a global byte budget, and aggregate counters.
type Storage struct {
	queues []*filterQueue

	globalMaxSize    uint64
	totalSizeBytes   atomic.Uint64
	globalEvictions  atomic.Uint64
}

// New builds a Storage from filter specs in declaration order. Unnamed
// specs are given the synthesized name filter_<i>, per spec.md §4.5.
func New(specs []filter.Spec, defaultMaxKeptEntries int, globalMaxSize uint64) *Storage {
	s := &Storage{globalMaxSize: globalMaxSize}
	for i, spec := range specs {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("filter_%d", i)
		}
		s.queues = append(s.queues, newFilterQueue(name, spec, defaultMaxKeptEntries))
	}
	return s
}

// TryStore evaluates every filter's spec against s in declaration order and
// stores into every queue whose spec matches, returning their indices.
func (st *Storage) TryStore(s spot.Spot) []int {
	var matched []int
	for i, q := range st.queues {
		if q.spec.Matches(s) {
			st.store(i, s)
			matched = append(matched, i)
		}
	}
	return matched
}

// store implements the three-step eviction protocol from spec.md §4.5.
func (st *Storage) store(i int, s spot.Spot) {
	target := st.queues[i]
	size := uint64(s.Size())

	// Step 1: global preemption. Evict from the largest queue until there
	// is room, scanning under read locks and only ever taking one write
	// lock at a time, per spec.md §5/§9.
	for st.totalSizeBytes.Load()+size > st.globalMaxSize {
		victim := st.largestQueue()
		if victim == nil {
			// No queue has any entries; abort without enqueuing.
			return
		}
		victim.mu.Lock()
		if victim.lenLocked() == 0 {
			victim.mu.Unlock()
			// Another goroutine already drained it; rescan.
			continue
		}
		evictedSize := victim.entries[0].Spot.Size()
		victim.evictOldestLocked()
		victim.mu.Unlock()
		st.totalSizeBytes.Add(^uint64(evictedSize - 1)) // subtract
		st.globalEvictions.Add(1)
	}

	// Step 2 and 3: per-queue cap eviction, then enqueue, all under the
	// target queue's own write lock.
	var capEvictedSize uint64
	target.mu.Lock()
	for target.lenLocked() >= target.cap {
		capEvictedSize += uint64(target.entries[0].Spot.Size())
		target.evictOldestLocked()
	}
	target.nextSeq++
	seq := target.nextSeq
	target.entries = append(target.entries, StoredSpot{Seq: seq, Spot: s})
	target.sizeBytes += size
	target.mu.Unlock()

	if capEvictedSize > 0 {
		st.totalSizeBytes.Add(^uint64(capEvictedSize - 1))
	}
	st.totalSizeBytes.Add(size)
}

// largestQueue finds the queue with the most entries, ties broken by lowest
// index, using only read locks; it never holds more than one lock at a
// time during the scan.
func (st *Storage) largestQueue() *filterQueue {
	var best *filterQueue
	bestLen := -1
	for _, q := range st.queues {
		q.mu.RLock()
		n := q.lenLocked()
		q.mu.RUnlock()
		if n > bestLen {
			bestLen = n
			best = q
		}
	}
	if bestLen <= 0 {
		return nil
	}
	return best
}

// FilterNames returns every queue's name in declaration order.
func (st *Storage) FilterNames() []string {
	names := make([]string, len(st.queues))
	for i, q := range st.queues {
		names[i] = q.name
	}
	return names
}

// Handle is an opaque, cheaply-duplicable read handle onto one filter's
// queue, per spec.md §9's "shared ownership" design note.
type Handle struct {
	q *filterQueue
}

// GetFilterByName returns a Handle for the named queue, or false if unknown.
func (st *Storage) GetFilterByName(name string) (Handle, bool) {
	for _, q := range st.queues {
		if q.name == name {
			return Handle{q: q}, true
		}
	}
	return Handle{}, false
}

// LatestSeq returns the seq of the most recently enqueued entry, 0 if none.
func (h Handle) LatestSeq() uint64 {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	if len(h.q.entries) == 0 {
		return 0
	}
	return h.q.entries[len(h.q.entries)-1].Seq
}

// GetSpotsSince returns every StoredSpot with Seq > since, oldest first.
func (h Handle) GetSpotsSince(since uint64) []StoredSpot {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	out := make([]StoredSpot, 0, len(h.q.entries))
	for _, e := range h.q.entries {
		if e.Seq > since {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the current number of retained entries.
func (h Handle) Len() int {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	return len(h.q.entries)
}

// CurrentSizeBytes returns the queue's current byte accounting.
func (h Handle) CurrentSizeBytes() uint64 {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	return h.q.sizeBytes
}

// OverflowCount returns the total number of entries ever evicted from this
// queue.
func (h Handle) OverflowCount() uint64 { return h.q.overflow.Load() }

// MaxKeptEntries returns the effective entry cap for this queue.
func (h Handle) MaxKeptEntries() int {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	return h.q.cap
}

// Name returns the queue's declared or synthesized name.
func (h Handle) Name() string { return h.q.name }

// TotalSizeBytes returns the aggregate byte count across every queue.
func (st *Storage) TotalSizeBytes() uint64 { return st.totalSizeBytes.Load() }

// GlobalMaxSize returns the configured global byte budget.
func (st *Storage) GlobalMaxSize() uint64 { return st.globalMaxSize }

// GlobalEvictions returns the number of evictions performed by the global
// preemption step.
func (st *Storage) GlobalEvictions() uint64 { return st.globalEvictions.Load() }
