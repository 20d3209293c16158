// Package eventstore provides bounded, time-windowed storage of agent
// events keyed by correlation identifier.
package eventstore

import (
	"sort"
	"sync"
	"time"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// DefaultWindow is the trailing span within which events sharing a
// correlation id are considered part of one incident.
const DefaultWindow = 300 * time.Second

type entry struct {
	event types.AgentEvent
	seq   uint64
}

// Store buffers correlated events and owns their eviction. All access is
// serialized by a single mutex; a bucket read-modify-write is one critical
// section so readers never observe a half-evicted bucket.
type Store struct {
	mu      sync.Mutex
	window  time.Duration
	buckets map[string][]entry
	seq     uint64

	now func() time.Time // overridable in tests
}

// New creates a store with the given correlation window. A non-positive
// window falls back to DefaultWindow.
func New(window time.Duration) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		window:  window,
		buckets: make(map[string][]entry),
		now:     time.Now,
	}
}

// Insert appends the event to the bucket for its correlation id. Events
// without a correlation id are private singleton groups and are not
// buffered at all.
func (s *Store) Insert(event types.AgentEvent) {
	if event.CorrelationID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.buckets[event.CorrelationID] = append(s.buckets[event.CorrelationID], entry{event: event, seq: s.seq})
}

// Evict removes, from every bucket, events older than now minus the
// correlation window. Buckets left empty are deleted entirely.
func (s *Store) Evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(now)
}

func (s *Store) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	for id, bucket := range s.buckets {
		live := bucket[:0]
		for _, e := range bucket {
			if e.event.Timestamp.After(cutoff) {
				live = append(live, e)
			}
		}
		if len(live) == 0 {
			delete(s.buckets, id)
		} else {
			s.buckets[id] = live
		}
	}
}

// GroupFor returns the live members of a correlation group sorted by
// timestamp ascending (insertion order breaks ties). Eviction runs
// synchronously before the read, so callers never observe stale entries.
// An empty result is valid and means nothing is currently correlated.
func (s *Store) GroupFor(correlationID string) []types.AgentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())

	bucket := s.buckets[correlationID]
	if len(bucket) == 0 {
		return nil
	}
	sorted := make([]entry, len(bucket))
	copy(sorted, bucket)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].event.Timestamp, sorted[j].event.Timestamp
		if ti.Equal(tj) {
			return sorted[i].seq < sorted[j].seq
		}
		return ti.Before(tj)
	})
	events := make([]types.AgentEvent, len(sorted))
	for i, e := range sorted {
		events[i] = e.event
	}
	return events
}

// ActiveCorrelations returns the number of buckets currently holding at
// least one live event.
func (s *Store) ActiveCorrelations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())
	return len(s.buckets)
}
