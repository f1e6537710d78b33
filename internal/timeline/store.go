package timeline

import (
	"sync"

	"github.com/fprochazka/hydraping/pkg/endpoint"
)

// Store owns one Ring per endpoint, keyed by endpoint id, per spec.md §3's
// ownership rule ("Timelines owned by the Timeline Store, keyed by
// endpoint id"). Adding/removing endpoints is not part of spec.md's scope
// (the endpoint set is fixed for a run), so Store is built once from the
// full endpoint list.
type Store struct {
	mu    sync.RWMutex
	rings map[string]*Ring
	width int
}

// NewStore builds a Store with one ring of capacity width per endpoint.
func NewStore(endpoints []endpoint.Endpoint, width int) *Store {
	s := &Store{rings: make(map[string]*Ring, len(endpoints)), width: width}
	for _, ep := range endpoints {
		s.rings[ep.ID] = NewRing(width)
	}
	return s
}

// Append writes bucket b for endpoint id. Returns false if b was out of
// sequence for that endpoint's ring (should not happen in normal operation;
// the scheduler always appends ticks in order).
func (s *Store) Append(id string, b Bucket) bool {
	s.mu.RLock()
	ring, ok := s.rings[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return ring.Append(b)
}

// Ring returns the ring for endpoint id, or nil if unknown.
func (s *Store) Ring(id string) *Ring {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rings[id]
}

// Resize changes every ring's capacity to w, preserving each ring's newest
// buckets — spec.md §4.6: terminal resize tracks W dynamically when
// graph_width is 0.
func (s *Store) Resize(w int) {
	s.mu.Lock()
	s.width = w
	rings := make([]*Ring, 0, len(s.rings))
	for _, r := range s.rings {
		rings = append(rings, r)
	}
	s.mu.Unlock()

	for _, r := range rings {
		r.Resize(w)
	}
}

// Width returns the store's current per-ring capacity.
func (s *Store) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width
}

// Snapshot is a consistent, read-only view of one endpoint's timeline,
// consumed by the dashboard view-model (spec.md §3: "view-model holds only
// read-snapshots").
type Snapshot struct {
	Endpoint   endpoint.Endpoint
	Buckets    []Bucket // oldest -> newest
	Problems   []Problem
	Aggregates Aggregates
}

// Snapshot builds a point-in-time Snapshot for ep from the store's current
// ring contents.
func (s *Store) Snapshot(ep endpoint.Endpoint) Snapshot {
	ring := s.Ring(ep.ID)
	if ring == nil {
		return Snapshot{Endpoint: ep}
	}
	buckets := ring.Snapshot()
	return Snapshot{
		Endpoint:   ep,
		Buckets:    buckets,
		Problems:   ActiveProblems(ring),
		Aggregates: ComputeAggregates(ep, buckets),
	}
}
