// Package memory provides in-memory implementations of the repository
// interfaces. They back the engine tests and mirror the MongoDB
// implementations' semantics, including the conditional budget updates.
package memory

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// seqTracker hands out insertion sequence numbers so that records created
// within the same clock tick still sort deterministically.
type seqTracker struct {
	mu   sync.Mutex
	next int64
	seqs map[primitive.ObjectID]int64
}

func newSeqTracker() *seqTracker {
	return &seqTracker{seqs: make(map[primitive.ObjectID]int64)}
}

func (s *seqTracker) assign(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.seqs[id] = s.next
}

func (s *seqTracker) of(id primitive.ObjectID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[id]
}
