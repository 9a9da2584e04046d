package services

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundLocks serializes round mutation. Bid submission, update and
// withdrawal hold the read lock for their round; finalization holds the
// write lock, which is the single-writer discipline the engine requires.
// Locks are created lazily and never removed — the number of rounds over a
// season is tiny.
type RoundLocks struct {
	locks sync.Map // primitive.ObjectID -> *sync.RWMutex
}

// NewRoundLocks creates a RoundLocks registry shared by the engine services
func NewRoundLocks() *RoundLocks {
	return &RoundLocks{}
}

// Get returns the lock for a round, creating it on first use
func (r *RoundLocks) Get(roundID primitive.ObjectID) *sync.RWMutex {
	if mu, ok := r.locks.Load(roundID); ok {
		return mu.(*sync.RWMutex)
	}
	mu, _ := r.locks.LoadOrStore(roundID, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}
