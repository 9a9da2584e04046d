package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllocationRepository is an in-memory repositories.AllocationRepository
type AllocationRepository struct {
	mu          sync.RWMutex
	allocations map[primitive.ObjectID]*models.Allocation
	seq         *seqTracker
}

// NewAllocationRepository creates a new in-memory AllocationRepository
func NewAllocationRepository() *AllocationRepository {
	return &AllocationRepository{
		allocations: make(map[primitive.ObjectID]*models.Allocation),
		seq:         newSeqTracker(),
	}
}

func (r *AllocationRepository) Create(ctx context.Context, alloc *models.Allocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	alloc.ID = primitive.NewObjectID()
	alloc.CreatedAt = time.Now()
	r.seq.assign(alloc.ID)
	cp := *alloc
	r.allocations[alloc.ID] = &cp
	return nil
}

func (r *AllocationRepository) FindByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Allocation, error) {
	return r.find(func(a *models.Allocation) bool { return a.RoundID == roundID }), nil
}

func (r *AllocationRepository) FindByRoundAndPlayer(ctx context.Context, roundID, playerID primitive.ObjectID) (*models.Allocation, error) {
	matches := r.find(func(a *models.Allocation) bool {
		return a.RoundID == roundID && a.PlayerID == playerID
	})
	if len(matches) == 0 {
		return nil, repositories.ErrNotFound
	}
	return matches[0], nil
}

func (r *AllocationRepository) FindByTeam(ctx context.Context, teamID primitive.ObjectID) ([]*models.Allocation, error) {
	return r.find(func(a *models.Allocation) bool { return a.TeamID == teamID }), nil
}

func (r *AllocationRepository) DeleteByRoundAndPlayer(ctx context.Context, roundID, playerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.allocations {
		if a.RoundID == roundID && a.PlayerID == playerID {
			delete(r.allocations, id)
			return nil
		}
	}
	return nil
}

func (r *AllocationRepository) find(match func(*models.Allocation) bool) []*models.Allocation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Allocation{}
	for _, a := range r.allocations {
		if match(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq.of(out[i].ID) < r.seq.of(out[j].ID)
	})
	return out
}
