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

// BidRepository is an in-memory repositories.BidRepository
type BidRepository struct {
	mu   sync.RWMutex
	bids map[primitive.ObjectID]*models.Bid
	seq  *seqTracker
}

// NewBidRepository creates a new in-memory BidRepository
func NewBidRepository() *BidRepository {
	return &BidRepository{
		bids: make(map[primitive.ObjectID]*models.Bid),
		seq:  newSeqTracker(),
	}
}

func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid.ID = primitive.NewObjectID()
	bid.SubmittedAt = time.Now()
	bid.UpdatedAt = bid.SubmittedAt
	r.seq.assign(bid.ID)
	r.bids[bid.ID] = cloneBid(bid)
	return nil
}

func (r *BidRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bid, ok := r.bids[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneBid(bid), nil
}

func (r *BidRepository) Update(ctx context.Context, bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bids[bid.ID]; !ok {
		return repositories.ErrNotFound
	}
	bid.UpdatedAt = time.Now()
	r.bids[bid.ID] = cloneBid(bid)
	return nil
}

func (r *BidRepository) FindActiveByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Bid, error) {
	return r.find(func(b *models.Bid) bool {
		return b.RoundID == roundID && b.Status == models.BidStatusActive
	}), nil
}

func (r *BidRepository) FindActiveByRoundAndTeam(ctx context.Context, roundID, teamID primitive.ObjectID) ([]*models.Bid, error) {
	return r.find(func(b *models.Bid) bool {
		return b.RoundID == roundID && b.TeamID == teamID && b.Status == models.BidStatusActive
	}), nil
}

func (r *BidRepository) FindActiveByPlayerAndRound(ctx context.Context, playerID, roundID primitive.ObjectID) ([]*models.Bid, error) {
	return r.find(func(b *models.Bid) bool {
		return b.PlayerID == playerID && b.RoundID == roundID && b.Status == models.BidStatusActive
	}), nil
}

func (r *BidRepository) FindActiveByPlayerRoundTeam(ctx context.Context, playerID, roundID, teamID primitive.ObjectID) (*models.Bid, error) {
	matches := r.find(func(b *models.Bid) bool {
		return b.PlayerID == playerID && b.RoundID == roundID && b.TeamID == teamID &&
			b.Status == models.BidStatusActive
	})
	if len(matches) == 0 {
		return nil, repositories.ErrNotFound
	}
	return matches[0], nil
}

// find returns bids in submission order
func (r *BidRepository) find(match func(*models.Bid) bool) []*models.Bid {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Bid{}
	for _, b := range r.bids {
		if match(b) {
			out = append(out, cloneBid(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq.of(out[i].ID) < r.seq.of(out[j].ID)
	})
	return out
}

func cloneBid(b *models.Bid) *models.Bid {
	cp := *b
	if b.SupersededBy != nil {
		id := *b.SupersededBy
		cp.SupersededBy = &id
	}
	return &cp
}
