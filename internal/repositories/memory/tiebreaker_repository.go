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

// TiebreakerRepository is an in-memory repositories.TiebreakerRepository
type TiebreakerRepository struct {
	mu          sync.RWMutex
	tiebreakers map[primitive.ObjectID]*models.Tiebreaker
	seq         *seqTracker
}

// NewTiebreakerRepository creates a new in-memory TiebreakerRepository
func NewTiebreakerRepository() *TiebreakerRepository {
	return &TiebreakerRepository{
		tiebreakers: make(map[primitive.ObjectID]*models.Tiebreaker),
		seq:         newSeqTracker(),
	}
}

func (r *TiebreakerRepository) Create(ctx context.Context, tb *models.Tiebreaker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tb.ID = primitive.NewObjectID()
	tb.CreatedAt = time.Now()
	tb.UpdatedAt = tb.CreatedAt
	r.seq.assign(tb.ID)
	r.tiebreakers[tb.ID] = cloneTiebreaker(tb)
	return nil
}

func (r *TiebreakerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tiebreaker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tb, ok := r.tiebreakers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneTiebreaker(tb), nil
}

func (r *TiebreakerRepository) Update(ctx context.Context, tb *models.Tiebreaker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tiebreakers[tb.ID]; !ok {
		return repositories.ErrNotFound
	}
	tb.UpdatedAt = time.Now()
	r.tiebreakers[tb.ID] = cloneTiebreaker(tb)
	return nil
}

func (r *TiebreakerRepository) FindByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Tiebreaker, error) {
	return r.find(func(tb *models.Tiebreaker) bool { return tb.RoundID == roundID }), nil
}

func (r *TiebreakerRepository) FindActiveByTeam(ctx context.Context, teamID primitive.ObjectID) ([]*models.Tiebreaker, error) {
	return r.find(func(tb *models.Tiebreaker) bool {
		return tb.Status == models.TiebreakerStatusActive && tb.Participant(teamID) != nil
	}), nil
}

func (r *TiebreakerRepository) find(match func(*models.Tiebreaker) bool) []*models.Tiebreaker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Tiebreaker{}
	for _, tb := range r.tiebreakers {
		if match(tb) {
			out = append(out, cloneTiebreaker(tb))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq.of(out[i].ID) > r.seq.of(out[j].ID)
	})
	return out
}

func cloneTiebreaker(tb *models.Tiebreaker) *models.Tiebreaker {
	cp := *tb
	cp.Participants = make([]models.TiebreakerParticipant, len(tb.Participants))
	for i, p := range tb.Participants {
		cp.Participants[i] = p
		if p.RaiseAmount != nil {
			v := *p.RaiseAmount
			cp.Participants[i].RaiseAmount = &v
		}
	}
	if tb.WinnerTeamID != nil {
		id := *tb.WinnerTeamID
		cp.WinnerTeamID = &id
	}
	if tb.WinningAmount != nil {
		v := *tb.WinningAmount
		cp.WinningAmount = &v
	}
	if tb.SuccessorID != nil {
		id := *tb.SuccessorID
		cp.SuccessorID = &id
	}
	return &cp
}
