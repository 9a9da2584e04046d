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

// RoundRepository is an in-memory repositories.RoundRepository
type RoundRepository struct {
	mu     sync.RWMutex
	rounds map[primitive.ObjectID]*models.Round
	seq    *seqTracker
}

// NewRoundRepository creates a new in-memory RoundRepository
func NewRoundRepository() *RoundRepository {
	return &RoundRepository{
		rounds: make(map[primitive.ObjectID]*models.Round),
		seq:    newSeqTracker(),
	}
}

func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	round.ID = primitive.NewObjectID()
	round.CreatedAt = time.Now()
	round.UpdatedAt = round.CreatedAt
	r.seq.assign(round.ID)
	cp := *round
	r.rounds[round.ID] = &cp
	return nil
}

func (r *RoundRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	round, ok := r.rounds[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *round
	return &cp, nil
}

func (r *RoundRepository) Update(ctx context.Context, round *models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rounds[round.ID]; !ok {
		return repositories.ErrNotFound
	}
	round.UpdatedAt = time.Now()
	cp := *round
	r.rounds[round.ID] = &cp
	return nil
}

func (r *RoundRepository) FindByCategory(ctx context.Context, category string) ([]*models.Round, error) {
	return r.find(func(rd *models.Round) bool { return rd.Category == category }), nil
}

func (r *RoundRepository) FindByStatus(ctx context.Context, status models.RoundStatus) ([]*models.Round, error) {
	return r.find(func(rd *models.Round) bool { return rd.Status == status }), nil
}

func (r *RoundRepository) FindAll(ctx context.Context) ([]*models.Round, error) {
	return r.find(func(*models.Round) bool { return true }), nil
}

func (r *RoundRepository) find(match func(*models.Round) bool) []*models.Round {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Round{}
	for _, rd := range r.rounds {
		if match(rd) {
			cp := *rd
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpensAt.Equal(out[j].OpensAt) {
			return out[i].OpensAt.After(out[j].OpensAt)
		}
		return r.seq.of(out[i].ID) > r.seq.of(out[j].ID)
	})
	return out
}

func (r *RoundRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.RoundStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	round, ok := r.rounds[id]
	if !ok || round.Status != from {
		return repositories.ErrNotFound
	}
	round.Status = to
	round.UpdatedAt = time.Now()
	return nil
}

func (r *RoundRepository) AppendExecutionLog(ctx context.Context, id primitive.ObjectID, entries []string) error {
	if len(entries) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	round, ok := r.rounds[id]
	if !ok {
		return repositories.ErrNotFound
	}
	round.ExecutionLog = append(round.ExecutionLog, entries...)
	round.UpdatedAt = time.Now()
	return nil
}

// CategoryRepository is an in-memory repositories.CategoryRepository
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*models.Category
}

// NewCategoryRepository creates a new in-memory CategoryRepository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]*models.Category)}
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.categories[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *cat
	return &cp, nil
}

func (r *CategoryRepository) SetOpenRound(ctx context.Context, name string, roundID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.categories[name]
	if !ok {
		cat = &models.Category{Name: name}
		r.categories[name] = cat
	}
	if roundID == nil {
		cat.OpenRoundID = nil
	} else {
		id := *roundID
		cat.OpenRoundID = &id
	}
	cat.UpdatedAt = time.Now()
	return nil
}
