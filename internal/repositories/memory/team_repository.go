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

// TeamRepository is an in-memory repositories.TeamRepository
type TeamRepository struct {
	mu    sync.RWMutex
	teams map[primitive.ObjectID]*models.Team
}

// NewTeamRepository creates a new in-memory TeamRepository
func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[primitive.ObjectID]*models.Team)}
}

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.ID = primitive.NewObjectID()
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	cp := *team
	r.teams[team.ID] = &cp
	return nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *team
	return &cp, nil
}

func (r *TeamRepository) FindByEmail(ctx context.Context, email string) (*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, team := range r.teams {
		if team.Email == email {
			cp := *team
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *TeamRepository) FindAll(ctx context.Context) ([]*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Team{}
	for _, team := range r.teams {
		cp := *team
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) DebitBudget(ctx context.Context, id primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if team.BudgetRemaining < amount {
		return repositories.ErrOverdraft
	}
	team.BudgetRemaining -= amount
	team.UpdatedAt = time.Now()
	return nil
}

func (r *TeamRepository) CreditBudget(ctx context.Context, id primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrNotFound
	}
	team.BudgetRemaining += amount
	if team.BudgetRemaining > team.BudgetInitial {
		team.BudgetRemaining = team.BudgetInitial
	}
	team.UpdatedAt = time.Now()
	return nil
}
