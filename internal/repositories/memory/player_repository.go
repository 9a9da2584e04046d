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

// PlayerRepository is an in-memory repositories.PlayerRepository
type PlayerRepository struct {
	mu      sync.RWMutex
	players map[primitive.ObjectID]*models.Player
	seq     *seqTracker
}

// NewPlayerRepository creates a new in-memory PlayerRepository
func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{
		players: make(map[primitive.ObjectID]*models.Player),
		seq:     newSeqTracker(),
	}
}

func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player.ID = primitive.NewObjectID()
	player.CreatedAt = time.Now()
	player.UpdatedAt = player.CreatedAt
	r.seq.assign(player.ID)
	cp := clonePlayer(player)
	r.players[player.ID] = cp
	return nil
}

func (r *PlayerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return clonePlayer(player), nil
}

func (r *PlayerRepository) Update(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrNotFound
	}
	player.UpdatedAt = time.Now()
	r.players[player.ID] = clonePlayer(player)
	return nil
}

func (r *PlayerRepository) FindByCategory(ctx context.Context, category string) ([]*models.Player, error) {
	return r.find(func(p *models.Player) bool { return p.Category == category }), nil
}

func (r *PlayerRepository) FindByCategoryAndStatus(ctx context.Context, category string, status models.PlayerStatus) ([]*models.Player, error) {
	return r.find(func(p *models.Player) bool {
		return p.Category == category && p.Status == status
	}), nil
}

func (r *PlayerRepository) FindAll(ctx context.Context) ([]*models.Player, error) {
	return r.find(func(*models.Player) bool { return true }), nil
}

// find returns players in creation order, the documented cross-item
// tie-break at finalization
func (r *PlayerRepository) find(match func(*models.Player) bool) []*models.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Player{}
	for _, p := range r.players {
		if match(p) {
			out = append(out, clonePlayer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq.of(out[i].ID) < r.seq.of(out[j].ID)
	})
	return out
}

func clonePlayer(p *models.Player) *models.Player {
	cp := *p
	if p.WinningTeamID != nil {
		id := *p.WinningTeamID
		cp.WinningTeamID = &id
	}
	if p.FinalPrice != nil {
		v := *p.FinalPrice
		cp.FinalPrice = &v
	}
	return &cp
}
