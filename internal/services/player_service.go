package services

import (
	"context"
	"fmt"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PlayerServiceImpl implements PlayerService
var _ PlayerService = (*PlayerServiceImpl)(nil)

// PlayerServiceImpl manages the auctionable player pool
type PlayerServiceImpl struct {
	playerRepo repositories.PlayerRepository
}

// NewPlayerService creates a new PlayerServiceImpl
func NewPlayerService(playerRepo repositories.PlayerRepository) *PlayerServiceImpl {
	return &PlayerServiceImpl{playerRepo: playerRepo}
}

// CreatePlayer adds a player to the pool in the available state
func (s *PlayerServiceImpl) CreatePlayer(ctx context.Context, name, category string, floorPrice int64) (*models.Player, error) {
	if name == "" || category == "" || floorPrice < 0 {
		return nil, ErrBadAmount
	}
	player := &models.Player{
		Name:       name,
		Category:   category,
		Status:     models.PlayerStatusAvailable,
		FloorPrice: floorPrice,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	slog.Info("Player created", "playerId", player.ID.Hex(), "name", name,
		"category", category, "floorPrice", floorPrice)
	return player, nil
}

// GetPlayer returns one player
func (s *PlayerServiceImpl) GetPlayer(ctx context.Context, playerID primitive.ObjectID) (*models.Player, error) {
	return s.playerRepo.FindByID(ctx, playerID)
}

// ListPlayers returns players, optionally filtered by category
func (s *PlayerServiceImpl) ListPlayers(ctx context.Context, category string) ([]*models.Player, error) {
	if category != "" {
		return s.playerRepo.FindByCategory(ctx, category)
	}
	return s.playerRepo.FindAll(ctx)
}
