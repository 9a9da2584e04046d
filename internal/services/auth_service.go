package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"github.com/leaguehq/auction-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl handles team registration and login
type AuthServiceImpl struct {
	teamRepo repositories.TeamRepository
	cfg      *config.Config
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(teamRepo repositories.TeamRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{teamRepo: teamRepo, cfg: cfg}
}

// Register creates a team account with the configured starting budget
func (s *AuthServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.Team, error) {
	existing, err := s.teamRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing team: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	team := &models.Team{
		Name:            req.Name,
		Email:           req.Email,
		Password:        string(hash),
		Role:            models.RoleTeam,
		BudgetInitial:   s.cfg.Auction.InitialBudget,
		BudgetRemaining: s.cfg.Auction.InitialBudget,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	slog.Info("Team registered", "teamId", team.ID.Hex(), "name", team.Name)
	return team, nil
}

// Login verifies credentials and issues a JWT
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	team, err := s.teamRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(team.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(team.ID.Hex(), team.Role, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.LoginResponse{Token: token, Team: team}, nil
}
