package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories/memory"
	"github.com/leaguehq/auction-backend/internal/services"
	"github.com/stretchr/testify/require"
)

const testBudget int64 = 1000

// fixture wires the engine services over in-memory repositories
type fixture struct {
	ctx        context.Context
	roundRepo  *memory.RoundRepository
	catRepo    *memory.CategoryRepository
	playerRepo *memory.PlayerRepository
	bidRepo    *memory.BidRepository
	teamRepo   *memory.TeamRepository
	tbRepo     *memory.TiebreakerRepository
	allocRepo  *memory.AllocationRepository
	budget     services.BudgetService
	bids       services.BidService
	rounds     services.RoundService
	tiebreaks  services.TiebreakerService
	cfg        *config.Config
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()
	f := &fixture{
		ctx:        context.Background(),
		roundRepo:  memory.NewRoundRepository(),
		catRepo:    memory.NewCategoryRepository(),
		playerRepo: memory.NewPlayerRepository(),
		bidRepo:    memory.NewBidRepository(),
		teamRepo:   memory.NewTeamRepository(),
		tbRepo:     memory.NewTiebreakerRepository(),
		allocRepo:  memory.NewAllocationRepository(),
	}
	f.cfg = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiresIn: 3600},
		Auction: config.AuctionConfig{
			DefaultRoundSeconds: 3600,
			MinExtensionSeconds: 60,
			InitialBudget:       testBudget,
			ShortfallAllocation: true,
		},
	}
	for _, opt := range opts {
		opt(f.cfg)
	}

	locks := services.NewRoundLocks()
	f.budget = services.NewBudgetService(f.teamRepo)
	finalizer := services.NewFinalizationService(f.roundRepo, f.playerRepo, f.bidRepo, f.tbRepo, f.allocRepo, f.budget, locks, f.cfg.Auction)
	f.bids = services.NewBidService(f.roundRepo, f.playerRepo, f.bidRepo, f.teamRepo, locks)
	f.rounds = services.NewRoundService(f.roundRepo, f.catRepo, f.allocRepo, finalizer, locks, f.cfg.Auction)
	f.tiebreaks = services.NewTiebreakerService(f.tbRepo, f.teamRepo, finalizer)
	return f
}

func (f *fixture) team(t *testing.T, name string) *models.Team {
	t.Helper()
	team := &models.Team{
		Name:            name,
		Email:           name + "@example.com",
		Role:            models.RoleTeam,
		BudgetInitial:   testBudget,
		BudgetRemaining: testBudget,
	}
	require.NoError(t, f.teamRepo.Create(f.ctx, team))
	return team
}

func (f *fixture) player(t *testing.T, name, category string, floor int64) *models.Player {
	t.Helper()
	player := &models.Player{
		Name:       name,
		Category:   category,
		Status:     models.PlayerStatusAvailable,
		FloorPrice: floor,
	}
	require.NoError(t, f.playerRepo.Create(f.ctx, player))
	return player
}

func (f *fixture) openRound(t *testing.T, category string, maxBids int) *models.Round {
	t.Helper()
	round, err := f.rounds.OpenRound(f.ctx, category, time.Now().Add(time.Hour), maxBids)
	require.NoError(t, err)
	return round
}

func (f *fixture) mustBid(t *testing.T, player *models.Player, round *models.Round, team *models.Team, amount int64) *models.Bid {
	t.Helper()
	bid, err := f.bids.PlaceBid(f.ctx, player.ID, round.ID, team.ID, amount)
	require.NoError(t, err)
	return bid
}

func (f *fixture) remaining(t *testing.T, team *models.Team) int64 {
	t.Helper()
	remaining, err := f.budget.Remaining(f.ctx, team.ID)
	require.NoError(t, err)
	return remaining
}

func (f *fixture) reloadPlayer(t *testing.T, player *models.Player) *models.Player {
	t.Helper()
	p, err := f.playerRepo.FindByID(f.ctx, player.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) reloadBid(t *testing.T, bid *models.Bid) *models.Bid {
	t.Helper()
	b, err := f.bidRepo.FindByID(f.ctx, bid.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) activeTiebreaker(t *testing.T, round *models.Round) *models.Tiebreaker {
	t.Helper()
	tbs, err := f.tbRepo.FindByRound(f.ctx, round.ID)
	require.NoError(t, err)
	for _, tb := range tbs {
		if tb.Status == models.TiebreakerStatusActive {
			return tb
		}
	}
	t.Fatal("no active tiebreaker for round")
	return nil
}
