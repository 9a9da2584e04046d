package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure BidServiceImpl implements BidService
var _ BidService = (*BidServiceImpl)(nil)

// BidServiceImpl is the bid ledger: an append-only store of bid rows with
// derived "current highest" reads. All mutations hold the round's read lock
// so they can run concurrently with each other but never interleave with
// finalization.
type BidServiceImpl struct {
	roundRepo  repositories.RoundRepository
	playerRepo repositories.PlayerRepository
	bidRepo    repositories.BidRepository
	teamRepo   repositories.TeamRepository
	locks      *RoundLocks
}

// NewBidService creates a new BidServiceImpl
func NewBidService(
	roundRepo repositories.RoundRepository,
	playerRepo repositories.PlayerRepository,
	bidRepo repositories.BidRepository,
	teamRepo repositories.TeamRepository,
	locks *RoundLocks,
) *BidServiceImpl {
	return &BidServiceImpl{
		roundRepo:  roundRepo,
		playerRepo: playerRepo,
		bidRepo:    bidRepo,
		teamRepo:   teamRepo,
		locks:      locks,
	}
}

// PlaceBid validates and records a sealed bid, superseding any prior active
// bid by the same team on the same player in this round.
func (s *BidServiceImpl) PlaceBid(ctx context.Context, playerID, roundID, teamID primitive.ObjectID, amount int64) (*models.Bid, error) {
	if amount <= 0 {
		return nil, ErrBadAmount
	}

	mu := s.locks.Get(roundID)
	mu.RLock()
	defer mu.RUnlock()

	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	if err := requireOpen(round); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	if player.Category != round.Category {
		return nil, ErrCategoryMismatch
	}
	if player.Status != models.PlayerStatusAvailable {
		return nil, ErrPlayerNotAvailable
	}

	existing, err := s.bidRepo.FindActiveByPlayerRoundTeam(ctx, playerID, roundID, teamID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing bid: %w", err)
	}

	// The floor only gates a team's first bid on the player this round
	if existing == nil && amount < player.FloorPrice {
		return nil, ErrBelowFloor
	}

	teamBids, err := s.bidRepo.FindActiveByRoundAndTeam(ctx, roundID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team bids: %w", err)
	}
	for _, b := range teamBids {
		// Amounts must be unique per team per round across players so that
		// finalization ties are never ambiguous
		if b.PlayerID != playerID && b.Amount == amount {
			return nil, ErrDuplicateAmount
		}
	}
	if existing == nil && len(teamBids) >= round.MaxBidsPerTeam {
		return nil, ErrTooManyBids
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if amount > team.BudgetRemaining {
		return nil, ErrInsufficientBudget
	}

	bid := &models.Bid{
		PlayerID: playerID,
		RoundID:  roundID,
		TeamID:   teamID,
		Amount:   amount,
		Status:   models.BidStatusActive,
	}
	if err := s.bidRepo.Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	if existing != nil {
		existing.Status = models.BidStatusSuperseded
		existing.SupersededBy = &bid.ID
		if err := s.bidRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to supersede prior bid: %w", err)
		}
		slog.Info("Bid updated", "bidId", bid.ID.Hex(), "supersedes", existing.ID.Hex(),
			"playerId", playerID.Hex(), "teamId", teamID.Hex(), "amount", amount)
	} else {
		slog.Info("Bid placed", "bidId", bid.ID.Hex(), "playerId", playerID.Hex(),
			"roundId", roundID.Hex(), "teamId", teamID.Hex(), "amount", amount)
	}
	return bid, nil
}

// WithdrawBid voids the team's active bid on a player. The displayed
// current highest is derived, so it recomputes on the next read.
func (s *BidServiceImpl) WithdrawBid(ctx context.Context, playerID, roundID, teamID primitive.ObjectID) error {
	mu := s.locks.Get(roundID)
	mu.RLock()
	defer mu.RUnlock()

	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to load round: %w", err)
	}
	if err := requireOpen(round); err != nil {
		return err
	}

	existing, err := s.bidRepo.FindActiveByPlayerRoundTeam(ctx, playerID, roundID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoActiveBid
		}
		return fmt.Errorf("failed to load active bid: %w", err)
	}

	existing.Status = models.BidStatusVoid
	if err := s.bidRepo.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to void bid: %w", err)
	}
	slog.Info("Bid withdrawn", "bidId", existing.ID.Hex(), "playerId", playerID.Hex(),
		"teamId", teamID.Hex())
	return nil
}

// CurrentHighest returns the highest active bid for a player in a round, or
// nil when there is none. Ties go to the earliest submission for display
// purposes only; finalization re-derives ties independently.
func (s *BidServiceImpl) CurrentHighest(ctx context.Context, playerID, roundID primitive.ObjectID) (*models.Bid, error) {
	bids, err := s.bidRepo.FindActiveByPlayerAndRound(ctx, playerID, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bids: %w", err)
	}
	var highest *models.Bid
	for _, b := range bids {
		// Bids arrive in submission order, so strictly-greater keeps the
		// earliest bid on ties
		if highest == nil || b.Amount > highest.Amount {
			highest = b
		}
	}
	return highest, nil
}

// TeamActiveBids returns a team's active bids in a round
func (s *BidServiceImpl) TeamActiveBids(ctx context.Context, teamID, roundID primitive.ObjectID) ([]*models.Bid, error) {
	return s.bidRepo.FindActiveByRoundAndTeam(ctx, roundID, teamID)
}

// requireOpen maps a round's status to the bid-mutation error contract:
// closing and finalized rounds fail fast with ErrRoundClosed, anything else
// that is not open fails with ErrRoundNotOpen.
func requireOpen(round *models.Round) error {
	switch round.Status {
	case models.RoundStatusOpen:
		return nil
	case models.RoundStatusClosing, models.RoundStatusFinalized:
		return ErrRoundClosed
	default:
		return ErrRoundNotOpen
	}
}
