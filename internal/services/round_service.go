package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RoundServiceImpl implements RoundService
var _ RoundService = (*RoundServiceImpl)(nil)

// RoundServiceImpl drives the round lifecycle. Lifecycle transitions are
// serialized per category by openMu, and CloseRound holds the round's write
// lock for the whole finalization so no bid mutation can interleave.
type RoundServiceImpl struct {
	roundRepo    repositories.RoundRepository
	categoryRepo repositories.CategoryRepository
	allocRepo    repositories.AllocationRepository
	finalizer    *FinalizationService
	locks        *RoundLocks
	cfg          config.AuctionConfig
	openMu       keyedMutex
}

// NewRoundService creates a new RoundServiceImpl
func NewRoundService(
	roundRepo repositories.RoundRepository,
	categoryRepo repositories.CategoryRepository,
	allocRepo repositories.AllocationRepository,
	finalizer *FinalizationService,
	locks *RoundLocks,
	cfg config.AuctionConfig,
) *RoundServiceImpl {
	return &RoundServiceImpl{
		roundRepo:    roundRepo,
		categoryRepo: categoryRepo,
		allocRepo:    allocRepo,
		finalizer:    finalizer,
		locks:        locks,
		cfg:          cfg,
	}
}

// OpenRound opens a new bidding round for a category. If the category still
// has an open round, that round is closed and finalized first, so at most
// one round per category accepts bids at any time.
func (s *RoundServiceImpl) OpenRound(ctx context.Context, category string, closesAt time.Time, maxBidsPerTeam int) (*models.Round, error) {
	if maxBidsPerTeam <= 0 {
		return nil, ErrBadAmount
	}
	now := time.Now()
	if closesAt.IsZero() {
		closesAt = now.Add(time.Duration(s.cfg.DefaultRoundSeconds) * time.Second)
	}
	if !closesAt.After(now) {
		return nil, ErrBadAmount
	}

	mu := s.openMu.get(category)
	mu.Lock()
	defer mu.Unlock()

	cat, err := s.categoryRepo.FindByName(ctx, category)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if cat != nil && cat.OpenRoundID != nil {
		prior, err := s.roundRepo.FindByID(ctx, *cat.OpenRoundID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to load prior round: %w", err)
		}
		if prior != nil {
			switch prior.Status {
			case models.RoundStatusOpen:
				slog.Info("Closing prior open round before opening a new one",
					"category", category, "priorRoundId", prior.ID.Hex())
				if err := s.CloseRound(ctx, prior.ID); err != nil {
					return nil, fmt.Errorf("failed to close prior round: %w", err)
				}
			case models.RoundStatusClosing:
				// A finalization is in flight (or crashed); it must finish
				// before the category can open again
				return nil, ErrCategoryRoundOpen
			}
		}
	}

	round := &models.Round{
		Category:       category,
		Status:         models.RoundStatusOpen,
		OpensAt:        now,
		ClosesAt:       closesAt,
		MaxBidsPerTeam: maxBidsPerTeam,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	if err := s.categoryRepo.SetOpenRound(ctx, category, &round.ID); err != nil {
		return nil, fmt.Errorf("failed to set open round pointer: %w", err)
	}

	slog.Info("Round opened", "roundId", round.ID.Hex(), "category", category,
		"closesAt", closesAt, "maxBidsPerTeam", maxBidsPerTeam)
	return round, nil
}

// ExtendRound pushes an open round's closing time out. The new deadline must
// be in the future by at least the configured minimum, and extensions never
// shrink the window.
func (s *RoundServiceImpl) ExtendRound(ctx context.Context, roundID primitive.ObjectID, closesAt time.Time) (*models.Round, error) {
	mu := s.locks.Get(roundID)
	mu.RLock()
	defer mu.RUnlock()

	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	if round.Status != models.RoundStatusOpen {
		return nil, ErrRoundNotOpen
	}
	if closesAt.Sub(round.ClosesAt) < time.Duration(s.cfg.MinExtensionSeconds)*time.Second {
		return nil, ErrExtensionTooShort
	}

	round.ClosesAt = closesAt
	if err := s.roundRepo.Update(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to extend round: %w", err)
	}
	slog.Info("Round extended", "roundId", roundID.Hex(), "closesAt", closesAt)
	return round, nil
}

// CloseRound moves a round OPEN -> CLOSING -> FINALIZED, running the
// finalization pipeline under the round's write lock. It is idempotent: a
// finalized or cancelled round is a no-op, and a round stuck in CLOSING
// (crashed mid-finalization) is picked up and re-run.
func (s *RoundServiceImpl) CloseRound(ctx context.Context, roundID primitive.ObjectID) error {
	mu := s.locks.Get(roundID)
	mu.Lock()
	defer mu.Unlock()

	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to load round: %w", err)
	}

	switch round.Status {
	case models.RoundStatusFinalized, models.RoundStatusCancelled:
		return nil
	case models.RoundStatusOpen:
		if err := s.roundRepo.TransitionStatus(ctx, roundID, models.RoundStatusOpen, models.RoundStatusClosing); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil // lost the race to another closer
			}
			return fmt.Errorf("failed to transition round to closing: %w", err)
		}
		round.Status = models.RoundStatusClosing
	case models.RoundStatusClosing:
		slog.Warn("Re-running finalization for round stuck in closing", "roundId", roundID.Hex())
	default:
		return ErrRoundNotOpen
	}

	// Once closing, the category may open its next round
	if err := s.categoryRepo.SetOpenRound(ctx, round.Category, nil); err != nil {
		return fmt.Errorf("failed to clear open round pointer: %w", err)
	}

	if err := s.finalizer.FinalizeRound(ctx, round); err != nil {
		round.ErrorMessage = err.Error()
		if uerr := s.roundRepo.Update(ctx, round); uerr != nil {
			slog.Error("Failed to record finalization error", "error", uerr, "roundId", roundID.Hex())
		}
		slog.Error("Finalization failed; round left in closing for retry", "error", err, "roundId", roundID.Hex())
		return fmt.Errorf("finalization failed: %w", err)
	}

	if err := s.roundRepo.TransitionStatus(ctx, roundID, models.RoundStatusClosing, models.RoundStatusFinalized); err != nil {
		return fmt.Errorf("failed to transition round to finalized: %w", err)
	}
	slog.Info("Round finalized", "roundId", roundID.Hex(), "category", round.Category)
	return nil
}

// CancelRound voids an open round without allocating anything. Bids stay as
// historical rows; no budgets were touched since debits only happen at
// finalization.
func (s *RoundServiceImpl) CancelRound(ctx context.Context, roundID primitive.ObjectID) error {
	mu := s.locks.Get(roundID)
	mu.Lock()
	defer mu.Unlock()

	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to load round: %w", err)
	}
	if round.Status == models.RoundStatusCancelled {
		return nil
	}
	if round.Status != models.RoundStatusOpen {
		return ErrRoundNotOpen
	}

	if err := s.roundRepo.TransitionStatus(ctx, roundID, models.RoundStatusOpen, models.RoundStatusCancelled); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRoundNotOpen
		}
		return fmt.Errorf("failed to cancel round: %w", err)
	}
	if err := s.categoryRepo.SetOpenRound(ctx, round.Category, nil); err != nil {
		return fmt.Errorf("failed to clear open round pointer: %w", err)
	}
	slog.Info("Round cancelled", "roundId", roundID.Hex(), "category", round.Category)
	return nil
}

// CloseDueRounds closes every open round whose deadline has passed. Meant to
// be driven by a ticker in the server process.
func (s *RoundServiceImpl) CloseDueRounds(ctx context.Context) error {
	open, err := s.roundRepo.FindByStatus(ctx, models.RoundStatusOpen)
	if err != nil {
		return fmt.Errorf("failed to load open rounds: %w", err)
	}
	now := time.Now()
	for _, round := range open {
		if round.ClosesAt.After(now) {
			continue
		}
		if err := s.CloseRound(ctx, round.ID); err != nil {
			slog.Error("Scheduled close failed", "error", err, "roundId", round.ID.Hex())
		}
	}
	return nil
}

// GetRound returns one round
func (s *RoundServiceImpl) GetRound(ctx context.Context, roundID primitive.ObjectID) (*models.Round, error) {
	return s.roundRepo.FindByID(ctx, roundID)
}

// ListRounds returns all rounds, optionally filtered by category
func (s *RoundServiceImpl) ListRounds(ctx context.Context, category string) ([]*models.Round, error) {
	if category != "" {
		return s.roundRepo.FindByCategory(ctx, category)
	}
	return s.roundRepo.FindAll(ctx)
}

// RoundAllocations returns the allocations committed for a round
func (s *RoundServiceImpl) RoundAllocations(ctx context.Context, roundID primitive.ObjectID) ([]*models.Allocation, error) {
	return s.allocRepo.FindByRound(ctx, roundID)
}

// keyedMutex hands out one mutex per category, serializing round opening
type keyedMutex struct {
	mus sync.Map // string -> *sync.Mutex
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	if mu, ok := k.mus.Load(key); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
