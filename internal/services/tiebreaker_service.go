package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TiebreakerServiceImpl implements TiebreakerService
var _ TiebreakerService = (*TiebreakerServiceImpl)(nil)

// TiebreakerServiceImpl runs the constrained sub-auctions spawned by
// finalization ties. Each participant acts at most once: a single raise
// strictly above the tied amount, or a concession. The sub-auction
// auto-resolves as soon as the outcome is determined.
type TiebreakerServiceImpl struct {
	tbRepo    repositories.TiebreakerRepository
	teamRepo  repositories.TeamRepository
	finalizer *FinalizationService
	mu        keyedMutex // keyed by tiebreaker ID hex
}

// NewTiebreakerService creates a new TiebreakerServiceImpl
func NewTiebreakerService(
	tbRepo repositories.TiebreakerRepository,
	teamRepo repositories.TeamRepository,
	finalizer *FinalizationService,
) *TiebreakerServiceImpl {
	return &TiebreakerServiceImpl{
		tbRepo:    tbRepo,
		teamRepo:  teamRepo,
		finalizer: finalizer,
	}
}

// SubmitRaise records a participant's one-shot raise above the tied amount
func (s *TiebreakerServiceImpl) SubmitRaise(ctx context.Context, tbID, teamID primitive.ObjectID, amount int64) (*models.Tiebreaker, error) {
	mu := s.mu.get(tbID.Hex())
	mu.Lock()
	defer mu.Unlock()

	tb, err := s.tbRepo.FindByID(ctx, tbID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiebreaker: %w", err)
	}
	if tb.Status != models.TiebreakerStatusActive {
		return nil, ErrTiebreakerNotActive
	}
	p := tb.Participant(teamID)
	if p == nil {
		return nil, ErrNotParticipant
	}
	if p.Conceded {
		return nil, ErrAlreadyConceded
	}
	if p.RaiseAmount != nil {
		return nil, ErrAlreadyRaised
	}
	if amount <= tb.TiedAmount {
		return nil, ErrRaiseTooLow
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if amount > team.BudgetRemaining {
		return nil, ErrInsufficientBudget
	}

	raise := amount
	p.RaiseAmount = &raise
	p.ActedAt = time.Now()
	if err := s.tbRepo.Update(ctx, tb); err != nil {
		return nil, fmt.Errorf("failed to record raise: %w", err)
	}
	slog.Info("Tiebreaker raise submitted", "tiebreakerId", tbID.Hex(),
		"teamId", teamID.Hex(), "amount", amount)

	if err := s.maybeResolve(ctx, tb); err != nil {
		return nil, err
	}
	return tb, nil
}

// Concede drops a participant out of the sub-auction. Repeating a concession
// is a no-op so scheduler-driven retries stay safe.
func (s *TiebreakerServiceImpl) Concede(ctx context.Context, tbID, teamID primitive.ObjectID) (*models.Tiebreaker, error) {
	mu := s.mu.get(tbID.Hex())
	mu.Lock()
	defer mu.Unlock()

	tb, err := s.tbRepo.FindByID(ctx, tbID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiebreaker: %w", err)
	}
	if tb.Status != models.TiebreakerStatusActive {
		return nil, ErrTiebreakerNotActive
	}
	p := tb.Participant(teamID)
	if p == nil {
		return nil, ErrNotParticipant
	}
	if p.Conceded {
		return tb, nil
	}
	if p.RaiseAmount != nil {
		return nil, ErrAlreadyRaised
	}

	p.Conceded = true
	p.ActedAt = time.Now()
	if err := s.tbRepo.Update(ctx, tb); err != nil {
		return nil, fmt.Errorf("failed to record concession: %w", err)
	}
	slog.Info("Tiebreaker concession", "tiebreakerId", tbID.Hex(), "teamId", teamID.Hex())

	if err := s.maybeResolve(ctx, tb); err != nil {
		return nil, err
	}
	return tb, nil
}

// maybeResolve settles the tiebreaker once the outcome is determined:
//   - no participants left: cancel and return the player to the pool
//   - one participant left: they win at their raise, or at the tied amount
//     if everyone else conceded before they acted
//   - everyone acted: the unique highest raise wins; tied highest raises
//     spawn a successor tiebreaker at the raised amount
func (s *TiebreakerServiceImpl) maybeResolve(ctx context.Context, tb *models.Tiebreaker) error {
	remaining := tb.Remaining()

	if len(remaining) == 0 {
		tb.Status = models.TiebreakerStatusCancelled
		now := time.Now()
		tb.ResolvedAt = now
		if err := s.tbRepo.Update(ctx, tb); err != nil {
			return fmt.Errorf("failed to cancel tiebreaker: %w", err)
		}
		slog.Info("Tiebreaker cancelled: all participants conceded", "tiebreakerId", tb.ID.Hex())
		return s.finalizer.ReleaseTiebreakerPlayer(ctx, tb)
	}

	if len(remaining) == 1 {
		winner := remaining[0]
		amount := tb.TiedAmount
		if winner.RaiseAmount != nil {
			amount = *winner.RaiseAmount
		}
		return s.resolve(ctx, tb, winner.TeamID, amount)
	}

	if !tb.AllActed() {
		return nil
	}

	// Every remaining participant raised; find the highest
	var top int64
	for _, p := range remaining {
		if *p.RaiseAmount > top {
			top = *p.RaiseAmount
		}
	}
	var leaders []models.TiebreakerParticipant
	for _, p := range remaining {
		if *p.RaiseAmount == top {
			leaders = append(leaders, p)
		}
	}
	if len(leaders) == 1 {
		return s.resolve(ctx, tb, leaders[0].TeamID, top)
	}

	// Tied again: cancel this tiebreaker and open a successor at the raised
	// amount among the still-tied teams
	succ := &models.Tiebreaker{
		RoundID:    tb.RoundID,
		PlayerID:   tb.PlayerID,
		TiedAmount: top,
		Status:     models.TiebreakerStatusActive,
	}
	for _, p := range leaders {
		succ.Participants = append(succ.Participants, models.TiebreakerParticipant{TeamID: p.TeamID})
	}
	if err := s.tbRepo.Create(ctx, succ); err != nil {
		return fmt.Errorf("failed to create successor tiebreaker: %w", err)
	}
	tb.Status = models.TiebreakerStatusCancelled
	tb.SuccessorID = &succ.ID
	tb.ResolvedAt = time.Now()
	if err := s.tbRepo.Update(ctx, tb); err != nil {
		return fmt.Errorf("failed to close tied tiebreaker: %w", err)
	}
	slog.Info("Tiebreaker tied again, successor opened", "tiebreakerId", tb.ID.Hex(),
		"successorId", succ.ID.Hex(), "tiedAmount", top, "participants", len(leaders))
	return nil
}

func (s *TiebreakerServiceImpl) resolve(ctx context.Context, tb *models.Tiebreaker, winnerTeamID primitive.ObjectID, amount int64) error {
	tb.Status = models.TiebreakerStatusResolved
	tb.WinnerTeamID = &winnerTeamID
	tb.WinningAmount = &amount
	tb.ResolvedAt = time.Now()
	if err := s.tbRepo.Update(ctx, tb); err != nil {
		return fmt.Errorf("failed to resolve tiebreaker: %w", err)
	}
	slog.Info("Tiebreaker resolved", "tiebreakerId", tb.ID.Hex(),
		"winnerTeamId", winnerTeamID.Hex(), "amount", amount)
	return s.finalizer.CommitTiebreakerWin(ctx, tb, winnerTeamID, amount)
}

// GetTiebreaker returns one tiebreaker
func (s *TiebreakerServiceImpl) GetTiebreaker(ctx context.Context, tbID primitive.ObjectID) (*models.Tiebreaker, error) {
	tb, err := s.tbRepo.FindByID(ctx, tbID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load tiebreaker: %w", err)
	}
	return tb, nil
}

// TeamActiveTiebreakers returns the active tiebreakers a team participates in
func (s *TiebreakerServiceImpl) TeamActiveTiebreakers(ctx context.Context, teamID primitive.ObjectID) ([]*models.Tiebreaker, error) {
	return s.tbRepo.FindActiveByTeam(ctx, teamID)
}
