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

// Compile-time check to ensure BudgetServiceImpl implements BudgetService
var _ BudgetService = (*BudgetServiceImpl)(nil)

// BudgetServiceImpl is the budget ledger. Budgets are debited only at
// finalization commit and credited only to reverse a prior debit; the
// invariant 0 <= remaining <= initial holds at all times.
type BudgetServiceImpl struct {
	teamRepo repositories.TeamRepository
}

// NewBudgetService creates a new BudgetServiceImpl
func NewBudgetService(teamRepo repositories.TeamRepository) *BudgetServiceImpl {
	return &BudgetServiceImpl{teamRepo: teamRepo}
}

// Debit atomically decrements a team's remaining budget
func (s *BudgetServiceImpl) Debit(ctx context.Context, teamID primitive.ObjectID, amount int64) error {
	if amount < 0 {
		return ErrBadAmount
	}
	err := s.teamRepo.DebitBudget(ctx, teamID, amount)
	if err != nil {
		if errors.Is(err, repositories.ErrOverdraft) {
			slog.Warn("Debit rejected: overdraft", "teamId", teamID.Hex(), "amount", amount)
			return ErrOverdraft
		}
		return fmt.Errorf("failed to debit team budget: %w", err)
	}
	return nil
}

// Credit atomically increments a team's remaining budget, capped at the
// initial budget. Used only for reversals.
func (s *BudgetServiceImpl) Credit(ctx context.Context, teamID primitive.ObjectID, amount int64) error {
	if amount < 0 {
		return ErrBadAmount
	}
	if err := s.teamRepo.CreditBudget(ctx, teamID, amount); err != nil {
		return fmt.Errorf("failed to credit team budget: %w", err)
	}
	return nil
}

// Remaining returns a team's spendable balance
func (s *BudgetServiceImpl) Remaining(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to load team: %w", err)
	}
	return team.BudgetRemaining, nil
}

// GetTeam returns the full team record
func (s *BudgetServiceImpl) GetTeam(ctx context.Context, teamID primitive.ObjectID) (*models.Team, error) {
	return s.teamRepo.FindByID(ctx, teamID)
}
