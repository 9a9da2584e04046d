package repositories

import (
	"context"
	"errors"

	"github.com/leaguehq/auction-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by Find* methods when no document matches and by
// conditional updates when the precondition did not hold.
var ErrNotFound = errors.New("not found")

// ErrOverdraft is returned by DebitBudget when the conditional decrement
// would take the budget below zero.
var ErrOverdraft = errors.New("overdraft")

// RoundRepository defines the interface for round data operations
type RoundRepository interface {
	Create(ctx context.Context, round *models.Round) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Round, error)
	Update(ctx context.Context, round *models.Round) error
	FindByCategory(ctx context.Context, category string) ([]*models.Round, error)
	FindByStatus(ctx context.Context, status models.RoundStatus) ([]*models.Round, error)
	FindAll(ctx context.Context) ([]*models.Round, error)
	// TransitionStatus atomically moves a round from one status to another.
	// Returns ErrNotFound when the round is not in the expected status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.RoundStatus) error
	AppendExecutionLog(ctx context.Context, id primitive.ObjectID, entries []string) error
}

// CategoryRepository owns the one-open-round-per-category aggregate
type CategoryRepository interface {
	FindByName(ctx context.Context, name string) (*models.Category, error)
	// SetOpenRound stores the open round pointer for a category, creating
	// the category document on first use. A nil roundID clears the pointer.
	SetOpenRound(ctx context.Context, name string, roundID *primitive.ObjectID) error
}

// PlayerRepository defines the interface for player data operations
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	FindByCategory(ctx context.Context, category string) ([]*models.Player, error)
	FindByCategoryAndStatus(ctx context.Context, category string, status models.PlayerStatus) ([]*models.Player, error)
	FindAll(ctx context.Context) ([]*models.Player, error)
}

// BidRepository defines the interface for bid data operations. Bid rows are
// append-only: amounts are never rewritten, only statuses move.
type BidRepository interface {
	Create(ctx context.Context, bid *models.Bid) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bid, error)
	Update(ctx context.Context, bid *models.Bid) error
	FindActiveByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Bid, error)
	FindActiveByRoundAndTeam(ctx context.Context, roundID, teamID primitive.ObjectID) ([]*models.Bid, error)
	FindActiveByPlayerAndRound(ctx context.Context, playerID, roundID primitive.ObjectID) ([]*models.Bid, error)
	FindActiveByPlayerRoundTeam(ctx context.Context, playerID, roundID, teamID primitive.ObjectID) (*models.Bid, error)
}

// TeamRepository defines the interface for team data operations. The budget
// methods are the engine's row-level-locking contract: both are conditional
// single-document updates.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
	FindByEmail(ctx context.Context, email string) (*models.Team, error)
	FindAll(ctx context.Context) ([]*models.Team, error)
	// DebitBudget atomically decrements BudgetRemaining by amount, failing
	// with ErrOverdraft when the balance is insufficient.
	DebitBudget(ctx context.Context, id primitive.ObjectID, amount int64) error
	// CreditBudget atomically increments BudgetRemaining by amount, capped
	// at BudgetInitial. Used only to reverse a prior debit.
	CreditBudget(ctx context.Context, id primitive.ObjectID, amount int64) error
}

// TiebreakerRepository defines the interface for tiebreaker data operations
type TiebreakerRepository interface {
	Create(ctx context.Context, tb *models.Tiebreaker) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tiebreaker, error)
	Update(ctx context.Context, tb *models.Tiebreaker) error
	FindByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Tiebreaker, error)
	FindActiveByTeam(ctx context.Context, teamID primitive.ObjectID) ([]*models.Tiebreaker, error)
}

// AllocationRepository defines the interface for allocation records
type AllocationRepository interface {
	Create(ctx context.Context, alloc *models.Allocation) error
	FindByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Allocation, error)
	FindByRoundAndPlayer(ctx context.Context, roundID, playerID primitive.ObjectID) (*models.Allocation, error)
	FindByTeam(ctx context.Context, teamID primitive.ObjectID) ([]*models.Allocation, error)
	DeleteByRoundAndPlayer(ctx context.Context, roundID, playerID primitive.ObjectID) error
}
