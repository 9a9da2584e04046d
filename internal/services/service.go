package services

import (
	"context"
	"time"

	"github.com/leaguehq/auction-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BidService is the bid ledger: sealed-bid submission, update by
// supersession, withdrawal, and derived highest-bid reads
type BidService interface {
	PlaceBid(ctx context.Context, playerID, roundID, teamID primitive.ObjectID, amount int64) (*models.Bid, error)
	WithdrawBid(ctx context.Context, playerID, roundID, teamID primitive.ObjectID) error
	CurrentHighest(ctx context.Context, playerID, roundID primitive.ObjectID) (*models.Bid, error)
	TeamActiveBids(ctx context.Context, teamID, roundID primitive.ObjectID) ([]*models.Bid, error)
}

// RoundService drives the round lifecycle and exposes round queries
type RoundService interface {
	OpenRound(ctx context.Context, category string, closesAt time.Time, maxBidsPerTeam int) (*models.Round, error)
	ExtendRound(ctx context.Context, roundID primitive.ObjectID, closesAt time.Time) (*models.Round, error)
	CloseRound(ctx context.Context, roundID primitive.ObjectID) error
	CancelRound(ctx context.Context, roundID primitive.ObjectID) error
	CloseDueRounds(ctx context.Context) error
	GetRound(ctx context.Context, roundID primitive.ObjectID) (*models.Round, error)
	ListRounds(ctx context.Context, category string) ([]*models.Round, error)
	RoundAllocations(ctx context.Context, roundID primitive.ObjectID) ([]*models.Allocation, error)
}

// TiebreakerService runs the sub-auctions among teams tied on a top bid
type TiebreakerService interface {
	SubmitRaise(ctx context.Context, tbID, teamID primitive.ObjectID, amount int64) (*models.Tiebreaker, error)
	Concede(ctx context.Context, tbID, teamID primitive.ObjectID) (*models.Tiebreaker, error)
	GetTiebreaker(ctx context.Context, tbID primitive.ObjectID) (*models.Tiebreaker, error)
	TeamActiveTiebreakers(ctx context.Context, teamID primitive.ObjectID) ([]*models.Tiebreaker, error)
}

// PlayerService manages the auctionable player pool
type PlayerService interface {
	CreatePlayer(ctx context.Context, name, category string, floorPrice int64) (*models.Player, error)
	GetPlayer(ctx context.Context, playerID primitive.ObjectID) (*models.Player, error)
	ListPlayers(ctx context.Context, category string) ([]*models.Player, error)
}

// BudgetService is the budget ledger over team documents
type BudgetService interface {
	Debit(ctx context.Context, teamID primitive.ObjectID, amount int64) error
	Credit(ctx context.Context, teamID primitive.ObjectID, amount int64) error
	Remaining(ctx context.Context, teamID primitive.ObjectID) (int64, error)
	GetTeam(ctx context.Context, teamID primitive.ObjectID) (*models.Team, error)
}

// AuthService handles team registration and login
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Team, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}
