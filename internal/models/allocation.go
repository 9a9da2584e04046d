package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllocationPhase records how an allocation was produced
type AllocationPhase string

const (
	// AllocationPhaseRegular is a direct win in the finalization sweep
	AllocationPhaseRegular AllocationPhase = "REGULAR"
	// AllocationPhaseShortfall is the average-price award to a team that
	// placed fewer than the required bids and won nothing in the sweep
	AllocationPhaseShortfall AllocationPhase = "SHORTFALL"
	// AllocationPhaseTiebreaker is a win committed on tiebreaker resolution
	AllocationPhaseTiebreaker AllocationPhase = "TIEBREAKER"
)

// Allocation is the record of a player awarded to a team at round
// finalization. At most one allocation exists per (round, player) and per
// (round, team).
type Allocation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoundID   primitive.ObjectID `bson:"roundId" json:"roundId"`
	PlayerID  primitive.ObjectID `bson:"playerId" json:"playerId"`
	TeamID    primitive.ObjectID `bson:"teamId" json:"teamId"`
	BidID     primitive.ObjectID `bson:"bidId" json:"bidId"`
	Amount    int64              `bson:"amount" json:"amount"`
	Phase     AllocationPhase    `bson:"phase" json:"phase"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
