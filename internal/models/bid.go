package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BidStatus represents the status of a bid row. Bid rows are immutable audit
// records: an "update" inserts a new ACTIVE row and marks the old one
// SUPERSEDED; a withdrawal marks the latest row VOID. WON/LOST are assigned
// at finalization.
type BidStatus string

const (
	BidStatusActive     BidStatus = "ACTIVE"
	BidStatusSuperseded BidStatus = "SUPERSEDED"
	BidStatusVoid       BidStatus = "VOID"
	BidStatusWon        BidStatus = "WON"
	BidStatusLost       BidStatus = "LOST"
)

// Bid represents a single sealed bid by a team on a player within a round.
// At most one ACTIVE bid exists per (player, round, team) tuple.
type Bid struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID     primitive.ObjectID  `bson:"playerId" json:"playerId"`
	RoundID      primitive.ObjectID  `bson:"roundId" json:"roundId"`
	TeamID       primitive.ObjectID  `bson:"teamId" json:"teamId"`
	Amount       int64               `bson:"amount" json:"amount"`
	Status       BidStatus           `bson:"status" json:"status"`
	SupersededBy *primitive.ObjectID `bson:"supersededBy,omitempty" json:"supersededBy,omitempty"`
	SubmittedAt  time.Time           `bson:"submittedAt" json:"submittedAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
