package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundStatus represents the lifecycle status of an auction round
type RoundStatus string

const (
	RoundStatusOpen      RoundStatus = "OPEN"
	RoundStatusClosing   RoundStatus = "CLOSING"
	RoundStatusFinalized RoundStatus = "FINALIZED"
	RoundStatusCancelled RoundStatus = "CANCELLED"
)

// Round represents a time-boxed bidding window for one player category.
// A round transitions OPEN -> CLOSING -> FINALIZED through the finalization
// engine only; CANCELLED is reachable from OPEN via an operator action.
type Round struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Category       string             `bson:"category" json:"category"` // e.g. "GK", "DEF", "MID", "FWD"
	Status         RoundStatus        `bson:"status" json:"status"`
	OpensAt        time.Time          `bson:"opensAt" json:"opensAt"`
	ClosesAt       time.Time          `bson:"closesAt" json:"closesAt"`
	MaxBidsPerTeam int                `bson:"maxBidsPerTeam" json:"maxBidsPerTeam"`
	ExecutionLog   []string           `bson:"executionLog,omitempty" json:"executionLog,omitempty"`
	ErrorMessage   string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Category is the aggregate that owns the one-open-round invariant for a
// player category. OpenRoundID is only transitioned inside the serialized
// OpenRound/CloseRound/CancelRound operations.
type Category struct {
	Name        string              `bson:"_id" json:"name"`
	OpenRoundID *primitive.ObjectID `bson:"openRoundId,omitempty" json:"openRoundId,omitempty"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
