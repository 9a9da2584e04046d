package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlayerStatus represents the allocation status of a player
type PlayerStatus string

const (
	PlayerStatusAvailable         PlayerStatus = "AVAILABLE"
	PlayerStatusPendingAllocation PlayerStatus = "PENDING_ALLOCATION"
	PlayerStatusAllocated         PlayerStatus = "ALLOCATED"
)

// Player represents an auctionable player. WinningTeamID and FinalPrice are
// set exactly once, at finalization, and only reset by an explicit reversal.
type Player struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string              `bson:"name" json:"name"`
	Category      string              `bson:"category" json:"category"`
	Status        PlayerStatus        `bson:"status" json:"status"`
	FloorPrice    int64               `bson:"floorPrice" json:"floorPrice"`
	WinningTeamID *primitive.ObjectID `bson:"winningTeamId,omitempty" json:"winningTeamId,omitempty"`
	FinalPrice    *int64              `bson:"finalPrice,omitempty" json:"finalPrice,omitempty"`
	NeedsReview   bool                `bson:"needsReview" json:"needsReview"` // set when a finalization conflict rolled this player back
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
