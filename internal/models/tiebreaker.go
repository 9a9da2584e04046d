package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TiebreakerStatus represents the status of a tiebreaker sub-auction
type TiebreakerStatus string

const (
	TiebreakerStatusActive    TiebreakerStatus = "ACTIVE"
	TiebreakerStatusResolved  TiebreakerStatus = "RESOLVED"
	TiebreakerStatusCancelled TiebreakerStatus = "CANCELLED"
)

// TiebreakerParticipant tracks one tied team's standing inside a tiebreaker.
// Each participant may submit exactly one raise above the tied amount, or
// concede.
type TiebreakerParticipant struct {
	TeamID      primitive.ObjectID `bson:"teamId" json:"teamId"`
	RaiseAmount *int64             `bson:"raiseAmount,omitempty" json:"raiseAmount,omitempty"`
	Conceded    bool               `bson:"conceded" json:"conceded"`
	ActedAt     time.Time          `bson:"actedAt,omitempty" json:"actedAt,omitempty"`
}

// Tiebreaker represents a constrained secondary auction among the teams tied
// on the top bid for one player. It resolves independently of the parent
// round's other allocations.
type Tiebreaker struct {
	ID            primitive.ObjectID      `bson:"_id,omitempty" json:"id,omitempty"`
	RoundID       primitive.ObjectID      `bson:"roundId" json:"roundId"`
	PlayerID      primitive.ObjectID      `bson:"playerId" json:"playerId"`
	TiedAmount    int64                   `bson:"tiedAmount" json:"tiedAmount"`
	Participants  []TiebreakerParticipant `bson:"participants" json:"participants"`
	Status        TiebreakerStatus        `bson:"status" json:"status"`
	WinnerTeamID  *primitive.ObjectID     `bson:"winnerTeamId,omitempty" json:"winnerTeamId,omitempty"`
	WinningAmount *int64                  `bson:"winningAmount,omitempty" json:"winningAmount,omitempty"`
	SuccessorID   *primitive.ObjectID     `bson:"successorId,omitempty" json:"successorId,omitempty"` // set when raises tied again and a fresh tiebreaker was opened
	ResolvedAt    time.Time               `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt     time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time               `bson:"updatedAt" json:"updatedAt"`
}

// Participant returns the participant entry for a team, or nil if the team
// is not part of this tiebreaker.
func (t *Tiebreaker) Participant(teamID primitive.ObjectID) *TiebreakerParticipant {
	for i := range t.Participants {
		if t.Participants[i].TeamID == teamID {
			return &t.Participants[i]
		}
	}
	return nil
}

// Remaining returns the participants still in contention (not conceded).
func (t *Tiebreaker) Remaining() []TiebreakerParticipant {
	var out []TiebreakerParticipant
	for _, p := range t.Participants {
		if !p.Conceded {
			out = append(out, p)
		}
	}
	return out
}

// AllActed reports whether every participant has either raised or conceded.
func (t *Tiebreaker) AllActed() bool {
	for _, p := range t.Participants {
		if !p.Conceded && p.RaiseAmount == nil {
			return false
		}
	}
	return true
}
