package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team roles
const (
	RoleTeam  = "team"
	RoleAdmin = "admin"
)

// Team represents a budget-constrained bidder. BudgetRemaining is only
// mutated at finalization commit (debit) or reversal (credit) and satisfies
// 0 <= BudgetRemaining <= BudgetInitial at all times.
type Team struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"`
	Role            string             `bson:"role" json:"role"`
	BudgetInitial   int64              `bson:"budgetInitial" json:"budgetInitial"`
	BudgetRemaining int64              `bson:"budgetRemaining" json:"budgetRemaining"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
