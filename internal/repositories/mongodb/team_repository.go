package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/leaguehq/auction-backend/internal/models"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TeamRepository implements the repositories.TeamRepository interface
type TeamRepository struct {
	collection *mongo.Collection
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *mongo.Database) repositories.TeamRepository {
	return &TeamRepository{
		collection: db.Collection("teams"),
	}
}

// Create creates a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	team.CreatedAt = time.Now()
	team.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, team)
	if err != nil {
		return err
	}
	team.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a team by ID
func (r *TeamRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var team models.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// FindByEmail finds a team by login email
func (r *TeamRepository) FindByEmail(ctx context.Context, email string) (*models.Team, error) {
	var team models.Team
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// FindAll finds all teams
func (r *TeamRepository) FindAll(ctx context.Context) ([]*models.Team, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var teams []*models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []*models.Team{}
	}
	return teams, nil
}

// DebitBudget decrements BudgetRemaining iff the balance covers the amount.
// The status filter doubles as the row lock: a concurrent debit that would
// overdraw matches no document.
func (r *TeamRepository) DebitBudget(ctx context.Context, id primitive.ObjectID, amount int64) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "budgetRemaining": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{"budgetRemaining": -amount},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing team from an overdraft
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return repositories.ErrOverdraft
	}
	return nil
}

// CreditBudget increments BudgetRemaining, capped at BudgetInitial
func (r *TeamRepository) CreditBudget(ctx context.Context, id primitive.ObjectID, amount int64) error {
	team, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	credit := amount
	if team.BudgetRemaining+credit > team.BudgetInitial {
		credit = team.BudgetInitial - team.BudgetRemaining
	}
	if credit <= 0 {
		return nil
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "budgetRemaining": team.BudgetRemaining},
		bson.M{
			"$inc": bson.M{"budgetRemaining": credit},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Balance moved under us; re-derive the cap and retry once
		return r.CreditBudget(ctx, id, amount)
	}
	return nil
}
