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

// RoundRepository implements the repositories.RoundRepository interface
type RoundRepository struct {
	collection *mongo.Collection
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(db *mongo.Database) repositories.RoundRepository {
	return &RoundRepository{
		collection: db.Collection("rounds"),
	}
}

// Create creates a new round
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	round.CreatedAt = time.Now()
	round.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, round)
	if err != nil {
		return err
	}
	round.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a round by ID
func (r *RoundRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Round, error) {
	var round models.Round
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&round)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &round, nil
}

// Update replaces a round document
func (r *RoundRepository) Update(ctx context.Context, round *models.Round) error {
	round.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": round.ID}, round)
	return err
}

// FindByCategory finds rounds for a category, newest first
func (r *RoundRepository) FindByCategory(ctx context.Context, category string) ([]*models.Round, error) {
	return r.find(ctx, bson.M{"category": category})
}

// FindByStatus finds rounds by status, newest first
func (r *RoundRepository) FindByStatus(ctx context.Context, status models.RoundStatus) ([]*models.Round, error) {
	return r.find(ctx, bson.M{"status": status})
}

// FindAll finds all rounds, newest first
func (r *RoundRepository) FindAll(ctx context.Context) ([]*models.Round, error) {
	return r.find(ctx, bson.M{})
}

func (r *RoundRepository) find(ctx context.Context, filter bson.M) ([]*models.Round, error) {
	opts := options.Find().SetSort(bson.M{"opensAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rounds []*models.Round
	if err := cursor.All(ctx, &rounds); err != nil {
		return nil, err
	}
	if rounds == nil {
		rounds = []*models.Round{}
	}
	return rounds, nil
}

// TransitionStatus atomically moves a round between statuses. The filter on
// the current status is what makes CloseRound idempotent under races.
func (r *RoundRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.RoundStatus) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// AppendExecutionLog appends entries to the round's execution log
func (r *RoundRepository) AppendExecutionLog(ctx context.Context, id primitive.ObjectID, entries []string) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"executionLog": bson.M{"$each": entries}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
