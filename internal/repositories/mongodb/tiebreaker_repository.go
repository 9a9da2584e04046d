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

// TiebreakerRepository implements the repositories.TiebreakerRepository interface
type TiebreakerRepository struct {
	collection *mongo.Collection
}

// NewTiebreakerRepository creates a new TiebreakerRepository
func NewTiebreakerRepository(db *mongo.Database) repositories.TiebreakerRepository {
	return &TiebreakerRepository{
		collection: db.Collection("tiebreakers"),
	}
}

// Create creates a new tiebreaker
func (r *TiebreakerRepository) Create(ctx context.Context, tb *models.Tiebreaker) error {
	tb.CreatedAt = time.Now()
	tb.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, tb)
	if err != nil {
		return err
	}
	tb.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a tiebreaker by ID
func (r *TiebreakerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tiebreaker, error) {
	var tb models.Tiebreaker
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tb)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &tb, nil
}

// Update replaces a tiebreaker document
func (r *TiebreakerRepository) Update(ctx context.Context, tb *models.Tiebreaker) error {
	tb.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tb.ID}, tb)
	return err
}

// FindByRound finds all tiebreakers spawned for a round
func (r *TiebreakerRepository) FindByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Tiebreaker, error) {
	return r.find(ctx, bson.M{"roundId": roundID})
}

// FindActiveByTeam finds active tiebreakers the team participates in
func (r *TiebreakerRepository) FindActiveByTeam(ctx context.Context, teamID primitive.ObjectID) ([]*models.Tiebreaker, error) {
	return r.find(ctx, bson.M{
		"status":              models.TiebreakerStatusActive,
		"participants.teamId": teamID,
	})
}

func (r *TiebreakerRepository) find(ctx context.Context, filter bson.M) ([]*models.Tiebreaker, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tbs []*models.Tiebreaker
	if err := cursor.All(ctx, &tbs); err != nil {
		return nil, err
	}
	if tbs == nil {
		tbs = []*models.Tiebreaker{}
	}
	return tbs, nil
}
