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

// AllocationRepository implements the repositories.AllocationRepository interface
type AllocationRepository struct {
	collection *mongo.Collection
}

// NewAllocationRepository creates a new AllocationRepository
func NewAllocationRepository(db *mongo.Database) repositories.AllocationRepository {
	return &AllocationRepository{
		collection: db.Collection("allocations"),
	}
}

// Create creates a new allocation record
func (r *AllocationRepository) Create(ctx context.Context, alloc *models.Allocation) error {
	alloc.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, alloc)
	if err != nil {
		return err
	}
	alloc.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByRound finds all allocations committed for a round
func (r *AllocationRepository) FindByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Allocation, error) {
	return r.find(ctx, bson.M{"roundId": roundID})
}

// FindByRoundAndPlayer finds the allocation for a player in a round
func (r *AllocationRepository) FindByRoundAndPlayer(ctx context.Context, roundID, playerID primitive.ObjectID) (*models.Allocation, error) {
	var alloc models.Allocation
	err := r.collection.FindOne(ctx, bson.M{"roundId": roundID, "playerId": playerID}).Decode(&alloc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &alloc, nil
}

// FindByTeam finds all allocations won by a team across rounds
func (r *AllocationRepository) FindByTeam(ctx context.Context, teamID primitive.ObjectID) ([]*models.Allocation, error) {
	return r.find(ctx, bson.M{"teamId": teamID})
}

// DeleteByRoundAndPlayer removes an allocation record during a reversal
func (r *AllocationRepository) DeleteByRoundAndPlayer(ctx context.Context, roundID, playerID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"roundId": roundID, "playerId": playerID})
	return err
}

func (r *AllocationRepository) find(ctx context.Context, filter bson.M) ([]*models.Allocation, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var allocs []*models.Allocation
	if err := cursor.All(ctx, &allocs); err != nil {
		return nil, err
	}
	if allocs == nil {
		allocs = []*models.Allocation{}
	}
	return allocs, nil
}
