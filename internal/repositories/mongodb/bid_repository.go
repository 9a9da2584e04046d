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

// BidRepository implements the repositories.BidRepository interface
type BidRepository struct {
	collection *mongo.Collection
}

// NewBidRepository creates a new BidRepository
func NewBidRepository(db *mongo.Database) repositories.BidRepository {
	return &BidRepository{
		collection: db.Collection("bids"),
	}
}

// Create creates a new bid row
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	bid.SubmittedAt = time.Now()
	bid.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, bid)
	if err != nil {
		return err
	}
	bid.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a bid by ID
func (r *BidRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bid, error) {
	var bid models.Bid
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &bid, nil
}

// Update replaces a bid document (status transitions only — amounts are
// immutable once written)
func (r *BidRepository) Update(ctx context.Context, bid *models.Bid) error {
	bid.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": bid.ID}, bid)
	return err
}

// FindActiveByRound finds all active bids in a round
func (r *BidRepository) FindActiveByRound(ctx context.Context, roundID primitive.ObjectID) ([]*models.Bid, error) {
	return r.find(ctx, bson.M{"roundId": roundID, "status": models.BidStatusActive})
}

// FindActiveByRoundAndTeam finds a team's active bids in a round
func (r *BidRepository) FindActiveByRoundAndTeam(ctx context.Context, roundID, teamID primitive.ObjectID) ([]*models.Bid, error) {
	return r.find(ctx, bson.M{"roundId": roundID, "teamId": teamID, "status": models.BidStatusActive})
}

// FindActiveByPlayerAndRound finds all active bids on a player in a round
func (r *BidRepository) FindActiveByPlayerAndRound(ctx context.Context, playerID, roundID primitive.ObjectID) ([]*models.Bid, error) {
	return r.find(ctx, bson.M{"playerId": playerID, "roundId": roundID, "status": models.BidStatusActive})
}

// FindActiveByPlayerRoundTeam finds the single active bid for a
// (player, round, team) tuple, or ErrNotFound
func (r *BidRepository) FindActiveByPlayerRoundTeam(ctx context.Context, playerID, roundID, teamID primitive.ObjectID) (*models.Bid, error) {
	var bid models.Bid
	filter := bson.M{
		"playerId": playerID,
		"roundId":  roundID,
		"teamId":   teamID,
		"status":   models.BidStatusActive,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepository) find(ctx context.Context, filter bson.M) ([]*models.Bid, error) {
	opts := options.Find().SetSort(bson.M{"submittedAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bids []*models.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, err
	}
	if bids == nil {
		bids = []*models.Bid{}
	}
	return bids, nil
}
