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

// PlayerRepository implements the repositories.PlayerRepository interface
type PlayerRepository struct {
	collection *mongo.Collection
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(db *mongo.Database) repositories.PlayerRepository {
	return &PlayerRepository{
		collection: db.Collection("players"),
	}
}

// Create creates a new player
func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	player.CreatedAt = time.Now()
	player.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, player)
	if err != nil {
		return err
	}
	player.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a player by ID
func (r *PlayerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error) {
	var player models.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// Update replaces a player document
func (r *PlayerRepository) Update(ctx context.Context, player *models.Player) error {
	player.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": player.ID}, player)
	return err
}

// FindByCategory finds players in a category, in creation order
func (r *PlayerRepository) FindByCategory(ctx context.Context, category string) ([]*models.Player, error) {
	return r.find(ctx, bson.M{"category": category})
}

// FindByCategoryAndStatus finds players in a category with a given status,
// in creation order
func (r *PlayerRepository) FindByCategoryAndStatus(ctx context.Context, category string, status models.PlayerStatus) ([]*models.Player, error) {
	return r.find(ctx, bson.M{"category": category, "status": status})
}

// FindAll finds all players, in creation order
func (r *PlayerRepository) FindAll(ctx context.Context) ([]*models.Player, error) {
	return r.find(ctx, bson.M{})
}

func (r *PlayerRepository) find(ctx context.Context, filter bson.M) ([]*models.Player, error) {
	// Creation order is the documented cross-item tie-break at finalization
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*models.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	if players == nil {
		players = []*models.Player{}
	}
	return players, nil
}
