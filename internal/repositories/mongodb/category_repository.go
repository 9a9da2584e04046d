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

// CategoryRepository implements the repositories.CategoryRepository interface
type CategoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *mongo.Database) repositories.CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection("categories"),
	}
}

// FindByName finds a category aggregate by name
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&cat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// SetOpenRound upserts the open round pointer for a category
func (r *CategoryRepository) SetOpenRound(ctx context.Context, name string, roundID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now()}}
	if roundID == nil {
		update["$unset"] = bson.M{"openRoundId": ""}
	} else {
		update["$set"].(bson.M)["openRoundId"] = *roundID
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": name}, update, opts)
	return err
}
