package repository

import (
	"context"
	"fmt"

	"github.com/unidesk/uniadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModuleRepository reads the module catalogue.
type ModuleRepository struct {
	collection *mongo.Collection
}

func NewModuleRepository(db *mongo.Database) *ModuleRepository {
	return &ModuleRepository{collection: db.Collection("modules")}
}

// ExistingIDs returns the subset of ids that name stored modules.
func (r *ModuleRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to look up modules: %w", err)
	}
	defer cursor.Close(ctx)

	var modules []models.Module
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, fmt.Errorf("failed to decode modules: %w", err)
	}

	found := make([]primitive.ObjectID, 0, len(modules))
	for _, m := range modules {
		found = append(found, m.ID)
	}
	return found, nil
}
