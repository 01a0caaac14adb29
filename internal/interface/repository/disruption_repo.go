package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
)

// MongoDisruptionRepository implements the DisruptionRepository interface
type MongoDisruptionRepository struct {
	collection *mongo.Collection
}

// NewMongoDisruptionRepository creates a new MongoDB disruption event repository
func NewMongoDisruptionRepository(db *mongo.Database) repository.DisruptionRepository {
	collection := db.Collection("disruption_events")

	ctx := context.Background()

	voyageIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "voyageId", Value: 1},
			{Key: "occurredAt", Value: -1},
		},
	}
	collection.Indexes().CreateOne(ctx, voyageIndex)

	return &MongoDisruptionRepository{collection: collection}
}

// Save appends a disruption event to the log
func (r *MongoDisruptionRepository) Save(ctx context.Context, event *entity.DisruptionEvent) error {
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// FindByVoyage returns the disruption events of a voyage, newest first
func (r *MongoDisruptionRepository) FindByVoyage(ctx context.Context, voyageID string) ([]*entity.DisruptionEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"voyageId": voyageID}, &options.FindOptions{
		Sort: bson.D{{Key: "occurredAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*entity.DisruptionEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
