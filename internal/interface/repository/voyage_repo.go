package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
)

// MongoVoyageRepository implements the VoyageRepository interface
type MongoVoyageRepository struct {
	collection *mongo.Collection
}

// NewMongoVoyageRepository creates a new MongoDB voyage repository
func NewMongoVoyageRepository(db *mongo.Database) repository.VoyageRepository {
	collection := db.Collection("voyages")

	ctx := context.Background()

	userIndex := mongo.IndexModel{
		Keys: bson.M{"userId": 1},
	}
	statusIndex := mongo.IndexModel{
		Keys: bson.M{"status": 1},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{userIndex, statusIndex})

	return &MongoVoyageRepository{collection: collection}
}

// Save inserts or replaces a voyage
func (r *MongoVoyageRepository) Save(ctx context.Context, voyage *entity.Voyage) error {
	if voyage.CreatedAt.IsZero() {
		voyage.CreatedAt = time.Now()
	}
	voyage.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": voyage.ID}, voyage, opts)
	return err
}

// GetByID finds a voyage by id. A missing voyage is (nil, nil).
func (r *MongoVoyageRepository) GetByID(ctx context.Context, id string) (*entity.Voyage, error) {
	var voyage entity.Voyage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&voyage)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voyage, nil
}

// UpdateSegmentTimes rewrites the departure and arrival times of one segment
func (r *MongoVoyageRepository) UpdateSegmentTimes(ctx context.Context, voyageID, segmentID string, departure, arrival time.Time) error {
	filter := bson.M{"_id": voyageID, "segments.id": segmentID}
	update := bson.M{
		"$set": bson.M{
			"segments.$.departureUtc": departure,
			"segments.$.arrivalUtc":   arrival,
			"updatedAt":               time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ReplaceSegmentsFrom replaces all segments from the given index onward,
// used when rebooking after a missed connection
func (r *MongoVoyageRepository) ReplaceSegmentsFrom(ctx context.Context, voyageID string, fromIndex int, segments []entity.Segment) error {
	voyage, err := r.GetByID(ctx, voyageID)
	if err != nil {
		return err
	}
	if voyage == nil {
		return mongo.ErrNoDocuments
	}
	if fromIndex < 0 || fromIndex > len(voyage.Segments) {
		return errors.New("segment index out of range")
	}

	merged := append(voyage.Segments[:fromIndex:fromIndex], segments...)
	update := bson.M{
		"$set": bson.M{
			"segments":  merged,
			"updatedAt": time.Now(),
		},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": voyageID}, update)
	return err
}

// UpdateStatus sets the voyage status
func (r *MongoVoyageRepository) UpdateStatus(ctx context.Context, voyageID, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": voyageID}, update)
	return err
}
