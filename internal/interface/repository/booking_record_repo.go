package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
)

// MongoBookingRecordRepository implements the BookingRecordRepository interface
type MongoBookingRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRecordRepository creates a new MongoDB booking record repository
func NewMongoBookingRecordRepository(db *mongo.Database) repository.BookingRecordRepository {
	collection := db.Collection("booking_records")

	ctx := context.Background()

	referenceIndex := mongo.IndexModel{
		Keys:    bson.M{"reference": 1},
		Options: options.Index().SetUnique(true),
	}
	voyageIndex := mongo.IndexModel{
		Keys: bson.M{"voyageId": 1},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{referenceIndex, voyageIndex})

	return &MongoBookingRecordRepository{collection: collection}
}

// Save inserts a booking record
func (r *MongoBookingRecordRepository) Save(ctx context.Context, record *entity.BookingRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

// FindByReference finds a booking record by its reference
func (r *MongoBookingRecordRepository) FindByReference(ctx context.Context, reference string) (*entity.BookingRecord, error) {
	var record entity.BookingRecord
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByVoyage returns all booking records of a voyage
func (r *MongoBookingRecordRepository) FindByVoyage(ctx context.Context, voyageID string) ([]*entity.BookingRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"voyageId": voyageID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
