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

// MongoOperatorMessageRepository implements the OperatorMessageRepository interface
type MongoOperatorMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoOperatorMessageRepository creates a new MongoDB operator message repository
func NewMongoOperatorMessageRepository(db *mongo.Database) repository.OperatorMessageRepository {
	collection := db.Collection("operator_messages")

	ctx := context.Background()

	messageIDIndex := mongo.IndexModel{
		Keys:    bson.M{"messageId": 1},
		Options: options.Index().SetUnique(true),
	}
	statusIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{messageIDIndex, statusIndex})

	return &MongoOperatorMessageRepository{collection: collection}
}

// Save stores an inbound operator message
func (r *MongoOperatorMessageRepository) Save(ctx context.Context, msg *entity.OperatorMessage) error {
	if msg.ProcessStatus == "" {
		msg.ProcessStatus = entity.MessageStatusPending
	}
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// FindByMessageIDs returns the stored messages among the given mailbox ids
func (r *MongoOperatorMessageRepository) FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.OperatorMessage, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"messageId": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	found := make(map[string]*entity.OperatorMessage)
	for cursor.Next(ctx) {
		var msg entity.OperatorMessage
		if err := cursor.Decode(&msg); err != nil {
			return nil, err
		}
		found[msg.MessageID] = &msg
	}
	return found, cursor.Err()
}

// FindUnprocessed returns pending messages, oldest first
func (r *MongoOperatorMessageRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.OperatorMessage, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.MessageStatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "receivedAt", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*entity.OperatorMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastMessage returns the most recently received message
func (r *MongoOperatorMessageRepository) GetLastMessage(ctx context.Context) (*entity.OperatorMessage, error) {
	var msg entity.OperatorMessage
	err := r.collection.FindOne(ctx, bson.M{}, &options.FindOneOptions{
		Sort: bson.D{{Key: "receivedAt", Value: -1}},
	}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateStatusByMessageID updates the processing status of a message
func (r *MongoOperatorMessageRepository) UpdateStatusByMessageID(ctx context.Context, messageID, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
			"processedAt":   startedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"messageId": messageID}, update)
	return err
}

// MarkAsProcessedByMessageID records the final processing outcome of a message
func (r *MongoOperatorMessageRepository) MarkAsProcessedByMessageID(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
			"handlerType":   handlerType,
			"errorDetail":   errorDetail,
			"extractedData": extractedData,
			"processedAt":   now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"messageId": messageID}, update)
	return err
}
