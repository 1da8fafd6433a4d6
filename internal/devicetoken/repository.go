package devicetoken

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// Upsert atomically registers or refreshes the (userID, token) record.
	Upsert(ctx context.Context, userID, token, deviceType, deviceName string, now time.Time) (*DeviceToken, error)
	FindByUser(ctx context.Context, userID string) ([]*DeviceToken, error)
	Deactivate(ctx context.Context, userID, token string) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	ActiveTokensForUser(ctx context.Context, userID string) ([]string, error)
	ActiveTokensForUsers(ctx context.Context, userIDs []string) ([]string, error)
	DeactivateUnusedSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokenRepository struct {
	collection *mongo.Collection
}

func NewTokenRepository(collection *mongo.Collection) Repository {
	_ = ensureTokenIndexes(context.Background(), collection)
	return &tokenRepository{collection: collection}
}

func (r *tokenRepository) Upsert(ctx context.Context, userID, token, deviceType, deviceName string, now time.Time) (*DeviceToken, error) {
	filter := bson.M{"user_id": userID, "device_token": token}
	update := bson.M{
		"$set": bson.M{
			"device_type":  deviceType,
			"device_name":  deviceName,
			"is_active":    true,
			"last_used_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID(),
			"user_id":       userID,
			"device_token":  token,
			"registered_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record DeviceToken
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *tokenRepository) FindByUser(ctx context.Context, userID string) ([]*DeviceToken, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_used_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}

	var tokens []*DeviceToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) Deactivate(ctx context.Context, userID, token string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "device_token": token},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *tokenRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *tokenRepository) ActiveTokensForUser(ctx context.Context, userID string) ([]string, error) {
	return r.activeTokens(ctx, bson.M{"user_id": userID, "is_active": true})
}

func (r *tokenRepository) ActiveTokensForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.activeTokens(ctx, bson.M{"user_id": bson.M{"$in": userIDs}, "is_active": true})
}

func (r *tokenRepository) activeTokens(ctx context.Context, filter bson.M) ([]string, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var records []DeviceToken
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(records))
	tokens := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.DeviceToken]; ok {
			continue
		}
		seen[rec.DeviceToken] = struct{}{}
		tokens = append(tokens, rec.DeviceToken)
	}
	return tokens, nil
}

func (r *tokenRepository) DeactivateUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"is_active": true, "last_used_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func ensureTokenIndexes(ctx context.Context, coll *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "device_token", Value: 1},
			},
			Options: options.Index().
				SetName("by_user_token").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "last_used_at", Value: 1},
			},
			Options: options.Index().
				SetName("active_last_used"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}
