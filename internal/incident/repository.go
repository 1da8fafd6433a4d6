package incident

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"incident-service/helper"
)

type Repository interface {
	Insert(ctx context.Context, inc *Incident) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Incident, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*Incident, error)
	// Update applies the $set to the incident iff the extra guard filter
	// (nil for unconditional) still matches; no match reports not-found.
	Update(ctx context.Context, id primitive.ObjectID, guard, set bson.M) (*Incident, error)
	// UpsertAcknowledgement writes the single authoritative record per
	// (incident, user), preserving the original CreatedAt on overwrite.
	UpsertAcknowledgement(ctx context.Context, incidentID primitive.ObjectID, userID, eta, status string, now time.Time) (*Acknowledgement, error)
	FindAcknowledgements(ctx context.Context, incidentID primitive.ObjectID) ([]*Acknowledgement, error)
}

type incidentRepository struct {
	incidents *mongo.Collection
	acks      *mongo.Collection
}

func NewIncidentRepository(incidents, acks *mongo.Collection) Repository {
	_ = ensureAckIndexes(context.Background(), acks)
	return &incidentRepository{incidents: incidents, acks: acks}
}

func ensureAckIndexes(ctx context.Context, acks *mongo.Collection) error {
	_, err := acks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "incident_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("by_incident_user"),
	})
	return err
}

func (r *incidentRepository) Insert(ctx context.Context, inc *Incident) error {
	_, err := r.incidents.InsertOne(ctx, inc)
	return err
}

func (r *incidentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Incident, error) {
	var inc Incident
	err := r.incidents.FindOne(ctx, bson.M{"_id": id}).Decode(&inc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, helper.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepository) FindAll(ctx context.Context, filter ListFilter) ([]*Incident, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.From != nil || filter.To != nil {
		createdAt := bson.M{}
		if filter.From != nil {
			createdAt["$gte"] = *filter.From
		}
		if filter.To != nil {
			createdAt["$lte"] = *filter.To
		}
		query["created_at"] = createdAt
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.incidents.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	var incidents []*Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepository) Update(ctx context.Context, id primitive.ObjectID, guard, set bson.M) (*Incident, error) {
	filter := bson.M{"_id": id}
	for k, v := range guard {
		filter[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var inc Incident
	err := r.incidents.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&inc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, helper.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepository) UpsertAcknowledgement(ctx context.Context, incidentID primitive.ObjectID, userID, eta, status string, now time.Time) (*Acknowledgement, error) {
	filter := bson.M{"incident_id": incidentID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"eta":                    eta,
			"acknowledgement_status": status,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var ack Acknowledgement
	err := r.acks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ack)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time acknowledgements raced past the filter and the
		// unique index rejected the loser's insert; rerun so it updates
		// the winner's record in place.
		err = r.acks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ack)
	}
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (r *incidentRepository) FindAcknowledgements(ctx context.Context, incidentID primitive.ObjectID) ([]*Acknowledgement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.acks.Find(ctx, bson.M{"incident_id": incidentID}, opts)
	if err != nil {
		return nil, err
	}

	var acks []*Acknowledgement
	if err := cursor.All(ctx, &acks); err != nil {
		return nil, err
	}
	return acks, nil
}
