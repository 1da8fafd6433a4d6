package directory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Directory resolves reference data. Every lookup returns (nil, nil) for a
// missing record so read-side joins can substitute a sentinel instead of
// failing the whole read.
type Directory interface {
	UserByID(ctx context.Context, id string) (*User, error)
	TeamByID(ctx context.Context, id string) (*Team, error)
	TeamMembers(ctx context.Context, teamID string) ([]User, error)
	IncidentTypeByID(ctx context.Context, id string) (*IncidentType, error)
	BusinessUnitByID(ctx context.Context, id string) (*BusinessUnit, error)
	TankByID(ctx context.Context, id string) (*Tank, error)
	MessageByID(ctx context.Context, id string) (*Message, error)
}

type mongoDirectory struct {
	users         *mongo.Collection
	teams         *mongo.Collection
	incidentTypes *mongo.Collection
	businessUnits *mongo.Collection
	tanks         *mongo.Collection
	messages      *mongo.Collection
}

func NewMongoDirectory(db *mongo.Database) Directory {
	return &mongoDirectory{
		users:         db.Collection("users"),
		teams:         db.Collection("teams"),
		incidentTypes: db.Collection("incident_types"),
		businessUnits: db.Collection("business_units"),
		tanks:         db.Collection("tanks"),
		messages:      db.Collection("messages"),
	}
}

func (d *mongoDirectory) UserByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := d.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (d *mongoDirectory) TeamByID(ctx context.Context, id string) (*Team, error) {
	var team Team
	if err := d.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&team); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (d *mongoDirectory) TeamMembers(ctx context.Context, teamID string) ([]User, error) {
	filter := bson.M{
		"team_id":    teamID,
		"is_active":  true,
		"is_deleted": false,
	}

	cursor, err := d.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var members []User
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (d *mongoDirectory) IncidentTypeByID(ctx context.Context, id string) (*IncidentType, error) {
	var it IncidentType
	if err := d.incidentTypes.FindOne(ctx, bson.M{"_id": id}).Decode(&it); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (d *mongoDirectory) BusinessUnitByID(ctx context.Context, id string) (*BusinessUnit, error) {
	var unit BusinessUnit
	if err := d.businessUnits.FindOne(ctx, bson.M{"_id": id}).Decode(&unit); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

func (d *mongoDirectory) TankByID(ctx context.Context, id string) (*Tank, error) {
	var tank Tank
	if err := d.tanks.FindOne(ctx, bson.M{"_id": id}).Decode(&tank); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &tank, nil
}

func (d *mongoDirectory) MessageByID(ctx context.Context, id string) (*Message, error) {
	var msg Message
	if err := d.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}
