package databases

// go generate: mockery --name VolunteerDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const volunteerCollectionName = "volunteers"

// VolunteerDatabase contains the methods to use with the volunteer database.
// The profile service owns the documents, the engine only checks existence.
type VolunteerDatabase interface {
	Exists(ctx context.Context, volunteerID string) (bool, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
}

type volunteerDatabase struct {
	db DatabaseHelper
}

// NewVolunteerDatabase initializes a new instance of volunteer database with the provided db connection
func NewVolunteerDatabase(db DatabaseHelper) VolunteerDatabase {
	return &volunteerDatabase{
		db: db,
	}
}

func (v *volunteerDatabase) Exists(ctx context.Context, volunteerID string) (bool, error) {
	count, err := v.db.Collection(volunteerCollectionName).CountDocuments(ctx, bson.M{"volunteerId": volunteerID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (v *volunteerDatabase) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	return v.db.Collection(volunteerCollectionName).Distinct(ctx, fieldName, filter)
}
