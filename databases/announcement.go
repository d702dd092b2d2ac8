package databases

// go generate: mockery --name AnnouncementDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Benevo-clic/benevoclic-api/models"
)

const announcementCollectionName = "announcements"

// AnnouncementDatabase contains the methods to use with the announcement database
type AnnouncementDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Announcement, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Announcement, error)
	InsertOne(ctx context.Context, announcement models.Announcement) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Announcement, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, opts ...*options.AggregateOptions) (*MongoCursor, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
	EnsureIndexes(ctx context.Context) error
}

type announcementDatabase struct {
	db DatabaseHelper
}

// NewAnnouncementDatabase initializes a new instance of announcement database with the provided db connection
func NewAnnouncementDatabase(db DatabaseHelper) AnnouncementDatabase {
	return &announcementDatabase{
		db: db,
	}
}

func (a *announcementDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Announcement, error) {
	announcement := &models.Announcement{}
	err := a.db.Collection(announcementCollectionName).FindOne(ctx, filter).Decode(&announcement)
	if err != nil {
		return nil, err
	}
	return announcement, nil
}

func (a *announcementDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Announcement, error) {
	cursor, err := a.db.Collection(announcementCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	announcements := []models.Announcement{}
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (a *announcementDatabase) InsertOne(ctx context.Context, announcement models.Announcement) (InsertOneResultHelper, error) {
	return a.db.Collection(announcementCollectionName).InsertOne(ctx, announcement)
}

func (a *announcementDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(announcementCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (a *announcementDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(announcementCollectionName).UpdateMany(ctx, filter, update, opts...)
}

func (a *announcementDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Announcement, error) {
	announcement := &models.Announcement{}
	err := a.db.Collection(announcementCollectionName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&announcement)
	if err != nil {
		return nil, err
	}
	return announcement, nil
}

func (a *announcementDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return a.db.Collection(announcementCollectionName).DeleteOne(ctx, filter)
}

func (a *announcementDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return a.db.Collection(announcementCollectionName).DeleteMany(ctx, filter)
}

func (a *announcementDatabase) Aggregate(ctx context.Context, pipeline mongo.Pipeline, opts ...*options.AggregateOptions) (*MongoCursor, error) {
	return a.db.Collection(announcementCollectionName).Aggregate(ctx, pipeline, opts...)
}

func (a *announcementDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return a.db.Collection(announcementCollectionName).CountDocuments(ctx, filter)
}

func (a *announcementDatabase) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	return a.db.Collection(announcementCollectionName).Distinct(ctx, fieldName, filter)
}

// EnsureIndexes creates the 2dsphere index $geoNear needs plus the lookup indexes used by the bulk operator
func (a *announcementDatabase) EnsureIndexes(ctx context.Context) error {
	return a.db.Collection(announcementCollectionName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "locationAnnouncement", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "associationId", Value: 1}}},
		{Keys: bson.D{{Key: "volunteers.id", Value: 1}}},
		{Keys: bson.D{{Key: "volunteersWaiting.id", Value: 1}}},
		{Keys: bson.D{{Key: "participants.id", Value: 1}}},
		{Keys: bson.D{{Key: "datePublication", Value: -1}, {Key: "_id", Value: 1}}},
	})
}
