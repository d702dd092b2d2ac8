package databases

// go generate: mockery --name FavoriteDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Benevo-clic/benevoclic-api/models"
)

const favoriteCollectionName = "favorites_announcement"

// FavoriteDatabase contains the methods to use with the favorites database
type FavoriteDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Favorite, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Favorite, error)
	Upsert(ctx context.Context, favorite models.Favorite) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
	EnsureIndexes(ctx context.Context) error
}

type favoriteDatabase struct {
	db DatabaseHelper
}

// NewFavoriteDatabase initializes a new instance of favorite database with the provided db connection
func NewFavoriteDatabase(db DatabaseHelper) FavoriteDatabase {
	return &favoriteDatabase{
		db: db,
	}
}

func (f *favoriteDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Favorite, error) {
	favorite := &models.Favorite{}
	err := f.db.Collection(favoriteCollectionName).FindOne(ctx, filter).Decode(&favorite)
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

func (f *favoriteDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Favorite, error) {
	cursor, err := f.db.Collection(favoriteCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	favorites := []models.Favorite{}
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// Upsert inserts the favorite unless the (volunteerId, announcementId) pair already exists
func (f *favoriteDatabase) Upsert(ctx context.Context, favorite models.Favorite) (*mongo.UpdateResult, error) {
	filter := bson.M{"volunteerId": favorite.VolunteerID, "announcementId": favorite.AnnouncementID}
	update := bson.M{"$setOnInsert": bson.M{
		"volunteerId":    favorite.VolunteerID,
		"announcementId": favorite.AnnouncementID,
		"createdAt":      favorite.CreatedAt,
	}}
	return f.db.Collection(favoriteCollectionName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}

func (f *favoriteDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return f.db.Collection(favoriteCollectionName).DeleteOne(ctx, filter)
}

func (f *favoriteDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return f.db.Collection(favoriteCollectionName).DeleteMany(ctx, filter)
}

func (f *favoriteDatabase) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	return f.db.Collection(favoriteCollectionName).Distinct(ctx, fieldName, filter)
}

func (f *favoriteDatabase) EnsureIndexes(ctx context.Context) error {
	return f.db.Collection(favoriteCollectionName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "volunteerId", Value: 1}, {Key: "announcementId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
