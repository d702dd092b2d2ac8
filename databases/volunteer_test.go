package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/databases/mocks"
)

func TestVolunteerDatabase_Exists(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CountDocuments", context.Background(), bson.M{"volunteerId": "known"}, mock.Anything).Return(int64(1), nil)
	collectionHelper.On("CountDocuments", context.Background(), bson.M{"volunteerId": "ghost"}, mock.Anything).Return(int64(0), nil)
	collectionHelper.On("CountDocuments", context.Background(), bson.M{"volunteerId": "broken"}, mock.Anything).Return(int64(0), errors.New("mocked-error"))
	dbHelper.On("Collection", "volunteers").Return(collectionHelper)

	volunteerDba := databases.NewVolunteerDatabase(dbHelper)

	ok, err := volunteerDba.Exists(context.Background(), "known")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = volunteerDba.Exists(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = volunteerDba.Exists(context.Background(), "broken")
	assert.EqualError(t, err, "mocked-error")
}

func TestPageOptions(t *testing.T) {
	opts := databases.PageOptions(10, 3)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, int64(20), *opts.Skip)

	opts = databases.PageOptions(0, 0)
	assert.Equal(t, int64(1), *opts.Limit)
	assert.Equal(t, int64(0), *opts.Skip)
}
