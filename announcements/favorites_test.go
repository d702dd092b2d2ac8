package announcements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/databases/mocks"
	"github.com/Benevo-clic/benevoclic-api/models"
)

type favoritesFixture struct {
	favorites     *mocks.FavoriteDatabase
	announcements *mocks.AnnouncementDatabase
	volunteers    *mocks.VolunteerDatabase
	svc           *FavoritesService
}

func newFavoritesFixture() *favoritesFixture {
	f := &favoritesFixture{
		favorites:     &mocks.FavoriteDatabase{},
		announcements: &mocks.AnnouncementDatabase{},
		volunteers:    &mocks.VolunteerDatabase{},
	}
	f.svc = NewFavoritesService(f.favorites, f.announcements, f.volunteers, nil)
	f.svc.now = func() time.Time { return now }
	return f
}

func TestAddFavorite(t *testing.T) {
	f := newFavoritesFixture()
	annID := primitive.NewObjectID()
	favID := primitive.NewObjectID()

	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": annID}).Return(int64(1), nil)
	f.volunteers.On("Exists", mock.Anything, "v1").Return(true, nil)
	f.favorites.On("Upsert", mock.Anything, models.Favorite{VolunteerID: "v1", AnnouncementID: annID.Hex(), CreatedAt: now}).
		Return(&mongo.UpdateResult{UpsertedCount: 1, UpsertedID: favID}, nil)

	fav, err := f.svc.Add(context.Background(), models.CreateFavoriteRequest{VolunteerID: "v1", AnnouncementID: annID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, favID, fav.ID)
	assert.Equal(t, now, fav.CreatedAt)
}

func TestAddFavoriteTwiceReturnsExisting(t *testing.T) {
	f := newFavoritesFixture()
	annID := primitive.NewObjectID()
	existing := &models.Favorite{ID: primitive.NewObjectID(), VolunteerID: "v1", AnnouncementID: annID.Hex()}

	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": annID}).Return(int64(1), nil)
	f.volunteers.On("Exists", mock.Anything, "v1").Return(true, nil)
	f.favorites.On("Upsert", mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	f.favorites.On("FindOne", mock.Anything, bson.M{"volunteerId": "v1", "announcementId": annID.Hex()}).Return(existing, nil)

	fav, err := f.svc.Add(context.Background(), models.CreateFavoriteRequest{VolunteerID: "v1", AnnouncementID: annID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, fav.ID)
}

func TestAddFavoriteRejects(t *testing.T) {
	f := newFavoritesFixture()
	gone := primitive.NewObjectID()
	live := primitive.NewObjectID()
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": gone}).Return(int64(0), nil)
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": live}).Return(int64(1), nil)
	f.volunteers.On("Exists", mock.Anything, "ghost").Return(false, nil)

	_, err := f.svc.Add(context.Background(), models.CreateFavoriteRequest{VolunteerID: "v1", AnnouncementID: "not-hex"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.Add(context.Background(), models.CreateFavoriteRequest{VolunteerID: "v1", AnnouncementID: gone.Hex()})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Add(context.Background(), models.CreateFavoriteRequest{VolunteerID: "ghost", AnnouncementID: live.Hex()})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "volunteer")

	f.favorites.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRemoveFavorite(t *testing.T) {
	f := newFavoritesFixture()
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"volunteerId": "v1", "announcementId": "a1"}).Return(int64(1), nil)
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"volunteerId": "v1", "announcementId": "a2"}).Return(int64(0), nil)
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"volunteerId": "v1", "announcementId": "a3"}).Return(int64(0), errors.New("down"))

	assert.NoError(t, f.svc.Remove(context.Background(), "v1", "a1"))
	assert.ErrorIs(t, f.svc.Remove(context.Background(), "v1", "a2"), apperrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.Remove(context.Background(), "v1", "a3"), apperrors.ErrInternal)
}

func TestListFavoritesKeepsBookmarkOrder(t *testing.T) {
	f := newFavoritesFixture()
	first, second, deleted := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	var opts *options.FindOptions
	f.favorites.On("Find", mock.Anything, bson.M{"volunteerId": "v1"}, mock.Anything).Return([]models.Favorite{
		{VolunteerID: "v1", AnnouncementID: second.Hex()},
		{VolunteerID: "v1", AnnouncementID: deleted.Hex()},
		{VolunteerID: "v1", AnnouncementID: first.Hex()},
	}, nil).Run(func(args mock.Arguments) { opts = args.Get(2).(*options.FindOptions) })
	f.announcements.On("Find", mock.Anything, bson.M{"_id": bson.M{"$in": []primitive.ObjectID{second, deleted, first}}}).
		Return([]models.Announcement{{ID: first, NameEvent: "first"}, {ID: second, NameEvent: "second"}}, nil)

	list, err := f.svc.ListByVolunteer(context.Background(), "v1", 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].NameEvent)
	assert.Equal(t, "first", list[1].NameEvent)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, int64(10), *opts.Skip)
}

func TestListFavoritesEmpty(t *testing.T) {
	f := newFavoritesFixture()
	f.favorites.On("Find", mock.Anything, bson.M{"volunteerId": "v1"}, mock.Anything).Return([]models.Favorite{}, nil)

	list, err := f.svc.ListByVolunteer(context.Background(), "v1", 10, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Announcement{}, list)
	f.announcements.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}
