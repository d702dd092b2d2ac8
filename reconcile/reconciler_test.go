package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/databases/mocks"
	"github.com/Benevo-clic/benevoclic-api/models"
)

type fakeRemover struct {
	calls    []string
	modified int64
	err      error
}

func (f *fakeRemover) RemoveVolunteerEverywhere(_ context.Context, personID string) (int64, error) {
	f.calls = append(f.calls, personID)
	if f.err != nil {
		return 0, f.err
	}
	return f.modified, nil
}

type fixture struct {
	favorites     *mocks.FavoriteDatabase
	announcements *mocks.AnnouncementDatabase
	volunteers    *mocks.VolunteerDatabase
	remover       *fakeRemover
	r             *Reconciler
}

func newFixture() *fixture {
	f := &fixture{
		favorites:     &mocks.FavoriteDatabase{},
		announcements: &mocks.AnnouncementDatabase{},
		volunteers:    &mocks.VolunteerDatabase{},
		remover:       &fakeRemover{modified: 1},
	}
	f.r = New(f.favorites, f.announcements, f.volunteers, f.remover, nil)
	return f
}

func TestReconcileFavoritesDeletesOrphans(t *testing.T) {
	f := newFixture()
	live := primitive.NewObjectID()
	gone := primitive.NewObjectID()
	favs := []models.Favorite{
		{ID: primitive.NewObjectID(), VolunteerID: "v1", AnnouncementID: live.Hex()},
		{ID: primitive.NewObjectID(), VolunteerID: "v1", AnnouncementID: gone.Hex()},
		{ID: primitive.NewObjectID(), VolunteerID: "v2", AnnouncementID: "not-an-id"},
	}

	f.favorites.On("Find", mock.Anything, bson.M{}).Return(favs, nil)
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": live}).Return(int64(1), nil)
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": gone}).Return(int64(0), nil)
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"_id": favs[1].ID}).Return(int64(1), nil).Once()
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"_id": favs[2].ID}).Return(int64(1), nil).Once()

	res, err := f.r.ReconcileFavorites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedCount)
	assert.Empty(t, res.Errors)
	f.favorites.AssertExpectations(t)
	f.announcements.AssertExpectations(t)
}

func TestReconcileFavoritesCollectsItemErrors(t *testing.T) {
	f := newFixture()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	favs := []models.Favorite{
		{ID: primitive.NewObjectID(), VolunteerID: "v1", AnnouncementID: a.Hex()},
		{ID: primitive.NewObjectID(), VolunteerID: "v1", AnnouncementID: b.Hex()},
	}

	f.favorites.On("Find", mock.Anything, bson.M{}).Return(favs, nil)
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": a}).Return(int64(0), errors.New("timeout"))
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": b}).Return(int64(0), nil)
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"_id": favs[1].ID}).Return(int64(1), nil)

	res, err := f.r.ReconcileFavorites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], favs[0].ID.Hex())
	assert.Contains(t, res.Errors[0], "timeout")
}

func TestCleanupOrphanFavoritesStopsOnFailure(t *testing.T) {
	f := newFixture()
	a := primitive.NewObjectID()
	favs := []models.Favorite{
		{ID: primitive.NewObjectID(), VolunteerID: "v1", AnnouncementID: a.Hex()},
		{ID: primitive.NewObjectID(), VolunteerID: "v2", AnnouncementID: "bad"},
	}

	f.favorites.On("Find", mock.Anything, bson.M{}).Return(favs, nil)
	f.announcements.On("CountDocuments", mock.Anything, bson.M{"_id": a}).Return(int64(0), nil)
	f.favorites.On("DeleteOne", mock.Anything, bson.M{"_id": favs[0].ID}).Return(int64(0), errors.New("down"))

	err := f.r.CleanupOrphanFavorites(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConsistencyRepair)
	f.favorites.AssertNotCalled(t, "DeleteOne", mock.Anything, bson.M{"_id": favs[1].ID})
}

func TestCleanupOrphanFavoritesListFailure(t *testing.T) {
	f := newFixture()
	f.favorites.On("Find", mock.Anything, bson.M{}).Return(nil, errors.New("down"))

	err := f.r.CleanupOrphanFavorites(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConsistencyRepair)

	_, err = f.r.ReconcileFavorites(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConsistencyRepair)
}

func TestReconcileVolunteers(t *testing.T) {
	f := newFixture()
	f.favorites.On("Distinct", mock.Anything, "volunteerId", bson.M{}).Return([]interface{}{"v1", "ghost-b"}, nil)
	f.announcements.On("Distinct", mock.Anything, "volunteers.id", bson.M{}).Return([]interface{}{"v1", "ghost-a"}, nil)
	f.announcements.On("Distinct", mock.Anything, "volunteersWaiting.id", bson.M{}).Return([]interface{}{"ghost-a", "v2"}, nil)
	f.volunteers.On("Distinct", mock.Anything, "volunteerId", bson.M{}).Return([]interface{}{"v1", "v2", "v3"}, nil)
	f.favorites.On("DeleteMany", mock.Anything, bson.M{"volunteerId": "ghost-a"}).Return(int64(0), nil)
	f.favorites.On("DeleteMany", mock.Anything, bson.M{"volunteerId": "ghost-b"}).Return(int64(2), nil)

	report, err := f.r.ReconcileVolunteers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost-a", "ghost-b"}, report.OrphanIDs)
	assert.Equal(t, []string{"ghost-a", "ghost-b"}, f.remover.calls)
	assert.Equal(t, int64(2), report.AnnouncementsUpdated)
	assert.Equal(t, int64(2), report.FavoritesDeleted)
	assert.Empty(t, report.Errors)
}

func TestReconcileVolunteersNothingReferenced(t *testing.T) {
	f := newFixture()
	f.favorites.On("Distinct", mock.Anything, "volunteerId", bson.M{}).Return([]interface{}{}, nil)
	f.announcements.On("Distinct", mock.Anything, mock.Anything, bson.M{}).Return([]interface{}{}, nil)

	report, err := f.r.ReconcileVolunteers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.OrphanIDs)
	assert.Empty(t, f.remover.calls)
	f.volunteers.AssertNotCalled(t, "Distinct", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileVolunteersCollectsErrors(t *testing.T) {
	f := newFixture()
	f.remover.err = errors.New("bulk failed")
	f.favorites.On("Distinct", mock.Anything, "volunteerId", bson.M{}).Return([]interface{}{"ghost"}, nil)
	f.announcements.On("Distinct", mock.Anything, mock.Anything, bson.M{}).Return([]interface{}{}, nil)
	f.volunteers.On("Distinct", mock.Anything, "volunteerId", bson.M{}).Return([]interface{}{}, nil)
	f.favorites.On("DeleteMany", mock.Anything, bson.M{"volunteerId": "ghost"}).Return(int64(1), nil)

	report, err := f.r.ReconcileVolunteers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, report.OrphanIDs)
	assert.Equal(t, int64(1), report.FavoritesDeleted)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "bulk failed")

	err = f.r.CleanupOrphanVolunteers(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConsistencyRepair)
}

func TestReconcileVolunteersDistinctFailure(t *testing.T) {
	f := newFixture()
	f.favorites.On("Distinct", mock.Anything, "volunteerId", bson.M{}).Return(nil, errors.New("down"))

	_, err := f.r.ReconcileVolunteers(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConsistencyRepair)
	assert.Empty(t, f.remover.calls)
}
