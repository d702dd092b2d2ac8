package registration

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

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	cachemocks "github.com/Benevo-clic/benevoclic-api/cache/mocks"
	"github.com/Benevo-clic/benevoclic-api/databases/mocks"
	"github.com/Benevo-clic/benevoclic-api/models"
)

var fixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mocks.AnnouncementDatabase, *cachemocks.Invalidator) {
	db := &mocks.AnnouncementDatabase{}
	inv := &cachemocks.Invalidator{}
	s := NewService(db, inv, nil)
	s.now = func() time.Time { return fixedNow }
	return s, db, inv
}

// fresh returns a loader handing out a new copy on every read
func fresh(a models.Announcement) func(context.Context, interface{}) *models.Announcement {
	return func(context.Context, interface{}) *models.Announcement {
		c := a
		c.Volunteers = append([]models.Person(nil), a.Volunteers...)
		c.VolunteersWaiting = append([]models.Person(nil), a.VolunteersWaiting...)
		c.Participants = append([]models.Person(nil), a.Participants...)
		return &c
	}
}

func TestServiceRegisterVolunteer(t *testing.T) {
	s, db, inv := newTestService()
	oid := primitive.NewObjectID()
	stored := models.Announcement{ID: oid, AssociationID: "asso1", MaxVolunteers: 1}

	var filter bson.D
	var update bson.D
	db.On("FindOne", mock.Anything, bson.M{"_id": oid}).Return(fresh(stored), nil)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Announcement{ID: oid, AssociationID: "asso1", MaxVolunteers: 1, NbVolunteers: 1, Volunteers: []models.Person{person("v1")}}, nil).
		Run(func(args mock.Arguments) {
			filter = args.Get(1).(bson.D)
			update = args.Get(2).(bson.D)
		})
	inv.On("InvalidateAnnouncement", mock.Anything, oid.Hex(), "asso1").Return()

	got, err := s.RegisterVolunteer(context.Background(), oid.Hex(), person("v1"))

	require.NoError(t, err)
	assert.Equal(t, 1, got.NbVolunteers)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: oid},
		{Key: "volunteers.id", Value: bson.D{{Key: "$ne", Value: "v1"}}},
		{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$nbVolunteers", "$maxVolunteers"}}}},
	}, filter)
	assert.Equal(t, "$push", update[0].Key)
	assert.Equal(t, "$inc", update[1].Key)
	assert.Equal(t, "$pull", update[2].Key)
	assert.Equal(t, bson.D{{Key: "updatedAt", Value: fixedNow}}, update[3].Value)
	inv.AssertExpectations(t)
}

func TestServiceCapacityExceededDoesNotWrite(t *testing.T) {
	s, db, inv := newTestService()
	oid := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(fresh(models.Announcement{ID: oid, MaxVolunteers: 1, NbVolunteers: 1, Volunteers: []models.Person{person("v1")}}), nil)

	_, err := s.RegisterVolunteer(context.Background(), oid.Hex(), person("v2"))

	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	db.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	inv.AssertNotCalled(t, "InvalidateAnnouncement", mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceAnnouncementNotFound(t *testing.T) {
	s, db, _ := newTestService()
	db.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := s.RegisterParticipant(context.Background(), primitive.NewObjectID().Hex(), person("p1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.RegisterParticipant(context.Background(), "not-an-object-id", person("p1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestServiceRemoveVolunteerNotRegistered(t *testing.T) {
	s, db, _ := newTestService()
	oid := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(fresh(models.Announcement{ID: oid, MaxVolunteers: 2, NbVolunteers: 1, Volunteers: []models.Person{person("v1")}}), nil)

	_, err := s.RemoveVolunteer(context.Background(), oid.Hex(), "ghost")

	assert.ErrorIs(t, err, apperrors.ErrNotRegistered)
	db.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceLostGuardRevalidates(t *testing.T) {
	s, db, inv := newTestService()
	oid := primitive.NewObjectID()

	db.On("FindOne", mock.Anything, mock.Anything).
		Return(fresh(models.Announcement{ID: oid, MaxVolunteers: 2, NbVolunteers: 1, Volunteers: []models.Person{person("v1")}}), nil).Once()
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(fresh(models.Announcement{ID: oid, MaxVolunteers: 2, NbVolunteers: 2, Volunteers: []models.Person{person("v1"), person("v3")}}), nil).Once()
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments).Once()

	_, err := s.RegisterVolunteer(context.Background(), oid.Hex(), person("v2"))

	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	db.AssertNumberOfCalls(t, "FindOne", 2)
	db.AssertNumberOfCalls(t, "FindOneAndUpdate", 1)
	inv.AssertNotCalled(t, "InvalidateAnnouncement", mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceGivesUpWithConflict(t *testing.T) {
	s, db, _ := newTestService()
	oid := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, mock.Anything).Return(fresh(models.Announcement{ID: oid, MaxParticipants: 10}), nil)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := s.RegisterParticipant(context.Background(), oid.Hex(), person("p1"))

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	db.AssertNumberOfCalls(t, "FindOneAndUpdate", maxAttempts)
}

func TestServiceStoreFailure(t *testing.T) {
	s, db, _ := newTestService()
	oid := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, mock.Anything).Return(fresh(models.Announcement{ID: oid, VolunteersWaiting: []models.Person{person("w1")}}), nil)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := s.RemoveVolunteerWaiting(context.Background(), oid.Hex(), "w1")

	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestServiceRemoveParticipantUsesPipeline(t *testing.T) {
	s, db, inv := newTestService()
	oid := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(fresh(models.Announcement{ID: oid, AssociationID: "asso1", MaxParticipants: 5, NbParticipants: 2, Participants: []models.Person{person("p1"), person("p1")}}), nil)

	var update mongo.Pipeline
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Announcement{ID: oid, AssociationID: "asso1", MaxParticipants: 5, Participants: []models.Person{}}, nil).
		Run(func(args mock.Arguments) { update = args.Get(2).(mongo.Pipeline) })
	inv.On("InvalidateAnnouncement", mock.Anything, oid.Hex(), "asso1").Return()

	got, err := s.RemoveParticipant(context.Background(), oid.Hex(), "p1")

	require.NoError(t, err)
	assert.Equal(t, 0, got.NbParticipants)
	require.Len(t, update, 1)
	set := update[0][0].Value.(bson.D)
	assert.Equal(t, "nbParticipants", set[0].Key)
	assert.Equal(t, "participants", set[1].Key)
	inv.AssertExpectations(t)
}

func TestServiceRegisterVolunteerWaitingGuard(t *testing.T) {
	s, db, inv := newTestService()
	oid := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, mock.Anything).Return(fresh(models.Announcement{ID: oid, AssociationID: "asso1"}), nil)

	var filter bson.D
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Announcement{ID: oid, AssociationID: "asso1", VolunteersWaiting: []models.Person{person("w1")}}, nil).
		Run(func(args mock.Arguments) { filter = args.Get(1).(bson.D) })
	inv.On("InvalidateAnnouncement", mock.Anything, oid.Hex(), "asso1").Return()

	_, err := s.RegisterVolunteerWaiting(context.Background(), oid.Hex(), person("w1"))

	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: oid},
		{Key: "volunteers.id", Value: bson.D{{Key: "$ne", Value: "w1"}}},
		{Key: "volunteersWaiting.id", Value: bson.D{{Key: "$ne", Value: "w1"}}},
	}, filter)
}
