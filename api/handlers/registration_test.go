package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shaj13/go-guardian/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Benevo-clic/benevoclic-api/api"
	"github.com/Benevo-clic/benevoclic-api/api/handlers"
	"github.com/Benevo-clic/benevoclic-api/cache"
	"github.com/Benevo-clic/benevoclic-api/databases/mocks"
	"github.com/Benevo-clic/benevoclic-api/models"
	"github.com/Benevo-clic/benevoclic-api/registration"
)

func newRegistrationHandler(db *mocks.AnnouncementDatabase) handlers.Registration {
	c := cache.New(nil, 0, nil)
	return handlers.Registration{
		Service: registration.NewService(db, c, nil),
		Bulk:    registration.NewBulkOperator(db, c, nil),
	}
}

// asUser attaches an authenticated user to req the way the auth middleware does
func asUser(req *http.Request, id string, roles ...string) *http.Request {
	return req.WithContext(api.WithUser(req.Context(), auth.NewDefaultUser(id+"@example.org", id, roles, nil)))
}

func TestRegistration_RegisterVolunteerHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	id := primitive.NewObjectID()
	current := &models.Announcement{ID: id, MaxVolunteers: 2, VolunteersWaiting: []models.Person{{ID: "v1", Name: "Ana"}}}
	updated := &models.Announcement{ID: id, MaxVolunteers: 2, NbVolunteers: 1, Volunteers: []models.Person{{ID: "v1", Name: "Ana"}}}
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(current, nil)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated, nil)
	h := newRegistrationHandler(db)

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"id":"v1","name":"Ana"}`))
	req = asUser(mux.SetURLVars(req, map[string]string{"announcementId": id.Hex()}), "v1", models.RoleVolunteer)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterVolunteerHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got models.Announcement
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got.NbVolunteers)
	assert.Empty(t, got.VolunteersWaiting)
}

func TestRegistration_RegisterVolunteerHandlerErrors(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	full := primitive.NewObjectID()
	missing := primitive.NewObjectID()
	broken := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, bson.M{"_id": full}).
		Return(&models.Announcement{ID: full, MaxVolunteers: 1, NbVolunteers: 1, Volunteers: []models.Person{{ID: "v9"}}}, nil)
	db.On("FindOne", mock.Anything, bson.M{"_id": missing}).Return(nil, mongo.ErrNoDocuments)
	db.On("FindOne", mock.Anything, bson.M{"_id": broken}).Return(nil, errors.New("mocked-error"))
	h := newRegistrationHandler(db)

	tests := []struct {
		name           string
		announcementID string
		body           string
		status         int
		code           string
	}{
		{"capacity reached", full.Hex(), `{"id":"v1"}`, http.StatusUnprocessableEntity, "CAPACITY_EXCEEDED"},
		{"already active", full.Hex(), `{"id":"v9"}`, http.StatusConflict, "ALREADY_REGISTERED"},
		{"unknown announcement", missing.Hex(), `{"id":"v1"}`, http.StatusNotFound, "NOT_FOUND"},
		{"invalid announcement id", "nope", `{"id":"v1"}`, http.StatusNotFound, "NOT_FOUND"},
		{"missing person id", full.Hex(), `{"name":"Ana"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"store failure", broken.Hex(), `{"id":"v1"}`, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest("POST", "/", strings.NewReader(tt.body)), map[string]string{"announcementId": tt.announcementID})
			req = asUser(req, "admin", models.RoleAdmin)
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.RegisterVolunteerHandler).ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
	db.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistration_RemoveParticipantHandlerNotRegistered(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	id := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(&models.Announcement{ID: id, MaxParticipants: 3}, nil)
	h := newRegistrationHandler(db)

	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/", nil), map[string]string{"announcementId": id.Hex(), "personId": "p1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RemoveParticipantHandler).ServeHTTP(rr, asUser(req, "p1", models.RoleVolunteer))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "NOT_REGISTERED", decodeError(t, rr).Code)
}

func TestRegistration_ActingForSomeoneElseIsForbidden(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	h := newRegistrationHandler(db)
	id := primitive.NewObjectID().Hex()

	req := mux.SetURLVars(httptest.NewRequest("POST", "/", strings.NewReader(`{"id":"v2"}`)), map[string]string{"announcementId": id})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterVolunteerHandler).ServeHTTP(rr, asUser(req, "v1", models.RoleVolunteer))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rr).Code)

	// an association does not manage other people's registrations either
	req = mux.SetURLVars(httptest.NewRequest("DELETE", "/", nil), map[string]string{"announcementId": id, "personId": "v2"})
	rr = httptest.NewRecorder()
	http.HandlerFunc(h.RemoveVolunteerHandler).ServeHTTP(rr, asUser(req, "asso", models.RoleAssociation))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = mux.SetURLVars(httptest.NewRequest("DELETE", "/", nil), map[string]string{"announcementId": id, "personId": "v2"})
	rr = httptest.NewRecorder()
	http.HandlerFunc(h.RemoveVolunteerWaitingHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	db.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestRegistration_AdminMayActForAnyone(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	id := primitive.NewObjectID()
	current := &models.Announcement{ID: id, MaxParticipants: 3}
	updated := &models.Announcement{ID: id, MaxParticipants: 3, NbParticipants: 1, Participants: []models.Person{{ID: "p7"}}}
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(current, nil)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated, nil)
	h := newRegistrationHandler(db)

	req := mux.SetURLVars(httptest.NewRequest("POST", "/", strings.NewReader(`{"id":"p7"}`)), map[string]string{"announcementId": id.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterParticipantHandler).ServeHTTP(rr, asUser(req, "admin", models.RoleAdmin))

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRegistration_RemoveVolunteerEverywhereHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	db.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 3, ModifiedCount: 3}, nil).Once()
	db.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{}, nil).Once()
	h := newRegistrationHandler(db)

	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/", nil), map[string]string{"personId": "v1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RemoveVolunteerEverywhereHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"modifiedCount":3}`, rr.Body.String())

	// nothing left to remove is not an error
	rr = httptest.NewRecorder()
	http.HandlerFunc(h.RemoveVolunteerEverywhereHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"modifiedCount":0}`, rr.Body.String())
}

func TestRegistration_RemoveParticipantEverywhereHandlerFailure(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	db.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	h := newRegistrationHandler(db)

	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/", nil), map[string]string{"personId": "p1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RemoveParticipantEverywhereHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
