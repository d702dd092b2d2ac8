package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Benevo-clic/benevoclic-api/announcements"
	"github.com/Benevo-clic/benevoclic-api/api/handlers"
	"github.com/Benevo-clic/benevoclic-api/databases/mocks"
	"github.com/Benevo-clic/benevoclic-api/models"
	"github.com/Benevo-clic/benevoclic-api/query"
	storagemocks "github.com/Benevo-clic/benevoclic-api/storage/mocks"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newAnnouncementHandler(db *mocks.AnnouncementDatabase, images *storagemocks.ObjectStorage) handlers.Announcement {
	validate := announcements.NewValidator()
	var svc *announcements.Service
	if images == nil {
		svc = announcements.NewService(db, nil, nil, validate)
	} else {
		svc = announcements.NewService(db, nil, images, validate)
	}
	return handlers.Announcement{
		Service:  svc,
		Searcher: query.NewSearcher(query.NewExecutor(db, nil), validate),
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorMessageResponse {
	t.Helper()
	var resp models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestAnnouncement_GetHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	id := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(&models.Announcement{ID: id, NameEvent: "Beach cleanup"}, nil)
	h := newAnnouncementHandler(db, nil)

	req := httptest.NewRequest("GET", "/api/v1/announcements/"+id.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"announcementId": id.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.GetHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got models.Announcement
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Beach cleanup", got.NameEvent)
}

func TestAnnouncement_GetHandlerNotFound(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	missing := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, bson.M{"_id": missing}).Return(nil, mongo.ErrNoDocuments)
	h := newAnnouncementHandler(db, nil)

	for _, id := range []string{"1234", missing.Hex()} {
		req := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"announcementId": id})
		rr := httptest.NewRecorder()
		http.HandlerFunc(h.GetHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code, id)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Code)
	}
}

func TestAnnouncement_GetHandlerStoreFailure(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	h := newAnnouncementHandler(db, nil)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"announcementId": primitive.NewObjectID().Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.GetHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "mocked-error")
}

func TestAnnouncement_CreateHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	insert := &mocks.InsertOneResultHelper{}
	id := primitive.NewObjectID()
	insert.On("Decode").Return(id)
	db.On("InsertOne", mock.Anything, mock.MatchedBy(func(a models.Announcement) bool {
		return a.NameEvent == "Food bank" && a.Status == models.AnnouncementStatusActive && a.LocationAnnouncement != nil
	})).Return(insert, nil)
	h := newAnnouncementHandler(db, nil)

	body := `{"nameEvent":"Food bank","associationId":"as1","associationName":"Restos","dateEvent":"2026-11-02",
		"hoursEvent":"09:00 - 12:00","latitude":48.85,"longitude":2.35,"maxVolunteers":5}`
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/announcements", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var got models.Announcement
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, []float64{2.35, 48.85}, got.LocationAnnouncement.Coordinates)
	assert.Equal(t, []models.Person{}, got.Volunteers)
}

func TestAnnouncement_CreateHandlerRejectsBadInput(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	h := newAnnouncementHandler(db, nil)

	cases := map[string]string{
		"malformed json":   `{"nameEvent":`,
		"missing name":     `{"associationId":"as1","associationName":"Restos","dateEvent":"2026-11-02","hoursEvent":"09:00 - 12:00"}`,
		"inverted hours":   `{"nameEvent":"x","associationId":"as1","associationName":"Restos","dateEvent":"2026-11-02","hoursEvent":"12:00 - 09:00"}`,
		"latitude only":    `{"nameEvent":"x","associationId":"as1","associationName":"Restos","dateEvent":"2026-11-02","hoursEvent":"09:00 - 12:00","latitude":48.8}`,
		"bad event date":   `{"nameEvent":"x","associationId":"as1","associationName":"Restos","dateEvent":"02/11/2026","hoursEvent":"09:00 - 12:00"}`,
		"negative maximum": `{"nameEvent":"x","associationId":"as1","associationName":"Restos","dateEvent":"2026-11-02","hoursEvent":"09:00 - 12:00","maxVolunteers":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			http.HandlerFunc(h.CreateHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr).Code)
		})
	}
	db.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAnnouncement_FilterHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	h := newAnnouncementHandler(db, nil)

	rr := httptest.NewRecorder()
	body := `{"dateEventFrom":"yesterday"}`
	http.HandlerFunc(h.FilterHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	body = `{"sort":"popularity"}`
	http.HandlerFunc(h.FilterHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	db.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func TestAnnouncement_ListByAssociationHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	db.On("Find", mock.Anything, bson.M{"associationId": "as1"}, mock.Anything).
		Return([]models.Announcement{{NameEvent: "a"}, {NameEvent: "b"}}, nil)
	h := newAnnouncementHandler(db, nil)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/", nil), map[string]string{"associationId": "as1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ListByAssociationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []models.Announcement
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestAnnouncement_DeleteByAssociationHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	filter := bson.M{"associationId": "as1"}
	db.On("Find", mock.Anything, filter).Return([]models.Announcement{{ID: primitive.NewObjectID()}, {ID: primitive.NewObjectID()}}, nil)
	db.On("DeleteMany", mock.Anything, filter).Return(int64(2), nil)
	h := newAnnouncementHandler(db, nil)

	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/", nil), map[string]string{"associationId": "as1"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.DeleteByAssociationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deletedCount":2}`, rr.Body.String())
}

func imageRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "cover.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("PUT", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnnouncement_UploadImageHandler(t *testing.T) {
	db := &mocks.AnnouncementDatabase{}
	images := &storagemocks.ObjectStorage{}
	id := primitive.NewObjectID()
	url := "https://res.cloudinary.com/demo/image/upload/announcements/" + id.Hex()
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(&models.Announcement{ID: id}, nil)
	images.On("Upload", mock.Anything, id.Hex(), pngHeader).Return(url, nil)
	db.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": id}, mock.Anything, mock.Anything).
		Return(&models.Announcement{ID: id, AnnouncementImage: url}, nil)
	h := newAnnouncementHandler(db, images)

	req := mux.SetURLVars(imageRequest(t, "file", pngHeader), map[string]string{"announcementId": id.Hex()})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UploadImageHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), url)
	images.AssertExpectations(t)
}

func TestAnnouncement_UploadImageHandlerRejects(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	h := newAnnouncementHandler(&mocks.AnnouncementDatabase{}, &storagemocks.ObjectStorage{})
	req := mux.SetURLVars(imageRequest(t, "image", pngHeader), map[string]string{"announcementId": id})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UploadImageHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = mux.SetURLVars(imageRequest(t, "file", []byte("plain text, not an image")), map[string]string{"announcementId": id})
	rr = httptest.NewRecorder()
	http.HandlerFunc(h.UploadImageHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = mux.SetURLVars(imageRequest(t, "file", bytes.Repeat([]byte{0}, announcements.MaxImageSize+1)), map[string]string{"announcementId": id})
	rr = httptest.NewRecorder()
	http.HandlerFunc(h.UploadImageHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	unconfigured := newAnnouncementHandler(&mocks.AnnouncementDatabase{}, nil)
	req = mux.SetURLVars(imageRequest(t, "file", pngHeader), map[string]string{"announcementId": id})
	rr = httptest.NewRecorder()
	http.HandlerFunc(unconfigured.UploadImageHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
