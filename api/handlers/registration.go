package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Benevo-clic/benevoclic-api/api"
	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/models"
	"github.com/Benevo-clic/benevoclic-api/registration"
)

// Registration exposes the volunteer and participant transitions
type Registration struct {
	Service *registration.Service
	Bulk    *registration.BulkOperator
}

type registerFunc func(ctx context.Context, announcementID string, p models.Person) (*models.Announcement, error)

type removeFunc func(ctx context.Context, announcementID, personID string) (*models.Announcement, error)

// register decodes the person from the body and applies fn to the announcement in the path
func register(fn registerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Person
		if err := decodeBody(w, r, &p); err != nil {
			config.AppErrorStatus(w, err)
			return
		}
		if err := validate.Struct(p); err != nil {
			config.AppErrorStatus(w, apperrors.Validation(err))
			return
		}
		if err := api.RequireSelfOrAdmin(r.Context(), p.ID); err != nil {
			config.AppErrorStatus(w, err)
			return
		}

		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()

		updated, err := fn(ctx, mux.Vars(r)["announcementId"], p)
		if err != nil {
			config.AppErrorStatus(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func remove(fn removeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if err := api.RequireSelfOrAdmin(r.Context(), vars["personId"]); err != nil {
			config.AppErrorStatus(w, err)
			return
		}

		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()

		updated, err := fn(ctx, vars["announcementId"], vars["personId"])
		if err != nil {
			config.AppErrorStatus(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// RegisterVolunteerHandler activates a volunteer on an announcement
func (reg Registration) RegisterVolunteerHandler(w http.ResponseWriter, r *http.Request) {
	register(reg.Service.RegisterVolunteer)(w, r)
}

// RemoveVolunteerHandler withdraws an active volunteer
func (reg Registration) RemoveVolunteerHandler(w http.ResponseWriter, r *http.Request) {
	remove(reg.Service.RemoveVolunteer)(w, r)
}

// RegisterVolunteerWaitingHandler puts a volunteer on the waiting list
func (reg Registration) RegisterVolunteerWaitingHandler(w http.ResponseWriter, r *http.Request) {
	register(reg.Service.RegisterVolunteerWaiting)(w, r)
}

// RemoveVolunteerWaitingHandler takes a volunteer off the waiting list
func (reg Registration) RemoveVolunteerWaitingHandler(w http.ResponseWriter, r *http.Request) {
	remove(reg.Service.RemoveVolunteerWaiting)(w, r)
}

// RegisterParticipantHandler adds a participant
func (reg Registration) RegisterParticipantHandler(w http.ResponseWriter, r *http.Request) {
	register(reg.Service.RegisterParticipant)(w, r)
}

// RemoveParticipantHandler removes a participant
func (reg Registration) RemoveParticipantHandler(w http.ResponseWriter, r *http.Request) {
	remove(reg.Service.RemoveParticipant)(w, r)
}

// RemoveVolunteerEverywhereHandler drops a volunteer from every announcement
func (reg Registration) RemoveVolunteerEverywhereHandler(w http.ResponseWriter, r *http.Request) {
	reg.bulk(w, r, reg.Bulk.RemoveVolunteerEverywhere)
}

// RemoveParticipantEverywhereHandler drops a participant from every announcement
func (reg Registration) RemoveParticipantEverywhereHandler(w http.ResponseWriter, r *http.Request) {
	reg.bulk(w, r, reg.Bulk.RemoveParticipantEverywhere)
}

func (reg Registration) bulk(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, personID string) (int64, error)) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	modified, err := fn(ctx, mux.Vars(r)["personId"])
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.BulkRemovalResponse{ModifiedCount: modified})
}
