package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Benevo-clic/benevoclic-api/announcements"
	"github.com/Benevo-clic/benevoclic-api/api"
	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/models"
	"github.com/Benevo-clic/benevoclic-api/query"
)

// imageField is the multipart field carrying a cover image
const imageField = "file"

// Announcement exposes announcement search, listing and lifecycle endpoints
type Announcement struct {
	Service  *announcements.Service
	Searcher *query.Searcher
}

// FilterHandler runs a filtered, paginated search
func (a Announcement) FilterHandler(w http.ResponseWriter, r *http.Request) {
	var filter models.AnnouncementFilter
	if err := decodeBody(w, r, &filter); err != nil {
		config.AppErrorStatus(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	result, err := a.Searcher.Search(ctx, filter)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListHandler returns every announcement
func (a Announcement) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := a.Service.ListAll(ctx)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateHandler creates an announcement
func (a Announcement) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAnnouncementRequest
	if err := decodeBody(w, r, &req); err != nil {
		config.AppErrorStatus(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := a.Service.Create(ctx, req)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetHandler returns a single announcement
func (a Announcement) GetHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	announcement, err := a.Service.Get(ctx, mux.Vars(r)["announcementId"])
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcement)
}

// UpdateHandler applies an administrative edit
func (a Announcement) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAnnouncementRequest
	if err := decodeBody(w, r, &req); err != nil {
		config.AppErrorStatus(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := a.Service.Update(ctx, mux.Vars(r)["announcementId"], req)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// UpdateStatusHandler changes the publication status
func (a Announcement) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		config.AppErrorStatus(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := a.Service.UpdateStatus(ctx, mux.Vars(r)["announcementId"], req)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteHandler removes an announcement and its cover image
func (a Announcement) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Service.Delete(ctx, mux.Vars(r)["announcementId"]); err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImageHandler stores the cover image sent as the multipart "file" field
func (a Announcement) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, announcements.MaxImageSize+(64<<10))
	if err := r.ParseMultipartForm(announcements.MaxImageSize); err != nil {
		config.AppErrorStatus(w, imageReadError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile(imageField)
	if err != nil {
		config.AppErrorStatus(w, apperrors.Validation(fmt.Errorf("missing %q form field", imageField)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, announcements.MaxImageSize+1))
	if err != nil {
		config.AppErrorStatus(w, imageReadError(err))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := a.Service.SetImage(ctx, mux.Vars(r)["announcementId"], data)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func imageReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return apperrors.Validation(fmt.Errorf("image exceeds %d bytes", announcements.MaxImageSize))
	}
	return apperrors.Validation(fmt.Errorf("unreadable image upload: %w", err))
}

// ListByAssociationHandler returns the announcements of one association
func (a Announcement) ListByAssociationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := a.Service.ListByAssociation(ctx, mux.Vars(r)["associationId"])
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteByAssociationHandler removes every announcement of an association
func (a Announcement) DeleteByAssociationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := a.Service.DeleteByAssociation(ctx, mux.Vars(r)["associationId"])
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.DeleteManyResponse{DeletedCount: deleted})
}
