package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Benevo-clic/benevoclic-api/announcements"
	"github.com/Benevo-clic/benevoclic-api/api"
	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/models"
)

const (
	defaultFavoritesLimit = 20
	maxFavoritesLimit     = 100
)

// Favorite exposes volunteer bookmarks
type Favorite struct {
	Service *announcements.FavoritesService
}

// AddFavoriteHandler bookmarks an announcement. Adding an existing bookmark returns it unchanged.
func (f Favorite) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFavoriteRequest
	if err := decodeBody(w, r, &req); err != nil {
		config.AppErrorStatus(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	fav, err := f.Service.Add(ctx, req)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

// RemoveFavoriteHandler deletes a bookmark
func (f Favorite) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vars := mux.Vars(r)
	if err := f.Service.Remove(ctx, vars["volunteerId"], vars["announcementId"]); err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFavoritesHandler returns the bookmarked announcements of a volunteer, newest bookmark first
func (f Favorite) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultFavoritesLimit)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	if limit > maxFavoritesLimit {
		limit = maxFavoritesLimit
	}
	page, err := intQuery(r, "page", 1)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := f.Service.ListByVolunteer(ctx, mux.Vars(r)["volunteerId"], limit, page)
	if err != nil {
		config.AppErrorStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
