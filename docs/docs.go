// Package docs Benevoclic announcement API.
//
// Documentation of the Benevoclic announcement discovery and registration API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/Benevo-clic/benevoclic-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/announcements/filter announcements filterAnnouncements
// Searches announcements. Geo searches need latitude, longitude and radius in meters.
// responses:
//   200: paginatedAnnouncementsResponse
//   400: errorResponse
//   429: errorResponse

// swagger:parameters filterAnnouncements
type filterAnnouncementsParams struct {
	// in:body
	Body models.AnnouncementFilter
}

// A page of announcements matching the filter
// swagger:response paginatedAnnouncementsResponse
type paginatedAnnouncementsResponseWrapper struct {
	// in:body
	Body models.PaginatedAnnouncements
}

// swagger:route GET /api/v1/announcements/{announcementId} announcements announcementByID
// Gets a single announcement by ID.
// responses:
//   200: announcementResponse
//   404: errorResponse

// swagger:route POST /api/v1/announcements/{announcementId}/volunteers registrations registerVolunteer
// Registers a volunteer. A volunteer on the waiting list leaves it.
// security:
//   bearer:
// responses:
//   200: announcementResponse
//   409: errorResponse
//   422: errorResponse

// swagger:parameters registerVolunteer
type registerVolunteerParams struct {
	// in:path
	AnnouncementID string `json:"announcementId"`
	// in:body
	Body models.Person
}

// The announcement after the operation
// swagger:response announcementResponse
type announcementResponseWrapper struct {
	// in:body
	Body models.Announcement
}

// swagger:route DELETE /api/v1/volunteers/{personId}/announcements registrations removeVolunteerEverywhere
// Removes a volunteer from every announcement. Admin only.
// security:
//   bearer:
// responses:
//   200: bulkRemovalResponse

// swagger:response bulkRemovalResponse
type bulkRemovalResponseWrapper struct {
	// in:body
	Body models.BulkRemovalResponse
}

// swagger:route POST /api/v1/admin/reconcile/favorites admin reconcileFavorites
// Deletes favorites whose announcement no longer exists. Admin only.
// security:
//   bearer:
// responses:
//   200: favoritesCleanupResponse

// swagger:response favoritesCleanupResponse
type favoritesCleanupResponseWrapper struct {
	// in:body
	Body models.FavoritesCleanupResult
}

// An error with a stable machine readable code
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
