package models

// FavoritesCleanupResult is returned by the manual favorites reconciliation
type FavoritesCleanupResult struct {
	DeletedCount int64    `json:"deletedCount"`
	Errors       []string `json:"errors"`
}

// OrphanVolunteersReport is returned by the volunteer reconciliation pass
type OrphanVolunteersReport struct {
	OrphanIDs            []string `json:"orphanIds"`
	FavoritesDeleted     int64    `json:"favoritesDeleted"`
	AnnouncementsUpdated int64    `json:"announcementsUpdated"`
	Errors               []string `json:"errors,omitempty"`
}

// BulkRemovalResponse holds the number of announcements touched by a bulk removal
type BulkRemovalResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteManyResponse holds the number of documents removed by a cascade delete
type DeleteManyResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}
