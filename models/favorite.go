package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite links a volunteer to an announcement they bookmarked. Unique per pair.
type Favorite struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VolunteerID    string             `json:"volunteerId" bson:"volunteerId"`
	AnnouncementID string             `json:"announcementId" bson:"announcementId"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateFavoriteRequest holds the structure for adding a favorite
type CreateFavoriteRequest struct {
	VolunteerID    string `json:"volunteerId" validate:"required"`
	AnnouncementID string `json:"announcementId" validate:"required,mongodb"`
}
