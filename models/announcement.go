package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnnouncementStatus is the publication state of an announcement
type AnnouncementStatus string

const (
	AnnouncementStatusActive    AnnouncementStatus = "ACTIVE"
	AnnouncementStatusInactive  AnnouncementStatus = "INACTIVE"
	AnnouncementStatusCompleted AnnouncementStatus = "COMPLETED"
)

// Announcement holds the structure for the announcements collection in mongo
type Announcement struct {
	ID                   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	NameEvent            string             `json:"nameEvent" bson:"nameEvent"`
	Description          string             `json:"description" bson:"description"`
	Tags                 []string           `json:"tags" bson:"tags"`
	AssociationID        string             `json:"associationId" bson:"associationId"`
	AssociationName      string             `json:"associationName" bson:"associationName"`
	DatePublication      time.Time          `json:"datePublication" bson:"datePublication"`
	DateEvent            time.Time          `json:"dateEvent" bson:"dateEvent"`
	HoursEvent           string             `json:"hoursEvent" bson:"hoursEvent"` // "HH:MM - HH:MM"
	Status               AnnouncementStatus `json:"status" bson:"status"`
	LocationAnnouncement *Location          `json:"locationAnnouncement,omitempty" bson:"locationAnnouncement,omitempty"`
	AnnouncementImage    string             `json:"announcementImage,omitempty" bson:"announcementImage,omitempty"`
	MaxVolunteers        int                `json:"maxVolunteers" bson:"maxVolunteers"`
	NbVolunteers         int                `json:"nbVolunteers" bson:"nbVolunteers"`
	Volunteers           []Person           `json:"volunteers" bson:"volunteers"`
	VolunteersWaiting    []Person           `json:"volunteersWaiting" bson:"volunteersWaiting"`
	MaxParticipants      int                `json:"maxParticipants" bson:"maxParticipants"`
	NbParticipants       int                `json:"nbParticipants" bson:"nbParticipants"`
	Participants         []Person           `json:"participants" bson:"participants"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Distance in meters from the search point, only set by geo searches
	Distance *float64 `json:"distance,omitempty" bson:"distance,omitempty"`
}

// Person is a denormalized {id, name} snapshot of a volunteer or participant
type Person struct {
	ID   string `json:"id" bson:"id" validate:"required"`
	Name string `json:"name" bson:"name"`
}

// Location is a GeoJSON point plus an optional postal address. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	PostalCode  string    `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	Country     string    `json:"country,omitempty" bson:"country,omitempty"`
}

// NewPoint builds a GeoJSON point from a latitude/longitude pair
func NewPoint(latitude, longitude float64) *Location {
	return &Location{Type: "Point", Coordinates: []float64{longitude, latitude}}
}

// CreateAnnouncementRequest holds the structure for creating a new announcement
type CreateAnnouncementRequest struct {
	NameEvent       string             `json:"nameEvent" validate:"required,min=1,max=200"`
	Description     string             `json:"description" validate:"max=5000"`
	Tags            []string           `json:"tags" validate:"dive,min=1"`
	AssociationID   string             `json:"associationId" validate:"required"`
	AssociationName string             `json:"associationName" validate:"required"`
	DateEvent       string             `json:"dateEvent" validate:"required,datetime=2006-01-02"`
	HoursEvent      string             `json:"hoursEvent" validate:"required,hoursrange"`
	Status          AnnouncementStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE COMPLETED"`
	Latitude        *float64           `json:"latitude" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude       *float64           `json:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
	Address         string             `json:"address"`
	City            string             `json:"city"`
	PostalCode      string             `json:"postalCode"`
	Country         string             `json:"country"`
	MaxVolunteers   int                `json:"maxVolunteers" validate:"min=0"`
	MaxParticipants int                `json:"maxParticipants" validate:"min=0"`
}

// UpdateAnnouncementRequest holds the structure for an administrative edit
type UpdateAnnouncementRequest struct {
	NameEvent       *string  `json:"nameEvent,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Tags            []string `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
	DateEvent       *string  `json:"dateEvent,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HoursEvent      *string  `json:"hoursEvent,omitempty" validate:"omitempty,hoursrange"`
	MaxVolunteers   *int     `json:"maxVolunteers,omitempty" validate:"omitempty,min=0"`
	MaxParticipants *int     `json:"maxParticipants,omitempty" validate:"omitempty,min=0"`
}

// UpdateStatusRequest holds the structure for a status change
type UpdateStatusRequest struct {
	Status AnnouncementStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE COMPLETED"`
}

// PaginatedAnnouncements is the response of a filtered search
type PaginatedAnnouncements struct {
	Items []Announcement `json:"items"`
	Meta  PageMeta       `json:"meta"`
}

// PageMeta holds pagination metadata
type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}
