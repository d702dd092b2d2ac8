package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Volunteer holds the fields of the volunteers collection the engine relies on.
// Everything else about a volunteer is owned by the profile service.
type Volunteer struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VolunteerID string             `json:"volunteerId" bson:"volunteerId"`
	FirstName   string             `json:"firstName" bson:"firstName"`
	LastName    string             `json:"lastName" bson:"lastName"`
}
