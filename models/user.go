package models

// User holds the structure for the users collection in mongo, as written by the identity provider
type User struct {
	ID    string `json:"_id" bson:"_id"`
	Email string `json:"email" bson:"email"`
	Name  string `json:"name" bson:"name"`
	Role  string `json:"role" bson:"role"` // 'VOLUNTEER', 'ASSOCIATION', 'ADMIN'
}

// Roles known to the API
const (
	RoleVolunteer   = "VOLUNTEER"
	RoleAssociation = "ASSOCIATION"
	RoleAdmin       = "ADMIN"
)
