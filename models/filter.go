package models

// Sort orders accepted by the announcement search
const (
	SortDateEventAsc        = "dateEvent_asc"
	SortDateEventDesc       = "dateEvent_desc"
	SortDatePublicationDesc = "datePublication_desc"
	SortDatePublicationAsc  = "datePublication_asc"
)

// AnnouncementFilter holds the optional criteria of an announcement search.
// Unset fields impose no constraint.
type AnnouncementFilter struct {
	NameEvent           string             `json:"nameEvent,omitempty"`
	Description         string             `json:"description,omitempty"`
	Status              AnnouncementStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE COMPLETED"`
	Tags                []string           `json:"tags,omitempty"`
	AssociationName     string             `json:"associationName,omitempty"`
	DateEventFrom       string             `json:"dateEventFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateEventTo         string             `json:"dateEventTo,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HoursEventFrom      string             `json:"hoursEventFrom,omitempty" validate:"omitempty,datetime=15:04"`
	HoursEventTo        string             `json:"hoursEventTo,omitempty" validate:"omitempty,datetime=15:04"`
	PublicationInterval string             `json:"publicationInterval,omitempty" validate:"omitempty,oneof=1h 5h 1d 1w 1M"`
	DatePublicationFrom string             `json:"datePublicationFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DatePublicationTo   string             `json:"datePublicationTo,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Latitude            *float64           `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude           *float64           `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Radius              *float64           `json:"radius,omitempty" validate:"omitempty,gt=0"`
	Page                *int               `json:"page,omitempty"`
	Limit               *int               `json:"limit,omitempty"`
	Sort                string             `json:"sort,omitempty" validate:"omitempty,oneof=dateEvent_asc dateEvent_desc datePublication_desc datePublication_asc"`
}
