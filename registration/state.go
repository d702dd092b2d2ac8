// Package registration holds the volunteer and participant registration state
// machine of an announcement and the operators that apply it to the store.
package registration

import (
	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// VolunteerState is where a person stands on the volunteer side of an announcement
type VolunteerState int

const (
	Absent VolunteerState = iota
	Waiting
	Active
)

func (s VolunteerState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Active:
		return "active"
	default:
		return "absent"
	}
}

// VolunteerStateOf reports the volunteer state of personID
func VolunteerStateOf(a *models.Announcement, personID string) VolunteerState {
	if indexOf(a.Volunteers, personID) >= 0 {
		return Active
	}
	if indexOf(a.VolunteersWaiting, personID) >= 0 {
		return Waiting
	}
	return Absent
}

// IsParticipant reports whether personID is registered as a participant
func IsParticipant(a *models.Announcement, personID string) bool {
	return indexOf(a.Participants, personID) >= 0
}

// full is the capacity rule: max of 0 means closed, never unlimited
func full(count, max int) bool {
	return count >= max
}

// RegisterVolunteer activates p. A waiting person leaves the waiting list in the same step.
// On error a is left untouched.
func RegisterVolunteer(a *models.Announcement, p models.Person) error {
	if VolunteerStateOf(a, p.ID) == Active {
		return apperrors.Clone(apperrors.ErrAlreadyRegistered, "volunteer is already registered")
	}
	if full(a.NbVolunteers, a.MaxVolunteers) {
		return apperrors.Clone(apperrors.ErrCapacityExceeded, "volunteer capacity reached")
	}
	a.VolunteersWaiting = without(a.VolunteersWaiting, p.ID)
	a.Volunteers = append(a.Volunteers, p)
	a.NbVolunteers++
	return nil
}

// RegisterVolunteerWaiting puts p on the waiting list
func RegisterVolunteerWaiting(a *models.Announcement, p models.Person) error {
	switch VolunteerStateOf(a, p.ID) {
	case Active:
		return apperrors.Clone(apperrors.ErrAlreadyRegistered, "volunteer is already registered")
	case Waiting:
		return apperrors.Clone(apperrors.ErrAlreadyRegistered, "volunteer is already on the waiting list")
	}
	a.VolunteersWaiting = append(a.VolunteersWaiting, p)
	return nil
}

// RemoveVolunteer deactivates personID
func RemoveVolunteer(a *models.Announcement, personID string) error {
	n := count(a.Volunteers, personID)
	if n == 0 {
		return apperrors.Clone(apperrors.ErrNotRegistered, "volunteer is not registered")
	}
	a.Volunteers = without(a.Volunteers, personID)
	a.NbVolunteers -= n
	return nil
}

// RemoveVolunteerWaiting takes personID off the waiting list
func RemoveVolunteerWaiting(a *models.Announcement, personID string) error {
	if indexOf(a.VolunteersWaiting, personID) < 0 {
		return apperrors.Clone(apperrors.ErrNotRegistered, "volunteer is not on the waiting list")
	}
	a.VolunteersWaiting = without(a.VolunteersWaiting, personID)
	return nil
}

// RegisterParticipant adds p to the participants. The same person may be added
// more than once; only capacity is checked.
func RegisterParticipant(a *models.Announcement, p models.Person) error {
	if full(a.NbParticipants, a.MaxParticipants) {
		return apperrors.Clone(apperrors.ErrCapacityExceeded, "participant capacity reached")
	}
	a.Participants = append(a.Participants, p)
	a.NbParticipants++
	return nil
}

// RemoveParticipant removes every registration of personID
func RemoveParticipant(a *models.Announcement, personID string) error {
	n := count(a.Participants, personID)
	if n == 0 {
		return apperrors.Clone(apperrors.ErrNotRegistered, "participant is not registered")
	}
	a.Participants = without(a.Participants, personID)
	a.NbParticipants -= n
	return nil
}

func indexOf(people []models.Person, id string) int {
	for i, p := range people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func count(people []models.Person, id string) int {
	n := 0
	for _, p := range people {
		if p.ID == id {
			n++
		}
	}
	return n
}

func without(people []models.Person, id string) []models.Person {
	out := make([]models.Person, 0, len(people))
	for _, p := range people {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
