package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/cache"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/metrics"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// maxAttempts bounds how often a transition re-reads the announcement after losing a race
const maxAttempts = 3

// Service applies registration transitions to stored announcements. Each transition
// reads the announcement, validates it with the pure state machine and commits with a
// single guarded update whose filter re-asserts the precondition. When the guard no
// longer holds the announcement is read and validated again.
type Service struct {
	announcements databases.AnnouncementDatabase
	invalidator   cache.Invalidator
	metrics       *metrics.Registry
	now           func() time.Time
}

// NewService returns a registration Service. metrics may be nil.
func NewService(announcements databases.AnnouncementDatabase, invalidator cache.Invalidator, m *metrics.Registry) *Service {
	return &Service{
		announcements: announcements,
		invalidator:   invalidator,
		metrics:       m,
		now:           time.Now,
	}
}

// transition describes one state machine step against the store
type transition struct {
	name   string
	apply  func(a *models.Announcement) error
	guard  bson.D
	update func(now time.Time) interface{}
}

// RegisterVolunteer activates a volunteer, removing them from the waiting list if needed
func (s *Service) RegisterVolunteer(ctx context.Context, announcementID string, p models.Person) (*models.Announcement, error) {
	return s.run(ctx, announcementID, transition{
		name:  "registerVolunteer",
		apply: func(a *models.Announcement) error { return RegisterVolunteer(a, p) },
		guard: bson.D{
			{Key: "volunteers.id", Value: bson.D{{Key: "$ne", Value: p.ID}}},
			{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$nbVolunteers", "$maxVolunteers"}}}},
		},
		update: func(now time.Time) interface{} {
			return bson.D{
				{Key: "$push", Value: bson.D{{Key: "volunteers", Value: p}}},
				{Key: "$inc", Value: bson.D{{Key: "nbVolunteers", Value: 1}}},
				{Key: "$pull", Value: bson.D{{Key: "volunteersWaiting", Value: bson.D{{Key: "id", Value: p.ID}}}}},
				{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
			}
		},
	})
}

// RegisterVolunteerWaiting puts a volunteer on the waiting list
func (s *Service) RegisterVolunteerWaiting(ctx context.Context, announcementID string, p models.Person) (*models.Announcement, error) {
	return s.run(ctx, announcementID, transition{
		name:  "registerVolunteerWaiting",
		apply: func(a *models.Announcement) error { return RegisterVolunteerWaiting(a, p) },
		guard: bson.D{
			{Key: "volunteers.id", Value: bson.D{{Key: "$ne", Value: p.ID}}},
			{Key: "volunteersWaiting.id", Value: bson.D{{Key: "$ne", Value: p.ID}}},
		},
		update: func(now time.Time) interface{} {
			return bson.D{
				{Key: "$push", Value: bson.D{{Key: "volunteersWaiting", Value: p}}},
				{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
			}
		},
	})
}

// RemoveVolunteer removes an active volunteer
func (s *Service) RemoveVolunteer(ctx context.Context, announcementID, personID string) (*models.Announcement, error) {
	return s.run(ctx, announcementID, transition{
		name:  "removeVolunteer",
		apply: func(a *models.Announcement) error { return RemoveVolunteer(a, personID) },
		guard: bson.D{{Key: "volunteers.id", Value: personID}},
		update: func(now time.Time) interface{} {
			return mongo.Pipeline{{{Key: "$set", Value: bson.D{
				removeCounted("volunteers", "nbVolunteers", personID),
				removeFrom("volunteers", personID),
				{Key: "updatedAt", Value: now},
			}}}}
		},
	})
}

// RemoveVolunteerWaiting removes a volunteer from the waiting list
func (s *Service) RemoveVolunteerWaiting(ctx context.Context, announcementID, personID string) (*models.Announcement, error) {
	return s.run(ctx, announcementID, transition{
		name:  "removeVolunteerWaiting",
		apply: func(a *models.Announcement) error { return RemoveVolunteerWaiting(a, personID) },
		guard: bson.D{{Key: "volunteersWaiting.id", Value: personID}},
		update: func(now time.Time) interface{} {
			return bson.D{
				{Key: "$pull", Value: bson.D{{Key: "volunteersWaiting", Value: bson.D{{Key: "id", Value: personID}}}}},
				{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
			}
		},
	})
}

// RegisterParticipant adds a participant. Duplicates are accepted.
func (s *Service) RegisterParticipant(ctx context.Context, announcementID string, p models.Person) (*models.Announcement, error) {
	return s.run(ctx, announcementID, transition{
		name:  "registerParticipant",
		apply: func(a *models.Announcement) error { return RegisterParticipant(a, p) },
		guard: bson.D{
			{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$nbParticipants", "$maxParticipants"}}}},
		},
		update: func(now time.Time) interface{} {
			return bson.D{
				{Key: "$push", Value: bson.D{{Key: "participants", Value: p}}},
				{Key: "$inc", Value: bson.D{{Key: "nbParticipants", Value: 1}}},
				{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
			}
		},
	})
}

// RemoveParticipant removes every registration of a participant
func (s *Service) RemoveParticipant(ctx context.Context, announcementID, personID string) (*models.Announcement, error) {
	return s.run(ctx, announcementID, transition{
		name:  "removeParticipant",
		apply: func(a *models.Announcement) error { return RemoveParticipant(a, personID) },
		guard: bson.D{{Key: "participants.id", Value: personID}},
		update: func(now time.Time) interface{} {
			return mongo.Pipeline{{{Key: "$set", Value: bson.D{
				removeCounted("participants", "nbParticipants", personID),
				removeFrom("participants", personID),
				{Key: "updatedAt", Value: now},
			}}}}
		},
	})
}

func (s *Service) run(ctx context.Context, announcementID string, t transition) (*models.Announcement, error) {
	oid, err := primitive.ObjectIDFromHex(announcementID)
	if err != nil {
		return nil, apperrors.Clone(apperrors.ErrNotFound, "announcement not found")
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		current, err := s.announcements.FindOne(ctx, bson.M{"_id": oid})
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				s.metrics.RecordRegistration(t.name, apperrors.ErrNotFound.Code)
				return nil, apperrors.Clone(apperrors.ErrNotFound, "announcement not found")
			}
			return nil, s.storeError(t.name, announcementID, err)
		}

		if err := t.apply(current); err != nil {
			s.metrics.RecordRegistration(t.name, apperrors.FromError(err).Code)
			return nil, err
		}

		filter := append(bson.D{{Key: "_id", Value: oid}}, t.guard...)
		updated, err := s.announcements.FindOneAndUpdate(ctx, filter, t.update(s.now().UTC()),
			options.FindOneAndUpdate().SetReturnDocument(options.After))
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.metrics.RecordGuardRetry(t.name)
			zap.S().Debugw("registration guard failed, re-validating",
				"operation", t.name,
				"announcementId", announcementID,
				"attempt", attempt)
			continue
		}
		if err != nil {
			return nil, s.storeError(t.name, announcementID, err)
		}

		s.invalidator.InvalidateAnnouncement(ctx, announcementID, updated.AssociationID)
		s.metrics.RecordRegistration(t.name, "ok")
		return updated, nil
	}

	s.metrics.RecordRegistration(t.name, apperrors.ErrConflict.Code)
	zap.S().Warnw("registration gave up after concurrent updates",
		"operation", t.name,
		"announcementId", announcementID,
		"attempts", maxAttempts)
	return nil, apperrors.ErrConflict
}

func (s *Service) storeError(operation, announcementID string, err error) error {
	s.metrics.RecordRegistration(operation, apperrors.ErrInternal.Code)
	zap.S().Errorw("registration store call failed",
		"operation", operation,
		"announcementId", announcementID,
		"error", err)
	return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, fmt.Sprintf("%s failed", operation))
}

// peopleOrEmpty reads a person list, treating a missing or null list as empty
func peopleOrEmpty(list string) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{"$" + list, bson.A{}}}}
}

// matching selects the entries of list whose id is (or is not) personID
func matching(list, op, personID string) bson.D {
	return bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: peopleOrEmpty(list)},
		{Key: "as", Value: "p"},
		{Key: "cond", Value: bson.D{{Key: op, Value: bson.A{"$$p.id", bson.D{{Key: "$literal", Value: personID}}}}}},
	}}}
}

// removeFrom is the $set entry dropping personID from list
func removeFrom(list, personID string) bson.E {
	return bson.E{Key: list, Value: matching(list, "$ne", personID)}
}

// removeCounted is the $set entry lowering counter by the occurrences of personID in list.
// Expressions in one $set stage see the document before the stage, so the count is taken
// from the list as it was before removal.
func removeCounted(list, counter, personID string) bson.E {
	return bson.E{Key: counter, Value: bson.D{{Key: "$subtract", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$" + counter, 0}}},
		bson.D{{Key: "$size", Value: matching(list, "$eq", personID)}},
	}}}}
}
