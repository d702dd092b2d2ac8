package registration

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/cache"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/metrics"
)

// BulkOperator removes a person from every announcement in one store-side update
type BulkOperator struct {
	announcements databases.AnnouncementDatabase
	invalidator   cache.Invalidator
	metrics       *metrics.Registry
	now           func() time.Time
}

// NewBulkOperator returns a BulkOperator. metrics may be nil.
func NewBulkOperator(announcements databases.AnnouncementDatabase, invalidator cache.Invalidator, m *metrics.Registry) *BulkOperator {
	return &BulkOperator{
		announcements: announcements,
		invalidator:   invalidator,
		metrics:       m,
		now:           time.Now,
	}
}

// RemoveVolunteerEverywhere drops personID from the active and waiting volunteers of every
// announcement. nbVolunteers only moves by the active occurrences. Returns the number of
// announcements modified, 0 when there was nothing left to remove.
func (b *BulkOperator) RemoveVolunteerEverywhere(ctx context.Context, personID string) (int64, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "volunteers.id", Value: personID}},
		bson.D{{Key: "volunteersWaiting.id", Value: personID}},
	}}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		removeCounted("volunteers", "nbVolunteers", personID),
		removeFrom("volunteers", personID),
		removeFrom("volunteersWaiting", personID),
		{Key: "updatedAt", Value: b.now().UTC()},
	}}}}
	return b.apply(ctx, "volunteer", personID, filter, update)
}

// RemoveParticipantEverywhere drops every registration of personID as a participant
func (b *BulkOperator) RemoveParticipantEverywhere(ctx context.Context, personID string) (int64, error) {
	filter := bson.D{{Key: "participants.id", Value: personID}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		removeCounted("participants", "nbParticipants", personID),
		removeFrom("participants", personID),
		{Key: "updatedAt", Value: b.now().UTC()},
	}}}}
	return b.apply(ctx, "participant", personID, filter, update)
}

func (b *BulkOperator) apply(ctx context.Context, role, personID string, filter bson.D, update mongo.Pipeline) (int64, error) {
	res, err := b.announcements.UpdateMany(ctx, filter, update)
	if err != nil {
		zap.S().Errorw("bulk removal failed", "role", role, "personId", personID, "error", err)
		return 0, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "bulk removal failed")
	}

	if res.ModifiedCount > 0 {
		b.invalidator.InvalidateAllAnnouncements(ctx)
		zap.S().Infow("removed person from announcements", "role", role, "personId", personID, "modified", res.ModifiedCount)
	}
	b.metrics.RecordBulkRemoval(role, res.ModifiedCount)
	return res.ModifiedCount, nil
}
