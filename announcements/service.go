// Package announcements owns the announcement lifecycle: creation, edits, status
// changes, deletion, cover images and favorites. Reads go through the cache and every
// mutation invalidates it.
package announcements

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/cache"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/models"
	"github.com/Benevo-clic/benevoclic-api/storage"
)

// MaxImageSize is the largest accepted cover image
const MaxImageSize = 5 << 20

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var listSort = bson.D{{Key: "datePublication", Value: -1}, {Key: "_id", Value: 1}}

// Service manages announcements
type Service struct {
	announcements databases.AnnouncementDatabase
	cache         *cache.Cache
	images        storage.ObjectStorage
	validate      *validator.Validate
	now           func() time.Time
}

// NewService returns an announcement Service. c and images may be nil: a nil cache
// reads through to the store, nil images rejects uploads.
func NewService(announcements databases.AnnouncementDatabase, c *cache.Cache, images storage.ObjectStorage, validate *validator.Validate) *Service {
	if validate == nil {
		validate = validator.New()
	}
	registerValidations(validate)
	return &Service{
		announcements: announcements,
		cache:         c,
		images:        images,
		validate:      validate,
		now:           time.Now,
	}
}

func notFound() error {
	return apperrors.Clone(apperrors.ErrNotFound, "announcement not found")
}

func storeError(operation string, err error) error {
	zap.S().Errorw("announcement store call failed", "operation", operation, "error", err)
	return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, fmt.Sprintf("%s failed", operation))
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create stores a new announcement with empty registration lists
func (s *Service) Create(ctx context.Context, req models.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err)
	}
	dateEvent, err := time.Parse(dateLayout, req.DateEvent)
	if err != nil {
		return nil, apperrors.Validation(err)
	}

	now := s.timestamp()
	a := models.Announcement{
		NameEvent:         req.NameEvent,
		Description:       req.Description,
		Tags:              req.Tags,
		AssociationID:     req.AssociationID,
		AssociationName:   req.AssociationName,
		DatePublication:   now,
		DateEvent:         dateEvent,
		HoursEvent:        req.HoursEvent,
		Status:            req.Status,
		MaxVolunteers:     req.MaxVolunteers,
		Volunteers:        []models.Person{},
		VolunteersWaiting: []models.Person{},
		MaxParticipants:   req.MaxParticipants,
		Participants:      []models.Person{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Status == "" {
		a.Status = models.AnnouncementStatusActive
	}
	if req.Latitude != nil && req.Longitude != nil {
		loc := models.NewPoint(*req.Latitude, *req.Longitude)
		loc.Address = req.Address
		loc.City = req.City
		loc.PostalCode = req.PostalCode
		loc.Country = req.Country
		a.LocationAnnouncement = loc
	}

	res, err := s.announcements.InsertOne(ctx, a)
	if err != nil {
		return nil, storeError("create announcement", err)
	}
	if oid, ok := res.Decode().(primitive.ObjectID); ok {
		a.ID = oid
	}

	s.cache.InvalidateAnnouncement(ctx, a.ID.Hex(), a.AssociationID)
	zap.S().Infow("announcement created", "announcementId", a.ID.Hex(), "associationId", a.AssociationID)
	return &a, nil
}

// Get returns one announcement, from the cache when possible
func (s *Service) Get(ctx context.Context, id string) (*models.Announcement, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound()
	}
	return cache.GetOrLoad(ctx, s.cache, "announcement", cache.AnnouncementKey(id), func(ctx context.Context) (*models.Announcement, error) {
		a, err := s.announcements.FindOne(ctx, bson.M{"_id": oid})
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound()
		}
		if err != nil {
			return nil, storeError("get announcement", err)
		}
		return a, nil
	})
}

// ListAll returns every announcement, newest publication first
func (s *Service) ListAll(ctx context.Context) ([]models.Announcement, error) {
	return cache.GetOrLoad(ctx, s.cache, "announcements", cache.AllAnnouncementsKey, func(ctx context.Context) ([]models.Announcement, error) {
		list, err := s.announcements.Find(ctx, bson.M{}, options.Find().SetSort(listSort))
		if err != nil {
			return nil, storeError("list announcements", err)
		}
		return list, nil
	})
}

// ListByAssociation returns the announcements of one association, newest publication first
func (s *Service) ListByAssociation(ctx context.Context, associationID string) ([]models.Announcement, error) {
	return cache.GetOrLoad(ctx, s.cache, "association", cache.AssociationKey(associationID), func(ctx context.Context) ([]models.Announcement, error) {
		list, err := s.announcements.Find(ctx, bson.M{"associationId": associationID}, options.Find().SetSort(listSort))
		if err != nil {
			return nil, storeError("list association announcements", err)
		}
		return list, nil
	})
}

// Update applies an administrative edit. Only the supplied fields change.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err)
	}

	set := bson.D{}
	if req.NameEvent != nil {
		set = append(set, bson.E{Key: "nameEvent", Value: *req.NameEvent})
	}
	if req.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *req.Description})
	}
	if req.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: req.Tags})
	}
	if req.DateEvent != nil {
		dateEvent, err := time.Parse(dateLayout, *req.DateEvent)
		if err != nil {
			return nil, apperrors.Validation(err)
		}
		set = append(set, bson.E{Key: "dateEvent", Value: dateEvent})
	}
	if req.HoursEvent != nil {
		set = append(set, bson.E{Key: "hoursEvent", Value: *req.HoursEvent})
	}
	if req.MaxVolunteers != nil {
		set = append(set, bson.E{Key: "maxVolunteers", Value: *req.MaxVolunteers})
	}
	if req.MaxParticipants != nil {
		set = append(set, bson.E{Key: "maxParticipants", Value: *req.MaxParticipants})
	}
	if len(set) == 0 {
		return nil, apperrors.Validation(errors.New("no field to update"))
	}

	return s.apply(ctx, "update announcement", id, set)
}

// UpdateStatus changes the publication status
func (s *Service) UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Announcement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err)
	}
	return s.apply(ctx, "update announcement status", id, bson.D{{Key: "status", Value: req.Status}})
}

func (s *Service) apply(ctx context.Context, operation, id string, set bson.D) (*models.Announcement, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound()
	}
	set = append(set, bson.E{Key: "updatedAt", Value: s.timestamp()})

	updated, err := s.announcements.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound()
	}
	if err != nil {
		return nil, storeError(operation, err)
	}

	s.cache.InvalidateAnnouncement(ctx, id, updated.AssociationID)
	return updated, nil
}

// Delete removes an announcement and its cover image
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound()
	}
	a, err := s.announcements.FindOne(ctx, bson.M{"_id": oid})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound()
	}
	if err != nil {
		return storeError("delete announcement", err)
	}

	deleted, err := s.announcements.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeError("delete announcement", err)
	}
	if deleted == 0 {
		return notFound()
	}

	s.deleteImage(ctx, *a)
	s.cache.InvalidateAnnouncement(ctx, id, a.AssociationID)
	zap.S().Infow("announcement deleted", "announcementId", id, "associationId", a.AssociationID)
	return nil
}

// DeleteByAssociation removes every announcement of an association. Returns the number deleted.
func (s *Service) DeleteByAssociation(ctx context.Context, associationID string) (int64, error) {
	filter := bson.M{"associationId": associationID}
	owned, err := s.announcements.Find(ctx, filter)
	if err != nil {
		return 0, storeError("delete association announcements", err)
	}

	deleted, err := s.announcements.DeleteMany(ctx, filter)
	if err != nil {
		return 0, storeError("delete association announcements", err)
	}

	for _, a := range owned {
		s.deleteImage(ctx, a)
	}
	if deleted > 0 {
		s.cache.InvalidateAllAnnouncements(ctx)
	}
	zap.S().Infow("association announcements deleted", "associationId", associationID, "deleted", deleted)
	return deleted, nil
}

// SetImage uploads a cover image and records its url on the announcement
func (s *Service) SetImage(ctx context.Context, id string, data []byte) (*models.Announcement, error) {
	if s.images == nil {
		return nil, apperrors.Clone(apperrors.ErrUnavailable, "image storage is not configured")
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		return nil, apperrors.Validation(fmt.Errorf("image must be between 1 and %d bytes", MaxImageSize))
	}
	if contentType := http.DetectContentType(data); !imageTypes[contentType] {
		return nil, apperrors.Validation(fmt.Errorf("unsupported image type %s", contentType))
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, notFound()
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, id, data)
	if err != nil {
		zap.S().Errorw("failed to upload announcement image", "announcementId", id, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrUnavailable.Code, apperrors.ErrUnavailable.Status, "image upload failed")
	}
	return s.apply(ctx, "set announcement image", id, bson.D{{Key: "announcementImage", Value: url}})
}

// deleteImage is best effort, the announcement is already gone
func (s *Service) deleteImage(ctx context.Context, a models.Announcement) {
	if s.images == nil || a.AnnouncementImage == "" {
		return
	}
	if err := s.images.Delete(ctx, a.ID.Hex()); err != nil {
		zap.S().Warnw("failed to delete announcement image", "announcementId", a.ID.Hex(), "error", err)
	}
}
