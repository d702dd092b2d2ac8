package announcements

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// FavoritesService manages the announcements a volunteer bookmarked
type FavoritesService struct {
	favorites     databases.FavoriteDatabase
	announcements databases.AnnouncementDatabase
	volunteers    databases.VolunteerDatabase
	validate      *validator.Validate
	now           func() time.Time
}

// NewFavoritesService returns a FavoritesService
func NewFavoritesService(favorites databases.FavoriteDatabase, announcements databases.AnnouncementDatabase, volunteers databases.VolunteerDatabase, validate *validator.Validate) *FavoritesService {
	if validate == nil {
		validate = validator.New()
	}
	return &FavoritesService{
		favorites:     favorites,
		announcements: announcements,
		volunteers:    volunteers,
		validate:      validate,
		now:           time.Now,
	}
}

// Add bookmarks an announcement. Adding the same pair twice keeps a single favorite.
func (f *FavoritesService) Add(ctx context.Context, req models.CreateFavoriteRequest) (*models.Favorite, error) {
	if err := f.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err)
	}
	oid, err := primitive.ObjectIDFromHex(req.AnnouncementID)
	if err != nil {
		return nil, notFound()
	}

	count, err := f.announcements.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, storeError("add favorite", err)
	}
	if count == 0 {
		return nil, notFound()
	}
	exists, err := f.volunteers.Exists(ctx, req.VolunteerID)
	if err != nil {
		return nil, storeError("add favorite", err)
	}
	if !exists {
		return nil, apperrors.Clone(apperrors.ErrNotFound, "volunteer not found")
	}

	favorite := models.Favorite{
		VolunteerID:    req.VolunteerID,
		AnnouncementID: req.AnnouncementID,
		CreatedAt:      f.now().UTC().Truncate(time.Millisecond),
	}
	res, err := f.favorites.Upsert(ctx, favorite)
	if err != nil {
		return nil, storeError("add favorite", err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		favorite.ID = id
		zap.S().Debugw("favorite added", "volunteerId", req.VolunteerID, "announcementId", req.AnnouncementID)
		return &favorite, nil
	}

	existing, err := f.favorites.FindOne(ctx, bson.M{"volunteerId": req.VolunteerID, "announcementId": req.AnnouncementID})
	if err != nil {
		return nil, storeError("add favorite", err)
	}
	return existing, nil
}

// Remove deletes a bookmark
func (f *FavoritesService) Remove(ctx context.Context, volunteerID, announcementID string) error {
	deleted, err := f.favorites.DeleteOne(ctx, bson.M{"volunteerId": volunteerID, "announcementId": announcementID})
	if err != nil {
		return storeError("remove favorite", err)
	}
	if deleted == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, "favorite not found")
	}
	return nil
}

// ListByVolunteer returns a page of the announcements a volunteer bookmarked, most recent
// bookmark first. Favorites whose announcement is gone are skipped.
func (f *FavoritesService) ListByVolunteer(ctx context.Context, volunteerID string, limit, page int) ([]models.Announcement, error) {
	opts := databases.PageOptions(limit, page).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	favorites, err := f.favorites.Find(ctx, bson.M{"volunteerId": volunteerID}, opts)
	if err != nil {
		return nil, storeError("list favorites", err)
	}

	ids := make([]primitive.ObjectID, 0, len(favorites))
	for _, fav := range favorites {
		if oid, err := primitive.ObjectIDFromHex(fav.AnnouncementID); err == nil {
			ids = append(ids, oid)
		}
	}
	if len(ids) == 0 {
		return []models.Announcement{}, nil
	}

	found, err := f.announcements.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeError("list favorites", err)
	}
	byID := make(map[primitive.ObjectID]models.Announcement, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	ordered := make([]models.Announcement, 0, len(found))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}
