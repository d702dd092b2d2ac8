// Package reconcile removes references to entities that no longer exist:
// favorites pointing at deleted announcements and volunteers that were
// deleted while still registered or bookmarked.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/metrics"
	"github.com/Benevo-clic/benevoclic-api/models"
)

const (
	passFavorites  = "favorites"
	passVolunteers = "volunteers"
)

// VolunteerRemover drops a volunteer from every announcement
type VolunteerRemover interface {
	RemoveVolunteerEverywhere(ctx context.Context, personID string) (int64, error)
}

// Reconciler runs the orphan passes. Every pass is idempotent and may run concurrently with itself.
type Reconciler struct {
	favorites     databases.FavoriteDatabase
	announcements databases.AnnouncementDatabase
	volunteers    databases.VolunteerDatabase
	remover       VolunteerRemover
	metrics       *metrics.Registry
}

// New returns a Reconciler. metrics may be nil.
func New(favorites databases.FavoriteDatabase, announcements databases.AnnouncementDatabase, volunteers databases.VolunteerDatabase, remover VolunteerRemover, m *metrics.Registry) *Reconciler {
	return &Reconciler{
		favorites:     favorites,
		announcements: announcements,
		volunteers:    volunteers,
		remover:       remover,
		metrics:       m,
	}
}

// CleanupOrphanFavorites is the scheduled favorites pass. It stops at the first store failure.
func (r *Reconciler) CleanupOrphanFavorites(ctx context.Context) error {
	res, err := r.sweepFavorites(ctx, false)
	r.metrics.RecordReconcile(passFavorites, res.DeletedCount, err)
	if err != nil {
		return err
	}
	zap.S().Infow("orphan favorites cleanup finished", "deleted", res.DeletedCount)
	return nil
}

// ReconcileFavorites is the manual favorites pass. Per-item failures are collected in the result.
func (r *Reconciler) ReconcileFavorites(ctx context.Context) (*models.FavoritesCleanupResult, error) {
	res, err := r.sweepFavorites(ctx, true)
	r.metrics.RecordReconcile(passFavorites, res.DeletedCount, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Reconciler) sweepFavorites(ctx context.Context, collect bool) (*models.FavoritesCleanupResult, error) {
	res := &models.FavoritesCleanupResult{Errors: []string{}}

	favorites, err := r.favorites.Find(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to list favorites", "error", err)
		return res, apperrors.ConsistencyRepair("favorites", err)
	}

	for _, fav := range favorites {
		orphan, err := r.announcementMissing(ctx, fav.AnnouncementID)
		if err == nil && orphan {
			_, err = r.favorites.DeleteOne(ctx, bson.M{"_id": fav.ID})
			if err == nil {
				res.DeletedCount++
				zap.S().Infow("deleted orphan favorite",
					"favoriteId", fav.ID.Hex(),
					"volunteerId", fav.VolunteerID,
					"announcementId", fav.AnnouncementID)
			}
		}
		if err != nil {
			repairErr := apperrors.ConsistencyRepair(fmt.Sprintf("favorite %s", fav.ID.Hex()), err)
			zap.S().Errorw("failed to reconcile favorite", "favoriteId", fav.ID.Hex(), "error", err)
			if !collect {
				return res, repairErr
			}
			res.Errors = append(res.Errors, repairErr.Error())
		}
	}
	return res, nil
}

// announcementMissing treats an unparsable id as missing since no announcement can carry it
func (r *Reconciler) announcementMissing(ctx context.Context, announcementID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(announcementID)
	if err != nil {
		return true, nil
	}
	count, err := r.announcements.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ReconcileVolunteers removes every volunteer id referenced by favorites or announcements
// that is absent from the volunteers collection.
func (r *Reconciler) ReconcileVolunteers(ctx context.Context) (*models.OrphanVolunteersReport, error) {
	report := &models.OrphanVolunteersReport{OrphanIDs: []string{}}

	orphans, err := r.orphanVolunteers(ctx)
	if err != nil {
		zap.S().Errorw("failed to compute orphan volunteers", "error", err)
		err = apperrors.ConsistencyRepair("volunteers", err)
		r.metrics.RecordReconcile(passVolunteers, 0, err)
		return nil, err
	}
	report.OrphanIDs = orphans

	for _, id := range orphans {
		modified, err := r.remover.RemoveVolunteerEverywhere(ctx, id)
		if err != nil {
			report.Errors = append(report.Errors, apperrors.ConsistencyRepair(fmt.Sprintf("announcements of volunteer %s", id), err).Error())
		}
		report.AnnouncementsUpdated += modified

		deleted, err := r.favorites.DeleteMany(ctx, bson.M{"volunteerId": id})
		if err != nil {
			zap.S().Errorw("failed to delete favorites of orphan volunteer", "volunteerId", id, "error", err)
			report.Errors = append(report.Errors, apperrors.ConsistencyRepair(fmt.Sprintf("favorites of volunteer %s", id), err).Error())
		}
		report.FavoritesDeleted += deleted
	}

	zap.S().Infow("orphan volunteers reconciled",
		"orphans", len(orphans),
		"announcementsUpdated", report.AnnouncementsUpdated,
		"favoritesDeleted", report.FavoritesDeleted,
		"errors", len(report.Errors))
	r.metrics.RecordReconcile(passVolunteers, int64(len(orphans)), nil)
	return report, nil
}

// CleanupOrphanVolunteers is the scheduled volunteers pass
func (r *Reconciler) CleanupOrphanVolunteers(ctx context.Context) error {
	report, err := r.ReconcileVolunteers(ctx)
	if err != nil {
		return err
	}
	if len(report.Errors) > 0 {
		return apperrors.Clone(apperrors.ErrConsistencyRepair, fmt.Sprintf("%d volunteer repairs failed", len(report.Errors)))
	}
	return nil
}

func (r *Reconciler) orphanVolunteers(ctx context.Context) ([]string, error) {
	referenced := map[string]struct{}{}

	sources := []struct {
		field    string
		distinct func(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
	}{
		{"volunteerId", r.favorites.Distinct},
		{"volunteers.id", r.announcements.Distinct},
		{"volunteersWaiting.id", r.announcements.Distinct},
	}
	for _, src := range sources {
		values, err := src.distinct(ctx, src.field, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("distinct %s: %w", src.field, err)
		}
		addStrings(referenced, values)
	}
	if len(referenced) == 0 {
		return []string{}, nil
	}

	known, err := r.volunteers.Distinct(ctx, "volunteerId", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct volunteerId: %w", err)
	}
	for _, v := range known {
		if id, ok := v.(string); ok {
			delete(referenced, id)
		}
	}

	orphans := make([]string, 0, len(referenced))
	for id := range referenced {
		orphans = append(orphans, id)
	}
	sort.Strings(orphans)
	return orphans, nil
}

func addStrings(set map[string]struct{}, values []interface{}) {
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			set[id] = struct{}{}
		}
	}
}
