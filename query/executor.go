package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/metrics"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// Executor runs compiled plans against the announcements collection
type Executor struct {
	announcements databases.AnnouncementDatabase
	metrics       *metrics.Registry
}

// NewExecutor returns an Executor. metrics may be nil.
func NewExecutor(announcements databases.AnnouncementDatabase, m *metrics.Registry) *Executor {
	return &Executor{announcements: announcements, metrics: m}
}

type facetResult struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Items []models.Announcement `bson:"items"`
}

// Execute returns one page of announcements and the pagination metadata of the whole matched set.
// Any store or decode failure returns a query execution error and no items.
func (e *Executor) Execute(ctx context.Context, plan *Plan) (*models.PaginatedAnnouncements, error) {
	start := time.Now()
	res, err := e.execute(ctx, plan)

	var total int64
	if res != nil {
		total = res.Meta.Total
	}
	e.metrics.ObserveSearch(plan.Geo != nil, total, err, time.Since(start))

	if err != nil {
		zap.S().Errorw("announcement search failed",
			"page", plan.Page,
			"limit", plan.Limit,
			"geo", plan.Geo != nil,
			"predicates", len(plan.Predicates),
			"error", err)
		return nil, apperrors.QueryExecution(err)
	}
	return res, nil
}

func (e *Executor) execute(ctx context.Context, plan *Plan) (*models.PaginatedAnnouncements, error) {
	cursor, err := e.announcements.Aggregate(ctx, plan.Pipeline())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []facetResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	var total int64
	items := []models.Announcement{}
	if len(results) > 0 {
		if len(results[0].Metadata) > 0 {
			total = results[0].Metadata[0].Total
		}
		if total > 0 && results[0].Items != nil {
			items = results[0].Items
		}
	}

	return &models.PaginatedAnnouncements{
		Items: items,
		Meta: models.PageMeta{
			Page:  plan.Page,
			Limit: plan.Limit,
			Total: total,
			Pages: pages(total, plan.Limit),
		},
	}, nil
}

// pages is ceil(total/limit), 0 for an empty result
func pages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
