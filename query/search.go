package query

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// Searcher validates a filter, compiles it and executes the resulting plan
type Searcher struct {
	executor *Executor
	validate *validator.Validate
	now      func() time.Time
}

// NewSearcher returns a Searcher. A nil validate uses a fresh validator.
func NewSearcher(executor *Executor, validate *validator.Validate) *Searcher {
	if validate == nil {
		validate = validator.New()
	}
	return &Searcher{executor: executor, validate: validate, now: time.Now}
}

// Search runs a filtered, paginated announcement search
func (s *Searcher) Search(ctx context.Context, f models.AnnouncementFilter) (*models.PaginatedAnnouncements, error) {
	if err := s.validate.Struct(f); err != nil {
		return nil, apperrors.Validation(err)
	}
	plan, err := Compile(f, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, plan)
}
