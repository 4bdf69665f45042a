// Package template serves the landing page template catalog.
package template

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/pkg/config"
)

const (
	defaultPageSize = 10
	defaultSort     = "created_at"
)

// Service lists and fetches page templates.
type Service struct {
	templates repository.TemplateRepository
	logger    *slog.Logger
	cfg       config.Config
}

// New constructs a Service.
func New(templates repository.TemplateRepository, logger *slog.Logger, cfg config.Config) Service {
	return Service{templates: templates, logger: logger, cfg: cfg}
}

// ListInput carries catalog query parameters as received from the client.
type ListInput struct {
	Page   int
	Limit  int
	Search string
	SortBy string
	Order  string
}

// List returns catalog templates matching the query. Unknown sort fields
// fall back to created_at, unknown orders to descending.
func (s Service) List(ctx context.Context, in ListInput) ([]domain.Template, domain.Pagination, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = defaultPageSize
	}
	if limit := s.cfg.TemplatePageLimit; limit > 0 && in.Limit > limit {
		in.Limit = limit
	}
	query := repository.TemplateQuery{
		Search:    strings.TrimSpace(in.Search),
		SortBy:    s.sortField(in.SortBy),
		Ascending: strings.EqualFold(in.Order, "asc"),
		Limit:     in.Limit,
		Offset:    (in.Page - 1) * in.Limit,
	}
	total, err := s.templates.CountTemplates(ctx, query.Search)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	templates, err := s.templates.ListTemplates(ctx, query)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return templates, domain.NewPagination(total, in.Page, in.Limit), nil
}

// Get returns a single template by ID.
func (s Service) Get(ctx context.Context, id string) (*domain.Template, error) {
	template, err := s.templates.GetTemplateByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("template not found")
		}
		return nil, err
	}
	return template, nil
}

func (s Service) sortField(field string) string {
	field = strings.TrimSpace(strings.ToLower(field))
	for _, allowed := range s.cfg.TemplateSortFields {
		if field == allowed {
			return field
		}
	}
	return defaultSort
}
