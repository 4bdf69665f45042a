package template

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/pkg/config"
)

type stubTemplateRepository struct {
	templates []domain.Template
	lastQuery repository.TemplateQuery
}

func (s *stubTemplateRepository) ListTemplates(ctx context.Context, query repository.TemplateQuery) ([]domain.Template, error) {
	s.lastQuery = query
	matched := s.match(query.Search)
	sort.Slice(matched, func(i, j int) bool {
		if query.Ascending {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].Name > matched[j].Name
	})
	if query.Offset > len(matched) {
		query.Offset = len(matched)
	}
	matched = matched[query.Offset:]
	if len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (s *stubTemplateRepository) CountTemplates(ctx context.Context, search string) (int, error) {
	return len(s.match(search)), nil
}

func (s *stubTemplateRepository) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	for _, tpl := range s.templates {
		if tpl.ID == id {
			return &tpl, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubTemplateRepository) match(search string) []domain.Template {
	var out []domain.Template
	for _, tpl := range s.templates {
		if search == "" || strings.Contains(strings.ToLower(tpl.Name), strings.ToLower(search)) {
			out = append(out, tpl)
		}
	}
	return out
}

func newTestService(repo *stubTemplateRepository) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		TemplatePageLimit:  100,
		TemplateSortFields: []string{"name", "created_at", "updated_at"},
	}
	return Service{templates: repo, logger: log, cfg: cfg}
}

func TestListSearchAndPagination(t *testing.T) {
	repo := &stubTemplateRepository{templates: []domain.Template{
		{ID: "t1", Name: "Agency Landing"},
		{ID: "t2", Name: "Agency Portfolio"},
		{ID: "t3", Name: "SaaS Launch"},
	}}
	svc := newTestService(repo)

	templates, pagination, err := svc.List(context.Background(), ListInput{Page: 1, Limit: 1, Search: "agency", SortBy: "name", Order: "asc"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(templates) != 1 || templates[0].ID != "t1" {
		t.Fatalf("unexpected page: %+v", templates)
	}
	if pagination.Total != 2 || pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
	if !repo.lastQuery.Ascending || repo.lastQuery.SortBy != "name" {
		t.Fatalf("query not forwarded: %+v", repo.lastQuery)
	}
}

func TestListFallsBackOnUnknownSort(t *testing.T) {
	repo := &stubTemplateRepository{}
	svc := newTestService(repo)

	if _, _, err := svc.List(context.Background(), ListInput{SortBy: "coins; DROP TABLE"}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastQuery.SortBy != "created_at" {
		t.Fatalf("expected created_at fallback, got %q", repo.lastQuery.SortBy)
	}
	if repo.lastQuery.Ascending {
		t.Fatal("expected descending default order")
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := &stubTemplateRepository{}
	svc := newTestService(repo)

	if _, _, err := svc.List(context.Background(), ListInput{Limit: 10000}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastQuery.Limit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", repo.lastQuery.Limit)
	}
}

func TestGet(t *testing.T) {
	repo := &stubTemplateRepository{templates: []domain.Template{{ID: "t1", Name: "Agency Landing"}}}
	svc := newTestService(repo)

	tpl, err := svc.Get(context.Background(), "t1")
	if err != nil || tpl.Name != "Agency Landing" {
		t.Fatalf("Get returned (%+v, %v)", tpl, err)
	}
	if _, err := svc.Get(context.Background(), "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
