package palette

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
)

type stubPaletteRepository struct {
	palettes map[string]domain.Palette
}

func newStubPaletteRepository() *stubPaletteRepository {
	return &stubPaletteRepository{palettes: map[string]domain.Palette{}}
}

func (s *stubPaletteRepository) CreatePalette(ctx context.Context, palette *domain.Palette) error {
	s.palettes[palette.ID] = *palette
	return nil
}

func (s *stubPaletteRepository) GetPaletteByID(ctx context.Context, id string) (*domain.Palette, error) {
	if palette, ok := s.palettes[id]; ok {
		return &palette, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubPaletteRepository) DeletePalette(ctx context.Context, id string) error {
	if _, ok := s.palettes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.palettes, id)
	return nil
}

func (s *stubPaletteRepository) ListPalettes(ctx context.Context, userID string, limit, offset int) ([]domain.Palette, error) {
	var out []domain.Palette
	for _, palette := range s.palettes {
		if userID == "" || palette.UserID == userID {
			out = append(out, palette)
		}
	}
	return out, nil
}

func (s *stubPaletteRepository) CountPalettes(ctx context.Context, userID string) (int, error) {
	palettes, _ := s.ListPalettes(ctx, userID, 0, 0)
	return len(palettes), nil
}

func newTestService(repo *stubPaletteRepository) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Service{palettes: repo, logger: log}
}

func TestSaveDefaultsName(t *testing.T) {
	repo := newStubPaletteRepository()
	svc := newTestService(repo)

	palette, err := svc.Save(context.Background(), "user-1", "  ", []string{"#3366CC", "#CC9933"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if palette.Name != "Untitled Palette" {
		t.Fatalf("expected default name, got %q", palette.Name)
	}
	if palette.CreatedAt.After(time.Now().Add(time.Second)) {
		t.Fatalf("unexpected created at: %v", palette.CreatedAt)
	}
	if _, ok := repo.palettes[palette.ID]; !ok {
		t.Fatal("palette was not persisted")
	}
}

func TestSaveValidation(t *testing.T) {
	svc := newTestService(newStubPaletteRepository())
	ctx := context.Background()

	cases := []struct {
		name    string
		palette string
		colors  []string
	}{
		{"bad name characters", "<script>", []string{"#3366CC"}},
		{"name too long", strings.Repeat("a", 51), []string{"#3366CC"}},
		{"no colors", "Sunset", nil},
		{"too many colors", "Sunset", make([]string, 21)},
		{"invalid hex", "Sunset", []string{"#GGGGGG"}},
	}
	for _, tc := range cases {
		if _, err := svc.Save(ctx, "user-1", tc.palette, tc.colors); apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestDeleteOwnership(t *testing.T) {
	repo := newStubPaletteRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	palette, err := svc.Save(ctx, "user-1", "Sunset", []string{"#3366CC"})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := svc.Delete(ctx, "user-2", palette.ID, false); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if err := svc.Delete(ctx, "user-2", palette.ID, true); err != nil {
		t.Fatalf("admin delete returned error: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", palette.ID, false); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	repo := newStubPaletteRepository()
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), "user-1", "not-a-uuid", false)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for malformed id, got %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	repo := newStubPaletteRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "user-1", "Mine", []string{"#112233"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := svc.Save(ctx, "user-2", "Theirs", []string{"#445566"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	own, pagination, err := svc.List(ctx, "user-1", false, 1, 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(own) != 1 || pagination.Total != 1 {
		t.Fatalf("expected 1 own palette, got %d (total %d)", len(own), pagination.Total)
	}

	all, pagination, err := svc.List(ctx, "user-1", true, 1, 10)
	if err != nil {
		t.Fatalf("admin List returned error: %v", err)
	}
	if len(all) != 2 || pagination.Total != 2 {
		t.Fatalf("expected 2 palettes for admin, got %d (total %d)", len(all), pagination.Total)
	}
}

func TestGenerateDelegatesValidation(t *testing.T) {
	svc := newTestService(newStubPaletteRepository())

	if _, err := svc.Generate("nope", "analogous", 5); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	colors, err := svc.Generate("#3366CC", "complementary", 2)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(colors))
	}
}
