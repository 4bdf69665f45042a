// Package palette generates color palettes and manages saved ones.
package palette

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/colors"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/internal/ws"
)

// Saved palette constraints.
const (
	defaultName     = "Untitled Palette"
	maxNameLength   = 50
	defaultPageSize = 10
	maxPageSize     = 100
)

var namePattern = regexp.MustCompile(`^[\w\s-]+$`)

// Service wraps palette generation and persistence. Saves are broadcast to
// the owner's live preview sessions.
type Service struct {
	palettes repository.PaletteRepository
	hub      *ws.Hub
	logger   *slog.Logger
}

// New constructs a Service.
func New(palettes repository.PaletteRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{palettes: palettes, hub: hub, logger: logger}
}

// Generate derives a palette from a base color. Pure passthrough to the
// color math; kept on the service so handlers share one entry point.
func (s Service) Generate(baseColor, scheme string, count int) ([]string, error) {
	return colors.Derive(baseColor, scheme, count)
}

// Theme derives mode/mood-adjusted variants for a set of named colors.
func (s Service) Theme(named map[string]string, mode, mood, scheme string) (map[string]string, error) {
	return colors.ThemeVariants(named, mode, mood, scheme)
}

// Save persists a named palette for the user and notifies their preview
// sessions.
func (s Service) Save(ctx context.Context, userID, name string, cols []string) (*domain.Palette, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	if len(name) > maxNameLength || !namePattern.MatchString(name) {
		return nil, apperr.Validation("invalid palette name")
	}
	if len(cols) == 0 || len(cols) > colors.MaxCount {
		return nil, apperr.Validation("colors must contain between 1 and 20 entries")
	}
	for _, c := range cols {
		if !colors.ValidHex(c) {
			return nil, apperr.Validation("colors must be valid hex strings")
		}
	}
	palette := &domain.Palette{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Colors:    cols,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.palettes.CreatePalette(ctx, palette); err != nil {
		return nil, err
	}
	s.logger.Info("palette saved", "palette_id", palette.ID, "user_id", userID)
	s.notify(userID, "palette.saved", palette)
	return palette, nil
}

// List returns saved palettes newest first; admins see every user's.
func (s Service) List(ctx context.Context, userID string, admin bool, page, pageSize int) ([]domain.Palette, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	scope := userID
	if admin {
		scope = ""
	}
	total, err := s.palettes.CountPalettes(ctx, scope)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	palettes, err := s.palettes.ListPalettes(ctx, scope, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return palettes, domain.NewPagination(total, page, pageSize), nil
}

// Delete removes a saved palette owned by the user (or any, for admins).
func (s Service) Delete(ctx context.Context, userID, paletteID string, admin bool) error {
	if _, err := uuid.Parse(paletteID); err != nil {
		return apperr.Validation("invalid palette ID")
	}
	palette, err := s.palettes.GetPaletteByID(ctx, paletteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("palette not found")
		}
		return err
	}
	if palette.UserID != userID && !admin {
		return apperr.Forbidden("palette belongs to another user")
	}
	if err := s.palettes.DeletePalette(ctx, paletteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("palette not found")
		}
		return err
	}
	s.logger.Info("palette deleted", "palette_id", paletteID, "user_id", userID)
	s.notify(palette.UserID, "palette.deleted", palette)
	return nil
}

// Hub exposes the preview hub for stream handlers.
func (s Service) Hub() *ws.Hub {
	return s.hub
}

func (s Service) notify(userID, event string, palette *domain.Palette) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":   event,
		"palette": palette,
	})
	if err != nil {
		s.logger.Warn("failed to encode preview event", "error", err)
		return
	}
	s.hub.Broadcast(userID, payload)
}
