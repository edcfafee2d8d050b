package postgres

import (
	"context"
	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
)

const (
	qListCategories = `SELECT id, name FROM category ORDER BY id`
	qGetCategory    = `SELECT id, name FROM category WHERE id = $1`
	qListServices   = `SELECT id, name, price, description, category_id FROM service WHERE category_id = $1 ORDER BY id`
	qGetService     = `SELECT id, name, price, description, category_id FROM service WHERE id = $1`
)

// ListCategories returns every category in id order.
func (s *Session) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	if err := s.conn.SelectContext(ctx, &out, qListCategories); err != nil {
		return nil, unavailable("list categories", err)
	}
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelDebug, "catalog.categories", slog.Int("items", len(out)))
	return out, nil
}

// GetCategory fetches one category by id.
func (s *Session) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	if err := s.conn.GetContext(ctx, &c, qGetCategory, id); err != nil {
		return domain.Category{}, notFoundOr("get category", err)
	}
	return c, nil
}

// ListServices returns the services of an existing category.
func (s *Session) ListServices(ctx context.Context, categoryID int64) ([]domain.Service, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	out := []domain.Service{}
	if err := s.conn.SelectContext(ctx, &out, qListServices, categoryID); err != nil {
		return nil, unavailable("list services", err)
	}
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelDebug, "catalog.services",
		slog.Int64("category_id", categoryID),
		slog.Int("items", len(out)),
	)
	return out, nil
}

// GetService fetches one service by id.
func (s *Session) GetService(ctx context.Context, id int64) (domain.Service, error) {
	var svc domain.Service
	if err := s.conn.GetContext(ctx, &svc, qGetService, id); err != nil {
		return domain.Service{}, notFoundOr("get service", err)
	}
	return svc, nil
}
