package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/internal/domain"
)

const (
	qCountCategories = `SELECT count(*) FROM category`
	qInsertCategory  = `INSERT INTO category (name) VALUES ($1) RETURNING id`
	qInsertService   = `INSERT INTO service (name, price, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id`
)

// CategorySeed is a category together with the services to create under it.
type CategorySeed struct {
	Name     string
	Services []domain.Service
}

// SeedCatalog inserts the given catalog in one transaction, but only when the
// category table is empty. It returns the number of categories created.
func (s *Store) SeedCatalog(ctx context.Context, seeds []CategorySeed) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, unavailable("seed catalog", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.GetContext(ctx, &count, qCountCategories); err != nil {
		return 0, unavailable("seed catalog", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, c := range seeds {
		if err := insertCategory(ctx, tx, c); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, unavailable("seed catalog", err)
	}
	return len(seeds), nil
}

func insertCategory(ctx context.Context, tx *sqlx.Tx, c CategorySeed) error {
	var id int64
	if err := tx.GetContext(ctx, &id, qInsertCategory, c.Name); err != nil {
		return unavailable(fmt.Sprintf("seed category %q", c.Name), err)
	}
	for _, svc := range c.Services {
		var sid int64
		if err := tx.GetContext(ctx, &sid, qInsertService, svc.Name, svc.Price, svc.Description, id); err != nil {
			return unavailable(fmt.Sprintf("seed service %q", svc.Name), err)
		}
	}
	return nil
}
