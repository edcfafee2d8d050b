// Package seed loads a catalog fixture into an empty database at startup.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/shopbot/core/bootstrap"
	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage/postgres"
)

// Catalog is the fixture file layout.
type Catalog struct {
	Categories []Category `yaml:"categories"`
}

// Category is a fixture category with its services.
type Category struct {
	Name     string    `yaml:"name"`
	Services []Service `yaml:"services"`
}

// Service is a fixture service. Price is a decimal string such as "49.90".
type Service struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
}

// Parse decodes and validates a fixture.
func Parse(data []byte) ([]postgres.CategorySeed, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	out := make([]postgres.CategorySeed, 0, len(c.Categories))
	for i, cat := range c.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("category #%d: empty name", i+1)
		}
		seed := postgres.CategorySeed{Name: name}
		for j, s := range cat.Services {
			svc, err := s.service()
			if err != nil {
				return nil, fmt.Errorf("category %q service #%d: %w", name, j+1, err)
			}
			seed.Services = append(seed.Services, svc)
		}
		out = append(out, seed)
	}
	return out, nil
}

func (s Service) service() (domain.Service, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return domain.Service{}, fmt.Errorf("empty name")
	}
	price := decimal.Zero
	if p := strings.TrimSpace(s.Price); p != "" {
		var err error
		if price, err = decimal.NewFromString(p); err != nil {
			return domain.Service{}, fmt.Errorf("price %q: %w", s.Price, err)
		}
	}
	if price.IsNegative() {
		return domain.Service{}, fmt.Errorf("price %q is negative", s.Price)
	}
	return domain.Service{Name: name, Price: price, Description: strings.TrimSpace(s.Description)}, nil
}

// CatalogSeeder loads the fixture at path when the catalog is empty.
// An empty path disables seeding.
func CatalogSeeder(path string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		if strings.TrimSpace(path) == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read catalog fixture: %w", err)
		}
		seeds, err := Parse(data)
		if err != nil {
			return err
		}

		start := time.Now()
		n, err := postgres.New(db).SeedCatalog(ctx, seeds)
		if err != nil {
			return err
		}
		status := "ok"
		if n == 0 {
			status = "skip"
		}
		logger.SEED.Info("catalog seed",
			slog.String("event", "seed.catalog"),
			slog.String("status", status),
			slog.String("file", path),
			slog.Int("items", n),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return nil
	})
}
