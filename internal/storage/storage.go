// Package storage declares the catalog and cart stores used by the bot.
// Implementations live in the postgres and memory subpackages.
package storage

import (
	"context"

	"github.com/m3rciful/shopbot/internal/domain"
)

// Catalog reads categories and services.
type Catalog interface {
	// ListCategories returns every category in id order.
	ListCategories(ctx context.Context) ([]domain.Category, error)
	// GetCategory returns domain.ErrNotFound when the category does not exist.
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	// ListServices returns the services of one category in id order.
	// An unknown category is domain.ErrNotFound; an empty one is an empty slice.
	ListServices(ctx context.Context, categoryID int64) ([]domain.Service, error)
	// GetService returns domain.ErrNotFound when the service does not exist.
	GetService(ctx context.Context, id int64) (domain.Service, error)
}

// Cart manages per-user quantities keyed by (user, service).
type Cart interface {
	// AddItem increments the entry or creates it with quantity delta.
	AddItem(ctx context.Context, userID, serviceID int64, delta int) error
	// RemoveItem decrements the entry and deletes it once it reaches zero.
	// A missing entry is left untouched.
	RemoveItem(ctx context.Context, userID, serviceID int64, delta int) error
	// ListItems returns the user's cart joined with the catalog, ordered by service id.
	ListItems(ctx context.Context, userID int64) ([]domain.CartLine, error)
	// Quantity returns the units held, 0 when there is no entry.
	Quantity(ctx context.Context, userID, serviceID int64) (int, error)
}

// Session is the store scope of a single inbound event. It holds at most one
// pooled connection, which Close releases.
type Session interface {
	Catalog
	Cart
	Close() error
}

// Store opens sessions.
type Store interface {
	Open(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
}

// ValidateDelta rejects non-positive cart deltas before any store access.
func ValidateDelta(delta int) error {
	if delta <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}
