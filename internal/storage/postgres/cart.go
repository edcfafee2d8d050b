package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage"
)

const (
	qServiceExists = `SELECT EXISTS (SELECT 1 FROM service WHERE id = $1)`
	qUpsertItem    = `INSERT INTO cart (user_id, service_id, quantity) VALUES ($1, $2, $3)
ON CONFLICT (user_id, service_id) DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
RETURNING quantity`
	qLockItem   = `SELECT quantity FROM cart WHERE user_id = $1 AND service_id = $2 FOR UPDATE`
	qUpdateItem = `UPDATE cart SET quantity = $3 WHERE user_id = $1 AND service_id = $2`
	qDeleteItem = `DELETE FROM cart WHERE user_id = $1 AND service_id = $2`
	qListItems  = `SELECT s.id, s.name, s.price, s.description, s.category_id, c.quantity
FROM cart c JOIN service s ON s.id = c.service_id
WHERE c.user_id = $1
ORDER BY s.id`
	qQuantity = `SELECT quantity FROM cart WHERE user_id = $1 AND service_id = $2`
)

type cartRow struct {
	domain.Service
	Quantity int `db:"quantity"`
}

// AddItem validates the service and merges delta into the user's entry.
func (s *Session) AddItem(ctx context.Context, userID, serviceID int64, delta int) error {
	if err := storage.ValidateDelta(delta); err != nil {
		return err
	}

	var quantity int
	err := s.inTx(ctx, "add item", func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, qServiceExists, serviceID); err != nil {
			return unavailable("add item", err)
		}
		if !exists {
			return fmt.Errorf("add item: service %d: %w", serviceID, domain.ErrInvalidReference)
		}
		if err := tx.GetContext(ctx, &quantity, qUpsertItem, userID, serviceID, delta); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("add item: service %d: %w", serviceID, domain.ErrInvalidReference)
			}
			return unavailable("add item", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.LogEvent(ctx, logger.SVCCart, slog.LevelDebug, "cart.add",
		slog.Int64("user_id", userID),
		slog.Int64("service_id", serviceID),
		slog.Int("delta", delta),
		slog.Int("quantity", quantity),
	)
	return nil
}

// RemoveItem locks the entry and either decrements or deletes it.
func (s *Session) RemoveItem(ctx context.Context, userID, serviceID int64, delta int) error {
	if err := storage.ValidateDelta(delta); err != nil {
		return err
	}

	left := 0
	err := s.inTx(ctx, "remove item", func(tx *sqlx.Tx) error {
		var current int
		if err := tx.GetContext(ctx, &current, qLockItem, userID, serviceID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return unavailable("remove item", err)
		}
		left = current - delta
		if left > 0 {
			if _, err := tx.ExecContext(ctx, qUpdateItem, userID, serviceID, left); err != nil {
				return unavailable("remove item", err)
			}
			return nil
		}
		left = 0
		if _, err := tx.ExecContext(ctx, qDeleteItem, userID, serviceID); err != nil {
			return unavailable("remove item", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.LogEvent(ctx, logger.SVCCart, slog.LevelDebug, "cart.remove",
		slog.Int64("user_id", userID),
		slog.Int64("service_id", serviceID),
		slog.Int("delta", delta),
		slog.Int("quantity", left),
	)
	return nil
}

// ListItems returns the user's cart lines with their services.
func (s *Session) ListItems(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	var rows []cartRow
	if err := s.conn.SelectContext(ctx, &rows, qListItems, userID); err != nil {
		return nil, unavailable("list items", err)
	}
	out := make([]domain.CartLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CartLine{Service: r.Service, Quantity: r.Quantity})
	}
	return out, nil
}

// Quantity returns the units of one service in the user's cart.
func (s *Session) Quantity(ctx context.Context, userID, serviceID int64) (int, error) {
	var q int
	if err := s.conn.GetContext(ctx, &q, qQuantity, userID, serviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, unavailable("quantity", err)
	}
	return q, nil
}

func (s *Session) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable(op, err)
	}
	return nil
}
