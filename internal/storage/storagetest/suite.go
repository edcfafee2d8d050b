// Package storagetest holds behaviour tests shared by every storage.Store implementation.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage"
)

// Fixture is a freshly seeded store: category "Visas" with services
// A ($5) and B ($8), plus a category without services.
type Fixture struct {
	Store storage.Store
	Visas domain.Category
	Empty domain.Category
	A, B  domain.Service
	// MissingID is neither a category nor a service id.
	MissingID int64
}

// Seed fills a store through the given inserters and returns the fixture.
func Seed(t *testing.T, st storage.Store,
	addCategory func(name string) domain.Category,
	addService func(svc domain.Service) domain.Service,
) Fixture {
	t.Helper()
	f := Fixture{Store: st, MissingID: 1_000_000}
	f.Visas = addCategory("Visas")
	f.Empty = addCategory("Empty")
	f.A = addService(domain.Service{Name: "A", Price: decimal.NewFromInt(5), CategoryID: f.Visas.ID})
	f.B = addService(domain.Service{Name: "B", Price: decimal.NewFromInt(8), CategoryID: f.Visas.ID})
	return f
}

// Run exercises catalog and cart behaviour against stores produced by setup.
// Each subtest gets its own fixture.
func Run(t *testing.T, setup func(t *testing.T) Fixture) {
	open := func(t *testing.T) (Fixture, storage.Session) {
		t.Helper()
		f := setup(t)
		sess, err := f.Store.Open(context.Background())
		require.NoError(t, err)
		t.Cleanup(func() { _ = sess.Close() })
		return f, sess
	}
	ctx := context.Background()
	const user = int64(42)

	t.Run("ListServicesEmptyAndUnknown", func(t *testing.T) {
		f, s := open(t)
		got, err := s.ListServices(ctx, f.Empty.ID)
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = s.ListServices(ctx, f.MissingID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListServicesBelongToCategory", func(t *testing.T) {
		f, s := open(t)
		got, err := s.ListServices(ctx, f.Visas.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, svc := range got {
			assert.Equal(t, f.Visas.ID, svc.CategoryID)
		}
		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, f.Visas.ID, cats[0].ID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		f, s := open(t)
		_, err := s.GetService(ctx, f.MissingID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.GetCategory(ctx, f.MissingID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("IDsBeyondInt32AreNotFound", func(t *testing.T) {
		_, s := open(t)
		const wide = int64(9_999_999_999)
		_, err := s.GetService(ctx, wide)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.ListServices(ctx, wide)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, s.AddItem(ctx, user, wide, 1), domain.ErrInvalidReference)
		qty, err := s.Quantity(ctx, wide, wide)
		require.NoError(t, err)
		assert.Zero(t, qty)
	})

	t.Run("Scenario", func(t *testing.T) {
		f, s := open(t)
		require.NoError(t, s.AddItem(ctx, user, f.A.ID, 1))
		lines, err := s.ListItems(ctx, user)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, f.A.ID, lines[0].Service.ID)
		assert.Equal(t, 1, lines[0].Quantity)

		require.NoError(t, s.AddItem(ctx, user, f.A.ID, 2))
		q, err := s.Quantity(ctx, user, f.A.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, q)

		require.NoError(t, s.RemoveItem(ctx, user, f.A.ID, 5))
		lines, err = s.ListItems(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("AddThenRemoveSameAmountLeavesNothing", func(t *testing.T) {
		f, s := open(t)
		require.NoError(t, s.AddItem(ctx, user, f.B.ID, 3))
		require.NoError(t, s.RemoveItem(ctx, user, f.B.ID, 3))
		q, err := s.Quantity(ctx, user, f.B.ID)
		require.NoError(t, err)
		assert.Zero(t, q)
	})

	t.Run("RemoveMissingIsNoop", func(t *testing.T) {
		f, s := open(t)
		require.NoError(t, s.RemoveItem(ctx, user, f.A.ID, 1))
		lines, err := s.ListItems(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("AddUnknownServiceIsInvalidReference", func(t *testing.T) {
		f, s := open(t)
		assert.ErrorIs(t, s.AddItem(ctx, user, f.MissingID, 1), domain.ErrInvalidReference)
		lines, err := s.ListItems(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("NonPositiveDelta", func(t *testing.T) {
		f, s := open(t)
		assert.ErrorIs(t, s.AddItem(ctx, user, f.A.ID, 0), domain.ErrInvalidQuantity)
		assert.ErrorIs(t, s.RemoveItem(ctx, user, f.A.ID, 0), domain.ErrInvalidQuantity)
	})

	t.Run("SequencesMatchModel", func(t *testing.T) {
		f, s := open(t)
		type op struct {
			add     bool
			service int64
			delta   int
		}
		ops := []op{
			{true, f.A.ID, 2}, {false, f.A.ID, 1}, {true, f.B.ID, 4},
			{false, f.B.ID, 9}, {true, f.B.ID, 1}, {false, f.A.ID, 1},
			{true, f.A.ID, 3}, {false, f.B.ID, 1}, {true, f.A.ID, 1},
		}
		model := map[int64]int{}
		for _, o := range ops {
			if o.add {
				require.NoError(t, s.AddItem(ctx, user, o.service, o.delta))
				model[o.service] += o.delta
				continue
			}
			require.NoError(t, s.RemoveItem(ctx, user, o.service, o.delta))
			if model[o.service]-o.delta > 0 {
				model[o.service] -= o.delta
			} else {
				delete(model, o.service)
			}
		}
		lines, err := s.ListItems(ctx, user)
		require.NoError(t, err)
		got := map[int64]int{}
		for _, l := range lines {
			assert.Positive(t, l.Quantity)
			got[l.Service.ID] = l.Quantity
		}
		assert.Equal(t, model, got)
	})

	t.Run("CartsAreIsolatedPerUser", func(t *testing.T) {
		f, s := open(t)
		require.NoError(t, s.AddItem(ctx, user, f.A.ID, 1))
		lines, err := s.ListItems(ctx, user+1)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("ConcurrentAdds", func(t *testing.T) {
		f := setup(t)
		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess, err := f.Store.Open(ctx)
				if err != nil {
					errs <- err
					return
				}
				defer sess.Close()
				errs <- sess.AddItem(ctx, user, f.A.ID, 1)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		sess, err := f.Store.Open(ctx)
		require.NoError(t, err)
		defer sess.Close()
		q, err := sess.Quantity(ctx, user, f.A.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, q)
	})
}
