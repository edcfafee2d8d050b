// Package memory is an in-process catalog and cart store with the same
// semantics as the postgres implementation.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/storage"
)

type cartKey struct {
	user    int64
	service int64
}

// Store keeps the catalog and carts in maps guarded by one mutex.
type Store struct {
	mu         sync.RWMutex
	categories map[int64]domain.Category
	services   map[int64]domain.Service
	cart       map[cartKey]int
	nextID     int64

	open atomic.Int64
	// Fail, when set, is returned by Open and Ping.
	Fail error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		categories: make(map[int64]domain.Category),
		services:   make(map[int64]domain.Service),
		cart:       make(map[cartKey]int),
	}
}

// AddCategory inserts a category and returns it with its generated id.
func (s *Store) AddCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := domain.Category{ID: s.nextID, Name: name}
	s.categories[c.ID] = c
	return c
}

// PutCategory inserts a category with a fixed id.
func (s *Store) PutCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	s.nextID = max(s.nextID, c.ID)
}

// PutService inserts a service with a fixed id. The category must exist.
func (s *Store) PutService(svc domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[svc.CategoryID]; !ok {
		return fmt.Errorf("put service: category %d: %w", svc.CategoryID, domain.ErrInvalidReference)
	}
	s.services[svc.ID] = svc
	s.nextID = max(s.nextID, svc.ID)
	return nil
}

// OpenSessions reports sessions opened and not yet closed.
func (s *Store) OpenSessions() int {
	return int(s.open.Load())
}

// Open returns a session bound to the store.
func (s *Store) Open(ctx context.Context) (storage.Session, error) {
	if s.Fail != nil {
		return nil, fmt.Errorf("open: %w: %w", domain.ErrStoreUnavailable, s.Fail)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open: %w: %w", domain.ErrStoreUnavailable, err)
	}
	s.open.Add(1)
	return &session{store: s}, nil
}

// Ping reports Fail, if any.
func (s *Store) Ping(context.Context) error {
	if s.Fail != nil {
		return fmt.Errorf("ping: %w: %w", domain.ErrStoreUnavailable, s.Fail)
	}
	return nil
}

type session struct {
	store  *Store
	closed atomic.Bool
}

func (ss *session) Close() error {
	if ss.closed.CompareAndSwap(false, true) {
		ss.store.open.Add(-1)
	}
	return nil
}

func (ss *session) ListCategories(context.Context) ([]domain.Category, error) {
	s := ss.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (ss *session) GetCategory(_ context.Context, id int64) (domain.Category, error) {
	s := ss.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, fmt.Errorf("get category: %w", domain.ErrNotFound)
	}
	return c, nil
}

func (ss *session) ListServices(_ context.Context, categoryID int64) ([]domain.Service, error) {
	s := ss.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.categories[categoryID]; !ok {
		return nil, fmt.Errorf("list services: %w", domain.ErrNotFound)
	}
	out := []domain.Service{}
	for _, svc := range s.services {
		if svc.CategoryID == categoryID {
			out = append(out, svc)
		}
	}
	slices.SortFunc(out, func(a, b domain.Service) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (ss *session) GetService(_ context.Context, id int64) (domain.Service, error) {
	s := ss.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return domain.Service{}, fmt.Errorf("get service: %w", domain.ErrNotFound)
	}
	return svc, nil
}

func (ss *session) AddItem(_ context.Context, userID, serviceID int64, delta int) error {
	if err := storage.ValidateDelta(delta); err != nil {
		return err
	}
	s := ss.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[serviceID]; !ok {
		return fmt.Errorf("add item: service %d: %w", serviceID, domain.ErrInvalidReference)
	}
	s.cart[cartKey{userID, serviceID}] += delta
	return nil
}

func (ss *session) RemoveItem(_ context.Context, userID, serviceID int64, delta int) error {
	if err := storage.ValidateDelta(delta); err != nil {
		return err
	}
	s := ss.store
	s.mu.Lock()
	defer s.mu.Unlock()
	k := cartKey{userID, serviceID}
	current, ok := s.cart[k]
	if !ok {
		return nil
	}
	if left := current - delta; left > 0 {
		s.cart[k] = left
	} else {
		delete(s.cart, k)
	}
	return nil
}

func (ss *session) ListItems(_ context.Context, userID int64) ([]domain.CartLine, error) {
	s := ss.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.CartLine{}
	for k, q := range s.cart {
		if k.user != userID {
			continue
		}
		out = append(out, domain.CartLine{Service: s.services[k.service], Quantity: q})
	}
	slices.SortFunc(out, func(a, b domain.CartLine) int { return cmp.Compare(a.Service.ID, b.Service.ID) })
	return out, nil
}

func (ss *session) Quantity(_ context.Context, userID, serviceID int64) (int, error) {
	s := ss.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart[cartKey{userID, serviceID}], nil
}
