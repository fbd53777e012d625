package service

import (
	"context"
	"sync"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
)

type Repository interface {
	FindAll(ctx context.Context) ([]domain.MenuItem, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, error)
}

// MenuService answers menu lookups and remembers every item it has seen, so
// the cart can price an optimistic line without a network round trip.
type MenuService struct {
	repo Repository

	mu      sync.RWMutex
	catalog map[string]domain.MenuItem
}

func NewService(repo Repository) *MenuService {
	return &MenuService{
		repo:    repo,
		catalog: make(map[string]domain.MenuItem),
	}
}

func (s *MenuService) GetMenuItemsByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, []string, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	s.remember(found)

	foundSet := make(map[string]struct{}, len(found))
	for _, item := range found {
		foundSet[item.ID] = struct{}{}
	}

	var notFoundIDs []string
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

// Warm loads the full menu into the catalog.
func (s *MenuService) Warm(ctx context.Context) (int, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	s.remember(items)
	return len(items), nil
}

// Lookup never touches the network.
func (s *MenuService) Lookup(id string) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.catalog[id]
	return item, ok
}

func (s *MenuService) remember(items []domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.catalog[item.ID] = item
	}
}
