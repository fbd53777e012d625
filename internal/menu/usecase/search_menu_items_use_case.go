package usecase

import (
	"context"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
)

type Service interface {
	GetMenuItemsByIDs(ctx context.Context, ids []string) (found []domain.MenuItem, notFoundIDs []string, err error)
}

type SearchUseCase struct {
	service Service
}

func NewSearchUseCase(service Service) *SearchUseCase {
	return &SearchUseCase{service: service}
}

// SearchMenuItems returns the requested items in request order. Repeated ids
// are looked up once.
func (uc *SearchUseCase) SearchMenuItems(ctx context.Context, ids []string) (*dto.MenuSearchResponse, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, notFoundIDs, err := uc.service.GetMenuItemsByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.MenuItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	items := make([]domain.MenuItem, 0, len(found))
	for _, id := range unique {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}

	if notFoundIDs == nil {
		notFoundIDs = []string{}
	}

	return &dto.MenuSearchResponse{
		Items:    items,
		NotFound: notFoundIDs,
	}, nil
}
