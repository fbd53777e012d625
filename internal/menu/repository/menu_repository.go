package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type RemoteClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// RemoteRepository reads the menu from the storefront API. The API only
// serves the whole menu, so lookups by id filter client-side.
type RemoteRepository struct {
	client RemoteClient
}

func NewRemoteRepository(client RemoteClient) *RemoteRepository {
	return &RemoteRepository{client: client}
}

func (r *RemoteRepository) FindAll(ctx context.Context) ([]domain.MenuItem, error) {
	var env dto.MenuEnvelope
	if err := r.client.Get(ctx, "/menu", nil, &env); err != nil {
		return nil, fmt.Errorf("fetching menu: %w", err)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "The menu could not be loaded."
		}
		return nil, apperrors.NewTransportError(message, http.StatusUnprocessableEntity, nil)
	}

	items := make([]domain.MenuItem, 0, len(env.Menu))
	for _, m := range env.Menu {
		items = append(items, toMenuItem(m))
	}
	return items, nil
}

func (r *RemoteRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var items []domain.MenuItem
	for _, item := range all {
		if _, ok := wanted[item.ID]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func toMenuItem(m dto.MenuItemDTO) domain.MenuItem {
	available := true
	if m.IsAvailable != nil {
		available = *m.IsAvailable
	}

	return domain.MenuItem{
		ID:          m.ItemID(),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price.Float64(),
		Image:       m.Image,
		Category:    m.Category,
		IsAvailable: available,
		IsSpicy:     m.IsSpicy,
		IsVeg:       m.IsVeg,
	}
}
