package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type RemoteClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// CartService is the remote cart resource. Every call returns the cart the
// server holds after the call.
type CartService struct {
	client RemoteClient
}

func NewCartService(client RemoteClient) *CartService {
	return &CartService{client: client}
}

func (s *CartService) FetchCart(ctx context.Context) (*domain.Cart, error) {
	var env dto.CartEnvelope
	if err := s.client.Get(ctx, "/cart", nil, &env); err != nil {
		return nil, err
	}
	return toCart(env)
}

func (s *CartService) AddItem(ctx context.Context, req dto.AddCartItemRequest) (*domain.Cart, error) {
	var env dto.CartEnvelope
	if err := s.client.Post(ctx, "/cart", req, &env); err != nil {
		return nil, err
	}
	return toCart(env)
}

func (s *CartService) UpdateItem(ctx context.Context, itemID string, req dto.UpdateCartItemRequest) (*domain.Cart, error) {
	var env dto.CartEnvelope
	if err := s.client.Patch(ctx, "/cart/item/"+url.PathEscape(itemID), req, &env); err != nil {
		return nil, err
	}
	return toCart(env)
}

func (s *CartService) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	var env dto.CartEnvelope
	if err := s.client.Delete(ctx, "/cart/item/"+url.PathEscape(itemID), &env); err != nil {
		return nil, err
	}
	return toCart(env)
}

func (s *CartService) ClearCart(ctx context.Context) (*domain.Cart, error) {
	var env dto.CartEnvelope
	if err := s.client.Delete(ctx, "/cart/clear", &env); err != nil {
		return nil, err
	}
	return toCart(env)
}

func toCart(env dto.CartEnvelope) (*domain.Cart, error) {
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "Your cart could not be updated."
		}
		return nil, apperrors.NewTransportError(message, http.StatusUnprocessableEntity, nil)
	}

	cart := domain.Cart{Items: []domain.CartItem{}, IsGuest: env.IsGuest}
	if env.Cart == nil {
		return &cart, nil
	}

	cart.OrderNote = env.Cart.OrderNote
	cart.Total = env.Cart.Total.Float64()
	for _, item := range env.Cart.Items {
		cart.Items = append(cart.Items, toCartItem(item))
	}
	return &cart, nil
}

func toCartItem(item dto.CartItemDTO) domain.CartItem {
	price := item.PriceAtAdd.Float64()
	if price == 0 {
		price = item.MenuItem.Price.Float64()
	}

	return domain.CartItem{
		ID: item.LineID(),
		MenuItem: domain.MenuItemSnapshot{
			ID:    item.MenuItem.ID,
			Name:  item.MenuItem.Name,
			Image: item.MenuItem.Image,
			Price: item.MenuItem.Price.Float64(),
		},
		Quantity:   item.Quantity,
		PriceAtAdd: price,
		Options: domain.Options{
			Sides:  toOptions(item.Sides),
			Drinks: toOptions(item.Drinks),
			AddOns: toOptions(item.AddOns),
		},
		SpecialInstructions: item.SpecialInstructions,
		AddedAt:             item.AddedAt,
	}
}

func toOptions(in []dto.OptionDTO) []domain.Option {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Option, 0, len(in))
	for _, opt := range in {
		out = append(out, domain.Option{Name: opt.Name, Price: opt.Price.Float64()})
	}
	return out
}

// OptionNames flattens options to the names the API expects in requests.
func OptionNames(opts []domain.Option) []string {
	if len(opts) == 0 {
		return nil
	}
	names := make([]string, 0, len(opts))
	for _, opt := range opts {
		names = append(names, opt.Name)
	}
	return names
}
