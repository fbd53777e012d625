package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/usecase"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type CartUseCase interface {
	Cart(ctx context.Context) domain.Cart
	IsStale() bool
	OnFocus(ctx context.Context)
	AddItem(ctx context.Context, in usecase.AddItemInput) error
	UpdateItem(ctx context.Context, itemID string, upd domain.CartItemUpdate) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// CartSnapshot reads the local cache without going to the network.
type CartSnapshot interface {
	Snapshot() domain.Cart
}

type CartController struct {
	useCase CartUseCase
	cache   CartSnapshot
	logger  *zap.Logger
}

func NewCartController(useCase CartUseCase, cache CartSnapshot, logger *zap.Logger) *CartController {
	return &CartController{
		useCase: useCase,
		cache:   cache,
		logger:  logger,
	}
}

func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	cart := c.useCase.Cart(r.Context())
	c.writeCart(w, traceID, http.StatusOK, cart)
}

func (c *CartController) Focus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	c.useCase.OnFocus(r.Context())
	c.writeCart(w, traceID, http.StatusOK, c.cache.Snapshot())
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req usecase.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := c.useCase.AddItem(r.Context(), req); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	// The snapshot holds the optimistic line; the authoritative refetch is
	// already scheduled.
	c.writeCart(w, traceID, http.StatusAccepted, c.cache.Snapshot())
}

func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))
	itemID := chi.URLParam(r, "itemId")

	var upd domain.CartItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := c.useCase.UpdateItem(r.Context(), itemID, upd); err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.String("itemId", itemID)))
		return
	}

	c.writeCart(w, traceID, http.StatusAccepted, c.cache.Snapshot())
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))
	itemID := chi.URLParam(r, "itemId")

	if err := c.useCase.RemoveItem(r.Context(), itemID); err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.String("itemId", itemID)))
		return
	}

	c.writeCart(w, traceID, http.StatusAccepted, c.cache.Snapshot())
}

func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if err := c.useCase.ClearCart(r.Context()); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeCart(w, traceID, http.StatusAccepted, c.cache.Snapshot())
}

func (c *CartController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if te, ok := apperrors.IsTransportError(err); ok {
		logger.Warn("remote cart call failed", zap.Int("upstreamStatus", te.StatusCode), zap.Error(err))
		c.writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{
			TraceID:        traceID,
			Status:         http.StatusBadGateway,
			Code:           "UPSTREAM_ERROR",
			Message:        te.Message,
			UpstreamStatus: te.StatusCode,
			Timestamp:      time.Now().UTC(),
		})
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusInternalServerError,
		Code:      "INTERNAL_ERROR",
		Message:   "an unexpected error occurred",
		Timestamp: time.Now().UTC(),
	})
}

func (c *CartController) writeCart(w http.ResponseWriter, traceID string, status int, cart domain.Cart) {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	c.writeJSON(w, status, dto.CartResponse{
		TraceID:   traceID,
		Cart:      cart,
		ItemCount: cart.ItemCount(),
		Stale:     c.useCase.IsStale(),
		Timestamp: time.Now().UTC(),
	})
}

func (c *CartController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *CartController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
