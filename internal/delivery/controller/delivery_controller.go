package controller

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type DeliveryUseCase interface {
	CheckDeliveryAvailability(ctx context.Context, lat, lng float64, orderAmount *float64) *domain.DeliveryCheckResult
	State() domain.DeliveryState
	ListAreas(ctx context.Context) ([]domain.DeliveryArea, error)
	CheckArea(ctx context.Context, lat, lng float64) (*domain.AreaCheck, error)
}

type DeliveryController struct {
	useCase DeliveryUseCase
	logger  *zap.Logger
}

func NewDeliveryController(useCase DeliveryUseCase, logger *zap.Logger) *DeliveryController {
	return &DeliveryController{
		useCase: useCase,
		logger:  logger,
	}
}

// Check always answers 200: ineligible and failed checks are part of the
// returned state, not HTTP errors.
func (c *DeliveryController) Check(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.DeliveryCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	// Missing coordinates go through the checker as NaN so they hit the same
	// guard as a failed geolocation.
	lat, lng := math.NaN(), math.NaN()
	if req.Lat != nil {
		lat = *req.Lat
	}
	if req.Lng != nil {
		lng = *req.Lng
	}

	c.useCase.CheckDeliveryAvailability(r.Context(), lat, lng, req.OrderAmount)
	c.writeState(w, traceID)
}

func (c *DeliveryController) GetState(w http.ResponseWriter, r *http.Request) {
	c.writeState(w, uuid.New().String())
}

func (c *DeliveryController) ListAreas(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	areas, err := c.useCase.ListAreas(r.Context())
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}
	if areas == nil {
		areas = []domain.DeliveryArea{}
	}

	c.writeJSON(w, http.StatusOK, dto.AreasResponse{TraceID: traceID, Areas: areas})
}

func (c *DeliveryController) CheckArea(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var details []apperrors.ValidationDetail
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		details = append(details, apperrors.ValidationDetail{Field: "lat", Message: "lat must be a number"})
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		details = append(details, apperrors.ValidationDetail{Field: "lng", Message: "lng must be a number"})
	}
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "validation failed", details...)
		return
	}

	check, err := c.useCase.CheckArea(r.Context(), lat, lng)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.AreaCheckResponse{TraceID: traceID, Check: *check})
}

func (c *DeliveryController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if te, ok := apperrors.IsTransportError(err); ok {
		logger.Warn("remote delivery call failed", zap.Int("upstreamStatus", te.StatusCode), zap.Error(err))
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

func (c *DeliveryController) writeState(w http.ResponseWriter, traceID string) {
	c.writeJSON(w, http.StatusOK, dto.DeliveryStateResponse{
		TraceID:   traceID,
		State:     c.useCase.State(),
		Timestamp: time.Now().UTC(),
	})
}

func (c *DeliveryController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *DeliveryController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
