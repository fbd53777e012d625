package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

const maxSearchIDs = 100

type SearchUseCase interface {
	SearchMenuItems(ctx context.Context, ids []string) (*dto.MenuSearchResponse, error)
}

type Controller struct {
	useCase SearchUseCase
	logger  *zap.Logger
}

func NewController(useCase SearchUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleSearchMenuItems serves GET /menu/search?ids=a,b,c.
func (c *Controller) HandleSearchMenuItems(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	resp, err := c.useCase.SearchMenuItems(r.Context(), ids)
	if err != nil {
		status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred"
		if te, ok := apperrors.IsTransportError(err); ok {
			status, code, message = http.StatusBadGateway, "UPSTREAM_ERROR", te.Message
			logger.Warn("menu search failed upstream", zap.Error(err))
		} else {
			logger.Error("menu search failed", zap.Error(err))
		}
		c.writeJSON(w, status, dto.ErrorResponse{
			TraceID:   traceID,
			Status:    status,
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	resp.TraceID = traceID
	c.writeJSON(w, http.StatusOK, resp)
}

func parseIDs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.NewValidationError("ids is required", apperrors.ValidationDetail{
			Field:   "ids",
			Message: "ids must not be empty",
		})
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxSearchIDs {
		msg := "ids exceeds maximum of 100"
		return nil, apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "ids",
			Message: msg,
		})
	}

	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			msg := "each id must be non-empty"
			return nil, apperrors.NewValidationError(msg, apperrors.ValidationDetail{
				Field:   "ids",
				Message: msg,
			})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Controller) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
