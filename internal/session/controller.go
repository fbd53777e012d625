package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type Manager interface {
	SignIn(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	Authenticated() bool
	Subject() string
}

type Controller struct {
	manager Manager
	logger  *zap.Logger
}

func NewController(manager Manager, logger *zap.Logger) *Controller {
	return &Controller{
		manager: manager,
		logger:  logger,
	}
}

func (c *Controller) GetSession(w http.ResponseWriter, r *http.Request) {
	c.writeSession(w, uuid.New().String())
}

func (c *Controller) SetToken(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := c.manager.SignIn(r.Context(), req.Token); err != nil {
		if ve, ok := apperrors.IsValidationError(err); ok {
			c.writeValidationError(w, traceID, ve.Message, ve.Details...)
			return
		}
		c.writeInternalError(w, traceID, err, logger)
		return
	}

	c.writeSession(w, traceID)
}

// Logout always clears in-memory state; a persistence failure is reported
// but the session is already signed out.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if err := c.manager.Logout(r.Context()); err != nil {
		c.writeInternalError(w, traceID, err, logger)
		return
	}

	c.writeSession(w, traceID)
}

func (c *Controller) writeSession(w http.ResponseWriter, traceID string) {
	c.writeJSON(w, http.StatusOK, dto.SessionResponse{
		TraceID:       traceID,
		Authenticated: c.manager.Authenticated(),
		Subject:       c.manager.Subject(),
		Timestamp:     time.Now().UTC(),
	})
}

func (c *Controller) writeInternalError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	logger.Error("session update failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusInternalServerError,
		Code:      "INTERNAL_ERROR",
		Message:   "an unexpected error occurred",
		Timestamp: time.Now().UTC(),
	})
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
