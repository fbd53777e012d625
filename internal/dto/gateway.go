package dto

import (
	"time"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

// Responses of the local gateway. Every body carries the traceId that is also
// attached to the request's log lines.

type CartResponse struct {
	TraceID   string      `json:"traceId"`
	Cart      domain.Cart `json:"cart"`
	ItemCount int         `json:"itemCount"`
	Stale     bool        `json:"stale"`
	Timestamp time.Time   `json:"timestamp"`
}

type DeliveryStateResponse struct {
	TraceID   string               `json:"traceId"`
	State     domain.DeliveryState `json:"state"`
	Timestamp time.Time            `json:"timestamp"`
}

type DeliveryCheckRequest struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	OrderAmount *float64 `json:"orderAmount,omitempty"`
}

type AreasResponse struct {
	TraceID string                `json:"traceId"`
	Areas   []domain.DeliveryArea `json:"areas"`
}

type AreaCheckResponse struct {
	TraceID string           `json:"traceId"`
	Check   domain.AreaCheck `json:"check"`
}

type MenuSearchResponse struct {
	TraceID  string            `json:"traceId"`
	Items    []domain.MenuItem `json:"items"`
	NotFound []string          `json:"notFound"`
}

type SetTokenRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	TraceID       string    `json:"traceId"`
	Authenticated bool      `json:"authenticated"`
	Subject       string    `json:"subject,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	TraceID        string    `json:"traceId"`
	Status         int       `json:"status"`
	Code           string    `json:"code"`
	Message        string    `json:"message"`
	UpstreamStatus int       `json:"upstreamStatus,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type ValidationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}
