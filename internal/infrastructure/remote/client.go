package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

const (
	msgNetwork      = "Network error. Please check your connection and try again."
	msgTimeout      = "The request timed out. Please try again."
	msgUnauthorized = "Please log in to continue."
	msgServer       = "Something went wrong on our side. Please try again."
	msgRequest      = "The request could not be completed."
)

// TokenSource hands out the current bearer token, or "" for guests.
type TokenSource interface {
	Token() string
}

type Option func(*Client)

// WithUnauthorizedHandler registers a callback for 401 answers, typically
// dropping the stored token.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks JSON to the storefront REST API and turns every failure into
// an *errors.TransportError carrying a message fit for customers.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("encoding request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.NewInternalError("building request", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("requestId", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("remote call failed", zap.Error(err))
		return transportFailure(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("reading remote response failed", zap.Error(err))
		return transportFailure(err)
	}

	logger.Debug("remote call finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return statusFailure(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("decoding remote response failed", zap.Error(err))
		return apperrors.NewTransportError(msgServer, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}

	return nil
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func statusFailure(status int, body []byte) *apperrors.TransportError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	message := strings.TrimSpace(env.Message)
	if message == "" {
		message = strings.TrimSpace(env.Error)
	}
	if message == "" {
		switch {
		case status == http.StatusUnauthorized:
			message = msgUnauthorized
		case status >= http.StatusInternalServerError:
			message = msgServer
		default:
			message = msgRequest
		}
	}

	return apperrors.NewTransportError(message, status, nil)
}

func transportFailure(err error) *apperrors.TransportError {
	if isTimeout(err) {
		return &apperrors.TransportError{Message: msgTimeout, Timeout: true, Cause: err}
	}
	return apperrors.NewTransportError(msgNetwork, 0, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
