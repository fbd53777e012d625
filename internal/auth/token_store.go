package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

const (
	slotName    = "auth"
	slotVersion = 1
)

type persistedToken struct {
	Token string `json:"token"`
}

// TokenStore owns the bearer token. JWT tokens are inspected without
// verification only to drop them once expired; the API stays the authority.
type TokenStore struct {
	mu     sync.RWMutex
	token  string
	slot   *state.Slot[persistedToken]
	logger *zap.Logger
	now    func() time.Time
}

func NewTokenStore(repo state.Repository, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		slot:   state.NewSlot[persistedToken](repo, slotName, slotVersion),
		logger: logger,
		now:    time.Now,
	}
}

func (s *TokenStore) Init(ctx context.Context) error {
	stored, ok, err := s.slot.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if ok && !s.expired(stored.Token) {
		s.token = stored.Token
	}
	return nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewValidationError("token is required", apperrors.ValidationDetail{
			Field:   "token",
			Message: "token must not be empty",
		})
	}
	if s.expired(token) {
		return apperrors.NewValidationError("token is expired", apperrors.ValidationDetail{
			Field:   "token",
			Message: "token expiry is in the past",
		})
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.slot.Store(ctx, persistedToken{Token: token}); err != nil {
		s.logger.Error("persisting auth token failed", zap.Error(err))
		return err
	}
	return nil
}

// Token returns the current token, or "" when signed out or expired.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" || s.expired(token) {
		return ""
	}
	return token
}

// Subject returns the "sub" claim of a JWT token, if any.
func (s *TokenStore) Subject() string {
	claims, ok := parseClaims(s.Token())
	if !ok {
		return ""
	}
	return claims.Subject
}

func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	return s.slot.Clear(ctx)
}

func (s *TokenStore) Reset(ctx context.Context) error {
	return s.Clear(ctx)
}

func (s *TokenStore) expired(token string) bool {
	claims, ok := parseClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

func parseClaims(token string) (*jwt.RegisteredClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
