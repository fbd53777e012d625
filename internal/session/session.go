package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Store is a piece of client state with a persisted slot.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
}

type TokenStore interface {
	Store
	SetToken(ctx context.Context, token string) error
	Token() string
	Subject() string
}

type CartSync interface {
	Reset()
	ScheduleRefetch(ctx context.Context)
}

type namedStore struct {
	name  string
	store Store
}

// Session ties the client stores to one lifecycle: loaded together at start,
// torn down together on logout.
type Session struct {
	tokens TokenStore
	cart   CartSync
	stores []namedStore
	logger *zap.Logger
}

func New(tokens TokenStore, cartCache Store, cart CartSync, delivery Store, logger *zap.Logger) *Session {
	return &Session{
		tokens: tokens,
		cart:   cart,
		stores: []namedStore{
			{name: "auth", store: tokens},
			{name: "cart", store: cartCache},
			{name: "delivery", store: delivery},
		},
		logger: logger,
	}
}

// Init loads every store. A store that cannot be loaded starts empty; it is
// rebuilt from the server on first use.
func (s *Session) Init(ctx context.Context) error {
	var errs []error
	for _, ns := range s.stores {
		if err := ns.store.Init(ctx); err != nil {
			s.logger.Warn("restoring client state failed, starting empty", zap.String("store", ns.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("initializing %s state: %w", ns.name, err))
			if resetErr := ns.store.Reset(ctx); resetErr != nil {
				errs = append(errs, fmt.Errorf("resetting %s state: %w", ns.name, resetErr))
			}
		}
	}
	return errors.Join(errs...)
}

// Reset empties every store and forgets cart freshness. All stores are reset
// even when one of them fails.
func (s *Session) Reset(ctx context.Context) error {
	s.cart.Reset()

	var errs []error
	for _, ns := range s.stores {
		if err := ns.store.Reset(ctx); err != nil {
			s.logger.Error("resetting client state failed", zap.String("store", ns.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("resetting %s state: %w", ns.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) Logout(ctx context.Context) error {
	s.logger.Info("logging out")
	return s.Reset(ctx)
}

// HandleUnauthorized signs the customer out after the API rejected their
// token: every store is reset so the previous customer's cart is not shown to
// the guest, then the guest cart is fetched.
func (s *Session) HandleUnauthorized(ctx context.Context) {
	if !s.Authenticated() {
		return
	}
	s.logger.Info("api rejected auth token, signing out")
	if err := s.Reset(ctx); err != nil {
		s.logger.Warn("resetting client state after rejected token failed", zap.Error(err))
	}
	s.cart.ScheduleRefetch(ctx)
}

// SignIn stores the token and refetches the cart, which now belongs to the
// signed-in customer instead of the guest.
func (s *Session) SignIn(ctx context.Context, token string) error {
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return err
	}
	s.cart.ScheduleRefetch(ctx)
	s.logger.Info("signed in", zap.String("subject", s.tokens.Subject()))
	return nil
}

func (s *Session) Authenticated() bool {
	return s.tokens.Token() != ""
}

func (s *Session) Subject() string {
	return s.tokens.Subject()
}
