package usecase

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/cache"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/service"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

const (
	MaxQuantity = 99

	refetchTimeout = 15 * time.Second
)

type CartAPI interface {
	FetchCart(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, req dto.AddCartItemRequest) (*domain.Cart, error)
	UpdateItem(ctx context.Context, itemID string, req dto.UpdateCartItemRequest) (*domain.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context) (*domain.Cart, error)
}

type LocalCache interface {
	Snapshot() domain.Cart
	AddItem(ctx context.Context, item domain.MenuItemSnapshot, quantity int, options domain.Options, computedPrice float64) (domain.CartItem, error)
	UpdateItem(ctx context.Context, itemID string, upd domain.CartItemUpdate) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
	SetOrderNote(ctx context.Context, note string) error
	SyncWithServer(ctx context.Context, snapshot domain.Cart) error
}

// MenuLookup resolves menu items already known locally. It must not hit the
// network: it runs on the optimistic path.
type MenuLookup interface {
	Lookup(id string) (domain.MenuItem, bool)
}

type AddItemInput struct {
	MenuItemID          string         `json:"menuItemId"`
	Quantity            int            `json:"quantity"`
	Options             domain.Options `json:"options"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
	OrderNote           string         `json:"orderNote,omitempty"`
}

type Settings struct {
	StaleTime     time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Synchronizer keeps the local cart cache converging on the server cart.
//
// Reads are a query with a staleness window. Writes go to the server first;
// on success the query is invalidated, an authoritative refetch is scheduled
// and the cache gets an immediate optimistic update. Every fetch and every
// write draws a token from one increasing sequence; a result is applied only
// when its token is newer than the last applied one, so late answers are
// dropped instead of overwriting newer state. The token check and the cache
// write happen under applyMu, so a claimed result cannot land after a newer
// one.
type Synchronizer struct {
	api    CartAPI
	cache  LocalCache
	menu   MenuLookup
	logger *zap.Logger

	staleTime     time.Duration
	retryAttempts int
	backoffs      []time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	issued      uint64
	applied     uint64
	lastFetched time.Time
	invalidated bool

	applyMu sync.Mutex

	refetches sync.WaitGroup
}

func NewSynchronizer(api CartAPI, cache LocalCache, menu MenuLookup, settings Settings, logger *zap.Logger) *Synchronizer {
	staleTime := settings.StaleTime
	if staleTime <= 0 {
		staleTime = 30 * time.Second
	}
	retryAttempts := settings.RetryAttempts
	if retryAttempts < 0 {
		retryAttempts = 0
	}

	// Backoff before retry n is backoffs[n-1]: base, 2*base, 4*base...
	backoffs := make([]time.Duration, retryAttempts)
	for i := range backoffs {
		backoffs[i] = settings.RetryBackoff << i
	}

	return &Synchronizer{
		api:           api,
		cache:         cache,
		menu:          menu,
		logger:        logger,
		staleTime:     staleTime,
		retryAttempts: retryAttempts,
		backoffs:      backoffs,
		now:           time.Now,
		sleep:         sleepContext,
	}
}

// Cart returns the cart, refetching first when the cached copy is stale. A
// failed refetch is not an error for the reader: the last known cart is
// returned so the UI does not flicker.
func (s *Synchronizer) Cart(ctx context.Context) domain.Cart {
	if s.IsStale() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("cart refetch failed, serving cached cart", zap.Error(err))
		}
	}
	return s.cache.Snapshot()
}

// OnFocus is called when the storefront regains focus.
func (s *Synchronizer) OnFocus(ctx context.Context) {
	if !s.IsStale() {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("cart refetch on focus failed", zap.Error(err))
	}
}

func (s *Synchronizer) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated || s.lastFetched.IsZero() || s.now().Sub(s.lastFetched) >= s.staleTime
}

// Invalidate marks the cached cart as untrusted; the next read refetches.
func (s *Synchronizer) Invalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
}

// Refresh fetches the server cart, retrying transient failures, and syncs it
// into the cache. On exhaustion the cache is left untouched.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	token := s.nextToken()

	var cart *domain.Cart
	var err error
	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			if sleepErr := s.sleep(ctx, s.jittered(s.backoffs[attempt-1])); sleepErr != nil {
				return sleepErr
			}
			s.logger.Debug("retrying cart fetch", zap.Int("attempt", attempt), zap.Uint64("token", token))
		}

		cart, err = s.api.FetchCart(ctx)
		if err == nil {
			break
		}
		if !isRetryable(err) {
			break
		}
	}
	if err != nil {
		return err
	}

	s.applyMu.Lock()
	if !s.claim(token) {
		s.applyMu.Unlock()
		s.logger.Debug("discarding stale cart fetch", zap.Uint64("token", token))
		return nil
	}
	if err := s.cache.SyncWithServer(ctx, *cart); err != nil {
		s.logger.Warn("cart synced but not persisted", zap.Error(err))
	}
	s.applyMu.Unlock()

	s.mu.Lock()
	s.lastFetched = s.now()
	s.invalidated = false
	s.mu.Unlock()

	return nil
}

func (s *Synchronizer) AddItem(ctx context.Context, in AddItemInput) error {
	if err := validateAddItem(in); err != nil {
		return err
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	token := s.nextToken()
	_, err := s.api.AddItem(ctx, dto.AddCartItemRequest{
		MenuItemID:          in.MenuItemID,
		Quantity:            quantity,
		Sides:               service.OptionNames(in.Options.Sides),
		Drinks:              service.OptionNames(in.Options.Drinks),
		AddOns:              service.OptionNames(in.Options.AddOns),
		SpecialInstructions: in.SpecialInstructions,
		OrderNote:           in.OrderNote,
	})
	if err != nil {
		s.logger.Warn("add to cart failed", zap.String("menuItemId", in.MenuItemID), zap.Error(err))
		return err
	}

	s.afterMutation(ctx, token, "add", func(ctx context.Context) error {
		// Until the refetch lands the line shows the menu price if it is known
		// locally, else a zero placeholder.
		snapshot := domain.MenuItemSnapshot{ID: in.MenuItemID}
		if s.menu != nil {
			if item, ok := s.menu.Lookup(in.MenuItemID); ok {
				snapshot = item.Snapshot()
			}
		}

		// A merged line keeps its own instructions until the refetch lands.
		key := domain.CartItem{MenuItem: snapshot, Options: in.Options}.IdentityKey()
		merging := false
		for _, item := range s.cache.Snapshot().Items {
			if item.IdentityKey() == key {
				merging = true
				break
			}
		}

		line, err := s.cache.AddItem(ctx, snapshot, quantity, in.Options, snapshot.Price)
		if err != nil {
			return err
		}
		if in.SpecialInstructions != "" && !merging {
			instructions := in.SpecialInstructions
			if err := s.cache.UpdateItem(ctx, line.ID, domain.CartItemUpdate{SpecialInstructions: &instructions}); err != nil {
				return err
			}
		}
		if in.OrderNote != "" {
			return s.cache.SetOrderNote(ctx, in.OrderNote)
		}
		return nil
	})
	return nil
}

func (s *Synchronizer) UpdateItem(ctx context.Context, itemID string, upd domain.CartItemUpdate) error {
	if err := s.validateItemID(itemID); err != nil {
		return err
	}
	if err := validateUpdate(upd); err != nil {
		return err
	}

	token := s.nextToken()
	_, err := s.api.UpdateItem(ctx, itemID, dto.UpdateCartItemRequest{
		Quantity:            upd.Quantity,
		SpecialInstructions: upd.SpecialInstructions,
		Sides:               service.OptionNames(upd.Sides),
		Drinks:              service.OptionNames(upd.Drinks),
		AddOns:              service.OptionNames(upd.AddOns),
	})
	if err != nil {
		s.logger.Warn("cart item update failed", zap.String("itemId", itemID), zap.Error(err))
		return err
	}

	s.afterMutation(ctx, token, "update", func(ctx context.Context) error {
		return s.cache.UpdateItem(ctx, itemID, upd)
	})
	return nil
}

func (s *Synchronizer) RemoveItem(ctx context.Context, itemID string) error {
	if err := s.validateItemID(itemID); err != nil {
		return err
	}

	token := s.nextToken()
	if _, err := s.api.RemoveItem(ctx, itemID); err != nil {
		s.logger.Warn("cart item removal failed", zap.String("itemId", itemID), zap.Error(err))
		return err
	}

	s.afterMutation(ctx, token, "remove", func(ctx context.Context) error {
		return s.cache.RemoveItem(ctx, itemID)
	})
	return nil
}

func (s *Synchronizer) ClearCart(ctx context.Context) error {
	token := s.nextToken()
	if _, err := s.api.ClearCart(ctx); err != nil {
		s.logger.Warn("clearing cart failed", zap.Error(err))
		return err
	}

	s.afterMutation(ctx, token, "clear", s.cache.ClearCart)
	return nil
}

// Wait blocks until scheduled background refetches have finished.
func (s *Synchronizer) Wait() {
	s.refetches.Wait()
}

// Reset forgets freshness and drops the results of requests still in
// flight. Used on logout together with the cache reset.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.lastFetched = time.Time{}
	s.invalidated = true
	s.applied = s.issued
	s.mu.Unlock()
}

// afterMutation runs after a successful write: invalidate, schedule the
// authoritative refetch, then apply the optimistic update unless a newer
// result already landed.
func (s *Synchronizer) afterMutation(ctx context.Context, token uint64, op string, optimistic func(ctx context.Context) error) {
	s.Invalidate()
	s.scheduleRefetch(ctx)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if !s.claim(token) {
		s.logger.Debug("skipping optimistic update, newer cart state applied", zap.String("op", op), zap.Uint64("token", token))
		return
	}
	if err := optimistic(ctx); err != nil {
		s.logger.Warn("optimistic cart update not persisted", zap.String("op", op), zap.Error(err))
	}
}

// ScheduleRefetch invalidates the cart and refetches it in the background,
// e.g. when the realtime channel reports a change made elsewhere.
func (s *Synchronizer) ScheduleRefetch(ctx context.Context) {
	s.Invalidate()
	s.scheduleRefetch(ctx)
}

func (s *Synchronizer) scheduleRefetch(ctx context.Context) {
	s.refetches.Add(1)
	go func() {
		defer s.refetches.Done()

		refetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refetchTimeout)
		defer cancel()

		if err := s.Refresh(refetchCtx); err != nil {
			s.logger.Warn("background cart refetch failed", zap.Error(err))
		}
	}()
}

func (s *Synchronizer) nextToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// claim reports whether a result carrying token may be applied, and records
// it as the latest applied one if so.
func (s *Synchronizer) claim(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token <= s.applied {
		return false
	}
	s.applied = token
	return true
}

func (s *Synchronizer) validateItemID(itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return apperrors.NewValidationError("itemId is required", apperrors.ValidationDetail{
			Field:   "itemId",
			Message: "itemId must not be empty",
		})
	}
	if cache.IsLocalID(itemID) {
		// The server has not assigned an id yet; the pending refetch will.
		s.ScheduleRefetch(context.Background())
		return apperrors.NewValidationError("cart is still syncing, please try again", apperrors.ValidationDetail{
			Field:   "itemId",
			Message: "item has not been confirmed by the server yet",
		})
	}
	return nil
}

// Backoff jitter: ±20% of the base interval.
func (s *Synchronizer) jittered(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
}

func validateAddItem(in AddItemInput) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(in.MenuItemID) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "menuItemId",
			Message: "menuItemId is required",
		})
	}
	if in.Quantity < 0 || in.Quantity > MaxQuantity {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be between 1 and 99",
		})
	}
	details = append(details, validateOptions(in.Options.Sides, "options.sides")...)
	details = append(details, validateOptions(in.Options.Drinks, "options.drinks")...)
	details = append(details, validateOptions(in.Options.AddOns, "options.addOns")...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateUpdate(upd domain.CartItemUpdate) error {
	if upd.IsEmpty() {
		return apperrors.NewValidationError("nothing to update", apperrors.ValidationDetail{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	var details []apperrors.ValidationDetail
	if upd.Quantity != nil && (*upd.Quantity < 1 || *upd.Quantity > MaxQuantity) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be between 1 and 99",
		})
	}
	details = append(details, validateOptions(upd.Sides, "sides")...)
	details = append(details, validateOptions(upd.Drinks, "drinks")...)
	details = append(details, validateOptions(upd.AddOns, "addOns")...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateOptions(opts []domain.Option, field string) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	for _, opt := range opts {
		if strings.TrimSpace(opt.Name) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   field,
				Message: "option name must not be empty",
			})
		}
		if opt.Price < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   field,
				Message: "option price must be non-negative",
			})
		}
	}
	return details
}

func isRetryable(err error) bool {
	te, ok := apperrors.IsTransportError(err)
	return ok && te.Retryable()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
