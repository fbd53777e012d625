package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

const (
	SlotName = "cart"

	// LocalIDPrefix marks lines created optimistically that the server has
	// not assigned an id to yet.
	LocalIDPrefix = "local-"
)

// Cache is the local mirror of the server cart. It is mutated optimistically
// and replaced wholesale by SyncWithServer; it is never the source of truth.
// Every mutation is persisted; a persistence failure is returned but the
// in-memory state keeps the change.
//
// Each change takes a sequence number under mu. Snapshots reach the slot in
// sequence order: one older than the last stored snapshot is dropped, so the
// slot never goes back to a cart memory has already moved past.
type Cache struct {
	mu     sync.RWMutex
	cart   domain.Cart
	seq    uint64
	slot   *state.Slot[domain.Cart]
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	persistMu sync.Mutex
	persisted uint64
}

func New(repo state.Repository, schemaVersion int, logger *zap.Logger) *Cache {
	return &Cache{
		cart:   emptyCart(),
		slot:   state.NewSlot[domain.Cart](repo, SlotName, schemaVersion),
		logger: logger,
		now:    time.Now,
		newID:  func() string { return LocalIDPrefix + uuid.New().String() },
	}
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// Init restores the persisted cart. An incompatible or missing slot leaves
// the cache empty until the first server sync.
func (c *Cache) Init(ctx context.Context) error {
	stored, ok, err := c.slot.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cart = emptyCart()
	if ok {
		c.cart = normalize(stored)
	}
	c.logger.Debug("cart cache initialized", zap.Bool("restored", ok), zap.Int("items", len(c.cart.Items)))
	return nil
}

// Reset empties the cache and deletes the persisted slot.
func (c *Cache) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.cart = emptyCart()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if seq < c.persisted {
		return nil
	}
	c.persisted = seq
	return c.slot.Clear(ctx)
}

func (c *Cache) Snapshot() domain.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Clone()
}

// AddItem merges into the line with the same menu item and options, or
// appends a new line. computedPrice is the unit price snapshot kept on the
// line; option prices are added on top when totals are computed.
func (c *Cache) AddItem(ctx context.Context, item domain.MenuItemSnapshot, quantity int, options domain.Options, computedPrice float64) (domain.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	candidate := domain.CartItem{MenuItem: item, Options: options.Clone()}
	key := candidate.IdentityKey()

	var line domain.CartItem
	merged := false
	for i := range c.cart.Items {
		if c.cart.Items[i].IdentityKey() == key {
			c.cart.Items[i].Quantity += quantity
			line = c.cart.Items[i].Clone()
			merged = true
			break
		}
	}

	if !merged {
		candidate.ID = c.newID()
		candidate.Quantity = quantity
		candidate.PriceAtAdd = computedPrice
		candidate.AddedAt = c.now().UTC()
		c.cart.Items = append(c.cart.Items, candidate)
		line = candidate.Clone()
	}
	c.cart.Total = c.cart.ComputedTotal()
	seq, snapshot := c.commit()
	c.mu.Unlock()

	c.logger.Debug("cart item added locally",
		zap.String("itemId", line.ID),
		zap.String("menuItemId", item.ID),
		zap.Int("quantity", line.Quantity),
		zap.Bool("merged", merged),
	)

	return line, c.persist(ctx, seq, snapshot)
}

// UpdateItem applies the non-nil fields of upd. An unknown id is a no-op.
// A quantity below one is ignored; removal goes through RemoveItem.
func (c *Cache) UpdateItem(ctx context.Context, itemID string, upd domain.CartItemUpdate) error {
	c.mu.Lock()
	idx := c.indexOf(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}

	line := &c.cart.Items[idx]
	if upd.Quantity != nil && *upd.Quantity >= 1 {
		line.Quantity = *upd.Quantity
	}
	if upd.SpecialInstructions != nil {
		line.SpecialInstructions = *upd.SpecialInstructions
	}
	if upd.Sides != nil {
		line.Options.Sides = append([]domain.Option(nil), upd.Sides...)
	}
	if upd.Drinks != nil {
		line.Options.Drinks = append([]domain.Option(nil), upd.Drinks...)
	}
	if upd.AddOns != nil {
		line.Options.AddOns = append([]domain.Option(nil), upd.AddOns...)
	}
	c.cart.Total = c.cart.ComputedTotal()
	seq, snapshot := c.commit()
	c.mu.Unlock()

	return c.persist(ctx, seq, snapshot)
}

// RemoveItem deletes the line. An unknown id is a no-op.
func (c *Cache) RemoveItem(ctx context.Context, itemID string) error {
	c.mu.Lock()
	idx := c.indexOf(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}

	c.cart.Items = append(c.cart.Items[:idx], c.cart.Items[idx+1:]...)
	c.cart.Total = c.cart.ComputedTotal()
	seq, snapshot := c.commit()
	c.mu.Unlock()

	return c.persist(ctx, seq, snapshot)
}

func (c *Cache) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	isGuest := c.cart.IsGuest
	c.cart = emptyCart()
	c.cart.IsGuest = isGuest
	seq, snapshot := c.commit()
	c.mu.Unlock()

	return c.persist(ctx, seq, snapshot)
}

// SetOrderNote replaces the note attached to the whole order.
func (c *Cache) SetOrderNote(ctx context.Context, note string) error {
	c.mu.Lock()
	if c.cart.OrderNote == note {
		c.mu.Unlock()
		return nil
	}
	c.cart.OrderNote = note
	seq, snapshot := c.commit()
	c.mu.Unlock()

	return c.persist(ctx, seq, snapshot)
}

// SyncWithServer replaces the local cart with the server snapshot, total
// included. Applying the same snapshot again changes nothing.
func (c *Cache) SyncWithServer(ctx context.Context, snapshot domain.Cart) error {
	next := normalize(snapshot.Clone())

	c.mu.Lock()
	c.cart = next
	seq, stored := c.commit()
	c.mu.Unlock()

	return c.persist(ctx, seq, stored)
}

func (c *Cache) indexOf(itemID string) int {
	for i, item := range c.cart.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// commit stamps the current cart with the next sequence number. Callers hold mu.
func (c *Cache) commit() (uint64, domain.Cart) {
	c.seq++
	return c.seq, c.cart.Clone()
}

func (c *Cache) persist(ctx context.Context, seq uint64, snapshot domain.Cart) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if seq < c.persisted {
		c.logger.Debug("skipping superseded cart snapshot", zap.Uint64("seq", seq), zap.Uint64("persisted", c.persisted))
		return nil
	}
	if err := c.slot.Store(ctx, snapshot); err != nil {
		c.logger.Error("persisting cart cache failed", zap.Error(err))
		return err
	}
	c.persisted = seq
	return nil
}

func emptyCart() domain.Cart {
	return domain.Cart{Items: []domain.CartItem{}}
}

func normalize(cart domain.Cart) domain.Cart {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart
}
