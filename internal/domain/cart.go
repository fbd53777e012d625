package domain

import (
	"sort"
	"strings"
	"time"
)

// Option is a selected side, drink or add-on. Price is zero for free options.
type Option struct {
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
}

type Options struct {
	Sides  []Option `json:"sides,omitempty"`
	Drinks []Option `json:"drinks,omitempty"`
	AddOns []Option `json:"addOns,omitempty"`
}

func (o Options) Total() float64 {
	total := 0.0
	for _, group := range [][]Option{o.Sides, o.Drinks, o.AddOns} {
		for _, opt := range group {
			total += opt.Price
		}
	}
	return total
}

// Key is a stable textual form of the selection, independent of the order in
// which options were picked.
func (o Options) Key() string {
	return "s:" + optionNames(o.Sides) + "|d:" + optionNames(o.Drinks) + "|a:" + optionNames(o.AddOns)
}

func (o Options) Clone() Options {
	return Options{
		Sides:  cloneOptions(o.Sides),
		Drinks: cloneOptions(o.Drinks),
		AddOns: cloneOptions(o.AddOns),
	}
}

func optionNames(opts []Option) string {
	names := make([]string, 0, len(opts))
	for _, opt := range opts {
		names = append(names, strings.ToLower(strings.TrimSpace(opt.Name)))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}

// MenuItemSnapshot is the menu item as it looked when it went into the cart.
type MenuItemSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image,omitempty"`
	Price float64 `json:"price"`
}

type CartItem struct {
	ID                  string           `json:"id"`
	MenuItem            MenuItemSnapshot `json:"menuItem"`
	Quantity            int              `json:"quantity"`
	PriceAtAdd          float64          `json:"priceAtAdd"`
	Options             Options          `json:"options"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
	AddedAt             time.Time        `json:"addedAt"`
}

// IdentityKey groups lines that must be merged: same menu item, same options.
func (i CartItem) IdentityKey() string {
	return i.MenuItem.ID + "#" + i.Options.Key()
}

func (i CartItem) LineTotal() float64 {
	return (i.PriceAtAdd + i.Options.Total()) * float64(i.Quantity)
}

func (i CartItem) Clone() CartItem {
	i.Options = i.Options.Clone()
	return i
}

type Cart struct {
	Items     []CartItem `json:"items"`
	OrderNote string     `json:"orderNote,omitempty"`
	Total     float64    `json:"total"`
	IsGuest   bool       `json:"isGuest"`
}

func (c Cart) ComputedTotal() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) FindItem(id string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = item.Clone()
	}
	c.Items = items
	return c
}

// CartItemUpdate carries the fields of a partial line update. Nil fields are
// left untouched.
type CartItemUpdate struct {
	Quantity            *int     `json:"quantity,omitempty"`
	SpecialInstructions *string  `json:"specialInstructions,omitempty"`
	Sides               []Option `json:"sides,omitempty"`
	Drinks              []Option `json:"drinks,omitempty"`
	AddOns              []Option `json:"addOns,omitempty"`
}

func (u CartItemUpdate) IsEmpty() bool {
	return u.Quantity == nil && u.SpecialInstructions == nil &&
		u.Sides == nil && u.Drinks == nil && u.AddOns == nil
}
