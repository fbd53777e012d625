package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

type CartEnvelope struct {
	Success bool     `json:"success"`
	Cart    *CartDTO `json:"cart"`
	IsGuest bool     `json:"isGuest"`
	Message string   `json:"message,omitempty"`
}

type CartDTO struct {
	Items     []CartItemDTO `json:"items"`
	Total     FlexFloat     `json:"total"`
	OrderNote string        `json:"orderNote"`
}

type CartItemDTO struct {
	MongoID             string         `json:"_id"`
	ID                  string         `json:"id"`
	MenuItem            MenuItemRefDTO `json:"menuItem"`
	Quantity            int            `json:"quantity"`
	PriceAtAdd          FlexFloat      `json:"priceAtAdd"`
	Sides               []OptionDTO    `json:"sides"`
	Drinks              []OptionDTO    `json:"drinks"`
	AddOns              []OptionDTO    `json:"addOns"`
	SpecialInstructions string         `json:"specialInstructions"`
	AddedAt             time.Time      `json:"addedAt"`
}

func (i CartItemDTO) LineID() string {
	if i.MongoID != "" {
		return i.MongoID
	}
	return i.ID
}

// MenuItemRefDTO is either a populated menu item object or a bare id string.
type MenuItemRefDTO struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Price FlexFloat `json:"price"`
}

func (m *MenuItemRefDTO) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.ID)
	}

	var raw struct {
		MongoID string    `json:"_id"`
		ID      string    `json:"id"`
		Name    string    `json:"name"`
		Image   string    `json:"image"`
		Price   FlexFloat `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ID
	if raw.MongoID != "" {
		m.ID = raw.MongoID
	}
	m.Name = raw.Name
	m.Image = raw.Image
	m.Price = raw.Price
	return nil
}

// OptionDTO is either a bare option name or a {name, price} object.
type OptionDTO struct {
	Name  string    `json:"name"`
	Price FlexFloat `json:"price,omitempty"`
}

func (o *OptionDTO) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &o.Name)
	}

	var raw struct {
		Name  string    `json:"name"`
		Price FlexFloat `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Name = raw.Name
	o.Price = raw.Price
	return nil
}

type AddCartItemRequest struct {
	MenuItemID          string   `json:"menuItemId"`
	Quantity            int      `json:"quantity,omitempty"`
	Sides               []string `json:"sides,omitempty"`
	Drinks              []string `json:"drinks,omitempty"`
	AddOns              []string `json:"addOns,omitempty"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
	OrderNote           string   `json:"orderNote,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity            *int     `json:"quantity,omitempty"`
	SpecialInstructions *string  `json:"specialInstructions,omitempty"`
	Sides               []string `json:"sides,omitempty"`
	Drinks              []string `json:"drinks,omitempty"`
	AddOns              []string `json:"addOns,omitempty"`
}
