package domain

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
	IsSpicy     bool    `json:"isSpicy,omitempty"`
	IsVeg       bool    `json:"isVeg,omitempty"`
}

// Snapshot freezes the parts of the item a cart line keeps.
func (m MenuItem) Snapshot() MenuItemSnapshot {
	return MenuItemSnapshot{
		ID:    m.ID,
		Name:  m.Name,
		Image: m.Image,
		Price: m.Price,
	}
}
