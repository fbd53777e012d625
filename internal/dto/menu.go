package dto

type MenuEnvelope struct {
	Success bool          `json:"success"`
	Menu    []MenuItemDTO `json:"menu"`
	Message string        `json:"message,omitempty"`
}

type MenuItemDTO struct {
	MongoID     string    `json:"_id"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       FlexFloat `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	IsAvailable *bool     `json:"isAvailable"`
	IsSpicy     bool      `json:"isSpicy"`
	IsVeg       bool      `json:"isVeg"`
}

func (m MenuItemDTO) ItemID() string {
	if m.MongoID != "" {
		return m.MongoID
	}
	return m.ID
}
