package dto

type DeliveryCalculateRequest struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	OrderAmount *float64 `json:"orderAmount,omitempty"`
}

// DeliveryCalculateResponse covers both answers of POST /delivery/calculate:
// the eligible variant with fee details, and the message-only rejection.
type DeliveryCalculateResponse struct {
	Success           bool       `json:"success"`
	InService         bool       `json:"inService"`
	Deliverable       bool       `json:"deliverable"`
	Area              string     `json:"area"`
	City              string     `json:"city"`
	DistanceKm        FlexFloat  `json:"distanceKm"`
	DeliveryFee       FlexFloat  `json:"deliveryFee"`
	FeeStructure      string     `json:"feeStructure,omitempty"`
	Reason            string     `json:"reason"`
	MinOrderAmount    FlexFloat  `json:"minOrderAmount"`
	EstimatedTime     string     `json:"estimatedTime"`
	FreeDeliveryAbove *FlexFloat `json:"freeDeliveryAbove,omitempty"`
	Message           string     `json:"message,omitempty"`
}

func (r DeliveryCalculateResponse) Eligible() bool {
	return r.Success && r.InService && r.Deliverable
}

type AreaDTO struct {
	MongoID string     `json:"_id"`
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	City    string     `json:"city"`
	Center  *LatLngDTO `json:"center,omitempty"`
}

func (a AreaDTO) AreaID() string {
	if a.MongoID != "" {
		return a.MongoID
	}
	return a.ID
}

type LatLngDTO struct {
	Lat FlexFloat `json:"lat"`
	Lng FlexFloat `json:"lng"`
}

type AreasEnvelope struct {
	Success bool      `json:"success"`
	Areas   []AreaDTO `json:"areas"`
	Message string    `json:"message,omitempty"`
}

type AreaCheckEnvelope struct {
	Success   bool     `json:"success"`
	InService bool     `json:"inService"`
	Area      *AreaDTO `json:"area,omitempty"`
	Message   string   `json:"message,omitempty"`
}
