package domain

import (
	"math"
	"time"
)

type FeeStructure string

const (
	FeeStructureDistance FeeStructure = "distance"
	FeeStructureFlat     FeeStructure = "flat"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite numbers inside the
// WGS84 ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

type DeliveryArea struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	City   string       `json:"city"`
	Center *Coordinates `json:"center,omitempty"`
}

type DeliveryCheckResult struct {
	InService         bool         `json:"inService"`
	IsDeliverable     bool         `json:"isDeliverable"`
	Fee               float64      `json:"deliveryFee"`
	FeeStructure      FeeStructure `json:"feeStructure"`
	MinOrderAmount    float64      `json:"minOrderAmount"`
	EstimatedTime     string       `json:"estimatedTime"`
	FreeDeliveryAbove *float64     `json:"freeDeliveryAbove,omitempty"`
	Reason            string       `json:"reason"`
	Area              string       `json:"area"`
	City              string       `json:"city"`
	DistanceKm        float64      `json:"distanceKm"`
	CheckedAt         time.Time    `json:"checkedAt"`
}

func (r DeliveryCheckResult) MeetsMinimum(orderAmount float64) bool {
	return orderAmount >= r.MinOrderAmount
}

// FeeFor returns the fee charged for an order of the given amount, honoring
// the free-delivery threshold when the area has one.
func (r DeliveryCheckResult) FeeFor(orderAmount float64) float64 {
	if r.FreeDeliveryAbove != nil && orderAmount >= *r.FreeDeliveryAbove {
		return 0
	}
	return r.Fee
}

type DeliveryStatus string

const (
	DeliveryStatusIdle       DeliveryStatus = "idle"
	DeliveryStatusChecking   DeliveryStatus = "checking"
	DeliveryStatusEligible   DeliveryStatus = "eligible"
	DeliveryStatusIneligible DeliveryStatus = "ineligible"
	DeliveryStatusErrored    DeliveryStatus = "errored"
)

// DeliveryState is what the checkout gate reads. Result is only set when
// Status is eligible; Error is only set for ineligible and errored.
type DeliveryState struct {
	Status      DeliveryStatus       `json:"status"`
	Result      *DeliveryCheckResult `json:"result,omitempty"`
	Error       string               `json:"error,omitempty"`
	Coordinates *Coordinates         `json:"coordinates,omitempty"`
	Token       uint64               `json:"token"`
}

// AreaCheck is the answer of the area lookup endpoint.
type AreaCheck struct {
	InService bool          `json:"inService"`
	Area      *DeliveryArea `json:"area,omitempty"`
	Message   string        `json:"message,omitempty"`
}
