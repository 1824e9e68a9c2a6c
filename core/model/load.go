package model

import (
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
)

// LoadStatus tracks a load offer through its lifecycle.
type LoadStatus int

const (
	LoadAvailable LoadStatus = iota
	LoadMatched
	LoadDelivered
	LoadCancelled
)

func (s LoadStatus) String() string {
	switch s {
	case LoadAvailable:
		return "available"
	case LoadMatched:
		return "matched"
	case LoadDelivered:
		return "delivered"
	case LoadCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TimeWindow bounds a pickup or delivery slot.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window. A zero window matches
// any time.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.Start.IsZero() && w.End.IsZero() {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// Load is a shipper's cargo offer. Posted externally, matched by the capacity
// manager, consumed into a mission's manifest and finally marked delivered by
// the action executor.
type Load struct {
	ID             string     `json:"id"`
	Shipper        string     `json:"shipper"`
	ShipperRating  float64    `json:"shipper_rating"` // [0,5], 0 when unknown
	CargoType      string     `json:"cargo_type"`
	WeightTons     float64    `json:"weight_tons"`
	VolumeM3       float64    `json:"volume_m3"`
	Pickup         geo.Point  `json:"pickup"`
	PickupCity     string     `json:"pickup_city,omitempty"`
	Delivery       geo.Point  `json:"delivery"`
	DeliveryCity   string     `json:"delivery_city,omitempty"`
	PickupWindow   TimeWindow `json:"pickup_window"`
	DeliveryWindow TimeWindow `json:"delivery_window"`
	OfferedRate    float64    `json:"offered_rate"`
	Status         LoadStatus `json:"status"`
}
