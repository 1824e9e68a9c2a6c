package model

import "time"

// TriggerKind identifies what caused the agent to re-evaluate.
type TriggerKind int

const (
	TriggerScheduled TriggerKind = iota
	TriggerTrafficAlert
	TriggerLoadAvailable
	TriggerFuelPriceChange
	TriggerETADeviation
	TriggerManual
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerScheduled:
		return "scheduled"
	case TriggerTrafficAlert:
		return "traffic_alert"
	case TriggerLoadAvailable:
		return "load_available"
	case TriggerFuelPriceChange:
		return "fuel_price_change"
	case TriggerETADeviation:
		return "eta_deviation"
	case TriggerManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Trigger is an event that causes one decision cycle. Payload fields are
// populated per kind: DelayMinutes for traffic/ETA triggers, LoadID for load
// availability, Region and PricePerLiter for fuel price changes, Reason for
// manual requests.
type Trigger struct {
	Kind          TriggerKind `json:"kind"`
	MissionID     string      `json:"mission_id"`
	At            time.Time   `json:"at"`
	DelayMinutes  float64     `json:"delay_minutes,omitempty"`
	LoadID        string      `json:"load_id,omitempty"`
	Region        string      `json:"region,omitempty"`
	PricePerLiter float64     `json:"price_per_liter,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}
