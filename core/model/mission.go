package model

import (
	"fmt"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
)

// MissionStatus tracks a mission through its lifecycle.
type MissionStatus int

const (
	StatusDraft MissionStatus = iota
	StatusPlanned
	StatusAssigned
	StatusEnRoutePickup
	StatusAtPickup
	StatusLoading
	StatusInTransit
	StatusAtDelivery
	StatusUnloading
	StatusCompleted
	StatusCancelled
)

// String returns a human-readable representation of the status.
func (s MissionStatus) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPlanned:
		return "PLANNED"
	case StatusAssigned:
		return "ASSIGNED"
	case StatusEnRoutePickup:
		return "EN_ROUTE_PICKUP"
	case StatusAtPickup:
		return "AT_PICKUP"
	case StatusLoading:
		return "LOADING"
	case StatusInTransit:
		return "IN_TRANSIT"
	case StatusAtDelivery:
		return "AT_DELIVERY"
	case StatusUnloading:
		return "UNLOADING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status ends the mission.
func (s MissionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AgentActive reports whether the rolling decision core runs for this status.
func (s MissionStatus) AgentActive() bool {
	return s == StatusEnRoutePickup || s == StatusInTransit
}

// CanTransition reports whether moving from s to next is a legal transition.
// CANCELLED is reachable from any non-terminal state; otherwise the lifecycle
// advances strictly forward one step at a time.
func (s MissionStatus) CanTransition(next MissionStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next == s+1 && next <= StatusCompleted
}

// ManifestEntry references a load carried by the mission.
type ManifestEntry struct {
	LoadID     string    `json:"load_id"`
	Shipper    string    `json:"shipper"`
	CargoType  string    `json:"cargo_type"`
	WeightTons float64   `json:"weight_tons"`
	VolumeM3   float64   `json:"volume_m3"`
	Rate       float64   `json:"rate"`
	AddedAt    time.Time `json:"added_at"`
}

// RiskAssessment summarises mission risk as produced by the fare calculator.
type RiskAssessment struct {
	Score           float64   `json:"score"` // [0,1]
	Level           RiskLevel `json:"level"`
	Factors         []string  `json:"factors,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	IsEstimated     bool      `json:"is_estimated"`
}

// RiskLevel is the banded mapping of a risk score.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "unknown"
	}
}

// Mission is one origin-to-destination trip with an assigned vehicle and a
// manifest of loads. It is created externally and mutated only through the
// action executor while the decision core owns it.
type Mission struct {
	ID              string          `json:"id"`
	VehicleID       string          `json:"vehicle_id"`
	Origin          geo.Point       `json:"origin"`
	OriginName      string          `json:"origin_name,omitempty"`
	Destination     geo.Point       `json:"destination"`
	DestinationName string          `json:"destination_name,omitempty"`
	CurrentLocation geo.Point       `json:"current_location"`
	Status          MissionStatus   `json:"status"`
	Manifest        []ManifestEntry `json:"manifest,omitempty"`
	Backhaul        *ManifestEntry  `json:"backhaul,omitempty"`
	QuotedFare      float64         `json:"quoted_fare"`
	Risk            RiskAssessment  `json:"risk"`
	Route           Route           `json:"route"`
	StartedAt       time.Time       `json:"started_at,omitempty"`
	ExpectedArrival time.Time       `json:"expected_arrival,omitempty"`
	NeedsReview     bool            `json:"needs_review,omitempty"`
}

// Transition moves the mission to next or returns an error for illegal moves.
func (m *Mission) Transition(next MissionStatus) error {
	if !m.Status.CanTransition(next) {
		return fmt.Errorf("mission %s: illegal transition %s -> %s", m.ID, m.Status, next)
	}
	m.Status = next
	return nil
}

// ManifestWeightTons sums the weight currently on the manifest.
func (m *Mission) ManifestWeightTons() float64 {
	total := 0.0
	for _, e := range m.Manifest {
		total += e.WeightTons
	}
	return total
}

// Validate checks basic mission invariants: a mission must reference a vehicle
// and its manifest weight must be finite and non-negative. A violation marks
// state corruption and halts the mission's scheduler.
func (m *Mission) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mission id is required")
	}
	if m.VehicleID == "" {
		return fmt.Errorf("mission %s: vehicle id is required", m.ID)
	}
	for _, e := range m.Manifest {
		if e.WeightTons < 0 || e.VolumeM3 < 0 {
			return fmt.Errorf("mission %s: negative manifest entry %s", m.ID, e.LoadID)
		}
	}
	return nil
}
