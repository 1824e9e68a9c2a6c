package model

import (
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
)

// WaypointKind classifies the stops along a route.
type WaypointKind int

const (
	WaypointPickup WaypointKind = iota
	WaypointDrop
	WaypointFuel
	WaypointRest
	WaypointCheckpoint
)

func (k WaypointKind) String() string {
	switch k {
	case WaypointPickup:
		return "pickup"
	case WaypointDrop:
		return "drop"
	case WaypointFuel:
		return "fuel"
	case WaypointRest:
		return "rest"
	case WaypointCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// Waypoint is one ordered stop on a mission route. The sequence is re-ordered
// only by a committed reroute decision.
type Waypoint struct {
	Seq         int          `json:"seq"`
	Location    geo.Point    `json:"location"`
	Name        string       `json:"name,omitempty"`
	Kind        WaypointKind `json:"kind"`
	ScheduledAt time.Time    `json:"scheduled_at,omitempty"`
	ActualAt    time.Time    `json:"actual_at,omitempty"`
}

// Route is the planned path of a mission. Version increments on every
// committed route mutation so the executor can detect a stale plan.
type Route struct {
	Polyline    []geo.Point `json:"-"`
	Encoded     string      `json:"polyline"`
	Waypoints   []Waypoint  `json:"waypoints,omitempty"`
	DistanceKm  float64     `json:"distance_km"`
	DurationMin float64     `json:"duration_min"`
	TollCost    float64     `json:"toll_cost"`
	Version     int         `json:"version"`
}

// Points returns the decoded polyline, preferring the in-memory slice.
func (r Route) Points() []geo.Point {
	if len(r.Polyline) > 0 {
		return r.Polyline
	}
	pts, err := geo.DecodePolyline(r.Encoded)
	if err != nil {
		return nil
	}
	return pts
}

// Seal fills the encoded form from the in-memory polyline.
func (r *Route) Seal() {
	if len(r.Polyline) > 0 {
		r.Encoded = geo.EncodePolyline(r.Polyline)
	}
}

// NextFuelStop returns the first fuel waypoint at or after the given sequence
// index, or nil when none is planned ahead.
func (r Route) NextFuelStop(afterSeq int) *Waypoint {
	for i := range r.Waypoints {
		w := r.Waypoints[i]
		if w.Kind == WaypointFuel && w.Seq >= afterSeq && w.ActualAt.IsZero() {
			return &w
		}
	}
	return nil
}
