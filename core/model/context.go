package model

import "time"

// TrafficSeverity grades congestion on the remaining route.
type TrafficSeverity int

const (
	TrafficLight TrafficSeverity = iota
	TrafficModerate
	TrafficHeavy
	TrafficSevere
)

func (t TrafficSeverity) String() string {
	switch t {
	case TrafficLight:
		return "light"
	case TrafficModerate:
		return "moderate"
	case TrafficHeavy:
		return "heavy"
	case TrafficSevere:
		return "severe"
	default:
		return "unknown"
	}
}

// Normalized maps the severity into [0,1].
func (t TrafficSeverity) Normalized() float64 {
	return float64(t) / float64(TrafficSevere)
}

// WeatherCondition describes conditions at the vehicle's position.
type WeatherCondition struct {
	Condition string  `json:"condition"` // clear, cloudy, light_rain, heavy_rain, fog
	Severity  float64 `json:"severity"`  // [0,1]
}

// ContextField names a degradable snapshot field.
type ContextField string

const (
	FieldRoute     ContextField = "route"
	FieldTraffic   ContextField = "traffic"
	FieldWeather   ContextField = "weather"
	FieldFuelPrice ContextField = "fuel_price"
	FieldLoads     ContextField = "loads"
	FieldAlternate ContextField = "alternate_route"
)

// DecisionContext is the immutable snapshot one cycle evaluates against. The
// aggregator builds a fresh value each cycle and nothing mutates it
// afterwards, so concurrent policies can read it without locking.
type DecisionContext struct {
	ID        string    `json:"id"`
	MissionID string    `json:"mission_id"`
	At        time.Time `json:"at"`

	Vehicle Vehicle `json:"vehicle"`

	RemainingRoute   Route   `json:"remaining_route"`
	DistanceToDestKm float64 `json:"distance_to_dest_km"`
	TimeRemainingMin float64 `json:"time_remaining_min"`
	DelayMinutes     float64 `json:"delay_minutes"`

	// AlternateRoute is the routing provider's best alternative this cycle,
	// so the reroute policy stays a pure function of the snapshot.
	AlternateRoute *Route `json:"alternate_route,omitempty"`

	Traffic            TrafficSeverity  `json:"traffic"`
	Weather            WeatherCondition `json:"weather"`
	FuelPricePerLiter  float64          `json:"fuel_price_per_liter"`
	CheckpointDelaySev float64          `json:"checkpoint_delay_probability"` // [0,1]

	Candidates []Load `json:"candidates,omitempty"`

	ContinuousDrivingMin float64 `json:"continuous_driving_min"`

	Degraded   []ContextField `json:"degraded,omitempty"`
	Confidence float64        `json:"confidence"` // [0,1], reduced per degraded field
}

// IsDegraded reports whether the named field fell back to cached data.
func (c DecisionContext) IsDegraded(f ContextField) bool {
	for _, d := range c.Degraded {
		if d == f {
			return true
		}
	}
	return false
}
