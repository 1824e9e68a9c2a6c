// Package fare implements the dynamic fare and risk calculator. Every
// function is pure and deterministic: missing inputs fall back to configured
// historical averages and the result is tagged IsEstimated instead of failing.
package fare

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// RiskWeights weight the components of the risk score.
type RiskWeights struct {
	Checkpoint float64 `json:"checkpoint"`
	Traffic    float64 `json:"traffic"`
	Weather    float64 `json:"weather"`
	Timing     float64 `json:"timing"`
}

// Config holds fare tunables. None of these values are derived at runtime;
// they are configuration with defaults matching the fleet's current tariff.
type Config struct {
	BaseFarePerKm       float64 `json:"base_fare_per_km"`
	FuelPricePerLiter   float64 `json:"fuel_price_per_liter"`
	FuelEfficiency      float64 `json:"fuel_efficiency_km_per_l"`
	FuelSurchargeFactor float64 `json:"fuel_surcharge_factor"`
	DriverRatePerHour   float64 `json:"driver_rate_per_hour"`
	WearPerKm           float64 `json:"wear_per_km"`

	ETAOptimistic  float64 `json:"eta_optimistic"`
	ETAExpected    float64 `json:"eta_expected"`
	ETAPessimistic float64 `json:"eta_pessimistic"`

	Risk RiskWeights `json:"risk_weights"`

	// HistoricalFuelPrices feeds the estimated-result fallback when the live
	// price is missing.
	HistoricalFuelPrices []float64 `json:"historical_fuel_prices"`
}

// SetDefaults applies the tariff defaults.
func (c *Config) SetDefaults() {
	if c.BaseFarePerKm == 0 {
		c.BaseFarePerKm = 55
	}
	if c.FuelPricePerLiter == 0 {
		c.FuelPricePerLiter = 90
	}
	if c.FuelEfficiency == 0 {
		c.FuelEfficiency = 3.5
	}
	if c.FuelSurchargeFactor == 0 {
		c.FuelSurchargeFactor = 0.3
	}
	if c.DriverRatePerHour == 0 {
		c.DriverRatePerHour = 150
	}
	if c.WearPerKm == 0 {
		c.WearPerKm = 2
	}
	if c.ETAOptimistic == 0 {
		c.ETAOptimistic = 0.9
	}
	if c.ETAExpected == 0 {
		c.ETAExpected = 1.0
	}
	if c.ETAPessimistic == 0 {
		c.ETAPessimistic = 1.25
	}
	if c.Risk == (RiskWeights{}) {
		c.Risk = RiskWeights{Checkpoint: 0.35, Traffic: 0.3, Weather: 0.2, Timing: 0.15}
	}
	if len(c.HistoricalFuelPrices) == 0 {
		c.HistoricalFuelPrices = []float64{88, 90, 92}
	}
}

// HistoricalFuelPrice returns the mean of the configured price history.
func (c Config) HistoricalFuelPrice() float64 {
	if len(c.HistoricalFuelPrices) == 0 {
		return c.FuelPricePerLiter
	}
	return stat.Mean(c.HistoricalFuelPrices, nil)
}

// QuoteInput carries everything the calculator needs for one quote. Signal
// fields left negative are treated as missing and estimated.
type QuoteInput struct {
	DistanceKm  float64
	DurationMin float64
	TollCost    float64
	WeightTons  float64
	CargoType   string
	Checkpoints int

	CheckpointDelayProb float64 // [0,1], -1 when unknown
	TrafficSeverity     float64 // [0,1], -1 when unknown
	WeatherSeverity     float64 // [0,1], -1 when unknown
	TimingPressure      float64 // [0,1], -1 when unknown
}

// ETARange brackets the arrival estimate.
type ETARange struct {
	Optimistic  time.Duration `json:"optimistic"`
	Expected    time.Duration `json:"expected"`
	Pessimistic time.Duration `json:"pessimistic"`
}

// Quote is the calculator's result.
type Quote struct {
	BaseFare         float64              `json:"base_fare"`
	EffortMultiplier float64              `json:"effort_multiplier"`
	FuelSurcharge    float64              `json:"fuel_surcharge"`
	DriverAllowance  float64              `json:"driver_allowance"`
	TollCost         float64              `json:"toll_cost"`
	TotalFare        float64              `json:"total_fare"`
	PerKmRate        float64              `json:"per_km_rate"`
	ETA              ETARange             `json:"eta"`
	Risk             model.RiskAssessment `json:"risk"`
	IsEstimated      bool                 `json:"is_estimated"`
}

// cargoEffort is the additional effort by cargo class, on top of the base
// multiplier. Unlisted cargo gets a small generic bump.
var cargoEffort = map[string]float64{
	"hazmat":          0.25,
	"chemicals":       0.20,
	"perishables":     0.15,
	"fragile":         0.12,
	"pharmaceuticals": 0.12,
	"electronics":     0.10,
	"steel":           0.05,
	"cement":          0.03,
	"general":         0.0,
}

// Calculate produces a fare quote, ETA range and risk assessment. It never
// fails: unknown signals are replaced by historical averages and the quote is
// tagged estimated.
func Calculate(cfg Config, in QuoteInput) Quote {
	estimated := false
	fill := func(v, fallback float64) float64 {
		if v < 0 {
			estimated = true
			return fallback
		}
		return clamp01(v)
	}
	checkpoint := fill(in.CheckpointDelayProb, 0.3)
	traffic := fill(in.TrafficSeverity, 0.35)
	weather := fill(in.WeatherSeverity, 0.2)
	timing := fill(in.TimingPressure, 0.25)

	mult := effortMultiplier(in, checkpoint, traffic)
	base := cfg.BaseFarePerKm * in.DistanceKm
	fuelCost := 0.0
	if cfg.FuelEfficiency > 0 {
		fuelCost = in.DistanceKm / cfg.FuelEfficiency * cfg.FuelPricePerLiter
	}
	surcharge := fuelCost * cfg.FuelSurchargeFactor
	allowance := in.DurationMin / 60 * cfg.DriverRatePerHour
	total := base*mult + in.TollCost + surcharge + allowance

	perKm := 0.0
	if in.DistanceKm > 0 {
		perKm = total / in.DistanceKm
	}

	score := riskScore(cfg.Risk, checkpoint, traffic, weather, timing)
	risk := model.RiskAssessment{
		Score:       score,
		Level:       Level(score),
		Factors:     riskFactors(in, checkpoint, traffic, weather),
		IsEstimated: estimated,
	}
	risk.Recommendations = recommendations(risk.Factors)

	expected := time.Duration(in.DurationMin * float64(time.Minute))
	return Quote{
		BaseFare:         base,
		EffortMultiplier: mult,
		FuelSurcharge:    surcharge,
		DriverAllowance:  allowance,
		TollCost:         in.TollCost,
		TotalFare:        total,
		PerKmRate:        perKm,
		ETA: ETARange{
			Optimistic:  time.Duration(float64(expected) * cfg.ETAOptimistic),
			Expected:    time.Duration(float64(expected) * cfg.ETAExpected),
			Pessimistic: time.Duration(float64(expected) * cfg.ETAPessimistic),
		},
		Risk:        risk,
		IsEstimated: estimated,
	}
}

// effortMultiplier grows with checkpoint delay probability, traffic severity
// and cargo/weight difficulty, clamped to [1.0, 2.0].
func effortMultiplier(in QuoteInput, checkpoint, traffic float64) float64 {
	m := 1.0
	m += checkpoint * 0.4
	m += traffic * 0.3
	m += float64(in.Checkpoints) * 0.03
	switch {
	case in.WeightTons > 20:
		m += 0.15
	case in.WeightTons > 15:
		m += 0.10
	case in.WeightTons > 10:
		m += 0.05
	}
	if e, ok := cargoEffort[in.CargoType]; ok {
		m += e
	} else if in.CargoType != "" {
		m += 0.05
	}
	return math.Min(math.Max(m, 1.0), 2.0)
}

// riskScore is the weighted sum of the four risk components, normalized by
// the weight mass so it stays in [0,1].
func riskScore(w RiskWeights, checkpoint, traffic, weather, timing float64) float64 {
	weights := []float64{w.Checkpoint, w.Traffic, w.Weather, w.Timing}
	values := []float64{checkpoint, traffic, weather, timing}
	mass := floats.Sum(weights)
	if mass <= 0 {
		return 0
	}
	return clamp01(floats.Dot(weights, values) / mass)
}

// Level maps a risk score onto its band.
func Level(score float64) model.RiskLevel {
	switch {
	case score < 0.3:
		return model.RiskLow
	case score < 0.6:
		return model.RiskMedium
	case score < 0.85:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

func riskFactors(in QuoteInput, checkpoint, traffic, weather float64) []string {
	var factors []string
	if in.DistanceKm > 1000 {
		factors = append(factors, "long haul journey (>1000 km)")
	}
	if in.Checkpoints > 1 {
		factors = append(factors, "multiple state border crossings")
	}
	switch in.CargoType {
	case "hazmat", "chemicals", "perishables", "pharmaceuticals":
		factors = append(factors, "sensitive cargo: "+in.CargoType)
	}
	if in.WeightTons > 22 {
		factors = append(factors, "heavy load (>22 tons)")
	}
	if checkpoint > 0.6 {
		factors = append(factors, "high checkpoint delay probability")
	}
	if traffic > 0.7 {
		factors = append(factors, "severe traffic on corridor")
	}
	if weather > 0.7 {
		factors = append(factors, "adverse weather")
	}
	return factors
}

func recommendations(factors []string) []string {
	if len(factors) == 0 {
		return nil
	}
	recs := []string{"keep transport documents ready at checkpoints"}
	for _, f := range factors {
		switch {
		case f == "long haul journey (>1000 km)":
			recs = append(recs, "plan rest stops every 4-5 hours")
		case f == "heavy load (>22 tons)":
			recs = append(recs, "reduce speed on curves and inclines")
		case len(f) > 9 && f[:9] == "sensitive":
			recs = append(recs, "monitor cargo condition regularly")
		}
	}
	return recs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
