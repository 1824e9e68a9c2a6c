package policy

// ScoreWeights combine the sub-scores into an option's overall score:
// overall = Profit*profit + Feasibility*feasibility - Risk*risk.
type ScoreWeights struct {
	Profit      float64 `json:"profit"`
	Feasibility float64 `json:"feasibility"`
	Risk        float64 `json:"risk"`
}

// Config holds every policy tunable. The values are hackathon-tuned defaults
// carried as configuration; tests feed their own values instead of relying on
// these being "correct".
type Config struct {
	RerouteThresholdMin float64 `json:"reroute_threshold_min"`
	TimeValuePerMin     float64 `json:"time_value_per_min"`

	MinProfit              float64 `json:"min_profit"`
	DriverOpportunityCost  float64 `json:"driver_opportunity_cost_per_min"`
	CorridorWidthKm        float64 `json:"corridor_width_km"`
	DetourSpeedKmh         float64 `json:"detour_speed_kmh"`
	BackhaulRadiusKm       float64 `json:"backhaul_radius_km"`
	RefuelThresholdPercent float64 `json:"refuel_threshold_percent"`
	MaxSafeDistanceKm      float64 `json:"max_safe_distance_km"`
	RestLimitMin           float64 `json:"rest_limit_min"`

	// StrandingCost and FatigueCost monetize the safety policies so their
	// options compete on the same scale as revenue options.
	StrandingCost float64 `json:"stranding_cost"`
	FatigueCost   float64 `json:"fatigue_cost"`

	MinActionThreshold float64      `json:"min_action_threshold"`
	Weights            ScoreWeights `json:"weights"`
}

// SetDefaults applies the default tuning.
func (c *Config) SetDefaults() {
	if c.RerouteThresholdMin == 0 {
		c.RerouteThresholdMin = 20
	}
	if c.TimeValuePerMin == 0 {
		c.TimeValuePerMin = 20
	}
	if c.MinProfit == 0 {
		c.MinProfit = 500
	}
	if c.DriverOpportunityCost == 0 {
		c.DriverOpportunityCost = 20
	}
	if c.CorridorWidthKm == 0 {
		c.CorridorWidthKm = 25
	}
	if c.DetourSpeedKmh == 0 {
		c.DetourSpeedKmh = 40
	}
	if c.BackhaulRadiusKm == 0 {
		c.BackhaulRadiusKm = 50
	}
	if c.RefuelThresholdPercent == 0 {
		c.RefuelThresholdPercent = 20
	}
	if c.MaxSafeDistanceKm == 0 {
		c.MaxSafeDistanceKm = 100
	}
	if c.RestLimitMin == 0 {
		c.RestLimitMin = 270
	}
	if c.StrandingCost == 0 {
		c.StrandingCost = 2000
	}
	if c.FatigueCost == 0 {
		c.FatigueCost = 1500
	}
	if c.MinActionThreshold == 0 {
		c.MinActionThreshold = 50
	}
	if c.Weights == (ScoreWeights{}) {
		c.Weights = ScoreWeights{Profit: 1.0, Feasibility: 100, Risk: 200}
	}
}
