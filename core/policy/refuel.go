package policy

import (
	"context"
	"fmt"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// Refuel inserts a fuel stop before the tank becomes a problem. It fires
// below the fuel threshold, or when the estimated range no longer covers the
// remaining distance, unless a fuel waypoint already sits within safe reach.
type Refuel struct {
	Cfg Config
}

func (Refuel) Name() string  { return "refuel" }
func (Refuel) Priority() int { return PriorityRefuel }

func (p Refuel) Evaluate(_ context.Context, dc model.DecisionContext, _ *model.Mission, _ *model.Vehicle) ([]model.EvaluatedOption, error) {
	v := dc.Vehicle
	low := v.FuelLevelPercent < p.Cfg.RefuelThresholdPercent
	if rangeKm := v.RangeKm(); rangeKm > 0 && rangeKm < dc.DistanceToDestKm {
		low = true
	}
	if !low {
		return nil, nil
	}
	if wp := dc.RemainingRoute.NextFuelStop(-1); wp != nil {
		if geo.HaversineKm(v.Position, wp.Location) <= p.Cfg.MaxSafeDistanceKm {
			return nil, nil
		}
	}

	// Place the stop at the nearest upcoming route vertex; the executor
	// resolves the actual station when it rewrites the waypoint list.
	stop := v.Position
	if pts := dc.RemainingRoute.Points(); len(pts) > 0 {
		stop = pts[geo.NearestVertex(v.Position, pts)]
	}

	urgency := 1.0
	if p.Cfg.RefuelThresholdPercent > 0 {
		urgency = (p.Cfg.RefuelThresholdPercent - v.FuelLevelPercent) / p.Cfg.RefuelThresholdPercent
	}
	urgency = clampUnit(urgency)
	return []model.EvaluatedOption{{
		ID:               "refuel-stop",
		Policy:           p.Name(),
		Type:             model.DecisionRefuel,
		ProfitScore:      p.Cfg.StrandingCost * (0.5 + 0.5*urgency),
		FeasibilityScore: 1,
		Pros:             []string{fmt.Sprintf("fuel at %.0f%%, below %.0f%% threshold", v.FuelLevelPercent, p.Cfg.RefuelThresholdPercent)},
		Stop: &model.StopPlan{
			Waypoint: model.Waypoint{Location: stop, Kind: model.WaypointFuel, Name: "fuel stop"},
		},
	}}, nil
}

func clampUnit(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
