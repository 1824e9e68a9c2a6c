package policy

import (
	"context"
	"fmt"

	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// Reroute proposes switching to the snapshot's alternate route when the
// mission is running late and the time saved is worth the extra tolls.
type Reroute struct {
	Cfg Config
}

func (Reroute) Name() string  { return "reroute" }
func (Reroute) Priority() int { return PriorityReroute }

// Evaluate fires only above the delay threshold. The alternate route is part
// of the snapshot so this stays a pure function of its inputs.
func (p Reroute) Evaluate(_ context.Context, dc model.DecisionContext, m *model.Mission, _ *model.Vehicle) ([]model.EvaluatedOption, error) {
	if dc.DelayMinutes <= p.Cfg.RerouteThresholdMin {
		return nil, nil
	}
	alt := dc.AlternateRoute
	if alt == nil {
		return nil, nil
	}
	timeSaved := dc.RemainingRoute.DurationMin - alt.DurationMin
	costDelta := alt.TollCost - dc.RemainingRoute.TollCost
	benefit := timeSaved*p.Cfg.TimeValuePerMin - costDelta
	if benefit <= 0 {
		return nil, nil
	}

	feasibility := 1.0
	if dc.IsDegraded(model.FieldAlternate) {
		feasibility = 0.5
	}
	opt := model.EvaluatedOption{
		ID:               fmt.Sprintf("reroute-v%d", alt.Version),
		Policy:           p.Name(),
		Type:             model.DecisionReroute,
		TimeDeltaMin:     -timeSaved,
		DistanceDelta:    alt.DistanceKm - dc.RemainingRoute.DistanceKm,
		FuelCostDelta:    costDelta,
		ProfitScore:      benefit,
		FeasibilityScore: feasibility,
		RiskScore:        dc.Traffic.Normalized() * 0.3,
		Pros:             []string{fmt.Sprintf("saves %.0f min against %.0f min delay", timeSaved, dc.DelayMinutes)},
		Reroute: &model.ReroutePlan{
			Route:        *alt,
			TimeSavedMin: timeSaved,
			TollDelta:    costDelta,
		},
	}
	if costDelta > 0 {
		opt.Cons = []string{fmt.Sprintf("%.0f extra toll", costDelta)}
	}
	return []model.EvaluatedOption{opt}, nil
}
