package policy

import (
	"context"
	"fmt"

	"github.com/Jainil7227/AlphaNeuron/core/capacity"
	"github.com/Jainil7227/AlphaNeuron/core/fare"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// LoadMatch scores corridor candidates for en-route pooling. Candidates that
// fail the capacity check are discarded before scoring ever sees them.
type LoadMatch struct {
	Cfg      Config
	Capacity *capacity.Manager
}

func (LoadMatch) Name() string  { return "load_match" }
func (LoadMatch) Priority() int { return PriorityLoadMatch }

// Evaluate emits one option per viable corridor candidate whose net profit
// clears the configured minimum.
func (p LoadMatch) Evaluate(_ context.Context, dc model.DecisionContext, _ *model.Mission, _ *model.Vehicle) ([]model.EvaluatedOption, error) {
	matches := p.Capacity.CorridorMatches(dc.RemainingRoute, dc.Candidates, p.Cfg.CorridorWidthKm)
	if len(matches) == 0 {
		return nil, nil
	}

	var opts []model.EvaluatedOption
	for _, match := range matches {
		l := match.Load
		if !p.Capacity.CanAccept(dc.Vehicle, l) {
			continue
		}
		detourMin := 0.0
		if p.Cfg.DetourSpeedKmh > 0 {
			detourMin = match.DetourKm / p.Cfg.DetourSpeedKmh * 60
		}
		fuelCost := 0.0
		if dc.Vehicle.FuelEfficiency > 0 {
			fuelCost = match.DetourKm / dc.Vehicle.FuelEfficiency * dc.FuelPricePerLiter
		}
		detourCost := fuelCost + detourMin*p.Cfg.DriverOpportunityCost
		netProfit := l.OfferedRate - detourCost
		if netProfit < p.Cfg.MinProfit {
			continue
		}
		riskFactor := fare.RiskFactor(l.ShipperRating, l.CargoType)
		profitability := netProfit / riskFactor

		// Feasibility shrinks as the load eats remaining capacity.
		feasibility := 1.0
		if dc.Vehicle.MaxWeightTons > 0 {
			feasibility = 1 - (dc.Vehicle.CurrentWeightTons+l.WeightTons)/dc.Vehicle.MaxWeightTons
			if feasibility < 0 {
				feasibility = 0
			}
		}
		opts = append(opts, model.EvaluatedOption{
			ID:               "load-" + l.ID,
			Policy:           p.Name(),
			Type:             model.DecisionAddLoad,
			RevenueDelta:     l.OfferedRate,
			TimeDeltaMin:     detourMin,
			DistanceDelta:    match.DetourKm,
			FuelCostDelta:    fuelCost,
			ProfitScore:      profitability,
			FeasibilityScore: feasibility,
			RiskScore:        (riskFactor - 1) / 0.5,
			Pros: []string{
				fmt.Sprintf("%.0f net profit for %.1f km detour", netProfit, match.DetourKm),
			},
			Cons: []string{fmt.Sprintf("adds %.0f min to the trip", detourMin)},
			Load: &model.LoadPlan{
				Load:      l,
				DetourKm:  match.DetourKm,
				DetourMin: detourMin,
				NetProfit: netProfit,
			},
		})
	}
	return opts, nil
}
