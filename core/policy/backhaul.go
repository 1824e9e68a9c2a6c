package policy

import (
	"context"
	"fmt"

	"github.com/Jainil7227/AlphaNeuron/core/capacity"
	"github.com/Jainil7227/AlphaNeuron/core/fare"
	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// Backhaul books a return load before arrival so the truck does not drive the
// return leg empty. It only wakes up inside the trigger radius around the
// destination; scanning the marketplace continuously would be wasted work.
type Backhaul struct {
	Cfg      Config
	FareCfg  fare.Config
	Capacity *capacity.Manager
}

func (Backhaul) Name() string  { return "backhaul" }
func (Backhaul) Priority() int { return PriorityBackhaul }

// Evaluate compares each destination-side candidate against the cost of
// returning empty. An option is emitted when the offered rate beats the empty
// return cost plus the diversion to the candidate's pickup.
func (p Backhaul) Evaluate(_ context.Context, dc model.DecisionContext, m *model.Mission, _ *model.Vehicle) ([]model.EvaluatedOption, error) {
	if m == nil || m.Backhaul != nil {
		return nil, nil
	}
	if dc.DistanceToDestKm >= p.Cfg.BackhaulRadiusKm {
		return nil, nil
	}
	candidates := p.Capacity.BackhaulCandidates(m.Destination, dc.Candidates, p.Cfg.BackhaulRadiusKm)
	if len(candidates) == 0 {
		return nil, nil
	}

	emptyKm := geo.HaversineKm(m.Destination, m.Origin)
	emptyCost := fare.EmptyReturnCost(p.FareCfg, emptyKm, 0)

	var opts []model.EvaluatedOption
	for _, l := range candidates {
		if l.WeightTons > dc.Vehicle.MaxWeightTons {
			continue
		}
		diversionKm := 2 * geo.HaversineKm(m.Destination, l.Pickup)
		diversionCost := diversionKm * emptyCost.PerKm
		savings := l.OfferedRate - emptyCost.Total - diversionCost
		if savings <= 0 {
			continue
		}
		riskFactor := fare.RiskFactor(l.ShipperRating, l.CargoType)
		opts = append(opts, model.EvaluatedOption{
			ID:               "backhaul-" + l.ID,
			Policy:           p.Name(),
			Type:             model.DecisionBookBackhaul,
			RevenueDelta:     l.OfferedRate,
			DistanceDelta:    diversionKm,
			ProfitScore:      savings / riskFactor,
			FeasibilityScore: 1,
			RiskScore:        (riskFactor - 1) / 0.5,
			Pros: []string{
				fmt.Sprintf("avoids %.0f km empty return, nets %.0f", emptyKm, savings),
			},
			Backhaul: &model.BackhaulPlan{
				Load:          l,
				Savings:       savings,
				EmptyCost:     emptyCost.Total,
				DiversionCost: diversionCost,
			},
		})
	}
	return opts, nil
}
