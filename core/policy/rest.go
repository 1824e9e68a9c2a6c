package policy

import (
	"context"
	"fmt"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// Rest enforces the continuous-driving limit by inserting a rest waypoint.
// The score grows with how far past the limit the driver already is, so a
// badly overdue rest outranks revenue options.
type Rest struct {
	Cfg Config
}

func (Rest) Name() string  { return "rest" }
func (Rest) Priority() int { return PriorityRest }

func (p Rest) Evaluate(_ context.Context, dc model.DecisionContext, _ *model.Mission, _ *model.Vehicle) ([]model.EvaluatedOption, error) {
	if dc.ContinuousDrivingMin <= p.Cfg.RestLimitMin {
		return nil, nil
	}
	stop := dc.Vehicle.Position
	if pts := dc.RemainingRoute.Points(); len(pts) > 0 {
		stop = pts[geo.NearestVertex(dc.Vehicle.Position, pts)]
	}
	overdue := 1.0
	if p.Cfg.RestLimitMin > 0 {
		overdue = dc.ContinuousDrivingMin / p.Cfg.RestLimitMin
	}
	return []model.EvaluatedOption{{
		ID:               "rest-stop",
		Policy:           p.Name(),
		Type:             model.DecisionRest,
		ProfitScore:      p.Cfg.FatigueCost * overdue,
		FeasibilityScore: 1,
		Pros:             []string{fmt.Sprintf("%.0f min continuous driving, limit %.0f", dc.ContinuousDrivingMin, p.Cfg.RestLimitMin)},
		Stop: &model.StopPlan{
			Waypoint: model.Waypoint{Location: stop, Kind: model.WaypointRest, Name: "rest stop"},
		},
	}}, nil
}
