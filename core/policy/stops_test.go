package policy

import (
	"context"
	"math"
	"testing"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

func TestRefuelBelowThreshold(t *testing.T) {
	cfg := testConfig()
	p := Refuel{Cfg: cfg}
	dc := model.DecisionContext{
		Vehicle:        model.Vehicle{ID: "TRK-1", FuelLevelPercent: 15, Position: geo.Point{Lat: 0, Lng: 0.4}},
		RemainingRoute: equatorRoute(),
	}
	opts, err := p.Evaluate(context.Background(), dc, nil, nil)
	if err != nil || len(opts) != 1 {
		t.Fatalf("opts=%d err=%v", len(opts), err)
	}
	o := opts[0]
	if o.ID != "refuel-stop" || o.Type != model.DecisionRefuel {
		t.Fatalf("option = %s/%s", o.ID, o.Type)
	}
	// urgency = (20-15)/20 = 0.25, score = 2000 * (0.5 + 0.125)
	if math.Abs(o.ProfitScore-1250) > 1e-9 {
		t.Fatalf("profit score = %.2f, want 1250", o.ProfitScore)
	}
	if o.Stop == nil || o.Stop.Waypoint.Kind != model.WaypointFuel {
		t.Fatalf("stop plan = %+v", o.Stop)
	}
	// The stop snaps to the nearest route vertex ahead of the truck.
	if o.Stop.Waypoint.Location != (geo.Point{Lat: 0, Lng: 0}) {
		t.Fatalf("stop at %+v, want nearest vertex", o.Stop.Waypoint.Location)
	}
}

func TestRefuelRangeShortfall(t *testing.T) {
	p := Refuel{Cfg: testConfig()}
	dc := model.DecisionContext{
		// 50% fuel but only 300 km of range against 400 km to go.
		Vehicle: model.Vehicle{
			ID: "TRK-1", FuelLevelPercent: 50,
			TankLiters: 200, FuelEfficiency: 3,
		},
		DistanceToDestKm: 400,
	}
	opts, err := p.Evaluate(context.Background(), dc, nil, nil)
	if err != nil || len(opts) != 1 {
		t.Fatalf("opts=%d err=%v", len(opts), err)
	}
	// Above the percent threshold, urgency clamps to zero: base score only.
	if math.Abs(opts[0].ProfitScore-1000) > 1e-9 {
		t.Fatalf("profit score = %.2f, want 1000", opts[0].ProfitScore)
	}
}

func TestRefuelNotNeeded(t *testing.T) {
	p := Refuel{Cfg: testConfig()}
	dc := model.DecisionContext{
		Vehicle:          model.Vehicle{ID: "TRK-1", FuelLevelPercent: 60},
		DistanceToDestKm: 300,
	}
	opts, err := p.Evaluate(context.Background(), dc, nil, nil)
	if err != nil || len(opts) != 0 {
		t.Fatalf("refuel fired at 60%%: opts=%v err=%v", opts, err)
	}
}

func TestRefuelSkipsWhenFuelStopPlanned(t *testing.T) {
	p := Refuel{Cfg: testConfig()}
	route := equatorRoute()
	route.Waypoints = []model.Waypoint{
		{Seq: 2, Kind: model.WaypointFuel, Location: geo.Point{Lat: 0, Lng: 0.6}},
	}
	dc := model.DecisionContext{
		Vehicle:        model.Vehicle{ID: "TRK-1", FuelLevelPercent: 10, Position: geo.Point{Lat: 0, Lng: 0.4}},
		RemainingRoute: route,
	}
	opts, err := p.Evaluate(context.Background(), dc, nil, nil)
	if err != nil || len(opts) != 0 {
		t.Fatalf("refuel fired with a planned stop ~22 km ahead: opts=%v err=%v", opts, err)
	}
}

func TestRestOverLimit(t *testing.T) {
	cfg := testConfig()
	p := Rest{Cfg: cfg}
	dc := model.DecisionContext{
		Vehicle:              model.Vehicle{ID: "TRK-1", Position: geo.Point{Lat: 0, Lng: 1.9}},
		RemainingRoute:       equatorRoute(),
		ContinuousDrivingMin: 300,
	}
	opts, err := p.Evaluate(context.Background(), dc, nil, nil)
	if err != nil || len(opts) != 1 {
		t.Fatalf("opts=%d err=%v", len(opts), err)
	}
	o := opts[0]
	if o.ID != "rest-stop" || o.Type != model.DecisionRest {
		t.Fatalf("option = %s/%s", o.ID, o.Type)
	}
	// score = 1500 * 300/270
	if math.Abs(o.ProfitScore-1500*300.0/270) > 1e-9 {
		t.Fatalf("profit score = %.4f", o.ProfitScore)
	}
	if o.Stop == nil || o.Stop.Waypoint.Kind != model.WaypointRest {
		t.Fatalf("stop plan = %+v", o.Stop)
	}
}

func TestRestWithinLimit(t *testing.T) {
	p := Rest{Cfg: testConfig()}
	dc := model.DecisionContext{ContinuousDrivingMin: 200}
	opts, err := p.Evaluate(context.Background(), dc, nil, nil)
	if err != nil || len(opts) != 0 {
		t.Fatalf("rest fired at 200 min: opts=%v err=%v", opts, err)
	}
}

// A badly overdue rest must outrank even a lucrative load once the shared
// weights are applied.
func TestOverdueRestOutranksRevenue(t *testing.T) {
	cfg := testConfig()
	e := NewEvaluator(cfg, nil,
		Rest{Cfg: cfg},
		stubPolicy{name: "load_match", opts: []model.EvaluatedOption{
			{ID: "load-L1", Policy: "load_match", Type: model.DecisionAddLoad,
				ProfitScore: 1200, FeasibilityScore: 0.4},
		}},
	)
	dc := model.DecisionContext{
		Vehicle:              model.Vehicle{ID: "TRK-1"},
		ContinuousDrivingMin: 330,
	}
	opts := e.Evaluate(context.Background(), dc, nil, nil)
	best, ok := Select(opts, cfg.MinActionThreshold, map[string]int{"rest": PriorityRest, "load_match": PriorityLoadMatch})
	if !ok || best.Type != model.DecisionRest {
		t.Fatalf("selected %s (ok=%v), want rest", best.ID, ok)
	}
}
