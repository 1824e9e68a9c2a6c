package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/core/providers"
)

func testMission() *model.Mission {
	m := &model.Mission{
		ID:          "M1",
		VehicleID:   "TRK-1",
		Origin:      geo.Point{Lat: 28.61, Lng: 77.21},
		Destination: geo.Point{Lat: 26.91, Lng: 75.79},
		Status:      model.StatusInTransit,
		StartedAt:   time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		Route: model.Route{
			Polyline: []geo.Point{{Lat: 28.61, Lng: 77.21}, {Lat: 27.8, Lng: 76.5}, {Lat: 26.91, Lng: 75.79}},
			Version:  2,
		},
	}
	m.Route.Seal()
	return m
}

func testVehicle() model.Vehicle {
	return model.Vehicle{
		ID: "TRK-1", MaxWeightTons: 10, CurrentWeightTons: 4,
		Position: geo.Point{Lat: 27.8, Lng: 76.5}, SpeedKmh: 55,
	}
}

func healthyAggregator(loads ...model.Load) *Aggregator {
	a := New(Config{Region: "north"},
		providers.StaticRouting{SpeedKmh: 55, Traffic: model.TrafficModerate, CheckpointDelayProb: 0.2, AltTimeSavedMin: 15},
		providers.StaticWeather{Conditions: model.WeatherCondition{Condition: "clear", Severity: 0.1}},
		providers.StaticFuelPrice{Default: 92},
		providers.StaticMarketplace{Loads: loads},
		nil)
	a.SetClock(func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) })
	return a
}

func TestGatherHealthySnapshot(t *testing.T) {
	a := healthyAggregator()
	m, v := testMission(), testVehicle()

	dc := a.Gather(context.Background(), m, v)
	if dc.MissionID != "M1" || dc.ID == "" {
		t.Fatalf("identity = %s/%s", dc.ID, dc.MissionID)
	}
	if len(dc.Degraded) != 0 {
		t.Fatalf("degraded on healthy feeds: %v", dc.Degraded)
	}
	if dc.Confidence != 1 {
		t.Fatalf("confidence = %.2f, want 1", dc.Confidence)
	}
	if dc.Traffic != model.TrafficModerate || dc.FuelPricePerLiter != 92 {
		t.Fatalf("signals = %s/%.0f", dc.Traffic, dc.FuelPricePerLiter)
	}
	if dc.Weather.Condition != "clear" {
		t.Fatalf("weather = %+v", dc.Weather)
	}
	if dc.AlternateRoute == nil {
		t.Fatal("missing alternate route")
	}
	if dc.AlternateRoute.DurationMin >= dc.RemainingRoute.DurationMin {
		t.Fatalf("alternate (%.0f min) not faster than main (%.0f min)",
			dc.AlternateRoute.DurationMin, dc.RemainingRoute.DurationMin)
	}
	// The fresh route carries the mission's plan version so the executor can
	// detect staleness later.
	if dc.RemainingRoute.Version != 2 {
		t.Fatalf("route version = %d, want 2", dc.RemainingRoute.Version)
	}
	// 4h into the mission with no rest stop.
	if dc.ContinuousDrivingMin != 240 {
		t.Fatalf("continuous driving = %.0f, want 240", dc.ContinuousDrivingMin)
	}
}

func TestGatherDegradesPerFailedFeed(t *testing.T) {
	feedDown := errors.New("feed down")
	a := New(Config{Region: "north"},
		providers.StaticRouting{SpeedKmh: 55},
		providers.StaticWeather{Err: feedDown},
		providers.StaticFuelPrice{Err: feedDown},
		providers.StaticMarketplace{Err: feedDown},
		nil)

	dc := a.Gather(context.Background(), testMission(), testVehicle())
	for _, f := range []model.ContextField{model.FieldWeather, model.FieldFuelPrice, model.FieldLoads} {
		if !dc.IsDegraded(f) {
			t.Fatalf("field %s not marked degraded", f)
		}
	}
	if dc.IsDegraded(model.FieldRoute) {
		t.Fatal("healthy route feed marked degraded")
	}
	want := 1 - 0.15*3
	if dc.Confidence != want {
		t.Fatalf("confidence = %.2f, want %.2f", dc.Confidence, want)
	}
	if len(dc.Candidates) != 0 {
		t.Fatalf("degraded marketplace produced candidates: %v", dc.Candidates)
	}
}

// A total feed outage still yields a usable snapshot within the cycle budget.
func TestGatherTotalOutageBounded(t *testing.T) {
	feedDown := errors.New("feed down")
	a := New(Config{QueryTimeout: 50 * time.Millisecond, CycleBudget: 500 * time.Millisecond},
		providers.StaticRouting{Err: feedDown},
		providers.StaticWeather{Err: feedDown},
		providers.StaticFuelPrice{Err: feedDown},
		providers.StaticMarketplace{Err: feedDown},
		nil)
	m, v := testMission(), testVehicle()

	start := time.Now()
	dc := a.Gather(context.Background(), m, v)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("gather took %v under total outage", elapsed)
	}
	if len(dc.Degraded) != 5 {
		t.Fatalf("degraded = %v, want all five fields", dc.Degraded)
	}
	if dc.Confidence != 0.25 {
		t.Fatalf("confidence = %.2f, want 0.25", dc.Confidence)
	}
	// Routing down: the remaining route is the planned route trimmed at the
	// vehicle position.
	if len(dc.RemainingRoute.Points()) == 0 {
		t.Fatal("no remaining route under outage")
	}
	if dc.RemainingRoute.Points()[0] != v.Position {
		t.Fatalf("remaining route starts at %+v, want vehicle position", dc.RemainingRoute.Points()[0])
	}
	if dc.DistanceToDestKm <= 0 {
		t.Fatal("no distance estimate under outage")
	}
}

func TestGatherReusesLastKnownGood(t *testing.T) {
	routing := &flakyRouting{
		good: providers.StaticRouting{SpeedKmh: 55, Traffic: model.TrafficHeavy},
	}
	a := New(Config{Region: "north"},
		routing,
		providers.StaticWeather{Conditions: model.WeatherCondition{Condition: "fog", Severity: 0.6}},
		providers.StaticFuelPrice{Default: 94},
		providers.StaticMarketplace{},
		nil)
	m, v := testMission(), testVehicle()

	first := a.Gather(context.Background(), m, v)
	if len(first.Degraded) != 0 {
		t.Fatalf("first gather degraded: %v", first.Degraded)
	}

	routing.fail = true
	second := a.Gather(context.Background(), m, v)
	if !second.IsDegraded(model.FieldRoute) || !second.IsDegraded(model.FieldAlternate) {
		t.Fatalf("degraded = %v, want route and alternate", second.Degraded)
	}
	// Cached traffic signal survives the outage.
	if second.Traffic != model.TrafficHeavy {
		t.Fatalf("traffic = %s, want cached heavy", second.Traffic)
	}
	if second.AlternateRoute == nil {
		t.Fatal("cached alternate route not reused")
	}
}

func TestGatherAppliesCandidateFilter(t *testing.T) {
	onRoute := geo.Point{Lat: 27.8, Lng: 76.5}
	a := healthyAggregator(
		model.Load{ID: "keep", Status: model.LoadAvailable, WeightTons: 2, Pickup: onRoute},
		model.Load{ID: "rejected", Status: model.LoadAvailable, WeightTons: 2, Pickup: onRoute},
	)
	a.SetCandidateFilter(func(l model.Load) bool { return l.ID != "rejected" })

	dc := a.Gather(context.Background(), testMission(), testVehicle())
	if len(dc.Candidates) != 1 || dc.Candidates[0].ID != "keep" {
		t.Fatalf("candidates = %v, want only keep", dc.Candidates)
	}
}

func TestGatherDelayMinutes(t *testing.T) {
	a := healthyAggregator()
	m, v := testMission(), testVehicle()

	// Arrival promised well after the ETA: no delay.
	m.ExpectedArrival = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	dc := a.Gather(context.Background(), m, v)
	if dc.DelayMinutes != 0 {
		t.Fatalf("delay = %.0f, want 0", dc.DelayMinutes)
	}

	// Arrival promised 30 min before now: delay is the remaining time plus 30.
	m.ExpectedArrival = time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)
	dc = a.Gather(context.Background(), m, v)
	want := dc.TimeRemainingMin + 30
	if diff := dc.DelayMinutes - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("delay = %.2f, want %.2f", dc.DelayMinutes, want)
	}
}

// flakyRouting switches between a healthy stub and a failing one.
type flakyRouting struct {
	good providers.StaticRouting
	fail bool
}

func (f *flakyRouting) GetRoute(ctx context.Context, origin, dest geo.Point, c providers.RouteConstraints) (providers.RouteInfo, error) {
	if f.fail {
		return providers.RouteInfo{}, errors.New("routing down")
	}
	return f.good.GetRoute(ctx, origin, dest, c)
}
