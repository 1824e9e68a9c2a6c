package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/capacity"
	"github.com/Jainil7227/AlphaNeuron/core/decisionlog"
	"github.com/Jainil7227/AlphaNeuron/core/events"
	"github.com/Jainil7227/AlphaNeuron/core/executor"
	"github.com/Jainil7227/AlphaNeuron/core/fare"
	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/core/policy"
	"github.com/Jainil7227/AlphaNeuron/core/providers"
	"github.com/Jainil7227/AlphaNeuron/core/snapshot"
)

type fixture struct {
	sched *Scheduler
	m     *model.Mission
	v     *model.Vehicle
	store decisionlog.Store
	rec   *events.Recorder
}

func newFixture(t *testing.T, m *model.Mission, v *model.Vehicle, extra ...policy.Policy) *fixture {
	t.Helper()
	store, err := decisionlog.NewJSONLStore(filepath.Join(t.TempDir(), "decisions.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	agg := snapshot.New(snapshot.Config{Region: "north"},
		providers.StaticRouting{SpeedKmh: 55, Traffic: model.TrafficLight},
		providers.StaticWeather{Conditions: model.WeatherCondition{Condition: "clear"}},
		providers.StaticFuelPrice{Default: 92},
		providers.StaticMarketplace{},
		nil)

	var pcfg policy.Config
	pcfg.SetDefaults()
	var fcfg fare.Config
	fcfg.SetDefaults()
	mgr := capacity.NewManager(nil)
	pols := append([]policy.Policy{
		policy.Refuel{Cfg: pcfg},
		policy.Rest{Cfg: pcfg},
		policy.Reroute{Cfg: pcfg},
		policy.Backhaul{Cfg: pcfg, FareCfg: fcfg, Capacity: mgr},
		policy.LoadMatch{Cfg: pcfg, Capacity: mgr},
	}, extra...)
	eval := policy.NewEvaluator(pcfg, nil, pols...)

	rec := &events.Recorder{}
	exec := executor.New(mgr, rec, nil)
	sched := New(Config{}, pcfg, m, v, agg, eval, policy.Priorities(pols...), exec, store, rec, nil, nil)
	return &fixture{sched: sched, m: m, v: v, store: store, rec: rec}
}

func agentMission() *model.Mission {
	m := &model.Mission{
		ID:          "M1",
		VehicleID:   "TRK-1",
		Origin:      geo.Point{Lat: 28.61, Lng: 77.21},
		Destination: geo.Point{Lat: 26.91, Lng: 75.79},
		Status:      model.StatusInTransit,
		StartedAt:   time.Now().Add(-time.Hour),
		Route: model.Route{
			Polyline: []geo.Point{{Lat: 28.61, Lng: 77.21}, {Lat: 26.91, Lng: 75.79}},
			Version:  1,
		},
	}
	m.Route.Seal()
	return m
}

func agentVehicle() *model.Vehicle {
	return &model.Vehicle{
		ID: "TRK-1", MaxWeightTons: 10, CurrentWeightTons: 4,
		FuelLevelPercent: 80, Position: geo.Point{Lat: 27.8, Lng: 76.5}, SpeedKmh: 55,
	}
}

func manualTrigger(id string) model.Trigger {
	return model.Trigger{Kind: model.TriggerManual, MissionID: id, At: time.Now()}
}

func TestOfferCollapsesSameKind(t *testing.T) {
	f := newFixture(t, agentMission(), agentVehicle())
	tr := model.Trigger{Kind: model.TriggerTrafficAlert, MissionID: "M1"}
	if !f.sched.Offer(tr) {
		t.Fatal("first trigger not queued")
	}
	if f.sched.Offer(tr) {
		t.Fatal("second trigger of the same kind must collapse")
	}
	if !f.sched.Offer(model.Trigger{Kind: model.TriggerFuelPriceChange, MissionID: "M1"}) {
		t.Fatal("different kind must still queue")
	}
}

func TestOfferDropsWhenQueueFull(t *testing.T) {
	small := New(Config{QueueSize: 1}, policy.Config{}, agentMission(), agentVehicle(),
		nil, nil, nil, nil, nil, nil, nil, nil)

	if !small.Offer(model.Trigger{Kind: model.TriggerTrafficAlert}) {
		t.Fatal("first trigger not queued")
	}
	if small.Offer(model.Trigger{Kind: model.TriggerLoadAvailable}) {
		t.Fatal("trigger must drop on a full queue")
	}
}

func TestDebounceWindow(t *testing.T) {
	f := newFixture(t, agentMission(), agentVehicle())
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	f.sched.SetClock(func() time.Time { return now })

	tr := model.Trigger{Kind: model.TriggerETADeviation}
	if f.sched.stale(tr) {
		t.Fatal("first trigger must not be stale")
	}
	now = base.Add(10 * time.Second)
	if !f.sched.stale(tr) {
		t.Fatal("trigger inside the debounce window must be stale")
	}
	now = base.Add(time.Minute)
	if f.sched.stale(tr) {
		t.Fatal("trigger past the window must pass")
	}
	// Manual triggers bypass debouncing entirely.
	if f.sched.stale(manualTrigger("M1")) || f.sched.stale(manualTrigger("M1")) {
		t.Fatal("manual triggers must never debounce")
	}
}

func TestHandleTerminalMissionExits(t *testing.T) {
	m := agentMission()
	m.Status = model.StatusCompleted
	f := newFixture(t, m, agentVehicle())

	done, err := f.sched.handle(context.Background(), manualTrigger("M1"))
	if !done || err != nil {
		t.Fatalf("done=%v err=%v, want clean exit", done, err)
	}
}

func TestHandleInactiveStatusSkipsCycle(t *testing.T) {
	m := agentMission()
	m.Status = model.StatusLoading
	f := newFixture(t, m, agentVehicle())

	done, err := f.sched.handle(context.Background(), manualTrigger("M1"))
	if done || err != nil {
		t.Fatalf("done=%v err=%v", done, err)
	}
	decs, _ := f.store.Query(context.Background(), decisionlog.Query{})
	if len(decs) != 0 {
		t.Fatalf("inactive mission ran a cycle: %d decisions", len(decs))
	}
}

func TestHandleCorruptionHalts(t *testing.T) {
	m := agentMission()
	m.Manifest = []model.ManifestEntry{{LoadID: "L1", WeightTons: -3}}
	f := newFixture(t, m, agentVehicle())

	done, err := f.sched.handle(context.Background(), manualTrigger("M1"))
	if !done || err == nil {
		t.Fatalf("done=%v err=%v, want halt with cause", done, err)
	}
	if f.sched.State() != StateHalted {
		t.Fatalf("state = %s, want HALTED", f.sched.State())
	}
	if !m.NeedsReview {
		t.Fatal("halted mission not flagged for review")
	}
	if len(f.rec.ByTopic("agent/alert")) != 1 {
		t.Fatal("missing operator alert")
	}
}

func TestCycleCommitsRefuel(t *testing.T) {
	m := agentMission()
	v := agentVehicle()
	v.FuelLevelPercent = 10
	f := newFixture(t, m, v)

	done, err := f.sched.handle(context.Background(), manualTrigger("M1"))
	if done || err != nil {
		t.Fatalf("done=%v err=%v", done, err)
	}

	decs, err := f.store.Query(context.Background(), decisionlog.Query{MissionID: "M1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(decs) != 1 {
		t.Fatalf("got %d logged decisions, want 1", len(decs))
	}
	d := decs[0]
	if d.Decision != model.DecisionRefuel || d.Outcome != model.OutcomeCommitted {
		t.Fatalf("decision = %s/%s", d.Decision, d.Outcome)
	}
	if d.CycleID == "" || d.Reason == "" {
		t.Fatalf("decision record incomplete: %+v", d)
	}

	fuel := 0
	for _, wp := range m.Route.Waypoints {
		if wp.Kind == model.WaypointFuel {
			fuel++
		}
	}
	if fuel != 1 {
		t.Fatalf("got %d fuel waypoints, want 1", fuel)
	}
	if len(f.rec.ByTopic("agent/decision/new")) != 1 {
		t.Fatal("missing decision event")
	}
}

func TestCycleNoActionOnQuietRoad(t *testing.T) {
	f := newFixture(t, agentMission(), agentVehicle())

	if done, err := f.sched.handle(context.Background(), manualTrigger("M1")); done || err != nil {
		t.Fatalf("done=%v err=%v", done, err)
	}
	decs, _ := f.store.Query(context.Background(), decisionlog.Query{})
	if len(decs) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decs))
	}
	if decs[0].Decision != model.DecisionNoAction || decs[0].Outcome != model.OutcomeNoAction {
		t.Fatalf("decision = %s/%s, want NO_ACTION", decs[0].Decision, decs[0].Outcome)
	}
}

func TestLowConfidenceHoldsCourse(t *testing.T) {
	m, v := agentMission(), agentVehicle()
	v.FuelLevelPercent = 5 // refuel would normally win
	f := newFixture(t, m, v)

	// Every feed down: confidence 0.25, below the 0.4 floor.
	f.sched.aggregator = snapshot.New(snapshot.Config{},
		providers.StaticRouting{Err: context.DeadlineExceeded},
		providers.StaticWeather{Err: context.DeadlineExceeded},
		providers.StaticFuelPrice{Err: context.DeadlineExceeded},
		providers.StaticMarketplace{Err: context.DeadlineExceeded},
		nil)

	dec := f.sched.decide(context.Background(), manualTrigger("M1"))
	if dec.Decision != model.DecisionNoAction {
		t.Fatalf("decision = %s, want NO_ACTION on low confidence", dec.Decision)
	}
	if dec.Confidence != 0.25 {
		t.Fatalf("confidence = %.2f, want 0.25", dec.Confidence)
	}
}

// versionBump simulates an external route change landing between evaluation
// and commit: the first evaluation bumps the mission's route version.
type versionBump struct {
	m    *model.Mission
	done bool
}

func (versionBump) Name() string  { return "version_bump" }
func (versionBump) Priority() int { return policy.PriorityLoadMatch }

func (p *versionBump) Evaluate(context.Context, model.DecisionContext, *model.Mission, *model.Vehicle) ([]model.EvaluatedOption, error) {
	if !p.done {
		p.done = true
		p.m.Route.Version++
	}
	return nil, nil
}

func TestCycleRetriesOncePlanConflict(t *testing.T) {
	m, v := agentMission(), agentVehicle()
	v.FuelLevelPercent = 10
	f := newFixture(t, m, v, &versionBump{m: m})

	f.sched.runCycle(context.Background(), manualTrigger("M1"))

	decs, _ := f.store.Query(context.Background(), decisionlog.Query{})
	if len(decs) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decs))
	}
	// First commit hits the stale version; the retried cycle lands.
	if decs[0].Outcome != model.OutcomeCommitted {
		t.Fatalf("outcome = %s, want committed after retry", decs[0].Outcome)
	}
	if m.NeedsReview {
		t.Fatal("successful retry must not flag the mission")
	}
}

func TestRunExitsOnContextCancel(t *testing.T) {
	f := newFixture(t, agentMission(), agentVehicle())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- f.sched.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
