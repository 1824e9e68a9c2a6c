package capacity

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
)

func TestAcceptEnforcesWeightCapacity(t *testing.T) {
	m := NewManager(nil)
	v := model.Vehicle{ID: "TRK-1", MaxWeightTons: 10, CurrentWeightTons: 9.5}

	err := m.Accept(&v, model.Load{ID: "L1", WeightTons: 1})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if v.CurrentWeightTons != 9.5 {
		t.Fatalf("rejected load mutated vehicle: %.1f", v.CurrentWeightTons)
	}

	if err := m.Accept(&v, model.Load{ID: "L2", WeightTons: 0.5}); err != nil {
		t.Fatalf("exact-fit load rejected: %v", err)
	}
	if v.CurrentWeightTons != 10 {
		t.Fatalf("current weight = %.1f, want 10", v.CurrentWeightTons)
	}
}

func TestAcceptEnforcesVolumeCapacity(t *testing.T) {
	m := NewManager(nil)
	v := model.Vehicle{ID: "TRK-1", MaxWeightTons: 20, MaxVolumeM3: 40, CurrentVolumeM3: 38}

	err := m.Accept(&v, model.Load{ID: "L1", WeightTons: 1, VolumeM3: 5})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// Zero MaxVolumeM3 means volume is not tracked for this vehicle.
	v2 := model.Vehicle{ID: "TRK-2", MaxWeightTons: 20}
	if err := m.Accept(&v2, model.Load{ID: "L2", WeightTons: 1, VolumeM3: 500}); err != nil {
		t.Fatalf("untracked volume rejected: %v", err)
	}
}

// The invariant: after any sequence of accepts, the current load never
// exceeds capacity, and an over-capacity load is always rejected.
func TestAcceptSequencesNeverExceedCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewManager(nil)
	for run := 0; run < 50; run++ {
		v := model.Vehicle{ID: "TRK-1", MaxWeightTons: 1 + rng.Float64()*24}
		for i := 0; i < 30; i++ {
			l := model.Load{ID: "L", WeightTons: rng.Float64() * 8}
			err := m.Accept(&v, l)
			if v.CurrentWeightTons > v.MaxWeightTons {
				t.Fatalf("run %d op %d: current %.3f > max %.3f",
					run, i, v.CurrentWeightTons, v.MaxWeightTons)
			}
			if err == nil && rng.Intn(4) == 0 {
				m.Release(&v, l)
			}
		}
	}
}

func TestReleaseClampsAtZero(t *testing.T) {
	m := NewManager(nil)
	v := model.Vehicle{ID: "TRK-1", MaxWeightTons: 10, CurrentWeightTons: 1}
	m.Release(&v, model.Load{WeightTons: 5, VolumeM3: 3})
	if v.CurrentWeightTons != 0 || v.CurrentVolumeM3 != 0 {
		t.Fatalf("release went negative: %.1ft %.1fm3", v.CurrentWeightTons, v.CurrentVolumeM3)
	}
}

func TestCorridorMatches(t *testing.T) {
	m := NewManager(nil)
	// Route east along the equator; one degree of longitude ~111km here.
	route := model.Route{Polyline: []geo.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 0, Lng: 4}}}

	near := model.Load{ID: "near", Status: model.LoadAvailable,
		Pickup: geo.Point{Lat: 0.05, Lng: 1}, Delivery: geo.Point{Lat: 0.05, Lng: 3}}
	nearer := model.Load{ID: "nearer", Status: model.LoadAvailable,
		Pickup: geo.Point{Lat: 0.01, Lng: 1}, Delivery: geo.Point{Lat: 0.01, Lng: 3}}
	far := model.Load{ID: "far", Status: model.LoadAvailable,
		Pickup: geo.Point{Lat: 2, Lng: 1}, Delivery: geo.Point{Lat: 0, Lng: 3}}
	taken := model.Load{ID: "taken", Status: model.LoadMatched,
		Pickup: geo.Point{Lat: 0, Lng: 1}, Delivery: geo.Point{Lat: 0, Lng: 3}}

	got := m.CorridorMatches(route, []model.Load{near, far, taken, nearer}, 25)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Load.ID != "nearer" || got[1].Load.ID != "near" {
		t.Fatalf("order = %s, %s; want nearer, near", got[0].Load.ID, got[1].Load.ID)
	}
	if got[0].DetourKm >= got[1].DetourKm {
		t.Fatalf("detours not ascending: %.1f >= %.1f", got[0].DetourKm, got[1].DetourKm)
	}
}

func TestCorridorMatchesEmptyRoute(t *testing.T) {
	m := NewManager(nil)
	if got := m.CorridorMatches(model.Route{}, []model.Load{{ID: "L", Status: model.LoadAvailable}}, 25); got != nil {
		t.Fatalf("expected nil matches on empty route, got %v", got)
	}
}

func TestBackhaulCandidates(t *testing.T) {
	m := NewManager(nil)
	dest := geo.Point{Lat: 28.61, Lng: 77.21}

	inRadius := model.Load{ID: "a", Status: model.LoadAvailable, OfferedRate: 3000,
		Pickup: geo.Point{Lat: 28.7, Lng: 77.3}}
	better := model.Load{ID: "b", Status: model.LoadAvailable, OfferedRate: 4500,
		Pickup: geo.Point{Lat: 28.5, Lng: 77.1}}
	outRadius := model.Load{ID: "c", Status: model.LoadAvailable, OfferedRate: 9000,
		Pickup: geo.Point{Lat: 26.9, Lng: 75.8}}
	delivered := model.Load{ID: "d", Status: model.LoadDelivered, OfferedRate: 9000,
		Pickup: dest}

	got := m.BackhaulCandidates(dest, []model.Load{inRadius, outRadius, better, delivered}, 50)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("order = %s, %s; want b, a (rate descending)", got[0].ID, got[1].ID)
	}
}

func TestFleetOverview(t *testing.T) {
	vehicles := map[string]*model.Vehicle{
		"T1": {ID: "T1", MaxWeightTons: 10},
		"T2": {ID: "T2", MaxWeightTons: 20},
	}
	missions := []*model.Mission{
		{ID: "M1", VehicleID: "T1", Status: model.StatusInTransit,
			Manifest: []model.ManifestEntry{{LoadID: "L1", WeightTons: 9}},
			Backhaul: &model.ManifestEntry{LoadID: "B1"}},
		{ID: "M2", VehicleID: "T2", Status: model.StatusInTransit,
			Manifest: []model.ManifestEntry{{LoadID: "L2", WeightTons: 4}}},
		{ID: "M3", VehicleID: "T1", Status: model.StatusCompleted},
	}

	ov := FleetOverview(missions, vehicles)
	if len(ov.Missions) != 2 {
		t.Fatalf("got %d missions, want 2 (terminal excluded)", len(ov.Missions))
	}
	if ov.TotalCapacityTons != 30 || ov.UsedTons != 13 {
		t.Fatalf("fleet totals = %.1f/%.1f, want 13/30", ov.UsedTons, ov.TotalCapacityTons)
	}

	kinds := map[string][]string{}
	for _, r := range ov.Recommendations {
		kinds[r.MissionID] = append(kinds[r.MissionID], r.Kind)
	}
	// M1 at 90% with a backhaul gets no recommendation; M2 at 20% without one
	// gets both.
	if len(kinds["M1"]) != 0 {
		t.Fatalf("M1 recommendations: %v", kinds["M1"])
	}
	want := map[string]bool{"low_utilization": true, "no_backhaul": true}
	for _, k := range kinds["M2"] {
		if !want[k] {
			t.Fatalf("unexpected M2 recommendation %q", k)
		}
		delete(want, k)
	}
	if len(want) != 0 {
		t.Fatalf("missing M2 recommendations: %v", want)
	}
}
