// Package capacity tracks per-vehicle load against capacity and evaluates
// load-matching candidates against a route corridor. The capacity invariant
// is enforced here, before any candidate reaches policy scoring.
package capacity

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Jainil7227/AlphaNeuron/core/geo"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

// ErrCapacityExceeded rejects a load that would push the vehicle over its
// weight or volume capacity.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// Manager guards vehicle load totals. All mutations go through Accept and
// Release so the invariant current <= max holds after every operation.
type Manager struct {
	mu  sync.Mutex
	log logger.Logger
}

// NewManager creates a Manager.
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Manager{log: log}
}

// CanAccept reports whether the vehicle can take the load without violating
// weight or volume capacity.
func (m *Manager) CanAccept(v model.Vehicle, l model.Load) bool {
	if v.CurrentWeightTons+l.WeightTons > v.MaxWeightTons {
		return false
	}
	if v.MaxVolumeM3 > 0 && v.CurrentVolumeM3+l.VolumeM3 > v.MaxVolumeM3 {
		return false
	}
	return true
}

// Accept adds the load onto the vehicle, or returns ErrCapacityExceeded. The
// available capacity shrinks immediately so a concurrent accept for the same
// vehicle cannot oversubscribe it.
func (m *Manager) Accept(v *model.Vehicle, l model.Load) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.CanAccept(*v, l) {
		m.log.Debugf("load %s rejected for %s: %.1ft over capacity",
			l.ID, v.ID, v.CurrentWeightTons+l.WeightTons-v.MaxWeightTons)
		return fmt.Errorf("vehicle %s load %s: %w", v.ID, l.ID, ErrCapacityExceeded)
	}
	v.CurrentWeightTons += l.WeightTons
	v.CurrentVolumeM3 += l.VolumeM3
	return nil
}

// Release removes a delivered or cancelled load from the vehicle totals.
func (m *Manager) Release(v *model.Vehicle, l model.Load) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.CurrentWeightTons -= l.WeightTons
	if v.CurrentWeightTons < 0 {
		v.CurrentWeightTons = 0
	}
	v.CurrentVolumeM3 -= l.VolumeM3
	if v.CurrentVolumeM3 < 0 {
		v.CurrentVolumeM3 = 0
	}
}

// Match pairs a candidate load with its detour from the remaining route.
type Match struct {
	Load     model.Load
	DetourKm float64
}

// CorridorMatches keeps candidates whose pickup AND delivery both fall within
// widthKm of the remaining polyline, ranked by detour distance ascending.
// The detour approximates driving off the corridor and back for both stops.
func (m *Manager) CorridorMatches(route model.Route, candidates []model.Load, widthKm float64) []Match {
	line := route.Points()
	if len(line) == 0 {
		return nil
	}
	var matches []Match
	for _, l := range candidates {
		if l.Status != model.LoadAvailable {
			continue
		}
		dPickup := geo.PointToPolylineKm(l.Pickup, line)
		if dPickup > widthKm {
			continue
		}
		dDelivery := geo.PointToPolylineKm(l.Delivery, line)
		if dDelivery > widthKm {
			continue
		}
		matches = append(matches, Match{Load: l, DetourKm: 2 * (dPickup + dDelivery)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DetourKm != matches[j].DetourKm {
			return matches[i].DetourKm < matches[j].DetourKm
		}
		return matches[i].Load.ID < matches[j].Load.ID
	})
	return matches
}

// BackhaulCandidates filters loads whose pickup lies within radiusKm of the
// mission destination, sorted by offered rate descending. Callers evaluate
// this only once the mission is inside the backhaul trigger radius, not on
// every cycle.
func (m *Manager) BackhaulCandidates(destination geo.Point, candidates []model.Load, radiusKm float64) []model.Load {
	var out []model.Load
	for _, l := range candidates {
		if l.Status != model.LoadAvailable {
			continue
		}
		if geo.HaversineKm(destination, l.Pickup) <= radiusKm {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OfferedRate != out[j].OfferedRate {
			return out[i].OfferedRate > out[j].OfferedRate
		}
		return out[i].ID < out[j].ID
	})
	return out
}
