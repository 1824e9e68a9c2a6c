// Package executor commits a cycle's winning decision to the mission. All
// mission mutation in the decision core happens here, serialized per mission.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/capacity"
	"github.com/Jainil7227/AlphaNeuron/core/events"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

// ErrPlanConflict is returned when the mission's route changed between the
// snapshot and the commit. The scheduler retries the cycle once with a fresh
// context before giving up.
var ErrPlanConflict = errors.New("plan based on stale route version")

// Executor applies committed decisions and emits the outbound events.
type Executor struct {
	capacity  *capacity.Manager
	publisher events.Publisher
	log       logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	now   func() time.Time
}

// New builds an executor. A nil publisher discards events.
func New(cap *capacity.Manager, pub events.Publisher, log logger.Logger) *Executor {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Executor{
		capacity:  cap,
		publisher: pub,
		log:       log,
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// SetClock overrides the time source.
func (e *Executor) SetClock(now func() time.Time) { e.now = now }

func (e *Executor) missionLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Execute commits the winning option onto the mission and vehicle. The
// snapshot's route version must still match the mission's; a mismatch means
// an external route change landed mid-cycle and the plan is stale.
func (e *Executor) Execute(ctx context.Context, m *model.Mission, v *model.Vehicle, dec *model.AgentDecision) error {
	lock := e.missionLock(m.ID)
	lock.Lock()
	defer lock.Unlock()

	opt := dec.Action
	if dec.Decision == model.DecisionNoAction || opt == nil {
		return e.publishDecision(ctx, dec)
	}
	if dec.Context.RemainingRoute.Version != m.Route.Version {
		return fmt.Errorf("mission %s: route v%d != snapshot v%d: %w",
			m.ID, m.Route.Version, dec.Context.RemainingRoute.Version, ErrPlanConflict)
	}

	var err error
	switch dec.Decision {
	case model.DecisionReroute:
		err = e.applyReroute(m, opt)
	case model.DecisionAddLoad:
		err = e.applyAddLoad(ctx, m, v, opt)
	case model.DecisionBookBackhaul:
		err = e.applyBackhaul(ctx, m, opt)
	case model.DecisionRefuel, model.DecisionRest:
		err = e.applyStop(m, opt)
	default:
		err = fmt.Errorf("mission %s: unhandled decision type %s", m.ID, dec.Decision)
	}
	if err != nil {
		return err
	}
	return e.publishDecision(ctx, dec)
}

func (e *Executor) applyReroute(m *model.Mission, opt *model.EvaluatedOption) error {
	if opt.Reroute == nil {
		return fmt.Errorf("mission %s: reroute decision without plan", m.ID)
	}
	next := opt.Reroute.Route
	next.Waypoints = m.Route.Waypoints
	next.Version = m.Route.Version + 1
	next.Seal()
	m.Route = next
	m.ExpectedArrival = e.now().Add(time.Duration(next.DurationMin * float64(time.Minute)))
	e.log.Infof("mission %s: rerouted to v%d, %.0f min saved", m.ID, next.Version, opt.Reroute.TimeSavedMin)
	return nil
}

func (e *Executor) applyAddLoad(ctx context.Context, m *model.Mission, v *model.Vehicle, opt *model.EvaluatedOption) error {
	if opt.Load == nil {
		return fmt.Errorf("mission %s: add-load decision without plan", m.ID)
	}
	l := opt.Load.Load
	if err := e.capacity.Accept(v, l); err != nil {
		return err
	}
	m.Manifest = append(m.Manifest, model.ManifestEntry{
		LoadID:     l.ID,
		Shipper:    l.Shipper,
		CargoType:  l.CargoType,
		WeightTons: l.WeightTons,
		VolumeM3:   l.VolumeM3,
		Rate:       l.OfferedRate,
		AddedAt:    e.now(),
	})
	e.insertWaypoints(m,
		model.Waypoint{Location: l.Pickup, Name: l.PickupCity, Kind: model.WaypointPickup},
		model.Waypoint{Location: l.Delivery, Name: l.DeliveryCity, Kind: model.WaypointDrop},
	)
	e.log.Infof("mission %s: pooled load %s, %.0f net profit", m.ID, l.ID, opt.Load.NetProfit)

	return e.publisher.Publish(ctx, events.OpportunityEvent{
		OpportunityID:     opt.ID,
		MissionID:         m.ID,
		Load:              l,
		DetourKm:          opt.Load.DetourKm,
		AdditionalRevenue: opt.Load.NetProfit,
		ExpiresAt:         e.now().Add(15 * time.Minute),
	})
}

func (e *Executor) applyBackhaul(ctx context.Context, m *model.Mission, opt *model.EvaluatedOption) error {
	if opt.Backhaul == nil {
		return fmt.Errorf("mission %s: backhaul decision without plan", m.ID)
	}
	l := opt.Backhaul.Load
	m.Backhaul = &model.ManifestEntry{
		LoadID:     l.ID,
		Shipper:    l.Shipper,
		CargoType:  l.CargoType,
		WeightTons: l.WeightTons,
		VolumeM3:   l.VolumeM3,
		Rate:       l.OfferedRate,
		AddedAt:    e.now(),
	}
	e.log.Infof("mission %s: booked backhaul %s, saves %.0f", m.ID, l.ID, opt.Backhaul.Savings)

	return e.publisher.Publish(ctx, events.OpportunityEvent{
		OpportunityID:     opt.ID,
		MissionID:         m.ID,
		Load:              l,
		AdditionalRevenue: opt.Backhaul.Savings,
		ExpiresAt:         e.now().Add(15 * time.Minute),
	})
}

func (e *Executor) applyStop(m *model.Mission, opt *model.EvaluatedOption) error {
	if opt.Stop == nil {
		return fmt.Errorf("mission %s: stop decision without plan", m.ID)
	}
	e.insertWaypoints(m, opt.Stop.Waypoint)
	e.log.Infof("mission %s: inserted %s waypoint", m.ID, opt.Stop.Waypoint.Kind)
	return nil
}

// insertWaypoints appends the stops in order and bumps the route version so
// in-flight snapshots become stale.
func (e *Executor) insertWaypoints(m *model.Mission, wps ...model.Waypoint) {
	seq := 0
	for _, wp := range m.Route.Waypoints {
		if wp.Seq >= seq {
			seq = wp.Seq + 1
		}
	}
	for i := range wps {
		wps[i].Seq = seq
		seq++
		m.Route.Waypoints = append(m.Route.Waypoints, wps[i])
	}
	m.Route.Version++
}

// Transition moves the mission through its lifecycle and reports the change.
func (e *Executor) Transition(ctx context.Context, m *model.Mission, next model.MissionStatus) error {
	lock := e.missionLock(m.ID)
	lock.Lock()
	defer lock.Unlock()

	old := m.Status
	if err := m.Transition(next); err != nil {
		return err
	}
	return e.publisher.Publish(ctx, events.StatusChangedEvent{
		MissionID: m.ID,
		Old:       old,
		New:       next,
		At:        e.now(),
	})
}

func (e *Executor) publishDecision(ctx context.Context, dec *model.AgentDecision) error {
	return e.publisher.Publish(ctx, events.DecisionEvent{
		MissionID:  dec.MissionID,
		DecisionID: dec.ID,
		Decision:   dec.Decision,
		Reason:     dec.Reason,
		Confidence: dec.Confidence,
		At:         dec.At,
	})
}
