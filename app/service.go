// Package app wires the decision core into a runnable fleet service: one
// scheduler per active mission, shared providers, the event pipeline and the
// inbound command handling.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jainil7227/AlphaNeuron/config"
	"github.com/Jainil7227/AlphaNeuron/core/agent"
	"github.com/Jainil7227/AlphaNeuron/core/capacity"
	"github.com/Jainil7227/AlphaNeuron/core/decisionlog"
	"github.com/Jainil7227/AlphaNeuron/core/events"
	"github.com/Jainil7227/AlphaNeuron/core/executor"
	coremetrics "github.com/Jainil7227/AlphaNeuron/core/metrics"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/core/policy"
	coreproviders "github.com/Jainil7227/AlphaNeuron/core/providers"
	"github.com/Jainil7227/AlphaNeuron/core/snapshot"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
	"github.com/Jainil7227/AlphaNeuron/infra/metrics"
	"github.com/Jainil7227/AlphaNeuron/infra/notify"
	infraproviders "github.com/Jainil7227/AlphaNeuron/infra/providers"
	"github.com/Jainil7227/AlphaNeuron/internal/eventbus"
)

type mission struct {
	m     *model.Mission
	v     *model.Vehicle
	sched *agent.Scheduler
}

// Service runs the per-mission schedulers over shared infrastructure.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	capacity *capacity.Manager
	exec     *executor.Executor
	store    decisionlog.Store
	sink     coremetrics.Sink
	bus      *eventbus.Bus[events.Event]
	outbound events.Publisher
	eval     *policy.Evaluator
	prior    map[string]int

	routing     coreproviders.Routing
	weather     coreproviders.Weather
	fuel        coreproviders.FuelPrice
	marketplace coreproviders.Marketplace

	mu       sync.Mutex
	missions map[string]*mission
	rejected map[string]bool

	g      *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc
	mqtt   *notify.MQTTPublisher
}

// New assembles a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	cfg.ApplyDefaults()
	log := logger.New("service")

	store, err := newStore(cfg.DecisionLog)
	if err != nil {
		return nil, fmt.Errorf("decision log: %w", err)
	}
	sink, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		log:      log,
		capacity: capacity.NewManager(logger.New("capacity")),
		store:    store,
		sink:     sink,
		bus:      eventbus.New[events.Event](),
		missions: make(map[string]*mission),
		rejected: make(map[string]bool),
	}
	s.outbound = busPublisher{bus: s.bus}
	s.buildProviders()

	s.prior = policy.Priorities(
		policy.Refuel{Cfg: cfg.Policy},
		policy.Rest{Cfg: cfg.Policy},
		policy.Reroute{Cfg: cfg.Policy},
		policy.Backhaul{Cfg: cfg.Policy, FareCfg: cfg.Fare, Capacity: s.capacity},
		policy.LoadMatch{Cfg: cfg.Policy, Capacity: s.capacity},
	)
	s.eval = policy.NewEvaluator(cfg.Policy, logger.New("policies"),
		policy.Refuel{Cfg: cfg.Policy},
		policy.Rest{Cfg: cfg.Policy},
		policy.Reroute{Cfg: cfg.Policy},
		policy.Backhaul{Cfg: cfg.Policy, FareCfg: cfg.Fare, Capacity: s.capacity},
		policy.LoadMatch{Cfg: cfg.Policy, Capacity: s.capacity},
	)
	s.exec = executor.New(s.capacity, s.outbound, logger.New("executor"))

	if cfg.MQTT.Broker != "" {
		pub, err := notify.NewMQTTPublisher(cfg.MQTT, s)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		s.mqtt = pub
	}
	return s, nil
}

func newStore(cfg config.DecisionLogConfig) (decisionlog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return decisionlog.NewSQLiteStore(cfg.Path)
	default:
		return decisionlog.NewJSONLStore(cfg.Path)
	}
}

func (s *Service) buildProviders() {
	p := s.cfg.Providers
	if p.Static {
		s.routing = coreproviders.StaticRouting{}
		s.weather = coreproviders.StaticWeather{}
		s.fuel = coreproviders.StaticFuelPrice{Default: 90}
		s.marketplace = coreproviders.StaticMarketplace{}
		return
	}
	timeout := func(pc config.ProviderConfig) time.Duration {
		return time.Duration(pc.TimeoutMS) * time.Millisecond
	}
	s.routing = infraproviders.NewRoutingClient(p.Routing.BaseURL, p.Routing.APIKey, timeout(p.Routing))
	s.weather = infraproviders.NewWeatherClient(p.Weather.BaseURL, p.Weather.APIKey, timeout(p.Weather))
	s.fuel = infraproviders.NewFuelPriceClient(p.FuelPrice.BaseURL, p.FuelPrice.APIKey, timeout(p.FuelPrice))
	s.marketplace = infraproviders.NewMarketplaceClient(p.Marketplace.BaseURL, p.Marketplace.APIKey, timeout(p.Marketplace))
}

// Run starts the event pipeline and blocks until the context is canceled.
// Missions are started through StartMission while Run is active.
func (s *Service) Run(ctx context.Context) error {
	gctx, cancel := context.WithCancel(ctx)
	s.g, s.gctx = errgroup.WithContext(gctx)
	s.cancel = cancel

	s.g.Go(func() error {
		s.forwardEvents(s.gctx)
		return nil
	})
	if s.cfg.Metrics.PrometheusEnabled {
		port := s.cfg.Metrics.PrometheusPort
		s.g.Go(func() error {
			return metrics.StartPromServer(s.gctx, fmt.Sprintf(":%d", port))
		})
	}

	<-s.gctx.Done()
	if err := s.g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// forwardEvents drains the in-process bus into the external publisher.
func (s *Service) forwardEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if s.mqtt != nil {
				if err := s.mqtt.Publish(ctx, e); err != nil {
					s.log.Errorf("publish %s: %v", e.Topic(), err)
				}
			}
			if alert, isAlert := e.(events.OperatorAlertEvent); isAlert {
				s.log.Warnf("operator alert for %s: %s", alert.MissionID, alert.Reason)
			}
		}
	}
}

// StartMission validates the pair and runs a dedicated scheduler for it.
func (s *Service) StartMission(m *model.Mission, v *model.Vehicle) error {
	if s.g == nil {
		return fmt.Errorf("service not running")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return err
	}

	agg := snapshot.New(s.cfg.Snapshot, s.routing, s.weather, s.fuel, s.marketplace, logger.New("snapshot"))
	agg.SetCandidateFilter(func(l model.Load) bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.rejected["load-"+l.ID] && !s.rejected["backhaul-"+l.ID]
	})
	sched := agent.New(s.cfg.Agent, s.cfg.Policy, m, v, agg, s.eval, s.prior,
		s.exec, s.store, s.outbound, s.sink, logger.New("agent"))

	s.mu.Lock()
	if _, exists := s.missions[m.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("mission %s already running", m.ID)
	}
	s.missions[m.ID] = &mission{m: m, v: v, sched: sched}
	n := len(s.missions)
	s.mu.Unlock()
	s.recordActive(n)

	s.g.Go(func() error {
		err := sched.Run(s.gctx)
		s.mu.Lock()
		delete(s.missions, m.ID)
		n := len(s.missions)
		s.mu.Unlock()
		s.recordActive(n)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return nil
}

func (s *Service) recordActive(n int) {
	if rec, ok := s.sink.(coremetrics.ActiveMissionsRecorder); ok {
		_ = rec.RecordActiveMissions(n)
	}
}

// Trigger queues an external trigger for its mission.
func (s *Service) Trigger(t model.Trigger) bool {
	s.mu.Lock()
	ms, ok := s.missions[t.MissionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return ms.sched.Offer(t)
}

// Overview computes the current fleet capacity picture.
func (s *Service) Overview() capacity.Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	missions := make([]*model.Mission, 0, len(s.missions))
	vehicles := make(map[string]*model.Vehicle, len(s.missions))
	for _, ms := range s.missions {
		missions = append(missions, ms.m)
		vehicles[ms.v.ID] = ms.v
	}
	return capacity.FleetOverview(missions, vehicles)
}

// Close stops the schedulers and releases held resources.
func (s *Service) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.g != nil {
		_ = s.g.Wait()
	}
	s.bus.Close()
	if s.mqtt != nil {
		s.mqtt.Close()
	}
	return s.store.Close()
}

// AcceptOpportunity implements notify.CommandHandler: the driver accepted a
// surfaced load, force a fresh cycle so the match commits against current
// state.
func (s *Service) AcceptOpportunity(_ context.Context, cmd notify.OpportunityCommand) {
	s.mu.Lock()
	delete(s.rejected, cmd.OpportunityID)
	s.mu.Unlock()
	s.Trigger(model.Trigger{
		Kind:      model.TriggerLoadAvailable,
		MissionID: cmd.MissionID,
		LoadID:    cmd.OpportunityID,
		At:        time.Now(),
	})
}

// RejectOpportunity implements notify.CommandHandler. Rejected opportunities
// are remembered so repeated cycles stop surfacing them.
func (s *Service) RejectOpportunity(_ context.Context, cmd notify.OpportunityCommand) {
	s.mu.Lock()
	s.rejected[cmd.OpportunityID] = true
	s.mu.Unlock()
	s.log.Infof("opportunity %s rejected: %s", cmd.OpportunityID, cmd.Reason)
}

// ManualTrigger implements notify.CommandHandler: forces an immediate cycle.
func (s *Service) ManualTrigger(_ context.Context, cmd notify.TriggerCommand) {
	s.Trigger(model.Trigger{
		Kind:      model.TriggerManual,
		MissionID: cmd.MissionID,
		Reason:    "manual trigger",
		At:        time.Now(),
	})
}

// ManualOverride implements notify.CommandHandler: records a human override
// in the decision log without re-running evaluation.
func (s *Service) ManualOverride(ctx context.Context, cmd notify.OverrideCommand) {
	err := s.store.RecordOverride(ctx, cmd.DecisionID, model.Override{
		Operator: cmd.Operator,
		Reason:   cmd.Reason,
		At:       time.Now(),
	})
	if err != nil {
		s.log.Errorf("override for %s: %v", cmd.DecisionID, err)
	}
}

// busPublisher adapts the in-process bus to the events.Publisher contract.
type busPublisher struct {
	bus *eventbus.Bus[events.Event]
}

func (p busPublisher) Publish(_ context.Context, e events.Event) error {
	p.bus.Publish(e)
	return nil
}
