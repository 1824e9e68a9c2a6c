// Package agent runs the per-mission decision loop: wait for a trigger,
// gather a context snapshot, score the policies, commit the winner, log the
// cycle. One Scheduler instance runs per active mission; schedulers for
// distinct missions are fully independent.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jainil7227/AlphaNeuron/core/decisionlog"
	"github.com/Jainil7227/AlphaNeuron/core/events"
	"github.com/Jainil7227/AlphaNeuron/core/executor"
	coremetrics "github.com/Jainil7227/AlphaNeuron/core/metrics"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/core/policy"
	"github.com/Jainil7227/AlphaNeuron/core/snapshot"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

// Config tunes the scheduler loop.
type Config struct {
	TickInterval   time.Duration `json:"tick_interval"`
	DebounceWindow time.Duration `json:"debounce_window"`
	QueueSize      int           `json:"queue_size"`

	// MinConfidence is the snapshot confidence below which the cycle decides
	// NO_ACTION regardless of scores.
	MinConfidence float64 `json:"min_confidence"`
}

// SetDefaults applies the default loop tuning.
func (c *Config) SetDefaults() {
	if c.TickInterval == 0 {
		c.TickInterval = 5 * time.Minute
	}
	if c.DebounceWindow == 0 {
		c.DebounceWindow = 30 * time.Second
	}
	if c.QueueSize == 0 {
		c.QueueSize = 16
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = 0.4
	}
}

// Scheduler drives one mission's decision loop.
type Scheduler struct {
	cfg        Config
	policyCfg  policy.Config
	mission    *model.Mission
	vehicle    *model.Vehicle
	aggregator *snapshot.Aggregator
	evaluator  *policy.Evaluator
	priorities map[string]int
	executor   *executor.Executor
	logStore   decisionlog.Store
	publisher  events.Publisher
	sink       coremetrics.Sink
	log        logger.Logger

	triggers chan model.Trigger

	mu       sync.Mutex
	pending  map[model.TriggerKind]bool
	lastSeen map[model.TriggerKind]time.Time
	state    CycleState
	now      func() time.Time
}

// New wires a scheduler for one mission. The publisher and sink may be nil.
func New(
	cfg Config,
	policyCfg policy.Config,
	m *model.Mission,
	v *model.Vehicle,
	agg *snapshot.Aggregator,
	eval *policy.Evaluator,
	priorities map[string]int,
	exec *executor.Executor,
	store decisionlog.Store,
	pub events.Publisher,
	sink coremetrics.Sink,
	log logger.Logger,
) *Scheduler {
	cfg.SetDefaults()
	policyCfg.SetDefaults()
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{
		cfg:        cfg,
		policyCfg:  policyCfg,
		mission:    m,
		vehicle:    v,
		aggregator: agg,
		evaluator:  eval,
		priorities: priorities,
		executor:   exec,
		logStore:   store,
		publisher:  pub,
		sink:       sink,
		log:        log,
		triggers:   make(chan model.Trigger, cfg.QueueSize),
		pending:    make(map[model.TriggerKind]bool),
		lastSeen:   make(map[model.TriggerKind]time.Time),
		state:      StateIdle,
		now:        time.Now,
	}
}

// SetClock overrides the time source.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// State reports the loop's current cycle state.
func (s *Scheduler) State() CycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st CycleState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Offer enqueues a trigger without blocking. A trigger of a class that is
// already queued collapses into the pending one; a full queue drops the
// trigger. The return value reports whether the trigger was queued.
func (s *Scheduler) Offer(t model.Trigger) bool {
	s.mu.Lock()
	if s.pending[t.Kind] {
		s.mu.Unlock()
		s.recordTrigger(t.Kind, "collapsed")
		return false
	}
	s.pending[t.Kind] = true
	s.mu.Unlock()

	select {
	case s.triggers <- t:
		s.recordTrigger(t.Kind, "queued")
		return true
	default:
		s.mu.Lock()
		delete(s.pending, t.Kind)
		s.mu.Unlock()
		s.recordTrigger(t.Kind, "dropped")
		s.log.Warnf("mission %s: trigger queue full, dropped %s", s.mission.ID, t.Kind)
		return false
	}
}

func (s *Scheduler) recordTrigger(kind model.TriggerKind, disposition string) {
	if rec, ok := s.sink.(coremetrics.TriggerRecorder); ok {
		_ = rec.RecordTrigger(kind.String(), disposition)
	}
}

// Run executes the loop until the context is canceled, the mission reaches a
// terminal status, or state corruption halts it. The overdue cycle in flight
// always finishes; nothing is killed mid-commit.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	s.setState(StateMonitoring)
	s.log.Infof("mission %s: scheduler started", s.mission.ID)

	for {
		select {
		case <-ctx.Done():
			s.setState(StateIdle)
			return ctx.Err()
		case <-ticker.C:
			if done, err := s.handle(ctx, model.Trigger{
				Kind: model.TriggerScheduled, MissionID: s.mission.ID, At: s.now(),
			}); done {
				return err
			}
		case t := <-s.triggers:
			s.mu.Lock()
			delete(s.pending, t.Kind)
			s.mu.Unlock()
			if done, err := s.handle(ctx, t); done {
				return err
			}
		}
	}
}

// handle runs one trigger through the cycle. It reports done=true when the
// loop should exit.
func (s *Scheduler) handle(ctx context.Context, t model.Trigger) (bool, error) {
	if s.mission.Status.Terminal() {
		s.log.Infof("mission %s: %s, scheduler exiting", s.mission.ID, s.mission.Status)
		s.setState(StateIdle)
		return true, nil
	}
	s.setState(StateTriggered)
	if s.stale(t) {
		s.log.Debugf("mission %s: stale %s trigger discarded", s.mission.ID, t.Kind)
		s.setState(StateMonitoring)
		return false, nil
	}
	if !s.mission.Status.AgentActive() {
		s.log.Debugf("mission %s: status %s, agent inactive", s.mission.ID, s.mission.Status)
		s.setState(StateMonitoring)
		return false, nil
	}
	if err := s.mission.Validate(); err != nil {
		return true, s.halt(ctx, err)
	}

	s.runCycle(ctx, t)
	s.setState(StateMonitoring)
	return false, nil
}

// stale reports whether the trigger falls inside the debounce window of the
// last accepted trigger of the same kind. Manual triggers never debounce.
func (s *Scheduler) stale(t model.Trigger) bool {
	if t.Kind == model.TriggerManual {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastSeen[t.Kind]
	now := s.now()
	if ok && now.Sub(last) < s.cfg.DebounceWindow {
		s.recordTrigger(t.Kind, "debounced")
		return true
	}
	s.lastSeen[t.Kind] = now
	return false
}

// halt stops this mission's loop after detected state corruption and raises
// an operator alert. Other missions are unaffected.
func (s *Scheduler) halt(ctx context.Context, cause error) error {
	s.setState(StateHalted)
	s.log.Errorf("mission %s: state corruption, halting: %v", s.mission.ID, cause)
	if err := s.publisher.Publish(ctx, events.OperatorAlertEvent{
		MissionID: s.mission.ID,
		Reason:    fmt.Sprintf("state corruption: %v", cause),
		At:        s.now(),
	}); err != nil {
		s.log.Errorf("mission %s: alert publish failed: %v", s.mission.ID, err)
	}
	s.mission.NeedsReview = true
	return cause
}

// runCycle is one full pass: gather, evaluate, decide, execute, log. A plan
// conflict during execution retries once with a freshly gathered context; a
// second failure logs the cycle as failed and flags the mission for review.
func (s *Scheduler) runCycle(ctx context.Context, t model.Trigger) {
	start := s.now()

	dec := s.decide(ctx, t)
	s.setState(StateExecuting)
	err := s.executor.Execute(ctx, s.mission, s.vehicle, dec)
	if errors.Is(err, executor.ErrPlanConflict) {
		s.log.Warnf("mission %s: plan conflict, retrying with fresh context", s.mission.ID)
		dec = s.decide(ctx, t)
		err = s.executor.Execute(ctx, s.mission, s.vehicle, dec)
	}
	s.setState(StateNotifying)
	switch {
	case err != nil:
		dec.Outcome = model.OutcomeFailed
		s.mission.NeedsReview = true
		s.log.Errorf("mission %s: cycle %s failed: %v", s.mission.ID, dec.CycleID, err)
		if perr := s.publisher.Publish(ctx, events.OperatorAlertEvent{
			MissionID: s.mission.ID,
			Reason:    fmt.Sprintf("decision execution failed: %v", err),
			At:        s.now(),
		}); perr != nil {
			s.log.Errorf("mission %s: alert publish failed: %v", s.mission.ID, perr)
		}
	case dec.Decision == model.DecisionNoAction:
		dec.Outcome = model.OutcomeNoAction
	default:
		dec.Outcome = model.OutcomeCommitted
	}

	s.setState(StateLogging)
	if s.logStore != nil {
		if lerr := s.logStore.Append(ctx, *dec); lerr != nil {
			s.log.Errorf("mission %s: decision log append failed: %v", s.mission.ID, lerr)
		}
	}
	score := 0.0
	if dec.Action != nil {
		score = dec.Action.OverallScore
	}
	if merr := s.sink.RecordCycle(coremetrics.CycleRecord{
		MissionID:      s.mission.ID,
		Trigger:        t.Kind.String(),
		Decision:       dec.Decision.String(),
		Outcome:        dec.Outcome.String(),
		Options:        len(dec.Options),
		Score:          score,
		Confidence:     dec.Confidence,
		DegradedFields: len(dec.Context.Degraded),
		Duration:       s.now().Sub(start),
		Time:           start,
	}); merr != nil {
		s.log.Warnf("mission %s: metrics record failed: %v", s.mission.ID, merr)
	}
}

// decide gathers a snapshot and selects the winning option.
func (s *Scheduler) decide(ctx context.Context, t model.Trigger) *model.AgentDecision {
	s.setState(StateGatheringContext)
	dc := s.aggregator.Gather(ctx, s.mission, *s.vehicle)

	s.setState(StateEvaluating)
	options := s.evaluator.Evaluate(ctx, dc, s.mission, s.vehicle)

	s.setState(StateDeciding)
	dec := &model.AgentDecision{
		ID:         uuid.NewString(),
		MissionID:  s.mission.ID,
		CycleID:    dc.ID,
		Trigger:    t,
		Context:    dc,
		Options:    options,
		Decision:   model.DecisionNoAction,
		Confidence: dc.Confidence,
		Outcome:    model.OutcomePending,
		At:         s.now(),
	}
	if dc.Confidence < s.cfg.MinConfidence {
		dec.Reason = fmt.Sprintf("snapshot confidence %.2f below %.2f, holding course", dc.Confidence, s.cfg.MinConfidence)
		return dec
	}
	best, ok := policy.Select(options, s.policyCfg.MinActionThreshold, s.priorities)
	if !ok {
		dec.Reason = fmt.Sprintf("no option above threshold %.0f across %d evaluated", s.policyCfg.MinActionThreshold, len(options))
		return dec
	}
	dec.Decision = best.Type
	dec.Action = &best
	dec.Reason = reason(best)
	return dec
}

func reason(o model.EvaluatedOption) string {
	if len(o.Pros) > 0 {
		return fmt.Sprintf("%s: %s", o.Policy, o.Pros[0])
	}
	return fmt.Sprintf("%s scored %.0f", o.Policy, o.OverallScore)
}
