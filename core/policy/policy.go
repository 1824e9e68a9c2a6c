// Package policy implements the independent decision policies and the
// evaluator that runs them concurrently against one immutable snapshot.
package policy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

// Fixed tie-break priority, lower wins. Safety policies outrank revenue
// policies when scores and risks tie exactly.
const (
	PriorityRefuel = iota
	PriorityRest
	PriorityReroute
	PriorityBackhaul
	PriorityLoadMatch
)

// Policy scores the current context for one course of action. Evaluate must
// be a pure function of its inputs: same snapshot, same options. It returns
// zero or more options; candidate-driven policies emit one per viable
// candidate.
type Policy interface {
	Name() string
	Priority() int
	Evaluate(ctx context.Context, dc model.DecisionContext, m *model.Mission, v *model.Vehicle) ([]model.EvaluatedOption, error)
}

// Evaluator runs all policies concurrently and collects their options. One
// policy failing or panicking is logged and excluded; the others proceed.
type Evaluator struct {
	cfg      Config
	policies []Policy
	log      logger.Logger
}

// NewEvaluator builds an evaluator over the standard policy set.
func NewEvaluator(cfg Config, log logger.Logger, policies ...Policy) *Evaluator {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Evaluator{cfg: cfg, policies: policies, log: log}
}

// Evaluate fans the policies out against the shared snapshot and joins their
// options. The snapshot is read-only by construction, so no locking is needed
// across policies.
func (e *Evaluator) Evaluate(ctx context.Context, dc model.DecisionContext, m *model.Mission, v *model.Vehicle) []model.EvaluatedOption {
	results := make([][]model.EvaluatedOption, len(e.policies))
	var wg sync.WaitGroup
	for i, p := range e.policies {
		wg.Add(1)
		go func(i int, p Policy) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.log.Warnf("policy %s panicked: %v", p.Name(), r)
				}
			}()
			opts, err := p.Evaluate(ctx, dc, m, v)
			if err != nil {
				e.log.Warnf("policy %s failed: %v", p.Name(), err)
				return
			}
			results[i] = opts
		}(i, p)
	}
	wg.Wait()

	var all []model.EvaluatedOption
	for i, opts := range results {
		for _, o := range opts {
			o.OverallScore = e.cfg.Weights.Profit*o.ProfitScore +
				e.cfg.Weights.Feasibility*o.FeasibilityScore -
				e.cfg.Weights.Risk*o.RiskScore
			if o.ID == "" {
				o.ID = fmt.Sprintf("%s-%d", e.policies[i].Name(), len(all))
			}
			all = append(all, o)
		}
	}
	return all
}

// Select picks the winning option: the highest overall score strictly greater
// than minThreshold. Ties break on lower risk, then fixed policy priority,
// then lexical option ID, so selection is fully deterministic for identical
// inputs. The boolean is false when no option qualifies (NO_ACTION).
func Select(options []model.EvaluatedOption, minThreshold float64, priorities map[string]int) (model.EvaluatedOption, bool) {
	if len(options) == 0 {
		return model.EvaluatedOption{}, false
	}
	sorted := append([]model.EvaluatedOption(nil), options...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		if a.RiskScore != b.RiskScore {
			return a.RiskScore < b.RiskScore
		}
		pa, pb := priorities[a.Policy], priorities[b.Policy]
		if pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	})
	best := sorted[0]
	if best.OverallScore <= minThreshold {
		return model.EvaluatedOption{}, false
	}
	return best, true
}

// Priorities maps policy names to their fixed tie-break rank.
func Priorities(policies ...Policy) map[string]int {
	m := make(map[string]int, len(policies))
	for _, p := range policies {
		m[p.Name()] = p.Priority()
	}
	return m
}
