// Package decisionlog persists the append-only record of every decision
// cycle: the context it saw, the options it scored, and what it committed.
// Records are immutable once appended; outcomes and overrides are recorded
// as amendments, never by rewriting the original entry.
package decisionlog

import (
	"context"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// Query defines filters for retrieving decisions.
type Query struct {
	Start     time.Time
	End       time.Time
	MissionID string
	// Decision filters by committed decision type when non-nil.
	Decision *model.DecisionType
}

// Store persists AgentDecisions and supports querying and amendment.
type Store interface {
	Append(ctx context.Context, dec model.AgentDecision) error
	Query(ctx context.Context, q Query) ([]model.AgentDecision, error)
	RecordOutcome(ctx context.Context, decisionID string, outcome model.CycleOutcome) error
	RecordOverride(ctx context.Context, decisionID string, ov model.Override) error
	Close() error
}

func (q Query) matches(d model.AgentDecision) bool {
	if !q.Start.IsZero() && d.At.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && d.At.After(q.End) {
		return false
	}
	if q.MissionID != "" && d.MissionID != q.MissionID {
		return false
	}
	if q.Decision != nil && d.Decision != *q.Decision {
		return false
	}
	return true
}
