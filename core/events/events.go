// Package events defines the outbound events the decision core emits and the
// publisher contract used to deliver them.
//
// Available event types:
//   - DecisionEvent: a cycle committed a decision (or NO_ACTION)
//   - OpportunityEvent: a profitable load surfaced for the driver
//   - StatusChangedEvent: a mission moved through its lifecycle
//   - OperatorAlertEvent: a mission needs human attention
package events

import (
	"context"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// Event is implemented by every outbound event.
type Event interface {
	// Topic names the outbound channel, e.g. "agent/decision/new".
	Topic() string
}

// Publisher delivers events to external consumers (driver apps, dashboards).
// Each mission scheduler owns an injected Publisher instance; there is no
// process-wide shared publisher.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// DecisionEvent is published at the end of every decision cycle.
type DecisionEvent struct {
	MissionID      string             `json:"mission_id"`
	DecisionID     string             `json:"decision_id"`
	Decision       model.DecisionType `json:"decision"`
	Reason         string             `json:"reason"`
	Confidence     float64            `json:"confidence"`
	Recommendation string             `json:"recommendation,omitempty"`
	At             time.Time          `json:"at"`
}

func (DecisionEvent) Topic() string { return "agent/decision/new" }

// OpportunityEvent surfaces a corridor or backhaul load to the driver.
type OpportunityEvent struct {
	OpportunityID     string     `json:"opportunity_id"`
	MissionID         string     `json:"mission_id"`
	Load              model.Load `json:"load"`
	DetourKm          float64    `json:"detour_km"`
	AdditionalRevenue float64    `json:"additional_revenue"`
	ExpiresAt         time.Time  `json:"expires_at"`
}

func (OpportunityEvent) Topic() string { return "opportunity/available" }

// StatusChangedEvent reports a mission lifecycle transition.
type StatusChangedEvent struct {
	MissionID string              `json:"mission_id"`
	Old       model.MissionStatus `json:"old_status"`
	New       model.MissionStatus `json:"new_status"`
	At        time.Time           `json:"at"`
}

func (StatusChangedEvent) Topic() string { return "mission/status/changed" }

// OperatorAlertEvent flags a mission for manual review: repeated execution
// failure or detected state corruption.
type OperatorAlertEvent struct {
	MissionID string    `json:"mission_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (OperatorAlertEvent) Topic() string { return "agent/alert" }

// NopPublisher discards all events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
