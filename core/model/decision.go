package model

import "time"

// DecisionType is the closed set of actions the agent can commit to. New
// kinds must be added here and handled exhaustively by the selector and the
// executor; there are no loosely-typed decision payloads.
type DecisionType int

const (
	DecisionNoAction DecisionType = iota
	DecisionReroute
	DecisionAddLoad
	DecisionBookBackhaul
	DecisionRefuel
	DecisionRest
)

func (t DecisionType) String() string {
	switch t {
	case DecisionNoAction:
		return "NO_ACTION"
	case DecisionReroute:
		return "REROUTE"
	case DecisionAddLoad:
		return "ADD_LOAD"
	case DecisionBookBackhaul:
		return "BOOK_BACKHAUL"
	case DecisionRefuel:
		return "REFUEL"
	case DecisionRest:
		return "REST"
	default:
		return "unknown"
	}
}

// ReroutePlan carries the committed alternate route for a reroute decision.
type ReroutePlan struct {
	Route        Route   `json:"route"`
	TimeSavedMin float64 `json:"time_saved_min"`
	TollDelta    float64 `json:"toll_delta"`
}

// LoadPlan carries the load to pool into the running mission.
type LoadPlan struct {
	Load      Load    `json:"load"`
	DetourKm  float64 `json:"detour_km"`
	DetourMin float64 `json:"detour_min"`
	NetProfit float64 `json:"net_profit"`
}

// BackhaulPlan carries the return load to book before arrival.
type BackhaulPlan struct {
	Load          Load    `json:"load"`
	Savings       float64 `json:"savings"`
	EmptyCost     float64 `json:"empty_return_cost"`
	DiversionCost float64 `json:"diversion_cost"`
}

// StopPlan carries the fuel or rest waypoint to insert.
type StopPlan struct {
	Waypoint Waypoint `json:"waypoint"`
}

// EvaluatedOption is one policy's scored course of action for a cycle.
// Exactly one plan pointer is set, matching Type.
type EvaluatedOption struct {
	ID     string       `json:"id"`
	Policy string       `json:"policy"`
	Type   DecisionType `json:"type"`

	RevenueDelta  float64 `json:"revenue_delta"`
	TimeDeltaMin  float64 `json:"time_delta_min"`
	DistanceDelta float64 `json:"distance_delta_km"`
	FuelCostDelta float64 `json:"fuel_cost_delta"`

	ProfitScore      float64 `json:"profit_score"`
	FeasibilityScore float64 `json:"feasibility_score"` // [0,1]
	RiskScore        float64 `json:"risk_score"`        // [0,1]
	OverallScore     float64 `json:"overall_score"`

	Pros []string `json:"pros,omitempty"`
	Cons []string `json:"cons,omitempty"`

	Reroute  *ReroutePlan  `json:"reroute,omitempty"`
	Load     *LoadPlan     `json:"load,omitempty"`
	Backhaul *BackhaulPlan `json:"backhaul,omitempty"`
	Stop     *StopPlan     `json:"stop,omitempty"`
}

// CycleOutcome records how a committed decision played out.
type CycleOutcome int

const (
	OutcomePending CycleOutcome = iota
	OutcomeCommitted
	OutcomeNoAction
	OutcomeFailed
	OutcomeOverridden
)

func (o CycleOutcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeCommitted:
		return "committed"
	case OutcomeNoAction:
		return "no_action"
	case OutcomeFailed:
		return "failed"
	case OutcomeOverridden:
		return "overridden"
	default:
		return "unknown"
	}
}

// Override records a human decision replacing the agent's, without re-running
// evaluation.
type Override struct {
	Operator string    `json:"operator,omitempty"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// AgentDecision is the append-only record of one completed decision cycle.
// It is immutable once logged; only the outcome and override are filled later
// through the decision log.
type AgentDecision struct {
	ID         string            `json:"id"`
	MissionID  string            `json:"mission_id"`
	CycleID    string            `json:"cycle_id"`
	Trigger    Trigger           `json:"trigger"`
	Context    DecisionContext   `json:"context"`
	Options    []EvaluatedOption `json:"options,omitempty"`
	Decision   DecisionType      `json:"decision"`
	Reason     string            `json:"reason"`
	Confidence float64           `json:"confidence"` // [0,1]
	Action     *EvaluatedOption  `json:"action,omitempty"`
	Outcome    CycleOutcome      `json:"outcome"`
	Override   *Override         `json:"override,omitempty"`
	At         time.Time         `json:"at"`
}
