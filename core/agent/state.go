package agent

// CycleState tracks where a mission's scheduler is in its loop. Exposed for
// observability; transitions are driven solely by the scheduler itself.
type CycleState int

const (
	StateIdle CycleState = iota
	StateMonitoring
	StateTriggered
	StateGatheringContext
	StateEvaluating
	StateDeciding
	StateExecuting
	StateNotifying
	StateLogging
	StateHalted
)

func (s CycleState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMonitoring:
		return "MONITORING"
	case StateTriggered:
		return "TRIGGERED"
	case StateGatheringContext:
		return "GATHERING_CONTEXT"
	case StateEvaluating:
		return "EVALUATING"
	case StateDeciding:
		return "DECIDING"
	case StateExecuting:
		return "EXECUTING"
	case StateNotifying:
		return "NOTIFYING"
	case StateLogging:
		return "LOGGING"
	case StateHalted:
		return "HALTED"
	default:
		return "unknown"
	}
}
