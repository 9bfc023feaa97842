package domain

// PlacementState represents the state of a single order placement attempt
type PlacementState string

const (
	PlacementIdle       PlacementState = "IDLE"
	PlacementValidating PlacementState = "VALIDATING"
	PlacementInvalid    PlacementState = "INVALID"
	PlacementSubmitting PlacementState = "SUBMITTING"
	PlacementConfirmed  PlacementState = "CONFIRMED"
	PlacementFailed     PlacementState = "FAILED"
)

// IsValid checks if the placement state is valid
func (s PlacementState) IsValid() bool {
	switch s {
	case PlacementIdle,
		PlacementValidating,
		PlacementInvalid,
		PlacementSubmitting,
		PlacementConfirmed,
		PlacementFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the attempt has finished
func (s PlacementState) IsTerminal() bool {
	return s == PlacementInvalid || s == PlacementConfirmed || s == PlacementFailed
}

// CanTransitionTo checks if a state transition is valid
func (s PlacementState) CanTransitionTo(next PlacementState) bool {
	switch s {
	case PlacementIdle:
		return next == PlacementValidating
	case PlacementValidating:
		return next == PlacementInvalid ||
			next == PlacementSubmitting
	case PlacementSubmitting:
		return next == PlacementConfirmed ||
			next == PlacementFailed
	case PlacementInvalid, PlacementConfirmed, PlacementFailed:
		return false // Terminal states
	default:
		return false
	}
}
