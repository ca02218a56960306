package engine

import "github.com/hailam/simulgo/internal/rules"

// Rejection is the reason SubmitMove refused a move. This is data, not a Go
// error: it is the normal, expected outcome of an illegal-but-well-formed
// client request, per spec's distinction between input errors and fatal
// plumbing failures.
type Rejection int

const (
	Accepted Rejection = iota
	NotStarted
	GameOver
	AlreadySubmitted
	PlayerTimedOut
	InvalidMove
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return ""
	case NotStarted:
		return "game has not started"
	case GameOver:
		return "game has already ended"
	case AlreadySubmitted:
		return "move already submitted for this turn"
	case PlayerTimedOut:
		return "player has timed out"
	case InvalidMove:
		return "invalid move"
	default:
		return "unknown rejection"
	}
}

// SubmitResult is what SubmitMove returns to its caller.
type SubmitResult struct {
	Accepted     bool
	Rejection    Rejection
	Reason       string // set when Rejection == InvalidMove, holds rules.ValidationResult.String()
	TurnResolved bool   // true if this submission completed the turn
}

func invalidMoveResult(v rules.ValidationResult) SubmitResult {
	return SubmitResult{Rejection: InvalidMove, Reason: v.String()}
}
