// Package rules implements move pre-validation and simultaneous-turn
// resolution over a board.Board. Rules holds no state of its own: every
// operation takes a board by reference and mutates it, or a clone, in place.
package rules

import (
	"github.com/hailam/simulgo/internal/board"
)

// ValidationResult is the outcome of pre-validating a placement.
type ValidationResult int

const (
	Valid ValidationResult = iota
	BoundsError
	Occupied
	Suicide
	KoViolation
)

func (r ValidationResult) String() string {
	switch r {
	case Valid:
		return "valid"
	case BoundsError:
		return "out of bounds"
	case Occupied:
		return "occupied"
	case Suicide:
		return "suicide"
	case KoViolation:
		return "ko violation"
	default:
		return "unknown"
	}
}

// PreValidateMove simulates placing color at (x,y) on a clone of b: it places
// the stone, removes any opponent groups left with zero liberties, then
// checks the placed group's own liberties. A move that captures nothing and
// leaves its own group with zero liberties is Suicide. PreValidateMove does
// NOT consult superko history — see ValidateMove for the stricter contract
// the engine is expected to call.
func PreValidateMove(b *board.Board, x, y int, color board.Stone) ValidationResult {
	if !b.InBounds(x, y) {
		return BoundsError
	}
	if !b.IsEmpty(x, y) {
		return Occupied
	}

	sim := b.Clone()
	sim.Set(x, y, color)

	opponent := color.Other()
	deadOpponent := sim.DeadGroups(opponent)
	for _, g := range deadOpponent {
		sim.Remove(g)
	}

	placedGroup := sim.Group(x, y)
	if sim.LibertyCount(placedGroup) == 0 && len(deadOpponent) == 0 {
		return Suicide
	}
	return Valid
}

// ValidateMove is PreValidateMove plus a superko check: if the resulting
// board hash already appears in history, the move is rejected even though it
// would otherwise be legal. history may be nil to skip the check.
func ValidateMove(b *board.Board, x, y int, color board.Stone, history map[uint64]struct{}) ValidationResult {
	result := PreValidateMove(b, x, y, color)
	if result != Valid || history == nil {
		return result
	}

	sim := b.Clone()
	sim.Set(x, y, color)
	deadOpponent := sim.DeadGroups(color.Other())
	for _, g := range deadOpponent {
		sim.Remove(g)
	}

	if _, seen := history[sim.Hash()]; seen {
		return KoViolation
	}
	return Valid
}

// Move is a tagged value: either Pass or a Place at (X,Y).
type Move struct {
	Pass bool
	X, Y int
}

// Passed constructs a pass move.
func Passed() Move { return Move{Pass: true} }

// Place constructs a placement move.
func Place(x, y int) Move { return Move{X: x, Y: y} }

// TurnOutcome is the result of resolving one simultaneous turn.
type TurnOutcome struct {
	BothPassed bool

	Collision    bool
	CollisionPos board.Pos

	BlackPlaced bool
	WhitePlaced bool

	RemovedBlack []board.Pos // Black stones removed this turn
	RemovedWhite []board.Pos // White stones removed this turn
}

// ResolveTurn places both pending moves on b and applies simultaneous
// capture. It mutates b in place and never removes Red stones.
//
// Procedure (spec-mandated, order matters for correctness, not for outcome):
//  1. both Pass -> no mutation, BothPassed=true.
//  2. same-position Place/Place -> write Red, mark collision, place neither.
//  3. otherwise write whichever placements are non-pass.
//  4. compute dead groups of both colors on the single post-placement
//     snapshot, BEFORE removing anything, so captures are color-symmetric.
//  5. remove all dead stones from both lists in one batch. Red is never a
//     candidate: DeadGroups(Black)/DeadGroups(White) cannot return Red cells.
func ResolveTurn(b *board.Board, blackMove, whiteMove Move) TurnOutcome {
	if blackMove.Pass && whiteMove.Pass {
		return TurnOutcome{BothPassed: true}
	}

	var out TurnOutcome

	if !blackMove.Pass && !whiteMove.Pass && blackMove.X == whiteMove.X && blackMove.Y == whiteMove.Y {
		out.Collision = true
		out.CollisionPos = board.Pos{X: blackMove.X, Y: blackMove.Y}
		b.Set(blackMove.X, blackMove.Y, board.Red)
	} else {
		if !blackMove.Pass {
			b.Set(blackMove.X, blackMove.Y, board.Black)
			out.BlackPlaced = true
		}
		if !whiteMove.Pass {
			b.Set(whiteMove.X, whiteMove.Y, board.White)
			out.WhitePlaced = true
		}
	}

	deadBlack := b.DeadGroups(board.Black)
	deadWhite := b.DeadGroups(board.White)

	for _, g := range deadBlack {
		out.RemovedBlack = append(out.RemovedBlack, g...)
	}
	for _, g := range deadWhite {
		out.RemovedWhite = append(out.RemovedWhite, g...)
	}

	b.Remove(out.RemovedBlack)
	b.Remove(out.RemovedWhite)

	return out
}
