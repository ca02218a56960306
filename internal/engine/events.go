package engine

import (
	"github.com/hailam/simulgo/internal/board"
	"github.com/hailam/simulgo/internal/rules"
	"github.com/hailam/simulgo/internal/scoring"
	"github.com/hailam/simulgo/internal/timer"
)

// Event is the sealed set of notifications the engine posts to subscribers.
// It replaces the reference's one-callback-per-event-name style with a
// typed variant delivered over a channel per subscriber; PlayerTimer.OnUpdate
// is the one exception kept as a single callback (see internal/timer).
type Event interface {
	isEvent()
}

// TurnStarted is posted at the beginning of every turn, including the
// first, before either side's move is accepted.
type TurnStarted struct {
	Turn int
}

func (TurnStarted) isEvent() {}

// MoveRecord is one entry of the engine's append-only turn history.
type MoveRecord struct {
	Turn          int
	BlackMove     rules.Move
	WhiteMove     rules.Move
	Collision     bool
	CollisionPos  board.Pos
	CapturedBlack int // White stones removed this turn
	CapturedWhite int // Black stones removed this turn
}

// TurnResolved is posted strictly after both sides' moves are accepted for
// a turn, carrying the resulting board and cumulative capture totals.
type TurnResolved struct {
	Record          MoveRecord
	Board           [][]int
	CapturedByBlack int
	CapturedByWhite int
	Timers          timer.Snapshot
}

func (TurnResolved) isEvent() {}

// TimeUpdate mirrors TimerManager's ~1Hz broadcast.
type TimeUpdate struct {
	Timers timer.Snapshot
}

func (TimeUpdate) isEvent() {}

// EndReason identifies why a game terminated.
type EndReason string

const (
	DoublePass EndReason = "double_pass"
	Resigned   EndReason = "resign"
	TimedOut   EndReason = "timeout"
	Disconnect EndReason = "disconnect"
)

// GameEnded is posted exactly once, strictly after the TurnResolved (if
// any) that ended the game.
type GameEnded struct {
	Reason          EndReason
	Winner          string // "black" | "white" | "tie"
	Scoring         scoring.Result
	Board           [][]int
	MoveHistory     []MoveRecord
	CapturedByBlack int
	CapturedByWhite int
}

func (GameEnded) isEvent() {}
