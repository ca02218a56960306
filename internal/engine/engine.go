// Package engine implements the server-authoritative turn pipeline: accept
// private per-color moves, detect both-in, delegate to rules for
// resolution, drive timers, and emit ordered events up to GAME_END.
package engine

import (
	"log"
	"sync"

	"github.com/hailam/simulgo/internal/board"
	"github.com/hailam/simulgo/internal/rules"
	"github.com/hailam/simulgo/internal/scoring"
	"github.com/hailam/simulgo/internal/timer"
)

// CaptureCounters are cumulative, monotonically non-decreasing capture
// totals for the whole game.
type CaptureCounters struct {
	ByBlack int // White stones removed by Black over the game
	ByWhite int // Black stones removed by White over the game
}

const eventBuffer = 32

// Engine owns one game end to end: board, timers, history, pending moves,
// and capture counters. Rules and Scoring are stateless operations it calls
// against its board; it exclusively owns everything it mutates.
type Engine struct {
	mu sync.Mutex

	settings Settings
	board    *board.Board
	timers   *timer.Manager

	boardHistory map[uint64]struct{}
	moveHistory  []MoveRecord
	pending      map[board.Stone]*rules.Move
	captures     CaptureCounters

	turnNumber int
	started    bool
	ended      bool

	subMu       sync.Mutex
	subscribers []chan Event
}

// New creates an engine for the given settings. Call StartGame to begin
// play; a freshly constructed Engine accepts no moves.
func New(settings Settings) *Engine {
	return &Engine{settings: settings}
}

// Subscribe registers a new listener and returns its event channel. Events
// are delivered in emission order; a slow subscriber that fills its buffer
// has events dropped for it (logged), it never blocks the engine.
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, eventBuffer)
	e.subMu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.subMu.Unlock()
	return ch
}

func (e *Engine) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subscribers {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				log.Printf("[Engine] dropped event for slow subscriber: %T", ev)
			}
		}
	}
}

// StartGame resets board, history, capture counters, and timers, then
// begins turn 1.
func (e *Engine) StartGame() {
	e.mu.Lock()

	size := e.settings.BoardSize
	if size == 0 {
		size = board.DefaultSize
	}
	e.board = board.New(size)
	e.boardHistory = map[uint64]struct{}{e.board.Hash(): {}}
	e.moveHistory = nil
	e.captures = CaptureCounters{}
	e.turnNumber = 0
	e.started = true
	e.ended = false

	e.timers = timer.NewManager(e.settings.BaseTimeMs)
	e.timers.Timer(board.Black).OnTimedOut = func() { e.onPlayerTimedOut(board.Black) }
	e.timers.Timer(board.White).OnTimedOut = func() { e.onPlayerTimedOut(board.White) }
	e.timers.RunLoops()
	e.timers.StartBroadcast(func(s timer.Snapshot) { e.emit(TimeUpdate{Timers: s}) })

	log.Printf("[Engine] game started: size=%d baseTimeMs=%d mode=%s", size, e.settings.BaseTimeMs, e.settings.Mode)

	events := e.startNextTurnLocked()
	e.mu.Unlock()

	e.emit(events...)
}

// startNextTurnLocked advances to the next turn, auto-passing any timed-out
// player. Caller must hold e.mu. If both slots are immediately filled by
// auto-pass it resolves the turn right away, recursively producing further
// events.
func (e *Engine) startNextTurnLocked() []Event {
	e.turnNumber++
	e.pending = map[board.Stone]*rules.Move{}

	for _, color := range [...]board.Stone{board.Black, board.White} {
		if e.timers.Timer(color).State().TimedOut {
			pass := rules.Passed()
			e.pending[color] = &pass
		}
	}

	events := []Event{TurnStarted{Turn: e.turnNumber}}

	if e.pending[board.Black] != nil && e.pending[board.White] != nil {
		events = append(events, e.resolveTurnLocked()...)
		return events
	}

	e.timers.StartTurn()
	return events
}

// StartNextTurn is the exported entry point for starting a turn outside of
// StartGame's own initial call (kept for callers/tests driving the pipeline
// turn by turn); ordinarily SubmitMove triggers it internally.
func (e *Engine) StartNextTurn() {
	e.mu.Lock()
	events := e.startNextTurnLocked()
	e.mu.Unlock()
	e.emit(events...)
}

// SubmitMove validates and stores one color's move for the current turn. If
// this is the second move in, the turn resolves before SubmitMove returns.
func (e *Engine) SubmitMove(color board.Stone, move rules.Move) SubmitResult {
	e.mu.Lock()

	if !e.started {
		e.mu.Unlock()
		return SubmitResult{Rejection: NotStarted}
	}
	if e.ended {
		e.mu.Unlock()
		return SubmitResult{Rejection: GameOver}
	}
	if e.pending[color] != nil {
		e.mu.Unlock()
		return SubmitResult{Rejection: AlreadySubmitted}
	}
	if e.timers.Timer(color).State().TimedOut {
		e.mu.Unlock()
		return SubmitResult{Rejection: PlayerTimedOut}
	}

	if !move.Pass {
		if v := rules.ValidateMove(e.board, move.X, move.Y, color, e.boardHistory); v != rules.Valid {
			e.mu.Unlock()
			return invalidMoveResult(v)
		}
	}

	e.pending[color] = &move
	e.timers.StopPlayer(color)

	result := SubmitResult{Accepted: true}
	var events []Event
	if e.pending[color.Other()] != nil {
		result.TurnResolved = true
		events = e.resolveTurnLocked()
	}

	e.mu.Unlock()
	e.emit(events...)
	return result
}

// resolveTurnLocked implements spec's _resolveTurn. Caller must hold e.mu
// and have both pending moves filled.
func (e *Engine) resolveTurnLocked() []Event {
	e.timers.StopBroadcast()

	blackMove := *e.pending[board.Black]
	whiteMove := *e.pending[board.White]
	outcome := rules.ResolveTurn(e.board, blackMove, whiteMove)

	capturedBlack := len(outcome.RemovedWhite) // White stones Black captured
	capturedWhite := len(outcome.RemovedBlack) // Black stones White captured
	e.captures.ByBlack += capturedBlack
	e.captures.ByWhite += capturedWhite

	e.boardHistory[e.board.Hash()] = struct{}{}

	record := MoveRecord{
		Turn:          e.turnNumber,
		BlackMove:     blackMove,
		WhiteMove:     whiteMove,
		Collision:     outcome.Collision,
		CollisionPos:  outcome.CollisionPos,
		CapturedBlack: capturedBlack,
		CapturedWhite: capturedWhite,
	}
	e.moveHistory = append(e.moveHistory, record)

	events := []Event{TurnResolved{
		Record:          record,
		Board:           e.board.Grid(),
		CapturedByBlack: e.captures.ByBlack,
		CapturedByWhite: e.captures.ByWhite,
		Timers: timer.Snapshot{
			Black: e.timers.Timer(board.Black).State(),
			White: e.timers.Timer(board.White).State(),
		},
	}}

	log.Printf("[Engine] turn %d resolved: collision=%t capturedBlack=%d capturedWhite=%d", e.turnNumber, outcome.Collision, capturedBlack, capturedWhite)

	switch {
	case outcome.BothPassed:
		events = append(events, e.endGameLocked(DoublePass, nil)...)
	case e.timers.Timer(board.Black).State().TimedOut && e.timers.Timer(board.White).State().TimedOut:
		events = append(events, e.endGameLocked(TimedOut, nil)...)
	default:
		events = append(events, e.startNextTurnLocked()...)
	}

	return events
}

// onPlayerTimedOut is wired as the PlayerTimer.OnTimedOut callback; it fires
// from the timer's own goroutine, never under e.mu.
func (e *Engine) onPlayerTimedOut(color board.Stone) {
	e.mu.Lock()
	if e.ended {
		e.mu.Unlock()
		return
	}
	winner := color.Other()
	log.Printf("[Engine] player %s timed out", color)
	events := e.endGameLocked(TimedOut, &winner)
	e.mu.Unlock()
	e.emit(events...)
}

// Resign ends the game immediately in the opponent's favor.
func (e *Engine) Resign(color board.Stone) {
	e.mu.Lock()
	if !e.started || e.ended {
		e.mu.Unlock()
		return
	}
	winner := color.Other()
	events := e.endGameLocked(Resigned, &winner)
	e.mu.Unlock()
	e.emit(events...)
}

// Disconnect ends the game with the surviving color declared the winner, per
// spec's soft-terminate semantics for a transport-layer drop.
func (e *Engine) Disconnect(survivor board.Stone) {
	e.mu.Lock()
	if !e.started || e.ended {
		e.mu.Unlock()
		return
	}
	events := e.endGameLocked(Disconnect, &survivor)
	e.mu.Unlock()
	e.emit(events...)
}

// endGameLocked finalizes the game. Caller must hold e.mu.
func (e *Engine) endGameLocked(reason EndReason, forcedWinner *board.Stone) []Event {
	e.ended = true
	e.timers.StopLoops()
	e.timers.StopBroadcast()

	result := scoring.Score(e.board)
	winner := result.Winner.String()
	if forcedWinner != nil {
		winner = colorWire(*forcedWinner)
	}

	log.Printf("[Engine] game ended: reason=%s winner=%s blackScore=%.1f whiteScore=%.1f", reason, winner, result.BlackScore, result.WhiteScore)

	history := make([]MoveRecord, len(e.moveHistory))
	copy(history, e.moveHistory)

	return []Event{GameEnded{
		Reason:          reason,
		Winner:          winner,
		Scoring:         result,
		Board:           e.board.Grid(),
		MoveHistory:     history,
		CapturedByBlack: e.captures.ByBlack,
		CapturedByWhite: e.captures.ByWhite,
	}}
}

func colorWire(s board.Stone) string {
	switch s {
	case board.Black:
		return "black"
	case board.White:
		return "white"
	default:
		return "tie"
	}
}
