package broker

import (
	"github.com/hailam/simulgo/internal/engine"
	"github.com/hailam/simulgo/internal/protocol"
	"github.com/hailam/simulgo/internal/rules"
	"github.com/hailam/simulgo/internal/scoring"
	"github.com/hailam/simulgo/internal/timer"
)

func moveFromMessage(m protocol.Message) rules.Move {
	if m.Pass || m.X == nil || m.Y == nil {
		return rules.Passed()
	}
	return rules.Place(*m.X, *m.Y)
}

func posFromMove(m rules.Move) *protocol.Pos {
	if m.Pass {
		return nil
	}
	return &protocol.Pos{X: m.X, Y: m.Y}
}

func timerState(s timer.State) protocol.TimerState {
	return protocol.TimerState{
		RemainingBase:           s.BaseRemainingMs,
		InByoYomi:               s.InByoYomi,
		ByoYomiPeriods:          s.PeriodsRemaining,
		CurrentByoYomiRemaining: s.CurrentPeriodRemainingMs,
		TimedOut:                s.TimedOut,
		Running:                 s.Running,
	}
}

func timerPair(s timer.Snapshot) *protocol.TimerPair {
	return &protocol.TimerPair{
		BlackTimer: timerState(s.Black),
		WhiteTimer: timerState(s.White),
	}
}

func territoryGrid(t [][]scoring.TerritoryCell) [][]int {
	out := make([][]int, len(t))
	for y, row := range t {
		r := make([]int, len(row))
		for x, cell := range row {
			r[x] = int(cell)
		}
		out[y] = r
	}
	return out
}

func scoringMessage(r scoring.Result) *protocol.Scoring {
	return &protocol.Scoring{
		BlackScore:       r.BlackScore,
		WhiteScore:       r.WhiteScore,
		BlackStones:      r.BlackStones,
		WhiteStones:      r.WhiteStones,
		RedStones:        r.RedStones,
		NeutralTerritory: r.NeutralTerritory,
		Territory:        territoryGrid(r.Territory),
	}
}

func moveHistoryMessage(h []engine.MoveRecord) []protocol.MoveRecord {
	out := make([]protocol.MoveRecord, len(h))
	for i, rec := range h {
		out[i] = protocol.MoveRecord{
			Turn:          rec.Turn,
			BlackPass:     rec.BlackMove.Pass,
			BlackMove:     posFromMove(rec.BlackMove),
			WhitePass:     rec.WhiteMove.Pass,
			WhiteMove:     posFromMove(rec.WhiteMove),
			Collision:     rec.Collision,
			CapturedBlack: rec.CapturedBlack,
			CapturedWhite: rec.CapturedWhite,
		}
		if rec.Collision {
			out[i].CollisionPos = &protocol.Pos{X: rec.CollisionPos.X, Y: rec.CollisionPos.Y}
		}
	}
	return out
}

func endReasonWire(r engine.EndReason) protocol.EndReason {
	switch r {
	case engine.DoublePass:
		return protocol.ReasonDoublePass
	case engine.Resigned:
		return protocol.ReasonResign
	case engine.TimedOut:
		return protocol.ReasonTimeout
	default:
		return protocol.ReasonDisconnect
	}
}

func winnerWire(w string) protocol.Winner {
	switch w {
	case "black":
		return protocol.WinnerBlack
	case "white":
		return protocol.WinnerWhite
	default:
		return protocol.WinnerTie
	}
}

// eventToMessage translates one engine.Event into the protocol.Message the
// broker broadcasts for it.
func eventToMessage(ev engine.Event) protocol.Message {
	ts := nowMs()
	switch e := ev.(type) {
	case engine.TurnStarted:
		return protocol.Message{Type: protocol.TypeTurnStart, TimestampMs: ts, TurnNumber: e.Turn}

	case engine.TurnResolved:
		msg := protocol.Message{
			Type:            protocol.TypeTurnResult,
			TimestampMs:     ts,
			Turn:            e.Record.Turn,
			BlackPass:       e.Record.BlackMove.Pass,
			BlackMove:       posFromMove(e.Record.BlackMove),
			WhitePass:       e.Record.WhiteMove.Pass,
			WhiteMove:       posFromMove(e.Record.WhiteMove),
			Collision:       e.Record.Collision,
			CapturedBlack:   e.Record.CapturedBlack,
			CapturedWhite:   e.Record.CapturedWhite,
			CapturedByBlack: e.CapturedByBlack,
			CapturedByWhite: e.CapturedByWhite,
			Board:           e.Board,
			Timers:          timerPair(e.Timers),
		}
		if e.Record.Collision {
			msg.CollisionPos = &protocol.Pos{X: e.Record.CollisionPos.X, Y: e.Record.CollisionPos.Y}
		}
		return msg

	case engine.TimeUpdate:
		return protocol.Message{Type: protocol.TypeTimeUpdate, TimestampMs: ts, Timers: timerPair(e.Timers)}

	case engine.GameEnded:
		return protocol.Message{
			Type:            protocol.TypeGameEnd,
			TimestampMs:     ts,
			Reason:          endReasonWire(e.Reason),
			Winner:          winnerWire(e.Winner),
			ScoringInfo:     scoringMessage(e.Scoring),
			Board:           e.Board,
			MoveHistory:     moveHistoryMessage(e.MoveHistory),
			CapturedByBlack: e.CapturedByBlack,
			CapturedByWhite: e.CapturedByWhite,
		}

	default:
		return protocol.Message{Type: protocol.TypeError, TimestampMs: ts, Error: "internal: unrecognized engine event"}
	}
}
