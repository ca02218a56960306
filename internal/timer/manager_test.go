package timer

import (
	"testing"
	"time"

	"github.com/hailam/simulgo/internal/board"
)

func TestManagerStartTurnSkipsTimedOut(t *testing.T) {
	m := NewManager(0)
	black := m.Timer(board.Black)
	white := m.Timer(board.White)

	clk := &testClock{t: time.Unix(0, 0)}
	black.SetClock(clk.now)

	black.Start()
	clk.advance(time.Duration(PeriodMs)*time.Millisecond*Periods + time.Second)
	black.Tick()
	if !black.State().TimedOut {
		t.Fatalf("expected black timed out")
	}

	m.StartTurn()
	if black.State().Running {
		t.Fatalf("a timed-out player must not be restarted")
	}
	if !white.State().Running {
		t.Fatalf("expected white's timer started")
	}
}

func TestManagerStopPlayer(t *testing.T) {
	m := NewManager(10_000)
	m.StartTurn()
	m.StopPlayer(board.Black)

	if m.Timer(board.Black).State().Running {
		t.Fatalf("expected black stopped")
	}
	if !m.Timer(board.White).State().Running {
		t.Fatalf("expected white still running")
	}
}
