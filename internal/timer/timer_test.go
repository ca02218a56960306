package timer

import (
	"testing"
	"time"
)

// testClock is a manually-advanced clock for deterministic timer tests.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }
func (c *testClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestTimer(baseMs int64) (*PlayerTimer, *testClock) {
	clk := &testClock{t: time.Unix(0, 0)}
	pt := New(baseMs)
	pt.SetClock(clk.now)
	return pt, clk
}

func TestBaseCountdownNoTransition(t *testing.T) {
	pt, clk := newTestTimer(10_000)
	pt.Start()
	clk.advance(3 * time.Second)
	pt.Tick()

	s := pt.State()
	if s.InByoYomi {
		t.Fatalf("should still be in base phase")
	}
	if s.BaseRemainingMs != 7_000 {
		t.Fatalf("expected 7000ms remaining, got %d", s.BaseRemainingMs)
	}
}

func TestBaseToByoYomiTransitionWithOverflow(t *testing.T) {
	pt, clk := newTestTimer(100)
	pt.Start()
	clk.advance(300 * time.Millisecond) // 100ms base + 200ms overflow into byo-yomi
	pt.Tick()

	s := pt.State()
	if !s.InByoYomi {
		t.Fatalf("expected transition into byo-yomi")
	}
	if s.BaseRemainingMs != 0 {
		t.Fatalf("expected base exhausted, got %d", s.BaseRemainingMs)
	}
	if s.CurrentPeriodRemainingMs != PeriodMs-200 {
		t.Fatalf("expected period remaining %d, got %d", PeriodMs-200, s.CurrentPeriodRemainingMs)
	}
}

func TestByoYomiReset(t *testing.T) {
	// Scenario S6: baseTime=100ms. Start; wait 200ms (enters byo-yomi);
	// wait 15s; stop (move made). Then start again and wait 25s; stop.
	// Periods remaining still 3; never timed out.
	pt, clk := newTestTimer(100)
	pt.Start()
	clk.advance(200 * time.Millisecond)
	pt.Tick()
	if !pt.State().InByoYomi {
		t.Fatalf("expected byo-yomi entered")
	}

	clk.advance(15 * time.Second)
	pt.Stop()

	s := pt.State()
	if s.PeriodsRemaining != Periods {
		t.Fatalf("expected periods untouched, got %d", s.PeriodsRemaining)
	}
	if s.CurrentPeriodRemainingMs != PeriodMs {
		t.Fatalf("expected period refreshed to %d, got %d", PeriodMs, s.CurrentPeriodRemainingMs)
	}

	pt.Start()
	clk.advance(25 * time.Second)
	pt.Stop()

	s = pt.State()
	if s.PeriodsRemaining != Periods {
		t.Fatalf("expected periods still untouched, got %d", s.PeriodsRemaining)
	}
	if s.TimedOut {
		t.Fatalf("should not have timed out")
	}
}

func TestTimeoutAfterAllPeriodsExhausted(t *testing.T) {
	pt, clk := newTestTimer(0)
	var timedOut bool
	var usedEvents []int
	pt.OnTimedOut = func() { timedOut = true }
	pt.OnByoYomiUsed = func(remaining int) { usedEvents = append(usedEvents, remaining) }

	pt.Start()
	// 0ms base -> immediately in byo-yomi. Consume all 3 periods plus a bit.
	clk.advance(time.Duration(PeriodMs)*time.Millisecond*Periods + time.Second)
	pt.Tick()

	s := pt.State()
	if !s.TimedOut {
		t.Fatalf("expected timed out after exhausting all periods")
	}
	if !timedOut {
		t.Fatalf("expected OnTimedOut callback fired")
	}
	if len(usedEvents) != Periods {
		t.Fatalf("expected %d OnByoYomiUsed events, got %d", Periods, len(usedEvents))
	}
	if s.Running {
		t.Fatalf("timed-out timer must not be running")
	}
}

func TestStopNoOpWhenNotRunning(t *testing.T) {
	pt, _ := newTestTimer(1000)
	pt.Stop() // must not panic or change state
	if pt.State().BaseRemainingMs != 1000 {
		t.Fatalf("expected untouched state")
	}
}

func TestStartNoOpWhenTimedOut(t *testing.T) {
	pt, clk := newTestTimer(0)
	pt.Start()
	clk.advance(time.Duration(PeriodMs)*time.Millisecond*Periods + time.Second)
	pt.Tick()
	if !pt.State().TimedOut {
		t.Fatalf("expected timed out")
	}
	pt.Start() // must stay a no-op
	if pt.State().Running {
		t.Fatalf("a timed-out timer must never resume running")
	}
}
