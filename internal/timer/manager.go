package timer

import (
	"time"

	"github.com/hailam/simulgo/internal/board"
)

// Snapshot pairs both players' clock states for a broadcast.
type Snapshot struct {
	Black State
	White State
}

// Manager owns one PlayerTimer per color and a broadcast scheduler.
type Manager struct {
	timers map[board.Stone]*PlayerTimer

	stopLoops     chan struct{}
	broadcastStop chan struct{}
}

// NewManager creates a manager with fresh timers for both colors.
func NewManager(baseMs int64) *Manager {
	m := &Manager{
		timers: map[board.Stone]*PlayerTimer{
			board.Black: New(baseMs),
			board.White: New(baseMs),
		},
	}
	return m
}

// Timer returns the PlayerTimer for a color.
func (m *Manager) Timer(color board.Stone) *PlayerTimer {
	return m.timers[color]
}

// StartTurn starts both timers, skipping any side that is already timed out.
func (m *Manager) StartTurn() {
	for _, t := range m.timers {
		if !t.State().TimedOut {
			t.Start()
		}
	}
}

// StopPlayer stops one color's timer (their move was accepted).
func (m *Manager) StopPlayer(color board.Stone) {
	if t, ok := m.timers[color]; ok {
		t.Stop()
	}
}

// RunLoops starts the background tick goroutines for both timers. Call
// StopLoops to release them at game end.
func (m *Manager) RunLoops() {
	m.stopLoops = make(chan struct{})
	for _, t := range m.timers {
		go t.RunLoop(m.stopLoops)
	}
}

// StopLoops terminates the background tick goroutines.
func (m *Manager) StopLoops() {
	if m.stopLoops != nil {
		close(m.stopLoops)
		m.stopLoops = nil
	}
}

// StartBroadcast invokes cb with a combined snapshot at ~1 Hz until
// StopBroadcast is called.
func (m *Manager) StartBroadcast(cb func(Snapshot)) {
	m.broadcastStop = make(chan struct{})
	stop := m.broadcastStop
	go func() {
		ticker := time.NewTicker(BroadcastHz)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				cb(Snapshot{
					Black: m.timers[board.Black].State(),
					White: m.timers[board.White].State(),
				})
			}
		}
	}()
}

// StopBroadcast halts the broadcast goroutine started by StartBroadcast.
func (m *Manager) StopBroadcast() {
	if m.broadcastStop != nil {
		close(m.broadcastStop)
		m.broadcastStop = nil
	}
}
