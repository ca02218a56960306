package broker

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hailam/simulgo/internal/engine"
	"github.com/hailam/simulgo/internal/gamestore"
	"github.com/hailam/simulgo/internal/protocol"
)

type recorder struct {
	mu   sync.Mutex
	msgs []protocol.Message
}

func (r *recorder) add(m protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) waitFor(t *testing.T, typ protocol.Type, timeout time.Duration) protocol.Message {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, m := range r.msgs {
			if m.Type == typ {
				r.mu.Unlock()
				return m
			}
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", typ)
	return protocol.Message{}
}

func newJoinedSession(t *testing.T) (*Session, *LoopbackParticipant, *LoopbackParticipant, *recorder, *recorder) {
	t.Helper()
	s := NewSession(engine.Settings{BoardSize: 9, BaseTimeMs: 60_000}, nil)

	black := NewLoopbackParticipant()
	white := NewLoopbackParticipant()
	blackRec, whiteRec := &recorder{}, &recorder{}
	black.Listen(blackRec.add)
	white.Listen(whiteRec.add)

	if _, err := s.Join(black); err != nil {
		t.Fatalf("black join failed: %v", err)
	}
	if _, err := s.Join(white); err != nil {
		t.Fatalf("white join failed: %v", err)
	}

	t.Cleanup(s.Stop)
	return s, black, white, blackRec, whiteRec
}

func TestJoinAssignsColorsAndStartsGame(t *testing.T) {
	_, _, _, blackRec, whiteRec := newJoinedSession(t)

	blackRec.waitFor(t, protocol.TypeJoined, time.Second)
	whiteRec.waitFor(t, protocol.TypeJoined, time.Second)
	blackRec.waitFor(t, protocol.TypeGameStart, time.Second)
	blackRec.waitFor(t, protocol.TypeTurnStart, time.Second)
}

func TestThirdJoinIsRejected(t *testing.T) {
	s, _, _, _, _ := newJoinedSession(t)
	third := NewLoopbackParticipant()
	if _, err := s.Join(third); err != ErrSessionFull {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
}

func TestSubmitMoveFlowsToTurnResult(t *testing.T) {
	_, black, white, blackRec, whiteRec := newJoinedSession(t)
	blackRec.waitFor(t, protocol.TypeTurnStart, time.Second)

	black.Submit(protocol.NewSubmitPass(0))
	ack := blackRec.waitFor(t, protocol.TypeMoveAck, time.Second)
	if !ack.Waiting {
		t.Fatalf("expected waiting=true after only one side submitted")
	}

	white.Submit(protocol.NewSubmitPass(0))
	whiteRec.waitFor(t, protocol.TypeTurnResult, time.Second)
	blackRec.waitFor(t, protocol.TypeGameEnd, time.Second)
}

func TestInvalidMoveProducesErrorNotTurnResult(t *testing.T) {
	_, black, _, blackRec, _ := newJoinedSession(t)
	blackRec.waitFor(t, protocol.TypeTurnStart, time.Second)

	black.Submit(protocol.NewSubmitPlace(0, -1, -1))
	errMsg := blackRec.waitFor(t, protocol.TypeError, time.Second)
	if errMsg.Error == "" {
		t.Fatalf("expected a non-empty error reason")
	}
}

func TestResignEndsSession(t *testing.T) {
	_, black, _, _, whiteRec := newJoinedSession(t)
	whiteRec.waitFor(t, protocol.TypeTurnStart, time.Second)

	black.Submit(protocol.Message{Type: protocol.TypeResign, TimestampMs: 0})
	end := whiteRec.waitFor(t, protocol.TypeGameEnd, time.Second)
	if end.Reason != protocol.ReasonResign || end.Winner != protocol.WinnerWhite {
		t.Fatalf("expected resign/white, got %+v", end)
	}
}

func TestGameEndArchivesToStore(t *testing.T) {
	store, err := gamestore.Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("gamestore.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s := NewSession(engine.Settings{BoardSize: 9, BaseTimeMs: 60_000}, store)
	black := NewLoopbackParticipant()
	white := NewLoopbackParticipant()
	blackRec, whiteRec := &recorder{}, &recorder{}
	black.Listen(blackRec.add)
	white.Listen(whiteRec.add)
	if _, err := s.Join(black); err != nil {
		t.Fatalf("black join failed: %v", err)
	}
	if _, err := s.Join(white); err != nil {
		t.Fatalf("white join failed: %v", err)
	}
	t.Cleanup(s.Stop)

	blackRec.waitFor(t, protocol.TypeTurnStart, time.Second)
	black.Submit(protocol.NewSubmitPass(0))
	white.Submit(protocol.NewSubmitPass(0))
	whiteRec.waitFor(t, protocol.TypeGameEnd, time.Second)

	deadline := time.Now().Add(time.Second)
	var rec *gamestore.GameRecord
	for time.Now().Before(deadline) {
		rec, err = store.LoadGame(s.id)
		if err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("expected game %s archived to store, got error: %v", s.id, err)
	}
	if rec.Winner != "white" || rec.BoardSize != 9 || rec.MoveCount != 1 {
		t.Fatalf("unexpected archived record: %+v", rec)
	}
}

func TestLoopbackBuffersUntilListenerAttaches(t *testing.T) {
	p := NewLoopbackParticipant()
	p.Deliver(protocol.Message{Type: protocol.TypeChat, ChatMessage: "hello"})

	var got []protocol.Message
	p.Listen(func(m protocol.Message) { got = append(got, m) })

	if len(got) != 1 || got[0].ChatMessage != "hello" {
		t.Fatalf("expected buffered message flushed on Listen, got %+v", got)
	}
}
