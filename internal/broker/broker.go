// Package broker implements the session broker: it accepts up to two
// participants, assigns them colors, starts one GameEngine, relays engine
// events to both peers as protocol messages, routes each peer's
// SUBMIT_MOVE/RESIGN frames to the engine, and relays CHAT frames to the
// other peer. The broker owns the
// engine exclusively; nothing else is allowed to mutate it.
package broker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/simulgo/internal/board"
	"github.com/hailam/simulgo/internal/engine"
	"github.com/hailam/simulgo/internal/gamestore"
	"github.com/hailam/simulgo/internal/protocol"
)

// AIDifficultySettings mirrors the teacher's engine.DifficultySettings map
// (difficulty enum -> search knob), but the knob here is a per-move think-time
// budget in milliseconds rather than a ply depth, since this module has no
// search to bound. It is carried through JOINED/GAME_START as
// GameSettings.AIThinkTimeMs for an external AI collaborator to read; the
// broker never interprets it itself.
var AIDifficultySettings = map[engine.AIDifficulty]int64{
	engine.AIEasy:   500,
	engine.AIMedium: 2_000,
	engine.AIHard:   10_000,
}

func gameSettingsMessage(s engine.Settings) *protocol.GameSettings {
	return &protocol.GameSettings{
		BaseTimeMs:    s.BaseTimeMs,
		Mode:          string(s.Mode),
		AIDifficulty:  string(s.AIDifficulty),
		AIThinkTimeMs: AIDifficultySettings[s.AIDifficulty],
	}
}

// ErrSessionFull is returned by Join once both seats are taken.
var ErrSessionFull = fmt.Errorf("broker: session is full")

// Session pairs one GameEngine with up to two joined peers.
type Session struct {
	settings engine.Settings
	eng      *engine.Engine
	store    *gamestore.Store

	mu    sync.Mutex
	peers map[board.Stone]Peer

	group     *errgroup.Group
	cancel    context.CancelFunc
	id        string
	startedAt time.Time
}

// NewSession creates a session around a fresh, not-yet-started engine. store
// is optional: a nil store disables game-archival entirely, which is how
// broker_test.go exercises the session without standing up a database.
func NewSession(settings engine.Settings, store *gamestore.Store) *Session {
	return &Session{
		settings: settings,
		eng:      engine.New(settings),
		store:    store,
		peers:    make(map[board.Stone]Peer),
		id:       fmt.Sprintf("game-%d", time.Now().UnixNano()),
	}
}

// Join assigns the first JOIN to Black, the second to White, and starts the
// game once both seats are filled. A third Join returns ErrSessionFull.
func (s *Session) Join(peer Peer) (board.Stone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var color board.Stone
	switch len(s.peers) {
	case 0:
		color = board.Black
	case 1:
		color = board.White
	default:
		return 0, ErrSessionFull
	}
	s.peers[color] = peer

	peer.Deliver(protocol.Message{
		Type:         protocol.TypeJoined,
		TimestampMs:  nowMs(),
		Color:        wireColor(color),
		GameSettings: gameSettingsMessage(s.settings),
	})

	log.Printf("[Broker] peer joined as %s (%d/2)", color, len(s.peers))

	if len(s.peers) == 2 {
		s.start()
	}
	return color, nil
}

// start wires the engine's event stream to both peers and begins play.
// Caller must hold s.mu.
func (s *Session) start() {
	s.startedAt = time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	group, ctx := errgroup.WithContext(ctx)
	s.group = group

	for _, color := range [...]board.Stone{board.Black, board.White} {
		peer := s.peers[color]
		group.Go(func() error { return s.pumpInbound(ctx, color, peer) })
	}

	events := s.eng.Subscribe()
	group.Go(func() error { return s.pumpEvents(ctx, events) })

	s.eng.StartGame()

	boardSize := s.boardSize()
	empty := board.New(boardSize).Grid()
	for _, peer := range s.peers {
		peer.Deliver(protocol.Message{
			Type:         protocol.TypeGameStart,
			TimestampMs:  nowMs(),
			BoardSize:    boardSize,
			Board:        empty,
			GameSettings: gameSettingsMessage(s.settings),
			TimeSettings: &protocol.TimeSettings{
				BaseTimeMs:     s.settings.BaseTimeMs,
				ByoYomiPeriods: 3,
				ByoYomiTimeMs:  30_000,
			},
		})
	}
}

// pumpInbound relays one peer's frames to the engine until the peer's
// channel closes or ctx is cancelled.
func (s *Session) pumpInbound(ctx context.Context, color board.Stone, peer Peer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-peer.Inbound():
			if !ok {
				s.eng.Disconnect(color.Other())
				return nil
			}
			s.handleInbound(color, peer, msg)
		}
	}
}

func (s *Session) handleInbound(color board.Stone, peer Peer, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeSubmitMove:
		move := moveFromMessage(msg)
		result := s.eng.SubmitMove(color, move)
		if !result.Accepted {
			reason := result.Rejection.String()
			if result.Reason != "" {
				reason = result.Reason
			}
			peer.Deliver(protocol.ErrorMessage(nowMs(), reason))
			return
		}
		peer.Deliver(protocol.Message{
			Type:        protocol.TypeMoveAck,
			TimestampMs: nowMs(),
			Waiting:     !result.TurnResolved,
		})
	case protocol.TypeResign:
		s.eng.Resign(color)
	case protocol.TypeChat:
		for c, p := range s.peers {
			if c == color {
				continue
			}
			p.Deliver(protocol.Message{
				Type:        protocol.TypeChat,
				TimestampMs: nowMs(),
				ChatMessage: msg.ChatMessage,
				Sender:      msg.PlayerName,
				Color:       wireColor(color),
			})
		}
	default:
		peer.Deliver(protocol.ErrorMessage(nowMs(), "unknown or unsupported message type: "+string(msg.Type)))
	}
}

// pumpEvents translates engine events into protocol messages and
// broadcasts them to both peers in emission order.
func (s *Session) pumpEvents(ctx context.Context, events <-chan engine.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.broadcast(eventToMessage(ev))
			if ge, done := ev.(engine.GameEnded); done {
				s.recordGame(ge)
				s.Stop()
				return nil
			}
		}
	}
}

func (s *Session) broadcast(m protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, peer := range s.peers {
		peer.Deliver(m)
	}
}

// Stop tears down the session's relay goroutines. Safe to call more than
// once.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until every relay goroutine has returned.
func (s *Session) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

func (s *Session) boardSize() int {
	if s.settings.BoardSize == 0 {
		return board.DefaultSize
	}
	return s.settings.BoardSize
}

// recordGame archives a finished game's result. A nil store (the default in
// tests) makes this a no-op; player identity is left blank since the broker
// has no participant-naming handshake, which gamestore tolerates (it simply
// skips stats bookkeeping for an anonymous player while still archiving the
// game record itself).
func (s *Session) recordGame(ge engine.GameEnded) {
	if s.store == nil {
		return
	}
	rec := gamestore.GameRecord{
		ID:          s.id,
		BoardSize:   s.boardSize(),
		Winner:      ge.Winner,
		BlackScore:  ge.Scoring.BlackScore,
		WhiteScore:  ge.Scoring.WhiteScore,
		BlackStones: ge.Scoring.BlackStones,
		WhiteStones: ge.Scoring.WhiteStones,
		RedStones:   ge.Scoring.RedStones,
		MoveCount:   len(ge.MoveHistory),
		StartedAt:   s.startedAt,
		EndedAt:     time.Now(),
	}
	switch ge.Reason {
	case engine.TimedOut:
		rec.TimedOut = loserColor(ge.Winner)
	case engine.Resigned:
		rec.Resigned = loserColor(ge.Winner)
	}
	if err := s.store.RecordGame(rec); err != nil {
		log.Printf("[Broker] failed to archive game %s: %v", s.id, err)
	}
}

func loserColor(winner string) string {
	switch winner {
	case "black":
		return "white"
	case "white":
		return "black"
	default:
		return ""
	}
}

func nowMs() int64 { return time.Now().UnixMilli() }

func wireColor(c board.Stone) protocol.Color {
	if c == board.White {
		return protocol.ColorWhite
	}
	return protocol.ColorBlack
}
