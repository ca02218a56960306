// Package engine composes board, rules, scoring and timer into the
// server-authoritative turn pipeline: accept private per-color moves, detect
// both-in, resolve via rules, drive timers, and emit ordered events.
package engine

import "github.com/hailam/simulgo/internal/board"

// Mode identifies who is behind each color.
type Mode string

const (
	ModeHumanVsHuman    Mode = "human_vs_human"
	ModeHumanVsAI       Mode = "human_vs_ai"
	ModeHumanVsHumanP2P Mode = "human_vs_human_p2p"
)

// AIDifficulty is consumed only by the external AI move producer; the engine
// never interprets it, it is carried through GAME_START/JOINED for the
// collaborator to read.
type AIDifficulty string

const (
	AIEasy   AIDifficulty = "easy"
	AIMedium AIDifficulty = "medium"
	AIHard   AIDifficulty = "hard"
)

// Settings configures a game at construction time.
type Settings struct {
	Mode         Mode
	BoardSize    int
	BaseTimeMs   int64
	AIDifficulty AIDifficulty
}

// DefaultSettings returns a 19x19 human-vs-human game with a 10 minute base
// time, matching the "typical preset" range in the protocol spec.
func DefaultSettings() Settings {
	return Settings{
		Mode:       ModeHumanVsHuman,
		BoardSize:  board.DefaultSize,
		BaseTimeMs: 10 * 60 * 1000,
	}
}
