package gamestore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/simulgo/internal/scoring"
)

const (
	gameKeyPrefix  = "game:"
	statsKeyPrefix = "stats:"
)

// GameRecord is the archival record of one finished game, written once the
// engine emits its terminal GameEnded event. The engine itself never
// produces or consumes this type; a caller outside the turn pipeline
// translates GameEnded into a GameRecord.
type GameRecord struct {
	ID          string    `json:"id"`
	BoardSize   int       `json:"board_size"`
	BlackID     string    `json:"black_id"`
	WhiteID     string    `json:"white_id"`
	Winner      string    `json:"winner"`
	BlackScore  float64   `json:"black_score"`
	WhiteScore  float64   `json:"white_score"`
	BlackStones int       `json:"black_stones"`
	WhiteStones int       `json:"white_stones"`
	RedStones   int       `json:"red_stones"`
	MoveCount   int       `json:"move_count"`
	TimedOut    string    `json:"timed_out,omitempty"`
	Resigned    string    `json:"resigned,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

// Duration returns the wall-clock span of the recorded game.
func (g GameRecord) Duration() time.Duration {
	return g.EndedAt.Sub(g.StartedAt)
}

// PlayerStats accumulates lifetime results for one player identity across
// every game gamestore has recorded for them.
type PlayerStats struct {
	PlayerID         string         `json:"player_id"`
	GamesPlayed      int            `json:"games_played"`
	Wins             int            `json:"wins"`
	Losses           int            `json:"losses"`
	Draws            int            `json:"draws"`
	WinsByColor      map[string]int `json:"wins_by_color"`
	TotalPlayTime    time.Duration  `json:"total_play_time"`
	LongestWinStreak int            `json:"longest_win_streak"`
	CurrentStreak    int            `json:"current_streak"`
}

func newPlayerStats(id string) *PlayerStats {
	return &PlayerStats{
		PlayerID:    id,
		WinsByColor: make(map[string]int),
	}
}

// WinRate returns the lifetime win percentage, 0 for a player with no games.
func (s *PlayerStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// Store wraps BadgerDB as the archival backend for finished games and
// lifetime stats. It is constructed once per server process and closed at
// shutdown; the engine never holds a reference to it.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the BadgerDB database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordGame persists the game record and folds its result into both
// players' lifetime stats, all inside a single Badger transaction. A player
// with a blank ID gets no stats update; the game record is still written.
func (s *Store) RecordGame(rec GameRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(gameKeyPrefix+rec.ID), data); err != nil {
			return err
		}

		if err := applyResult(txn, rec.BlackID, rec, "black"); err != nil {
			return err
		}
		return applyResult(txn, rec.WhiteID, rec, "white")
	})
}

func applyResult(txn *badger.Txn, playerID string, rec GameRecord, color string) error {
	if playerID == "" {
		return nil
	}
	stats, err := loadStatsTxn(txn, playerID)
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += rec.Duration()

	switch {
	case rec.Winner == scoring.WinnerTie.String():
		stats.Draws++
		stats.CurrentStreak = 0
	case rec.Winner == color:
		stats.Wins++
		stats.WinsByColor[color]++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStreak {
			stats.LongestWinStreak = stats.CurrentStreak
		}
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return txn.Set([]byte(statsKeyPrefix+playerID), data)
}

func loadStatsTxn(txn *badger.Txn, playerID string) (*PlayerStats, error) {
	stats := newPlayerStats(playerID)
	item, err := txn.Get([]byte(statsKeyPrefix + playerID))
	if err == badger.ErrKeyNotFound {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}

// LoadStats returns a player's lifetime stats, or empty stats if they have
// no recorded games.
func (s *Store) LoadStats(playerID string) (*PlayerStats, error) {
	var stats *PlayerStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStatsTxn(txn, playerID)
		return err
	})
	return stats, err
}

// LoadGame returns a previously recorded game by ID.
func (s *Store) LoadGame(id string) (*GameRecord, error) {
	var rec GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gameKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("gamestore: no game recorded with id %q", id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentGames returns up to limit games, most recently started first. It
// scans the full game-key range, which is fine at the archival scale this
// store targets; a production deployment outgrowing it would add a
// secondary time-ordered index instead of changing this signature.
func (s *Store) RecentGames(limit int) ([]GameRecord, error) {
	var out []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(gameKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByStartedDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByStartedDesc(recs []GameRecord) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].StartedAt.After(recs[j-1].StartedAt); j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}
