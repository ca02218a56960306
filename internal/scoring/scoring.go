// Package scoring implements Chinese area scoring with a red-neutral flood
// fill: stones plus surrounded territory, komi to White, and a region is
// only assigned to a color if Red is the only other color on its border.
package scoring

import (
	"github.com/hailam/simulgo/internal/board"
)

// Komi is the compensation added to White's raw score.
const Komi = 7.5

// TerritoryCell is the wire encoding for a single cell of the territory map.
type TerritoryCell int

const (
	NeutralCell TerritoryCell = iota
	BlackTerritoryCell
	WhiteTerritoryCell
	RedStoneCell
	BlackStoneCell
	WhiteStoneCell
)

// Winner identifies the scoring winner, or a tie.
type Winner int

const (
	WinnerTie Winner = iota
	WinnerBlack
	WinnerWhite
)

func (w Winner) String() string {
	switch w {
	case WinnerBlack:
		return "black"
	case WinnerWhite:
		return "white"
	default:
		return "tie"
	}
}

// Result is the full scoring output for a terminal board.
type Result struct {
	BlackScore float64 // stones(Black) + territory(Black)
	WhiteScore float64 // stones(White) + territory(White) + Komi

	BlackStones, WhiteStones, RedStones int
	NeutralTerritory                    int

	Territory [][]TerritoryCell // row-major, Territory[y][x]

	Winner Winner
}

// Score computes the final-position area score of b.
func Score(b *board.Board) Result {
	census := b.Census()

	territory := make([][]TerritoryCell, b.Size)
	for y := range territory {
		territory[y] = make([]TerritoryCell, b.Size)
	}

	blackTerritory, whiteTerritory, neutral := floodTerritory(b, territory)

	// Overlay stones onto the territory map.
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			switch b.Get(x, y) {
			case board.Black:
				territory[y][x] = BlackStoneCell
			case board.White:
				territory[y][x] = WhiteStoneCell
			case board.Red:
				territory[y][x] = RedStoneCell
			}
		}
	}

	result := Result{
		BlackStones:      census.Black,
		WhiteStones:      census.White,
		RedStones:        census.Red,
		NeutralTerritory: neutral,
		Territory:        territory,
		BlackScore:       float64(census.Black + blackTerritory),
		WhiteScore:       float64(census.White+whiteTerritory) + Komi,
	}

	switch {
	case result.BlackScore > result.WhiteScore:
		result.Winner = WinnerBlack
	case result.WhiteScore > result.BlackScore:
		result.Winner = WinnerWhite
	default:
		result.Winner = WinnerTie
	}

	return result
}

// floodTerritory flood-fills every empty region, recording ownership into
// territory for cells that are not themselves stones (those get overwritten
// by the caller afterward), and returns (blackTerritory, whiteTerritory,
// neutralTerritory) sizes.
func floodTerritory(b *board.Board, territory [][]TerritoryCell) (blackTerr, whiteTerr, neutral int) {
	visited := make([]bool, b.Size*b.Size)
	idx := func(x, y int) int { return y*b.Size + x }

	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if visited[idx(x, y)] || b.Get(x, y) != board.Empty {
				continue
			}

			region := []board.Pos{{X: x, Y: y}}
			visited[idx(x, y)] = true
			borders := map[board.Stone]struct{}{}

			for i := 0; i < len(region); i++ {
				p := region[i]
				for _, n := range b.Neighbors(p.X, p.Y) {
					s := b.Get(n.X, n.Y)
					if s == board.Empty {
						if !visited[idx(n.X, n.Y)] {
							visited[idx(n.X, n.Y)] = true
							region = append(region, n)
						}
						continue
					}
					borders[s] = struct{}{}
				}
			}

			// Red is removed from the adjacency set before the
			// single-color test: a region bordered by {one color, Red} is
			// that color's territory, not neutral.
			delete(borders, board.Red)

			var cell TerritoryCell
			var owner board.Stone
			switch len(borders) {
			case 0:
				cell = NeutralCell
			case 1:
				for s := range borders {
					owner = s
				}
				switch owner {
				case board.Black:
					cell = BlackTerritoryCell
				case board.White:
					cell = WhiteTerritoryCell
				}
			default:
				cell = NeutralCell
			}

			switch cell {
			case BlackTerritoryCell:
				blackTerr += len(region)
			case WhiteTerritoryCell:
				whiteTerr += len(region)
			default:
				neutral += len(region)
			}

			for _, p := range region {
				territory[p.Y][p.X] = cell
			}
		}
	}

	return blackTerr, whiteTerr, neutral
}
