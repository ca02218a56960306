package board

import (
	"github.com/cespare/xxhash/v2"
)

// DefaultSize is the standard board side length.
const DefaultSize = 19

// Board is a square grid of intersections plus derived group/liberty queries.
//
// Cells are stored flat, row-major, indexed by y*Size+x. BFS visited sets use
// packed int keys (y*Size+x) rather than "x,y" strings, reused across calls
// via a scratch buffer to avoid per-call allocation on the hot capture path.
type Board struct {
	Size  int
	cells []Stone

	scratchVisited []bool // reused scratch buffer, sized Size*Size
}

// New creates an empty board of the given side length.
func New(size int) *Board {
	return &Board{
		Size:           size,
		cells:          make([]Stone, size*size),
		scratchVisited: make([]bool, size*size),
	}
}

func (b *Board) idx(x, y int) int { return y*b.Size + x }

// InBounds reports whether (x,y) is a valid intersection.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Size && y >= 0 && y < b.Size
}

// Get returns the stone at (x,y). Out-of-bounds reads return Empty; callers
// that must distinguish out-of-bounds from Empty should call InBounds first.
func (b *Board) Get(x, y int) Stone {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.cells[b.idx(x, y)]
}

// Set writes a stone to (x,y). Out-of-bounds writes are silently ignored.
func (b *Board) Set(x, y int, s Stone) {
	if !b.InBounds(x, y) {
		return
	}
	b.cells[b.idx(x, y)] = s
}

// IsEmpty reports whether (x,y) holds no stone.
func (b *Board) IsEmpty(x, y int) bool {
	return b.Get(x, y) == Empty
}

// Neighbors returns the 2-4 in-bounds orthogonal neighbors of (x,y).
func (b *Board) Neighbors(x, y int) []Pos {
	candidates := [4]Pos{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}}
	out := make([]Pos, 0, 4)
	for _, p := range candidates {
		if b.InBounds(p.X, p.Y) {
			out = append(out, p)
		}
	}
	return out
}

// Group returns the maximal 4-connected same-color region containing (x,y).
// Empty or out-of-bounds cells have no group and return nil.
func (b *Board) Group(x, y int) []Pos {
	if !b.InBounds(x, y) {
		return nil
	}
	color := b.Get(x, y)
	if color == Empty {
		return nil
	}

	visited := b.scratchVisited
	for i := range visited {
		visited[i] = false
	}

	stack := []Pos{{x, y}}
	visited[b.idx(x, y)] = true
	group := make([]Pos, 0, 8)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, p)

		for _, n := range b.Neighbors(p.X, p.Y) {
			ni := b.idx(n.X, n.Y)
			if visited[ni] {
				continue
			}
			if b.Get(n.X, n.Y) == color {
				visited[ni] = true
				stack = append(stack, n)
			}
		}
	}
	return group
}

// Liberties returns the empty neighbor positions of any cell in the group,
// deduplicated. Red is never a liberty, matching spec: only Empty counts.
func (b *Board) Liberties(group []Pos) []Pos {
	seen := make(map[int]struct{})
	libs := make([]Pos, 0, len(group)*2)
	for _, p := range group {
		for _, n := range b.Neighbors(p.X, p.Y) {
			if b.Get(n.X, n.Y) != Empty {
				continue
			}
			ni := b.idx(n.X, n.Y)
			if _, ok := seen[ni]; ok {
				continue
			}
			seen[ni] = struct{}{}
			libs = append(libs, n)
		}
	}
	return libs
}

// LibertyCount returns the number of distinct liberties of the group, as the
// length of the list Liberties builds.
func (b *Board) LibertyCount(group []Pos) int {
	return len(b.Liberties(group))
}

// DeadGroups returns every maximal same-color group of the given color with
// zero liberties, as a sweep over the board with a shared visited set so each
// group is returned at most once.
func (b *Board) DeadGroups(color Stone) [][]Pos {
	visited := make([]bool, b.Size*b.Size)
	var dead [][]Pos

	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			i := b.idx(x, y)
			if visited[i] || b.Get(x, y) != color {
				continue
			}
			group := b.Group(x, y)
			for _, p := range group {
				visited[b.idx(p.X, p.Y)] = true
			}
			if b.LibertyCount(group) == 0 {
				dead = append(dead, group)
			}
		}
	}
	return dead
}

// Remove sets every listed position to Empty.
func (b *Board) Remove(positions []Pos) {
	for _, p := range positions {
		b.Set(p.X, p.Y, Empty)
	}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	clone := New(b.Size)
	copy(clone.cells, b.cells)
	return clone
}

// Census counts intersections by stone value.
func (b *Board) Census() Census {
	var c Census
	for _, s := range b.cells {
		switch s {
		case Black:
			c.Black++
		case White:
			c.White++
		case Red:
			c.Red++
		default:
			c.Empty++
		}
	}
	return c
}

// Hash returns a canonical fingerprint of the grid, used as the superko
// history key. A fresh xxhash over the flat stone array is used instead of
// incremental Zobrist: simultaneous per-turn batch removal of stones from
// both colors at once makes incrementally maintaining a Zobrist accumulator
// error-prone (every removed/placed/collided stone needs an XOR, in an order
// that must not matter), while a 19x19 grid is cheap enough to hash whole
// each turn.
func (b *Board) Hash() uint64 {
	raw := make([]byte, len(b.cells))
	for i, s := range b.cells {
		raw[i] = byte(s)
	}
	return xxhash.Sum64(raw)
}

// Grid returns the board as a row-major [][]int using the wire stone
// encoding (Empty=0, Black=1, White=2, Red=3).
func (b *Board) Grid() [][]int {
	out := make([][]int, b.Size)
	for y := 0; y < b.Size; y++ {
		row := make([]int, b.Size)
		for x := 0; x < b.Size; x++ {
			row[x] = int(b.Get(x, y))
		}
		out[y] = row
	}
	return out
}
