package board

import "testing"

func TestGroupAndLiberties(t *testing.T) {
	b := New(9)
	b.Set(4, 4, Black)
	b.Set(4, 5, Black)
	b.Set(5, 4, White)

	group := b.Group(4, 4)
	if len(group) != 2 {
		t.Fatalf("expected group size 2, got %d", len(group))
	}

	libs := b.Liberties(group)
	// (4,4) has neighbors (3,4),(4,3),(5,4 occupied by White),(4,5 in group)
	// (4,5) has neighbors (3,5),(4,6),(5,5),(4,4 in group)
	// unique empty liberties: (3,4),(4,3),(3,5),(4,6),(5,5) = 5
	if len(libs) != 5 {
		t.Fatalf("expected 5 liberties, got %d: %v", len(libs), libs)
	}
}

func TestDeadGroupsAtariCapture(t *testing.T) {
	b := New(9)
	// Surround white stone at (4,4) on three sides, leaving one liberty at (4,5).
	b.Set(3, 4, Black)
	b.Set(5, 4, Black)
	b.Set(4, 3, Black)
	b.Set(4, 4, White)

	dead := b.DeadGroups(White)
	if len(dead) != 0 {
		t.Fatalf("expected no dead groups (1 liberty remains), got %d", len(dead))
	}

	b.Set(4, 5, Black) // fill the last liberty
	dead = b.DeadGroups(White)
	if len(dead) != 1 || len(dead[0]) != 1 {
		t.Fatalf("expected exactly one dead white group of size 1, got %v", dead)
	}
}

func TestRemoveAndCensus(t *testing.T) {
	b := New(5)
	b.Set(0, 0, Black)
	b.Set(1, 0, White)
	b.Set(2, 0, Red)

	c := b.Census()
	if c.Black != 1 || c.White != 1 || c.Red != 1 || c.Empty != 22 {
		t.Fatalf("unexpected census: %+v", c)
	}

	b.Remove([]Pos{{0, 0}})
	if b.Get(0, 0) != Empty {
		t.Fatalf("expected (0,0) removed")
	}
	if b.Get(2, 0) != Red {
		t.Fatalf("expected untouched Red stone to remain")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(5)
	b.Set(1, 1, Black)
	clone := b.Clone()
	clone.Set(1, 1, White)

	if b.Get(1, 1) != Black {
		t.Fatalf("mutating clone must not affect original")
	}
	if clone.Get(1, 1) != White {
		t.Fatalf("clone mutation did not apply")
	}
}

func TestHashStableAndSensitive(t *testing.T) {
	b1 := New(9)
	b2 := New(9)
	if b1.Hash() != b2.Hash() {
		t.Fatalf("two empty boards of same size must hash equal")
	}
	b2.Set(0, 0, Black)
	if b1.Hash() == b2.Hash() {
		t.Fatalf("differing boards must hash differently")
	}
}

func TestOutOfBoundsReadsAndWrites(t *testing.T) {
	b := New(9)
	if b.Get(-1, 0) != Empty {
		t.Fatalf("out-of-bounds get must return Empty")
	}
	b.Set(100, 100, Black) // must not panic
	if b.InBounds(100, 100) {
		t.Fatalf("100,100 must be out of bounds on a 9x9 board")
	}
}
