package world

import (
	"errors"
	"testing"
)

func TestGrid_GetOutOfBoundsIsFalse(t *testing.T) {
	g := GridFromRows(
		"...",
		"...",
	)
	for _, c := range []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		if g.Get(c) {
			t.Errorf("Get(%v) = true, want false (out of bounds)", c)
		}
	}
	if g.Set(Coord{X: 5, Y: 5}, true) {
		t.Error("Set out of bounds = true, want false")
	}
}

func TestGrid_OrAndReturnFreshGrids(t *testing.T) {
	a := GridFromRows("..##")
	b := GridFromRows(".#.#")

	or := a.Or(b)
	and := a.And(b)
	if got := or.String(); got != "...#\n" {
		t.Errorf("Or = %q, want %q", got, "...#\n")
	}
	if got := and.String(); got != ".###\n" {
		t.Errorf("And = %q, want %q", got, ".###\n")
	}

	or.Set(Coord{X: 3, Y: 0}, true)
	if a.Get(Coord{X: 3, Y: 0}) || b.Get(Coord{X: 3, Y: 0}) {
		t.Error("mutating Or result changed an operand")
	}
}

func TestGrid_Perimeter(t *testing.T) {
	g := NewGrid(5, 4)
	cases := []struct {
		c    Coord
		want bool
	}{
		{Coord{0, 0}, true},
		{Coord{4, 2}, true},
		{Coord{2, 3}, true},
		{Coord{2, 2}, false},
		{Coord{1, 1}, false},
		{Coord{5, 1}, false},
	}
	for _, tc := range cases {
		if got := g.IsOnPerimeter(tc.c); got != tc.want {
			t.Errorf("IsOnPerimeter(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestGrid_ContainsAndCount(t *testing.T) {
	big := GridFromRows(
		"...",
		".#.",
	)
	small := GridFromRows(
		"#.#",
		"###",
	)
	if !big.Contains(small) {
		t.Error("big.Contains(small) = false, want true")
	}
	if small.Contains(big) {
		t.Error("small.Contains(big) = true, want false")
	}
	if got := big.Count(); got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
}

func TestWindowAt_ClipsToBounds(t *testing.T) {
	g := GridFromRows(
		"..",
		".#",
	)
	w := g.WindowAt(Coord{X: 0, Y: 0})
	if w.Get(-1, -1) || w.Get(0, -1) || w.Get(-1, 0) {
		t.Error("window outside grid should read false")
	}
	if !w.Get(0, 0) || !w.Get(1, 0) || !w.Get(0, 1) {
		t.Error("window inside grid should mirror grid values")
	}
	if w.Get(1, 1) {
		t.Error("window (1,1) = true, want false (wall)")
	}
}

func TestDirection_DeltaAndBetween(t *testing.T) {
	origin := Coord{X: 3, Y: 3}
	for _, d := range AllDirections() {
		next := origin.Step(d)
		got, ok := DirectionBetween(origin, next)
		if !ok || got != d {
			t.Errorf("DirectionBetween(%v, %v) = %v,%v, want %v,true", origin, next, got, ok, d)
		}
		if back := next.Step(d.Opposite()); back != origin {
			t.Errorf("%v then %v = %v, want %v", d, d.Opposite(), back, origin)
		}
	}
	if d, ok := DirectionBetween(origin, origin); !ok || d != Stay {
		t.Errorf("DirectionBetween(same) = %v,%v, want Stay,true", d, ok)
	}
	if _, ok := DirectionBetween(origin, Coord{X: 5, Y: 3}); ok {
		t.Error("DirectionBetween(non-adjacent) ok = true, want false")
	}
	if Direction(9).IsValid() {
		t.Error("Direction(9).IsValid() = true, want false")
	}
}

func TestManhattan(t *testing.T) {
	if got := Manhattan(Coord{1, 2}, Coord{4, -2}); got != 7 {
		t.Errorf("Manhattan = %d, want 7", got)
	}
}

func TestGrid_BinaryRoundTrip(t *testing.T) {
	g := GridFromRows(
		"#..#.",
		".####",
		"..#..",
	)
	data, err := g.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 8+2 {
		t.Errorf("encoded length = %d, want 10", len(data))
	}
	back, err := DecodeGrid(data)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(g) {
		t.Errorf("decoded grid:\n%s\nwant:\n%s", back, g)
	}
}

func TestGrid_DecodeRejectsMalformed(t *testing.T) {
	good, _ := GridFromRows("...", "...").MarshalBinary()
	for name, data := range map[string][]byte{
		"short header":  good[:5],
		"short payload": good[:8],
		"long payload":  append(append([]byte(nil), good...), 0),
		"zero width":    {0, 0, 0, 0, 0, 0, 0, 1},
	} {
		if _, err := DecodeGrid(data); !errors.Is(err, ErrGridEncoding) {
			t.Errorf("%s: err = %v, want ErrGridEncoding", name, err)
		}
	}
}
