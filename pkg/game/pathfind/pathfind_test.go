package pathfind

import (
	"errors"
	"math/rand"
	"testing"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/generator"
)

func assertValidPath(t *testing.T, maze *world.Grid, origin world.Coord, p Path, target world.Coord) {
	t.Helper()
	if len(p) == 0 {
		t.Fatalf("empty path to %v", target)
	}
	if p.Target() != target {
		t.Errorf("path ends at %v, want %v", p.Target(), target)
	}
	prev := origin
	for i, c := range p {
		if !maze.Get(c) {
			t.Errorf("step %d %v is a wall", i, c)
		}
		if origin == target {
			break
		}
		if world.Manhattan(prev, c) != 1 {
			t.Errorf("step %d %v is not adjacent to %v", i, c, prev)
		}
		prev = c
	}
}

func TestShortestPaths_CorridorLengths(t *testing.T) {
	maze := world.GridFromRows(
		".....",
		"#.##.",
		"#...#",
	)
	origin := world.Coord{X: 0, Y: 0}
	targets := []world.Coord{{X: 4, Y: 1}, {X: 3, Y: 2}, {X: 0, Y: 0}, {X: 1, Y: 0}}
	paths, err := ShortestPaths(origin, targets, maze)
	if err != nil {
		t.Fatalf("ShortestPaths: %v", err)
	}
	wantLen := []int{5, 5, 1, 1}
	for i, tgt := range targets {
		if len(paths[i]) != wantLen[i] {
			t.Errorf("path to %v has length %d, want %d", tgt, len(paths[i]), wantLen[i])
		}
		assertValidPath(t, maze, origin, paths[i], tgt)
	}
	if paths[2][0] != origin {
		t.Errorf("path to origin = %v, want [%v]", paths[2], origin)
	}
}

func TestShortestPaths_UnreachableTargetTerminates(t *testing.T) {
	maze := world.GridFromRows(
		"..#..",
		"..#..",
	)
	origin := world.Coord{X: 0, Y: 0}
	paths, err := ShortestPaths(origin, []world.Coord{{X: 4, Y: 1}, {X: 1, Y: 1}}, maze)
	if err != nil {
		t.Fatalf("ShortestPaths: %v", err)
	}
	if paths[0] != nil {
		t.Errorf("path to walled-off target = %v, want nil", paths[0])
	}
	if len(paths[1]) != 2 {
		t.Errorf("path to (1,1) = %v, want length 2", paths[1])
	}

	if _, err := ShortestPath(origin, world.Coord{X: 3, Y: 0}, maze); !errors.Is(err, ErrUnreachable) {
		t.Errorf("ShortestPath error = %v, want ErrUnreachable", err)
	}
}

func TestShortestPaths_NotWalkable(t *testing.T) {
	maze := world.GridFromRows(
		".#",
		"..",
	)
	cases := []struct {
		name    string
		origin  world.Coord
		targets []world.Coord
	}{
		{"wall origin", world.Coord{X: 1, Y: 0}, []world.Coord{{X: 0, Y: 0}}},
		{"wall target", world.Coord{X: 0, Y: 0}, []world.Coord{{X: 1, Y: 1}, {X: 1, Y: 0}}},
		{"out of bounds target", world.Coord{X: 0, Y: 0}, []world.Coord{{X: 5, Y: 5}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ShortestPaths(tc.origin, tc.targets, maze); !errors.Is(err, ErrNotWalkable) {
				t.Errorf("error = %v, want ErrNotWalkable", err)
			}
		})
	}
}

func TestShortestPaths_MatchesBreadthFirstDistances(t *testing.T) {
	gen, err := generator.NewBacktracker(8, 3, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	for seed := int64(0); seed < 10; seed++ {
		maze, err := gen.Generate(rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}
		origin := maze.Center()
		want := bfsDistances(maze.Open, origin)

		targets := maze.Open.Coords()
		paths, err := ShortestPaths(origin, targets, maze.Open)
		if err != nil {
			t.Fatal(err)
		}
		for i, tgt := range targets {
			if tgt == origin {
				continue
			}
			if len(paths[i]) != want[tgt] {
				t.Fatalf("seed %d: path to %v has length %d, want %d", seed, tgt, len(paths[i]), want[tgt])
			}
		}

		// Single-target search runs as A* from the start
		exitPath, err := ShortestPath(origin, maze.Exit, maze.Open)
		if err != nil {
			t.Fatal(err)
		}
		if len(exitPath) != want[maze.Exit] {
			t.Errorf("seed %d: A* exit path length %d, want %d", seed, len(exitPath), want[maze.Exit])
		}
		assertValidPath(t, maze.Open, origin, exitPath, maze.Exit)
	}
}

func bfsDistances(open *world.Grid, start world.Coord) map[world.Coord]int {
	dist := map[world.Coord]int{start: 0}
	queue := []world.Coord{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range c.Neighbors() {
			if _, seen := dist[n]; open.Get(n) && !seen {
				dist[n] = dist[c] + 1
				queue = append(queue, n)
			}
		}
	}
	return dist
}

func TestFrontierTiles(t *testing.T) {
	known := world.GridFromRows(
		"####",
		"#..#",
		"#..#",
		"####",
	)
	explored := world.GridFromRows(
		"....",
		"...#",
		"...#",
		"....",
	)
	got := FrontierTiles(known, explored)
	want := []world.Coord{{X: 2, Y: 1}, {X: 2, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("FrontierTiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FrontierTiles[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFrontierTiles_BorderCountsAsUnexplored(t *testing.T) {
	known := world.GridFromRows("..")
	explored := world.GridFromRows("..")
	if got := FrontierTiles(known, explored); len(got) != 2 {
		t.Errorf("FrontierTiles on a fully explored strip = %v, want both cells", got)
	}
}

func TestComputeExplorePaths_SkipsUnreachableFrontier(t *testing.T) {
	known := world.GridFromRows(
		"...#.",
		"...#.",
	)
	explored := world.GridFromRows(
		"...##",
		".....",
	)
	paths, err := ComputeExplorePaths(world.Coord{X: 0, Y: 1}, known, explored)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range paths {
		if p.Target().X > 2 {
			t.Errorf("path to unreachable frontier %v returned", p.Target())
		}
	}
	if len(paths) == 0 {
		t.Error("expected at least one explore path")
	}
}

func TestClipRetreatPath(t *testing.T) {
	safe := world.GridFromRows(
		"#####",
		"##..#",
	)
	path := Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 3, Y: 1}}
	got := ClipRetreatPath(safe, path)
	if len(got) != 4 || got[len(got)-1] != (world.Coord{X: 2, Y: 1}) {
		t.Errorf("ClipRetreatPath = %v, want prefix ending at (2,1)", got)
	}
	outside := Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	if got := ClipRetreatPath(safe, outside); len(got) != 2 {
		t.Errorf("ClipRetreatPath without safe cells = %v, want unchanged", got)
	}
}

func TestNextDirection(t *testing.T) {
	from := world.Coord{X: 2, Y: 2}
	if got := NextDirection(from, world.Coord{X: 2, Y: 1}); got != world.Up {
		t.Errorf("NextDirection up = %v, want Up", got)
	}
	if got := NextDirection(from, world.Coord{X: 4, Y: 2}); got != world.Stay {
		t.Errorf("NextDirection non-adjacent = %v, want Stay", got)
	}
}
