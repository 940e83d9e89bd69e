package policy

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/state"
)

// corridorObservation builds a runner view of a 9x3 corridor whose centre
// cell (4,1) is the safe zone and whose columns 2..6 are explored
func corridorObservation(t *testing.T, loc world.Coord, ticksUntilNight int) state.Observation {
	t.Helper()
	explored := world.GridFromRows(
		"##.....##",
		"##.....##",
		"##.....##",
	)
	known := world.GridFromRows(
		"#########",
		"##.....##",
		"#########",
	)
	safe := world.GridFromRows(
		"#########",
		"####.####",
		"#########",
	)
	return state.Observation{
		RunnerID:        0,
		Explored:        explored,
		KnownMaze:       known,
		KnownScent:      world.NewGrid(9, 3),
		SafeZone:        safe,
		Location:        loc,
		TicksUntilNight: ticksUntilNight,
		DayLength:       20,
		CanMove:         true,
	}
}

func TestByName(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, name := range []string{"random", "pure_random", "PathFinding", "path-finding", "leaf_tracker"} {
		if _, err := ByName(name, rng); err != nil {
			t.Errorf("ByName(%q) error = %v", name, err)
		}
	}
	if _, err := ByName("telepath", rng); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("ByName(telepath) error = %v, want ErrUnknownPolicy", err)
	}
	if got := len(Names()); got != 3 {
		t.Errorf("len(Names()) = %d, want 3", got)
	}
}

func TestPureRandom_ValidActions(t *testing.T) {
	p := NewPureRandom(rand.New(rand.NewSource(5)))
	obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, 10)
	obs.Tasks = []world.Coord{{X: 1, Y: 1}, {X: 7, Y: 1}}
	for i := 0; i < 50; i++ {
		act := p.DecideAction(obs)
		if !act.Direction.IsValid() {
			t.Fatalf("direction %v is invalid", act.Direction)
		}
		if len(act.Bids) != 2 {
			t.Fatalf("len(bids) = %d, want 2", len(act.Bids))
		}
	}
}

func TestBids_CloserTasksBidHigher(t *testing.T) {
	obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, 10)
	obs.Tasks = []world.Coord{{X: 1, Y: 1}, {X: 5, Y: 1}}
	bids := Bids(obs)
	if bids[0] != 12-3 || bids[1] != 12-1 {
		t.Errorf("Bids = %v, want [9 11]", bids)
	}
}

func TestPathFinding_HeadsForFrontier(t *testing.T) {
	p := NewPathFinding(rand.New(rand.NewSource(2)))
	act := p.DecideAction(corridorObservation(t, world.Coord{X: 4, Y: 1}, 10))
	if act.Direction != world.Left && act.Direction != world.Right {
		t.Errorf("direction = %v, want Left or Right", act.Direction)
	}
}

func TestPathFinding_StaysWhenRoundTripDoesNotFit(t *testing.T) {
	cases := []struct {
		name  string
		speed int
		ticks int
		want  world.Direction
	}{
		{"fits", 0, 4, world.Left},
		{"too late", 0, 3, world.Stay},
		{"slow runner too late", 1, 7, world.Stay},
		{"slow runner fits", 1, 8, world.Left},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPathFinding(rand.New(rand.NewSource(3)))
			obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, tc.ticks)
			obs.ActionSpeed = tc.speed
			task := world.Coord{X: 0, Y: 1}
			obs.AssignedTask = &task
			if got := p.DecideAction(obs).Direction; got != tc.want {
				t.Errorf("direction = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPathFinding_AssignedTaskBreaksSymmetry(t *testing.T) {
	p := NewPathFinding(rand.New(rand.NewSource(4)))
	obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, 10)
	task := world.Coord{X: 8, Y: 1}
	obs.AssignedTask = &task
	if got := p.DecideAction(obs).Direction; got != world.Right {
		t.Errorf("direction = %v, want Right towards the task", got)
	}
}

func TestPathFinding_RetreatsBeforeNight(t *testing.T) {
	p := NewPathFinding(rand.New(rand.NewSource(6)))
	obs := corridorObservation(t, world.Coord{X: 6, Y: 1}, 2)
	if got := p.DecideAction(obs).Direction; got != world.Left {
		t.Errorf("direction = %v, want Left back to the glade", got)
	}
}

func TestPathFinding_FollowsCachedPlanUntilNewDay(t *testing.T) {
	p := NewPathFinding(rand.New(rand.NewSource(7)))
	obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, 10)
	first := p.DecideAction(obs).Direction
	if first == world.Stay {
		t.Fatal("expected a move")
	}
	if len(p.plan) != 1 {
		t.Fatalf("cached plan length = %d, want 1", len(p.plan))
	}

	obs.Location = obs.Location.Step(first)
	obs.TicksUntilNight--
	if got := p.DecideAction(obs).Direction; got != first {
		t.Errorf("second step = %v, want %v from the cached plan", got, first)
	}

	p.Reset()
	if p.plan != nil || p.planDay != -1 {
		t.Error("Reset did not clear the plan")
	}
}

func TestPathFinding_SleepingRunnerOnlyBids(t *testing.T) {
	p := NewPathFinding(rand.New(rand.NewSource(8)))
	obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, 10)
	obs.CanMove = false
	obs.Tasks = []world.Coord{{X: 7, Y: 1}}
	act := p.DecideAction(obs)
	if act.Direction != world.Stay || len(act.Bids) != 1 {
		t.Errorf("action = %+v, want Stay with one bid", act)
	}
}

func TestExitPosterior_FollowsScent(t *testing.T) {
	all := world.NewGrid(9, 9)
	all.ForEach(func(c world.Coord, _ bool) { all.Set(c, true) })
	scent := world.NewGrid(9, 9)
	for y := 2; y <= 6; y++ {
		scent.Set(world.Coord{X: 0, Y: y}, true)
		scent.Set(world.Coord{X: 1, Y: y}, true)
	}

	belief := ExitPosterior(scent, all, all)
	if len(belief.Cells) != 32 {
		t.Fatalf("candidates = %d, want 32 border cells", len(belief.Cells))
	}
	sum, best := 0.0, 0
	for i, p := range belief.Probs {
		sum += p
		if p > belief.Probs[best] {
			best = i
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v, want 1", sum)
	}
	if belief.Cells[best].X != 0 {
		t.Errorf("most likely exit %v, want one on the left wall", belief.Cells[best])
	}
	left := belief.ExpectedDistance(world.Coord{X: 1, Y: 4})
	right := belief.ExpectedDistance(world.Coord{X: 7, Y: 4})
	if left >= right {
		t.Errorf("expected distance left %v >= right %v", left, right)
	}
}

func TestExitPosterior_SkipsKnownWalls(t *testing.T) {
	known := world.GridFromRows(
		"###",
		"#.#",
		"#..",
	)
	explored := world.GridFromRows(
		"...",
		"...",
		"..#",
	)
	belief := ExitPosterior(world.NewGrid(3, 3), known, explored)
	// Only the open edge cell (1,2) and the unexplored corner (2,2) remain
	if len(belief.Cells) != 2 {
		t.Errorf("candidates = %v, want 2", belief.Cells)
	}
}

func TestLeafTracker_MovesTowardsScent(t *testing.T) {
	p := NewLeafTracker(rand.New(rand.NewSource(9)))
	obs := corridorObservation(t, world.Coord{X: 4, Y: 1}, 10)
	obs.KnownScent = world.GridFromRows(
		"#########",
		"##.######",
		"#########",
	)
	if got := p.DecideAction(obs).Direction; got != world.Left {
		t.Errorf("direction = %v, want Left towards the scent", got)
	}
}
