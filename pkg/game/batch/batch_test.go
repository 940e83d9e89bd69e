package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/gameplay"
	"mazerunner/pkg/game/simulator"
	"mazerunner/pkg/game/state"
)

func smallScenario() simulator.Scenario {
	return simulator.Scenario{
		MazeSize:     5,
		CenterSize:   2,
		ShortcutRate: 0.05,
		Params:       gameplay.DefaultParams(20),
		Runners: []simulator.RunnerSpec{
			{Policy: "pathfinding"},
			{Policy: "random", ActionSpeed: 1, MemoryDecay: 10},
		},
	}
}

// stripVolatile clears the fields that differ between otherwise equal runs
func stripVolatile(in []Summary) []Summary {
	out := make([]Summary, len(in))
	for i, s := range in {
		s.RunID = ""
		s.Elapsed = 0
		out[i] = s
	}
	return out
}

func TestRunner_RunOrderAndReproducibility(t *testing.T) {
	ctx := context.Background()
	parallel := &Runner{Scenario: smallScenario(), BaseSeed: 100, Workers: 3}
	got, err := parallel.Run(ctx, 6)
	require.NoError(t, err)
	require.Len(t, got, 6)

	ids := make(map[string]bool)
	for i, s := range got {
		assert.Equal(t, int64(100+i), s.Seed, "summaries keep run order")
		assert.NotEmpty(t, s.RunID)
		assert.False(t, ids[s.RunID], "run ids are unique")
		ids[s.RunID] = true
		assert.Positive(t, s.Time)
		assert.Positive(t, s.ExploredCells)
		assert.Len(t, s.Explored, 2, "one explored map per runner")
		assert.Equal(t, s.ExploredCells, unionCount(s.Explored))
		assert.Nil(t, s.Extra, "no collector configured")
	}

	serial := &Runner{Scenario: smallScenario(), BaseSeed: 100, Workers: 1}
	again, err := serial.Run(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, stripVolatile(got), stripVolatile(again), "worker count must not change results")
}

func TestRunner_InvalidBatch(t *testing.T) {
	r := &Runner{Scenario: smallScenario(), Workers: 0}
	_, err := r.Run(context.Background(), 3)
	assert.ErrorIs(t, err, ErrInvalidBatch)

	r.Workers = 2
	_, err = r.Run(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidBatch)
}

func TestRunner_BadScenarioFails(t *testing.T) {
	s := smallScenario()
	s.Runners[0].Policy = "oracle"
	r := &Runner{Scenario: s, Workers: 2}
	_, err := r.Run(context.Background(), 4)
	assert.Error(t, err)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Scenario: smallScenario(), Workers: 2}
	_, err := r.Run(ctx, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := &Runner{Scenario: smallScenario(), Workers: 2, Metrics: MustNewMetrics(reg)}
	summaries, err := r.Run(context.Background(), 4)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				byName[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				byName[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				byName[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 4.0, byName["mazerunner_batch_runs_total"])
	assert.Equal(t, 4.0, byName["mazerunner_batch_run_ticks"])
	assert.Equal(t, 0.0, byName["mazerunner_batch_runs_active"])

	lost := 0
	for _, s := range summaries {
		lost += 2 - s.NAlive
	}
	assert.Equal(t, float64(lost), byName["mazerunner_batch_runners_lost_total"])
}

type tickCollector struct {
	updates  int
	lastTick int
	ordered  bool
}

func (c *tickCollector) Update(env *gameplay.Env) {
	c.updates++
	if c.updates > 1 && env.Time() != c.lastTick+1 {
		c.ordered = false
	}
	c.lastTick = env.Time()
}

func (c *tickCollector) Finish(env *gameplay.Env) map[string]any {
	return map[string]any{
		"updates": c.updates,
		"ordered": c.ordered,
		"alive":   env.Info().NAlive,
	}
}

func TestRunner_Collector(t *testing.T) {
	var created atomic.Int32
	r := &Runner{
		Scenario: smallScenario(),
		BaseSeed: 7,
		Workers:  2,
		NewCollector: func() Collector {
			created.Add(1)
			return &tickCollector{ordered: true}
		},
	}
	summaries, err := r.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int32(4), created.Load(), "one collector per run")

	for _, s := range summaries {
		require.NotNil(t, s.Extra)
		assert.Equal(t, s.Time, s.Extra["updates"], "Update runs once per tick")
		assert.Equal(t, true, s.Extra["ordered"])
		assert.Equal(t, s.NAlive, s.Extra["alive"], "Finish sees the final state")
	}
}

func TestSummary_Outcome(t *testing.T) {
	assert.Equal(t, OutcomeExit, Summary{FoundExit: 1, Converged: true}.Outcome())
	assert.Equal(t, OutcomeExtinct, Summary{FoundExit: state.NoRunner, Converged: true}.Outcome())
	assert.Equal(t, OutcomeCeiling, Summary{FoundExit: state.NoRunner}.Outcome())
}

func sampleSummaries() []Summary {
	return []Summary{
		{
			RunID: "a", Seed: 1, Time: 120, Day: 6, FoundExit: 0, NAlive: 2, Converged: true, TotalReward: -114, ExploredCells: 6, Elapsed: 3 * time.Millisecond,
			Explored: map[int]*world.Grid{
				1: world.GridFromRows("##.", "...", ".##"),
				0: world.GridFromRows("#..", "..#", "###"),
			},
		},
		{RunID: "b", Seed: 2, Time: 40, Day: 2, FoundExit: state.NoRunner, NAlive: 0, Converged: true, TotalReward: -99999, ExploredCells: 31, Elapsed: time.Millisecond},
	}
}

func TestWriteArrow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.arrow")
	require.NoError(t, WriteArrow(path, sampleSummaries()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Schema().Equal(SummarySchema))
	require.Equal(t, 1, r.NumRecords())
	rec, err := r.Record(0)
	require.NoError(t, err)
	require.Equal(t, int64(2), rec.NumRows())

	assert.Equal(t, "b", rec.Column(0).(*array.String).Value(1))
	assert.Equal(t, int64(-1), rec.Column(4).(*array.Int64).Value(1))
	assert.True(t, rec.Column(6).(*array.Boolean).Value(0))
	assert.Equal(t, -99999.0, rec.Column(7).(*array.Float64).Value(1))
	assert.InDelta(t, 3.0, rec.Column(9).(*array.Float64).Value(0), 1e-9)

	runners := rec.Column(10).(*array.List)
	grids := rec.Column(11).(*array.List)
	ids := runners.ListValues().(*array.Int64)
	blobs := grids.ListValues().(*array.Binary)

	start, end := runners.ValueOffsets(0)
	require.Equal(t, int64(2), end-start)
	want := sampleSummaries()[0].Explored
	for k := start; k < end; k++ {
		id := int(ids.Value(int(k)))
		assert.Equal(t, int(k-start), id, "runners are stored in id order")
		g, err := world.DecodeGrid(blobs.Value(int(k)))
		require.NoError(t, err)
		assert.True(t, g.Equal(want[id]), "runner %d grid", id)
	}

	start, end = grids.ValueOffsets(1)
	assert.Equal(t, start, end, "run without explored maps has an empty list")
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))

	_, err := store.ListSummaries(ctx)
	assert.Error(t, err, "uninitialized store")

	require.NoError(t, store.Init(ctx))
	defer store.Close()

	want := sampleSummaries()
	require.NoError(t, store.SaveSummaries(ctx, want))
	got, err := store.ListSummaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Saving again updates in place
	want[1].TotalReward = -5
	require.NoError(t, store.SaveSummaries(ctx, want[1:]))
	got, err = store.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, -5.0, got[1].TotalReward)

	// Replacing a run's explored maps drops the old rows
	want[0].Explored = map[int]*world.Grid{2: world.GridFromRows("...")}
	require.NoError(t, store.SaveSummaries(ctx, want[:1]))
	got, err = store.ListSummaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[0].Explored, got[0].Explored)

	assert.Error(t, NewSQLiteStore("").Init(ctx))
}
