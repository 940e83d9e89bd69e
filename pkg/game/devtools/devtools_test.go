package devtools

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/generator"
	"mazerunner/pkg/game/runner"
	"mazerunner/pkg/game/state"
)

func testMaze(t *testing.T) *generator.Maze {
	t.Helper()
	gen, err := generator.NewBacktracker(4, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	m, err := gen.Generate(rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDumpMaze(t *testing.T) {
	m := testMaze(t)
	var buf bytes.Buffer
	DumpMaze(&buf, m, 3)
	out := buf.String()

	for _, want := range []string{"seed: 3", "grid_width: 9", "connected: true", "--- Map ---"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q", want)
		}
	}
	if strings.Count(out, "E") < 1 {
		t.Error("dump does not show the exit")
	}
}

func TestDumpMazeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.txt")
	got, err := DumpMazeToFile(path, testMaze(t), 3)
	if err != nil {
		t.Fatalf("DumpMazeToFile: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if !strings.HasPrefix(string(data), "=== MAZE DUMP ===") {
		t.Errorf("unexpected dump header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func testFrame(t *testing.T) state.Frame {
	t.Helper()
	m := testMaze(t)
	r, err := runner.New(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	r.Reset(m.Center(), m.SafeZone, m.Scent)
	task := world.Coord{X: 1, Y: 1}
	r.Assign(&task)
	return state.Frame{
		Time:     7,
		Open:     m.Open,
		SafeZone: m.SafeZone,
		Scent:    m.Scent,
		Exit:     m.Exit,
		Runners:  []runner.State{r.Snapshot()},
		Messages: []string{"a <b> message"},
	}
}

func TestDumpFrame(t *testing.T) {
	var buf bytes.Buffer
	DumpFrame(&buf, testFrame(t))
	out := buf.String()
	for _, want := range []string{"time: 7", "--- Runner 0 ---", "task: (1,1)", "@", "- a <b> message"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame dump missing %q", want)
		}
	}
}

func TestSaveScreenshotHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.html")
	got, err := SaveScreenshotHTML(path, testFrame(t))
	if err != nil {
		t.Fatalf("SaveScreenshotHTML: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	if !strings.Contains(page, `<span class="runner">0</span>`) {
		t.Error("runner not drawn")
	}
	if !strings.Contains(page, "a &lt;b&gt; message") {
		t.Error("messages are not escaped")
	}
}
