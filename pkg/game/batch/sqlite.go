package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"mazerunner/pkg/engine/world"
)

// SQLiteStore keeps run summaries in a SQLite database. Each runner's
// explored map is stored as a world.Grid binary encoding in its own row.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore returns a store for the database at path; call Init before use
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the tables if needed. It is a no-op
// on an already initialized store.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// SaveSummaries upserts every summary in one transaction
func (s *SQLiteStore) SaveSummaries(ctx context.Context, summaries []Summary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs (run_id, seed, time, day, found_exit, n_alive, converged, total_reward, explored_cells, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			seed = excluded.seed,
			time = excluded.time,
			day = excluded.day,
			found_exit = excluded.found_exit,
			n_alive = excluded.n_alive,
			converged = excluded.converged,
			total_reward = excluded.total_reward,
			explored_cells = excluded.explored_cells,
			elapsed_ns = excluded.elapsed_ns
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	clearGrids, err := tx.PrepareContext(ctx, `DELETE FROM explored WHERE run_id = ?`)
	if err != nil {
		return err
	}
	defer clearGrids.Close()

	saveGrid, err := tx.PrepareContext(ctx, `INSERT INTO explored (run_id, runner_id, grid) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer saveGrid.Close()

	for _, sm := range summaries {
		if _, err := stmt.ExecContext(ctx,
			sm.RunID, sm.Seed, sm.Time, sm.Day, sm.FoundExit, sm.NAlive,
			sm.Converged, sm.TotalReward, sm.ExploredCells, sm.Elapsed.Nanoseconds(),
		); err != nil {
			return fmt.Errorf("save run %s: %w", sm.RunID, err)
		}
		if _, err := clearGrids.ExecContext(ctx, sm.RunID); err != nil {
			return fmt.Errorf("save run %s: %w", sm.RunID, err)
		}
		for _, id := range sortedIDs(sm.Explored) {
			data, err := sm.Explored[id].MarshalBinary()
			if err != nil {
				return fmt.Errorf("encode run %s runner %d: %w", sm.RunID, id, err)
			}
			if _, err := saveGrid.ExecContext(ctx, sm.RunID, id, data); err != nil {
				return fmt.Errorf("save run %s runner %d: %w", sm.RunID, id, err)
			}
		}
	}
	return tx.Commit()
}

// ListSummaries returns every stored run ordered by seed
func (s *SQLiteStore) ListSummaries(ctx context.Context) ([]Summary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	grids, err := loadExplored(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, seed, time, day, found_exit, n_alive, converged, total_reward, explored_cells, elapsed_ns
		FROM runs ORDER BY seed, run_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var elapsed int64
		if err := rows.Scan(
			&sm.RunID, &sm.Seed, &sm.Time, &sm.Day, &sm.FoundExit, &sm.NAlive,
			&sm.Converged, &sm.TotalReward, &sm.ExploredCells, &elapsed,
		); err != nil {
			return nil, err
		}
		sm.Elapsed = time.Duration(elapsed)
		sm.Explored = grids[sm.RunID]
		out = append(out, sm)
	}
	return out, rows.Err()
}

func loadExplored(ctx context.Context, db *sql.DB) (map[string]map[int]*world.Grid, error) {
	rows, err := db.QueryContext(ctx, `SELECT run_id, runner_id, grid FROM explored`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[int]*world.Grid)
	for rows.Next() {
		var runID string
		var runnerID int
		var data []byte
		if err := rows.Scan(&runID, &runnerID, &data); err != nil {
			return nil, err
		}
		g, err := world.DecodeGrid(data)
		if err != nil {
			return nil, fmt.Errorf("run %s runner %d: %w", runID, runnerID, err)
		}
		if out[runID] == nil {
			out[runID] = make(map[int]*world.Grid)
		}
		out[runID][runnerID] = g
	}
	return out, rows.Err()
}

// Close releases the database; the store can be initialized again afterwards
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			time INTEGER NOT NULL,
			day INTEGER NOT NULL,
			found_exit INTEGER NOT NULL,
			n_alive INTEGER NOT NULL,
			converged INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			explored_cells INTEGER NOT NULL,
			elapsed_ns INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS explored (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			runner_id INTEGER NOT NULL,
			grid BLOB NOT NULL,
			PRIMARY KEY (run_id, runner_id)
		);
	`)
	return err
}
