package report

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"

	"github.com/sarchlab/tracesim/timing/stats"
)

// SQLiteExporter writes reports into a SQLite database.
type SQLiteExporter struct {
	*sql.DB

	path string
}

// NewSQLiteExporter creates <name>.sqlite3 and its tables. An empty name is
// replaced by a fresh xid. The file must not exist yet.
func NewSQLiteExporter(name string) (*SQLiteExporter, error) {
	if name == "" {
		name = "tracesim_" + xid.New().String()
	}

	path := name + ".sqlite3"
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	e := &SQLiteExporter{DB: db, path: path}
	if err := e.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return e, nil
}

// Path returns the database file name.
func (e *SQLiteExporter) Path() string {
	return e.path
}

func (e *SQLiteExporter) createTables() error {
	stmts := []string{
		`CREATE TABLE run (
			run_id          TEXT PRIMARY KEY,
			instructions    INTEGER,
			branches        INTEGER,
			correct         INTEGER,
			accuracy        REAL,
			unmatched_frees INTEGER,
			host_rss        INTEGER,
			host_cpu        REAL
		)`,
		`CREATE TABLE levels (
			run_id    TEXT,
			id        INTEGER,
			name      TEXT,
			reads     INTEGER,
			writes    INTEGER,
			hits      INTEGER,
			misses    INTEGER,
			loads     INTEGER,
			evictions INTEGER
		)`,
		`CREATE TABLE predictors (
			run_id    TEXT,
			id        INTEGER,
			name      TEXT,
			correct   INTEGER,
			incorrect INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := e.Exec(s); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Export inserts r in one transaction.
func (e *SQLiteExporter) Export(r Report) error {
	tx, err := e.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := insertReport(tx, r); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

func insertReport(tx *sql.Tx, r Report) error {
	_, err := tx.Exec(
		`INSERT INTO run VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Instructions, r.Branches, r.Correct, r.Accuracy,
		r.UnmatchedFrees, r.HostRSS, r.HostCPU,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertLevels(tx, r.RunID, r.Levels); err != nil {
		return err
	}

	return insertPredictors(tx, r.RunID, r.Predictors)
}

func insertLevels(tx *sql.Tx, runID string, levels []stats.Counters) error {
	stmt, err := tx.Prepare(`INSERT INTO levels VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare level insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range levels {
		_, err := stmt.Exec(runID, l.ID, l.Name,
			l.Reads, l.Writes, l.Hits, l.Misses, l.Loads, l.Evictions)
		if err != nil {
			return fmt.Errorf("failed to insert level %s: %w", l.Name, err)
		}
	}

	return nil
}

func insertPredictors(tx *sql.Tx, runID string, preds []stats.Counters) error {
	stmt, err := tx.Prepare(`INSERT INTO predictors VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare predictor insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range preds {
		_, err := stmt.Exec(runID, p.ID, p.Name, p.Correct, p.Incorrect)
		if err != nil {
			return fmt.Errorf("failed to insert predictor %s: %w", p.Name, err)
		}
	}

	return nil
}
