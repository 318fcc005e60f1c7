// Package archive keeps an append-only SQLite history of every resolved
// outcome across runs. The CSV tables are the source of truth for the
// pipeline itself; the archive exists for auditing reruns and diffing
// selector drift over time.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zipscout/zipscout/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    zipcode TEXT NOT NULL,
    state TEXT NOT NULL,
    address TEXT,
    city TEXT,
    status TEXT NOT NULL,
    error_detail TEXT,
    run_id TEXT NOT NULL,
    scraped_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_key ON outcomes(zipcode, state);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`

// Archive records outcomes for one run. Single writer per shard process.
type Archive struct {
	db    *sql.DB
	runID string
}

// Open creates or opens the archive database at path.
func Open(path, runID string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db, runID: runID}, nil
}

// Record appends one outcome.
func (a *Archive) Record(o store.Outcome) error {
	addr, city := o.ResolvedFields()
	_, err := a.db.Exec(
		`INSERT INTO outcomes (zipcode, state, address, city, status, error_detail, run_id, scraped_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Unit.Zipcode, o.Unit.State, addr, city, string(o.Status), o.ErrorDetail,
		a.runID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record outcome %s: %w", o.Unit, err)
	}
	return nil
}

// CountByStatus returns how many outcomes this run recorded per status.
func (a *Archive) CountByStatus() (map[store.Status]int, error) {
	rows, err := a.db.Query(
		`SELECT status, COUNT(*) FROM outcomes WHERE run_id = ? GROUP BY status`, a.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[store.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[store.Status(status)] = n
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
