// Package sqlitestore is an alternate persistence backend for SPEC_FULL.md
// section B: instead of a flat file, the opaque byte stream Simulator.Store
// produces is kept as a BLOB row keyed by run id in a SQLite database, so
// an embedding host can query snapshot history (list runs, fetch the Nth
// snapshot of a run) instead of only ever overwriting one file.
//
// It is a thin wrapper: the byte stream itself is still exactly what
// persist.Writer/Reader produce and consume, so a stream written through
// Store and one written through a Store, later read back through sqlite,
// are byte-for-byte identical.
package sqlitestore

import (
	"bytes"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// Store is a SQLite-backed snapshot history for one or more simulation
// runs, identified by an opaque run id string.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures the snapshots table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, smperrors.CannotStore(smperrors.Sender("sqlitestore"), err.Error())
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	taken_at   DATETIME NOT NULL,
	data       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_run_id ON snapshots(run_id);
`
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, smperrors.CannotStore(smperrors.Sender("sqlitestore"), err.Error())
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Snapshot is one row of the store's snapshot history for a run.
type Snapshot struct {
	ID      int64
	RunID   string
	TakenAt time.Time
	Data    []byte
}

// Save writes one opaque stream (as produced by Simulator.Store against a
// bytes.Buffer) under runID, stamped with the current time, and returns
// the new row's id.
func (s *Store) Save(runID string, data []byte) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO snapshots (run_id, taken_at, data) VALUES (?, ?, ?)`,
		runID, time.Now().UTC(), data,
	)
	if err != nil {
		return 0, smperrors.CannotStore(smperrors.Sender("sqlitestore"), err.Error())
	}

	return res.LastInsertId()
}

// Latest returns the most recently saved snapshot for runID, or
// (nil, nil) if none exists.
func (s *Store) Latest(runID string) (*Snapshot, error) {
	row := s.db.QueryRow(
		`SELECT id, run_id, taken_at, data FROM snapshots WHERE run_id = ? ORDER BY id DESC LIMIT 1`,
		runID,
	)

	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.RunID, &snap.TakenAt, &snap.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, smperrors.CannotRestore(smperrors.Sender("sqlitestore"), err.Error())
	}

	return &snap, nil
}

// History returns every snapshot saved for runID, oldest first.
func (s *Store) History(runID string) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, taken_at, data FROM snapshots WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, smperrors.CannotRestore(smperrors.Sender("sqlitestore"), err.Error())
	}
	defer rows.Close()

	var out []Snapshot

	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.RunID, &snap.TakenAt, &snap.Data); err != nil {
			return nil, smperrors.CannotRestore(smperrors.Sender("sqlitestore"), err.Error())
		}

		out = append(out, snap)
	}

	return out, rows.Err()
}

// Reader returns an io.Reader-compatible buffer over a saved snapshot's
// bytes, ready to pass to Simulator.Restore.
func (snap *Snapshot) Reader() *bytes.Reader { return bytes.NewReader(snap.Data) }
