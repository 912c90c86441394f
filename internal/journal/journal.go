package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jsfix-ci/react-router-dispatcher/internal/gate"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS dispatch_cycles (
	cycle_id     TEXT PRIMARY KEY,
	seq          INTEGER NOT NULL,
	trigger_type TEXT NOT NULL,
	location     TEXT NOT NULL,
	groups_json  TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	resolved_at  TEXT,
	outcome      TEXT,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_dispatch_cycles_seq
ON dispatch_cycles(seq);
`

// #endregion schema

// #region journal-struct
// Journal persists dispatch cycles in SQLite. It implements gate.Recorder.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) a journal database and runs migrations.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// #endregion journal-struct

// #region recorder
// CycleStarted inserts a row for a freshly triggered cycle.
func (j *Journal) CycleStarted(c *gate.Cycle) error {
	groupsJSON, err := json.Marshal(c.Groups)
	if err != nil {
		return fmt.Errorf("marshal groups: %w", err)
	}

	_, err = j.db.Exec(
		`INSERT INTO dispatch_cycles (cycle_id, seq, trigger_type, location, groups_json, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Seq, string(c.Trigger), fmt.Sprintf("%v", c.Location),
		string(groupsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// CycleResolved records a cycle's outcome.
func (j *Journal) CycleResolved(c *gate.Cycle, outcome gate.Outcome, dispatchErr error) error {
	var errPtr interface{}
	if dispatchErr != nil {
		errPtr = dispatchErr.Error()
	}

	_, err := j.db.Exec(
		`UPDATE dispatch_cycles SET resolved_at = ?, outcome = ?, error = ? WHERE cycle_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), string(outcome), errPtr, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update cycle: %w", err)
	}
	return nil
}

// #endregion recorder

// #region queries
// CycleRecord is one journaled dispatch cycle.
type CycleRecord struct {
	CycleID    string
	Seq        uint64
	Trigger    string
	Location   string
	Groups     [][]string
	StartedAt  time.Time
	ResolvedAt time.Time // zero when still pending
	Outcome    string    // empty when still pending
	Error      string
}

// ListCycles returns the most recent cycles, newest first. A limit of
// zero or less returns everything.
func (j *Journal) ListCycles(limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(
		`SELECT cycle_id, seq, trigger_type, location, groups_json, started_at, resolved_at, outcome, error
		 FROM dispatch_cycles ORDER BY seq DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var records []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var groupsJSON, startedStr string
		var resolvedStr, outcome, errMsg sql.NullString

		if err := rows.Scan(&rec.CycleID, &rec.Seq, &rec.Trigger, &rec.Location,
			&groupsJSON, &startedStr, &resolvedStr, &outcome, &errMsg); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(groupsJSON), &rec.Groups); err != nil {
			return nil, fmt.Errorf("unmarshal groups: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		if resolvedStr.Valid {
			rec.ResolvedAt, _ = time.Parse(time.RFC3339Nano, resolvedStr.String)
		}
		if outcome.Valid {
			rec.Outcome = outcome.String
		}
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates cycle outcomes.
type Stats struct {
	Total      int
	OK         int
	Failed     int
	Superseded int
	Pending    int
}

// Summary counts cycles by outcome.
func (j *Journal) Summary() (Stats, error) {
	rows, err := j.db.Query(`SELECT outcome, COUNT(*) FROM dispatch_cycles GROUP BY outcome`)
	if err != nil {
		return Stats{}, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var outcome sql.NullString
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return Stats{}, fmt.Errorf("scan summary: %w", err)
		}
		stats.Total += count
		switch {
		case !outcome.Valid:
			stats.Pending += count
		case outcome.String == string(gate.OutcomeOK):
			stats.OK += count
		case outcome.String == string(gate.OutcomeFailed):
			stats.Failed += count
		case outcome.String == string(gate.OutcomeSuperseded):
			stats.Superseded += count
		}
	}
	return stats, rows.Err()
}

// #endregion queries
