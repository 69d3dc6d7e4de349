package timeline

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/tacho/core/model"
	core "github.com/kilianp07/tacho/core/timeline"
)

// SQLiteStore persists recorder minutes in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ core.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY with the pure Go driver.
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS activity (
        vehicle_id TEXT NOT NULL,
        minute INTEGER NOT NULL,
        driver1 INTEGER NOT NULL,
        driver2 INTEGER NOT NULL,
        PRIMARY KEY(vehicle_id, minute)
    );
    CREATE TABLE IF NOT EXISTS boundary (
        vehicle_id TEXT NOT NULL,
        at INTEGER NOT NULL,
        activity INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS boundary_vehicle_at ON boundary(vehicle_id, at);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append upserts the records in a single transaction.
func (s *SQLiteStore) Append(vehicleID string, recs ...model.ActivityRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO activity (vehicle_id, minute, driver1, driver2)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(vehicle_id, minute) DO UPDATE SET
            driver1 = excluded.driver1,
            driver2 = excluded.driver2`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		m := core.Minute(r.Minute)
		if _, err := stmt.Exec(vehicleID, m.Unix(), int(r.Driver1), int(r.Driver2)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert minute %s: %w", m.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}

// Range returns records in [start, end) ordered by minute.
func (s *SQLiteStore) Range(vehicleID string, start, end time.Time) (model.Timeline, error) {
	rows, err := s.db.Query(`SELECT minute, driver1, driver2
        FROM activity WHERE vehicle_id = ? AND minute >= ? AND minute < ? ORDER BY minute`,
		vehicleID, ceilUnix(start), ceilUnix(end))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res model.Timeline
	for rows.Next() {
		var ts int64
		var d1, d2 int
		if err := rows.Scan(&ts, &d1, &d2); err != nil {
			return nil, err
		}
		res = append(res, model.ActivityRecord{
			Minute:  time.Unix(ts, 0).UTC(),
			Driver1: model.ActivityKind(d1),
			Driver2: model.ActivityKind(d2),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// AppendBoundary stores a manual entry.
func (s *SQLiteStore) AppendBoundary(vehicleID string, seg model.ManualBoundarySegment) error {
	_, err := s.db.Exec(`INSERT INTO boundary (vehicle_id, at, activity) VALUES (?, ?, ?)`,
		vehicleID, seg.At.UTC().UnixNano(), int(seg.Activity))
	return err
}

// Boundaries returns manual entries in [start, end) ordered by time.
func (s *SQLiteStore) Boundaries(vehicleID string, start, end time.Time) ([]model.ManualBoundarySegment, error) {
	rows, err := s.db.Query(`SELECT at, activity FROM boundary
        WHERE vehicle_id = ? AND at >= ? AND at < ? ORDER BY at, rowid`,
		vehicleID, start.UTC().UnixNano(), end.UTC().UnixNano())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.ManualBoundarySegment
	for rows.Next() {
		var at int64
		var kind int
		if err := rows.Scan(&at, &kind); err != nil {
			return nil, err
		}
		res = append(res, model.ManualBoundarySegment{
			Activity: model.BoundaryKind(kind),
			At:       time.Unix(0, at).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Vehicles lists every vehicle with records or boundary entries.
func (s *SQLiteStore) Vehicles() ([]string, error) {
	rows, err := s.db.Query(`SELECT vehicle_id FROM activity
        UNION SELECT vehicle_id FROM boundary ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ceilUnix maps a window bound onto stored minute keys so that [start, end)
// keeps its half-open meaning for unaligned bounds.
func ceilUnix(t time.Time) int64 {
	m := core.Minute(t)
	if m.Before(t) {
		m = m.Add(time.Minute)
	}
	return m.Unix()
}
