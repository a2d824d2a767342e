package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500

	// timestampFormat is fixed width so recorded_at sorts lexically.
	timestampFormat = "2006-01-02T15:04:05.000000000Z"
)

// ReadingStore persists the append-only readings log.
type ReadingStore interface {
	Record(ctx context.Context, r Reading) error
	History(ctx context.Context, sensorID string, limit int) ([]Reading, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteReadingStore implements ReadingStore on the readings table.
type SQLiteReadingStore struct {
	db *sql.DB
}

// NewSQLiteReadingStore creates a readings store over an open connection.
func NewSQLiteReadingStore(db *sql.DB) *SQLiteReadingStore {
	return &SQLiteReadingStore{db: db}
}

// Record appends a reading.
func (s *SQLiteReadingStore) Record(ctx context.Context, r Reading) error {
	if r.ID == "" || r.SensorID == "" || r.DeviceID == "" {
		return fmt.Errorf("%w: id, sensor_id and device_id are required", ErrInvalidReading)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (id, sensor_id, device_id, type_id, value, numeric, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.SensorID,
		r.DeviceID,
		r.TypeID,
		r.Value,
		r.Numeric,
		r.RecordedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}
	return nil
}

// History returns a sensor's most recent readings, newest first.
// limit defaults to 50 and is capped at 500.
func (s *SQLiteReadingStore) History(ctx context.Context, sensorID string, limit int) ([]Reading, error) {
	if sensorID == "" {
		return nil, fmt.Errorf("%w: sensor id is required", ErrInvalidReading)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sensor_id, device_id, type_id, value, numeric, recorded_at
		 FROM readings
		 WHERE sensor_id = ?
		 ORDER BY recorded_at DESC, id
		 LIMIT ?`,
		sensorID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := make([]Reading, 0, limit)
	for rows.Next() {
		var r Reading
		var recordedAt string
		if err := rows.Scan(&r.ID, &r.SensorID, &r.DeviceID, &r.TypeID, &r.Value, &r.Numeric, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		if r.RecordedAt, err = time.Parse(timestampFormat, recordedAt); err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

// Prune deletes readings older than now-olderThan and returns how many went.
func (s *SQLiteReadingStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(timestampFormat)
	result, err := s.db.ExecContext(ctx, "DELETE FROM readings WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting readings: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
