package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/database"
)

// Repository persists devices. The Registry caches on top of it.
type Repository interface {
	// GetByID returns ErrDeviceNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*Device, error)

	// List returns every device ordered by name, case-insensitively.
	List(ctx context.Context) ([]Device, error)

	// ListByRoom returns the devices in one room, ordered by name.
	ListByRoom(ctx context.Context, roomID string) ([]Device, error)

	// Create returns ErrDeviceExists when the id is taken.
	Create(ctx context.Context, device *Device) error

	// SetActive returns ErrDeviceNotFound when no row matches.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete returns ErrDeviceNotFound when no row matches.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository stores devices in the devices table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a Repository over an open, migrated database.
//
// Parameters:
//   - db: Connection with the devices table already migrated
//
// Returns:
//   - *SQLiteRepository: Repository ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const (
	selectDevices = `SELECT id, room_id, name, slug, type_id, active,
	manufacturer, model, created_at, updated_at FROM devices`
	byName = ` ORDER BY name COLLATE NOCASE`
)

// GetByID reads one device row.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDevices+` WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrDeviceNotFound
	case err != nil:
		return nil, fmt.Errorf("querying device %s: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	return r.query(ctx, selectDevices+byName)
}

func (r *SQLiteRepository) ListByRoom(ctx context.Context, roomID string) ([]Device, error) {
	return r.query(ctx, selectDevices+` WHERE room_id = ?`+byName, roomID)
}

// Create stamps UpdatedAt, and CreatedAt when unset, before inserting.
//
// Parameters:
//   - ctx: Context for the insert
//   - d: Device to insert; timestamps are written back to it
//
// Returns:
//   - error: ErrDeviceExists on a duplicate id, or a wrapped driver error
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO devices
		(id, room_id, name, slug, type_id, active, manufacturer, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.RoomID, d.Name, d.Slug, d.TypeID, d.Active,
		optional(d.Manufacturer), optional(d.Model),
		d.CreatedAt.Format(time.RFC3339), d.UpdatedAt.Format(time.RFC3339),
	)
	if database.IsUniqueViolation(err) {
		return ErrDeviceExists
	}
	if err != nil {
		return fmt.Errorf("inserting device %s: %w", d.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, "setting device active",
		`UPDATE devices SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC().Format(time.RFC3339), id)
}

// Delete removes only the device row. Attached sensor and actuator
// records are the catalog's to remove.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "deleting device", `DELETE FROM devices WHERE id = ?`, id)
}

// execOne runs a statement that must touch exactly one device row.
func (r *SQLiteRepository) execOne(ctx context.Context, op, stmt string, args ...any) error {
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*Device, error) {
	var (
		d                    Device
		manufacturer, model  sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&d.ID, &d.RoomID, &d.Name, &d.Slug, &d.TypeID, &d.Active,
		&manufacturer, &model, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if manufacturer.Valid {
		d.Manufacturer = &manufacturer.String
	}
	if model.Valid {
		d.Model = &model.String
	}
	// Written by Create and SetActive in RFC3339; a parse failure leaves the zero time.
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck
	return &d, nil
}

func optional(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
