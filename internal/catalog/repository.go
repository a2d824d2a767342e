package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/database"
)

// Repository defines the storage contract for persisted records.
// Implementations treat records as opaque rows keyed by ID.
type Repository interface {
	// Save inserts a new record.
	// Returns ErrRecordExists if a record with the same ID already exists.
	Save(ctx context.Context, rec Record) error

	// List retrieves all records ordered by name.
	List(ctx context.Context) ([]Record, error)

	// GetByID retrieves a record by ID.
	// Returns ErrRecordNotFound if the record does not exist.
	GetByID(ctx context.Context, id string) (*Record, error)

	// Exists reports whether a record with the given ID is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// ListByDevice retrieves all records owned by a device.
	ListByDevice(ctx context.Context, deviceID string) ([]Record, error)

	// Delete removes a record by ID.
	// Returns ErrRecordNotFound if the record does not exist.
	Delete(ctx context.Context, id string) error
}

// Table selects which table a SQLiteRepository reads and writes.
type Table string

// Record tables. Sensors and actuators share one column layout.
const (
	TableSensors   Table = "sensors"
	TableActuators Table = "actuators"
)

// TableFor returns the table that stores variants of kind.
func TableFor(kind Kind) Table {
	if kind == KindActuator {
		return TableActuators
	}
	return TableSensors
}

const recordColumns = `id, device_id, model_path, type_id, name,
	integer_lower, integer_upper, decimal_lower, decimal_upper`

// SQLiteRepository implements Repository using one SQLite table.
type SQLiteRepository struct {
	db    *sql.DB
	table Table
}

// NewSQLiteRepository creates a repository over the given table.
// The db parameter should be an open, migrated SQLite connection.
func NewSQLiteRepository(db *sql.DB, table Table) *SQLiteRepository {
	return &SQLiteRepository{db: db, table: table}
}

// Save inserts a new record.
func (r *SQLiteRepository) Save(ctx context.Context, rec Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.table, recordColumns)

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.DeviceID,
		string(rec.ModelPath),
		rec.TypeID,
		rec.Name,
		nullableInt(rec.IntegerLower),
		nullableInt(rec.IntegerUpper),
		nullableFloat(rec.DecimalLower),
		nullableFloat(rec.DecimalUpper),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrRecordExists
		}
		return repoErr("inserting record", err)
	}
	return nil
}

// List retrieves all records ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY name, id`, recordColumns, r.table)
	return r.queryRecords(ctx, query)
}

// GetByID retrieves a record by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, recordColumns, r.table)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, repoErr("querying record by id", err)
	}
	return rec, nil
}

// Exists reports whether a record with the given ID is stored.
func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, r.table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, repoErr("checking record exists", err)
	}
	return count > 0, nil
}

// ListByDevice retrieves all records owned by a device.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string) ([]Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE device_id = ? ORDER BY name, id`, recordColumns, r.table)
	return r.queryRecords(ctx, query, deviceID)
}

// Delete removes a record by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table), id)
	if err != nil {
		return repoErr("deleting record", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return repoErr("checking rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// queryRecords executes a query and returns a slice of records.
func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repoErr("querying records", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, repoErr("scanning record", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, repoErr("iterating records", err)
	}
	return records, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(scanner rowScanner) (*Record, error) {
	var rec Record
	var modelPath string
	var intLower, intUpper sql.NullInt64
	var decLower, decUpper sql.NullFloat64

	if err := scanner.Scan(
		&rec.ID,
		&rec.DeviceID,
		&modelPath,
		&rec.TypeID,
		&rec.Name,
		&intLower,
		&intUpper,
		&decLower,
		&decUpper,
	); err != nil {
		return nil, err
	}

	rec.ModelPath = ModelPath(modelPath)
	rec.IntegerLower = intPtr(intLower)
	rec.IntegerUpper = intPtr(intUpper)
	rec.DecimalLower = floatPtr(decLower)
	rec.DecimalUpper = floatPtr(decUpper)
	return &rec, nil
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
