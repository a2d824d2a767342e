package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the record tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE sensors (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			model_path TEXT NOT NULL,
			type_id TEXT NOT NULL,
			name TEXT NOT NULL,
			integer_lower INTEGER,
			integer_upper INTEGER,
			decimal_lower REAL,
			decimal_upper REAL,
			created_at TEXT NOT NULL
		) STRICT;
		CREATE TABLE actuators (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			model_path TEXT NOT NULL,
			type_id TEXT NOT NULL,
			name TEXT NOT NULL,
			integer_lower INTEGER,
			integer_upper INTEGER,
			decimal_lower REAL,
			decimal_upper REAL,
			created_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestSQLiteRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db, TableActuators)
	ctx := context.Background()

	t.Run("stores bound slots", func(t *testing.T) {
		rec := Record{
			ID: "act-1", DeviceID: "D1", ModelPath: PathDecimalBounded, TypeID: "T1", Name: "Valve",
			DecimalLower: floatP(0.1), DecimalUpper: floatP(22.75),
		}
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "act-1")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if !got.Equal(rec) {
			t.Errorf("GetByID() = %+v, want %+v", got, rec)
		}
		if got.IntegerLower != nil || got.IntegerUpper != nil {
			t.Error("integer slots should stay NULL")
		}
	})

	t.Run("returns error for duplicate ID", func(t *testing.T) {
		rec := Record{ID: "dup", DeviceID: "D1", ModelPath: PathSwitch, TypeID: "T1", Name: "First"}
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("first Save() error = %v", err)
		}
		rec.Name = "Second"
		if err := repo.Save(ctx, rec); !errors.Is(err, ErrRecordExists) {
			t.Errorf("Save() error = %v, want ErrRecordExists", err)
		}
	})
}

func TestSQLiteRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db, TableSensors)
	other := NewSQLiteRepository(db, TableActuators)
	ctx := context.Background()

	for _, rec := range []Record{
		{ID: "s3", DeviceID: "D2", ModelPath: PathWind, TypeID: "T1", Name: "Roof wind"},
		{ID: "s1", DeviceID: "D1", ModelPath: PathHumidity, TypeID: "T1", Name: "Bath humidity"},
		{ID: "s2", DeviceID: "D1", ModelPath: PathTemperature, TypeID: "T1", Name: "Hall temperature"},
	} {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save(%s) error = %v", rec.ID, err)
		}
	}

	t.Run("List orders by name", func(t *testing.T) {
		records, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"s1", "s2", "s3"}
		if len(records) != len(want) {
			t.Fatalf("List() len = %d, want %d", len(records), len(want))
		}
		for i, id := range want {
			if records[i].ID != id {
				t.Errorf("List()[%d].ID = %q, want %q", i, records[i].ID, id)
			}
		}
	})

	t.Run("tables are separate", func(t *testing.T) {
		records, err := other.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("actuators List() len = %d, want 0", len(records))
		}
	})

	t.Run("ListByDevice", func(t *testing.T) {
		records, err := repo.ListByDevice(ctx, "D1")
		if err != nil {
			t.Fatalf("ListByDevice() error = %v", err)
		}
		if len(records) != 2 {
			t.Errorf("ListByDevice(D1) len = %d, want 2", len(records))
		}
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := repo.Exists(ctx, "s2")
		if err != nil || !ok {
			t.Errorf("Exists(s2) = %v, %v, want true", ok, err)
		}
		ok, err = repo.Exists(ctx, "nope")
		if err != nil || ok {
			t.Errorf("Exists(nope) = %v, %v, want false", ok, err)
		}
	})

	t.Run("GetByID missing", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("GetByID() error = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "s3"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := repo.Delete(ctx, "s3"); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("second Delete() error = %v, want ErrRecordNotFound", err)
		}
	})
}

// TestSQLiteRepository_CodecRoundTrip stores every model and decodes it back.
func TestSQLiteRepository_CodecRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	reg := NewModelRegistry()
	codec := NewCodec(reg)

	for _, v := range buildAll(t, reg) {
		repo := NewSQLiteRepository(db, TableFor(v.Kind()))
		rec := codec.Encode(v)
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save(%s) error = %v", v.ModelPath(), err)
		}

		stored, err := repo.GetByID(ctx, v.ID())
		if err != nil {
			t.Fatalf("GetByID(%s) error = %v", v.ID(), err)
		}
		got, err := codec.DecodeKind(*stored, v.Kind())
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", v.ModelPath(), err)
		}
		if !codec.Encode(got).Equal(rec) {
			t.Errorf("%s: stored round trip = %+v, want %+v", v.ModelPath(), codec.Encode(got), rec)
		}
	}
}
