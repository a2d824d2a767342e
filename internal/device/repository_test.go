package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the devices table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			type_id TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			manufacturer TEXT,
			model TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
		CREATE INDEX idx_devices_room_id ON devices(room_id);
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

// testDevice creates a device for testing.
func testDevice(id, name string) *Device {
	return &Device{
		ID:     id,
		Name:   name,
		Slug:   GenerateSlug(name),
		RoomID: "room-001",
		TypeID: "blind",
		Active: true,
	}
}

func TestSQLiteRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates device successfully", func(t *testing.T) {
		manufacturer := "ACME"
		device := testDevice("dev-001", "Living Room Blind")
		device.Manufacturer = &manufacturer

		if err := repo.Create(ctx, device); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "dev-001")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Name != "Living Room Blind" {
			t.Errorf("Name = %q, want %q", got.Name, "Living Room Blind")
		}
		if !got.Active {
			t.Error("Active = false, want true")
		}
		if got.Manufacturer == nil || *got.Manufacturer != "ACME" {
			t.Errorf("Manufacturer = %v, want ACME", got.Manufacturer)
		}
		if got.Model != nil {
			t.Errorf("Model = %v, want nil", got.Model)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	})

	t.Run("returns error for duplicate ID", func(t *testing.T) {
		if err := repo.Create(ctx, testDevice("dev-duplicate", "First Device")); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}
		err := repo.Create(ctx, testDevice("dev-duplicate", "Second Device"))
		if !errors.Is(err, ErrDeviceExists) {
			t.Errorf("Create() error = %v, want ErrDeviceExists", err)
		}
	})
}

func TestSQLiteRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	kitchen := testDevice("dev-k", "kitchen switch")
	kitchen.RoomID = "kitchen"
	for _, d := range []*Device{testDevice("dev-b", "Bravo"), testDevice("dev-a", "alpha"), kitchen} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create(%s) error = %v", d.ID, err)
		}
	}

	t.Run("List orders by name ignoring case", func(t *testing.T) {
		devices, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(devices) != 3 {
			t.Fatalf("List() len = %d, want 3", len(devices))
		}
		if devices[0].ID != "dev-a" || devices[1].ID != "dev-b" {
			t.Errorf("List() order = %s,%s, want dev-a,dev-b", devices[0].ID, devices[1].ID)
		}
	})

	t.Run("ListByRoom", func(t *testing.T) {
		devices, err := repo.ListByRoom(ctx, "kitchen")
		if err != nil {
			t.Fatalf("ListByRoom() error = %v", err)
		}
		if len(devices) != 1 || devices[0].ID != "dev-k" {
			t.Errorf("ListByRoom(kitchen) = %v, want [dev-k]", devices)
		}
	})

	t.Run("SetActive", func(t *testing.T) {
		if err := repo.SetActive(ctx, "dev-a", false); err != nil {
			t.Fatalf("SetActive() error = %v", err)
		}
		got, _ := repo.GetByID(ctx, "dev-a")
		if got.Active {
			t.Error("Active = true after deactivation")
		}
		if err := repo.SetActive(ctx, "missing", false); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("SetActive(missing) error = %v, want ErrDeviceNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "dev-b"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.GetByID(ctx, "dev-b"); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("GetByID() after delete error = %v, want ErrDeviceNotFound", err)
		}
		if err := repo.Delete(ctx, "dev-b"); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("second Delete() error = %v, want ErrDeviceNotFound", err)
		}
	})
}
