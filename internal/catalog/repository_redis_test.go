package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return mr, client
}

func TestRedisRepository_CRUD(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "test:actuators")
	ctx := context.Background()

	rec := Record{
		ID: "act-1", DeviceID: "D1", ModelPath: PathIntegerBounded, TypeID: "T1", Name: "Dimmer",
		IntegerLower: intP(-3), IntegerUpper: intP(255),
	}

	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, rec); !errors.Is(err, ErrRecordExists) {
		t.Errorf("duplicate Save() error = %v, want ErrRecordExists", err)
	}

	if !mr.Exists("test:actuators:record:act-1") {
		t.Error("record hash not written")
	}
	if v := mr.HGet("test:actuators:record:act-1", fieldDecimalLower); v != "" {
		t.Errorf("decimal_lower = %q, want absent", v)
	}

	got, err := repo.GetByID(ctx, "act-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Equal(rec) {
		t.Errorf("GetByID() = %+v, want %+v", got, rec)
	}

	ok, err := repo.Exists(ctx, "act-1")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v, want true", ok, err)
	}

	byDevice, err := repo.ListByDevice(ctx, "D1")
	if err != nil || len(byDevice) != 1 {
		t.Errorf("ListByDevice() = %v, %v, want 1 record", byDevice, err)
	}

	if err := repo.Delete(ctx, "act-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "act-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRecordNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "act-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrRecordNotFound", err)
	}
	if mr.Exists("test:actuators:device:D1") {
		t.Error("device index should be empty after delete")
	}
}

func TestRedisRepository_DecimalPrecision(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "test:actuators")
	ctx := context.Background()

	rec := Record{
		ID: "valve", DeviceID: "D1", ModelPath: PathDecimalBounded, TypeID: "T1", Name: "Valve",
		DecimalLower: floatP(0.1), DecimalUpper: floatP(1.0 / 3.0),
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := repo.GetByID(ctx, "valve")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got.DecimalUpper != 1.0/3.0 {
		t.Errorf("DecimalUpper = %v, want exact 1/3", *got.DecimalUpper)
	}
}

func TestRedisRepository_ListOrdersByName(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "test:sensors")
	ctx := context.Background()

	for _, rec := range []Record{
		{ID: "c", DeviceID: "D1", ModelPath: PathWind, TypeID: "T1", Name: "Zeta"},
		{ID: "a", DeviceID: "D2", ModelPath: PathWind, TypeID: "T1", Name: "Alpha"},
		{ID: "b", DeviceID: "D1", ModelPath: PathWind, TypeID: "T1", Name: "Mid"},
	} {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save(%s) error = %v", rec.ID, err)
		}
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 || records[0].ID != "a" || records[1].ID != "b" || records[2].ID != "c" {
		t.Errorf("List() order = %v, want a,b,c", records)
	}
}

func TestRedisRepository_CorruptField(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "test:actuators")
	ctx := context.Background()

	mr.HSet("test:actuators:record:x", fieldDeviceID, "D1", fieldModelPath, string(PathIntegerBounded),
		fieldTypeID, "T1", fieldName, "X", fieldIntegerLower, "ten", fieldIntegerUpper, "20")

	if _, err := repo.GetByID(ctx, "x"); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("GetByID() error = %v, want ErrCorruptRecord", err)
	}
}

func TestRedisRepository_ServiceIntegration(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	svc := NewService(NewModelRegistry(),
		NewRedisRepository(client, "test:sensors"),
		NewRedisRepository(client, "test:actuators"),
		fakeDevices{"D1": true})

	args := argsFor(PathBlindRoller)
	args.ID = "blind-1"
	if _, err := svc.AddActuator(ctx, PathBlindRoller, args); err != nil {
		t.Fatalf("AddActuator() error = %v", err)
	}

	if err := svc.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}
	got, err := svc.GetActuator(ctx, "blind-1")
	if err != nil {
		t.Fatalf("GetActuator() error = %v", err)
	}
	if _, ok := got.(*BlindRollerActuator); !ok {
		t.Errorf("GetActuator() type = %T, want *BlindRollerActuator", got)
	}
}
