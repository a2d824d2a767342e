package telemetry

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-catalog/migrations"
)

// setupTestDB opens a migrated database in a temp dir.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "telemetry.db")})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

var registry = catalog.NewModelRegistry()

func mustResolve(t *testing.T, path catalog.ModelPath, args catalog.Args) catalog.Variant {
	t.Helper()
	if args.DeviceID == "" {
		args.DeviceID = "dev-1"
	}
	if args.TypeID == "" {
		args.TypeID = "type-1"
	}
	if args.Name == "" {
		args.Name = string(path)
	}
	v, err := registry.Resolve(path, args)
	if err != nil {
		t.Fatalf("Resolve(%s) error = %v", path, err)
	}
	return v
}

type fakeSensors struct {
	sensors []catalog.Sensor
	err     error
}

func (f *fakeSensors) ListSensors(context.Context) ([]catalog.Sensor, error) {
	return f.sensors, f.err
}

type fakeActuators map[string]catalog.Actuator

func (f fakeActuators) GetActuator(_ context.Context, id string) (catalog.Actuator, error) {
	if id == "broken" {
		return nil, errors.New("redis: connection refused")
	}
	a, ok := f[id]
	if !ok {
		return nil, catalog.ErrRecordNotFound
	}
	return a, nil
}

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type fakeMetrics struct {
	mu      sync.Mutex
	samples []influxdb.SensorSample
}

func (m *fakeMetrics) WriteSensorSample(s influxdb.SensorSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
}
