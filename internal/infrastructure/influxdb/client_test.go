package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/config"
)

// fakeInflux answers /ping and records line protocol posted to /api/v2/write.
type fakeInflux struct {
	mu     sync.Mutex
	lines  []string
	failed bool
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/ping"):
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/api/v2/write"):
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // Test server
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failed {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"invalid","message":"rejected"}`)) //nolint:errcheck // Test server
			return
		}
		f.lines = append(f.lines, strings.Split(strings.TrimSpace(string(body)), "\n")...)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeInflux) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "graylogic-test-token",
		Org:           "graylogic",
		Bucket:        "metrics",
		BatchSize:     10,
		FlushInterval: 1,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	if _, err := Connect(context.Background(), cfg); !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := Connect(ctx, testConfig("http://127.0.0.1:59999")); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_WriteSensorSample(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	client, err := Connect(ctx, testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.WriteSensorSample(SensorSample{
		SensorID:   "s1",
		DeviceID:   "d1",
		TypeID:     "temp",
		ModelPath:  "temperature",
		Value:      21.5,
		RecordedAt: time.Unix(1700000000, 0),
	})
	client.Flush()

	lines := fake.written()
	if len(lines) != 1 {
		t.Fatalf("written lines = %v, want 1", lines)
	}
	if !strings.HasPrefix(lines[0], MeasurementSensorReadings+",") || !strings.Contains(lines[0], "value=21.5") {
		t.Errorf("line = %q", lines[0])
	}
}

func TestClient_WriteErrorsReachCallback(t *testing.T) {
	fake := &fakeInflux{failed: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	got := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case got <- err:
		default:
		}
	})

	client.WritePoint("sensor_readings", map[string]string{"k": "v"}, map[string]any{"n": 1})
	client.Flush()

	select {
	case err := <-got:
		if !errors.Is(err, ErrWriteFailed) {
			t.Errorf("callback error = %v, want ErrWriteFailed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("write error never reached the callback")
	}
}

func TestClient_Closed(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	client.WriteSensorSample(SensorSample{SensorID: "s1", Value: 1})
	client.Flush()

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if lines := fake.written(); len(lines) != 0 {
		t.Errorf("writes after Close reached the server: %v", lines)
	}
	if got := client.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.InfluxDBConfig
		wantBatch uint
		wantFlush uint
	}{
		{name: "defaults", cfg: config.InfluxDBConfig{}, wantBatch: 100, wantFlush: 10000},
		{name: "configured", cfg: config.InfluxDBConfig{BatchSize: 5, FlushInterval: 2}, wantBatch: 5, wantFlush: 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := clientOptions(tt.cfg)
			if got := opts.BatchSize(); got != tt.wantBatch {
				t.Errorf("BatchSize() = %d, want %d", got, tt.wantBatch)
			}
			if got := opts.FlushInterval(); got != tt.wantFlush {
				t.Errorf("FlushInterval() = %d, want %d", got, tt.wantFlush)
			}
		})
	}
}

func TestSensorPoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	p := sensorPoint(SensorSample{
		SensorID:   "s1",
		DeviceID:   "d1",
		TypeID:     "power",
		ModelPath:  "instant-power-consumption",
		Value:      230,
		RecordedAt: ts,
	})

	line := write.PointToLineProtocol(p, time.Second)
	for _, want := range []string{
		"sensor_readings,",
		"device_id=d1",
		"model_path=instant-power-consumption",
		"sensor_id=s1",
		"type_id=power",
		"value=230",
		"1700000000",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol %q missing %q", line, want)
		}
	}

	if p := sensorPoint(SensorSample{SensorID: "s1"}); p.Time().IsZero() {
		t.Error("zero RecordedAt should be stamped with now")
	}
}
