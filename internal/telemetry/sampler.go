package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/mqtt"
)

const (
	defaultSampleInterval = time.Minute
	defaultPruneInterval  = time.Hour
)

// SensorSource lists the sensors to sample. Implemented by catalog.Service.
type SensorSource interface {
	ListSensors(ctx context.Context) ([]catalog.Sensor, error)
}

// Publisher sends MQTT messages. Implemented by mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MetricsWriter queues numeric samples. Implemented by influxdb.Client.
type MetricsWriter interface {
	WriteSensorSample(s influxdb.SensorSample)
}

// SamplerConfig holds the sampler's collaborators.
// Store is required; Publisher and Metrics are optional.
type SamplerConfig struct {
	Sensors   SensorSource
	Store     ReadingStore
	Publisher Publisher
	Metrics   MetricsWriter

	// Interval between samples. Default: 1 minute.
	Interval time.Duration

	// Retention prunes older readings once an hour. Zero disables pruning.
	Retention time.Duration

	// QoS for published readings.
	QoS byte
}

// statePayload is published to graylogic/state/catalog/{sensor_id}.
type statePayload struct {
	SensorID   string    `json:"sensor_id"`
	DeviceID   string    `json:"device_id"`
	TypeID     string    `json:"type_id"`
	ModelPath  string    `json:"model_path"`
	Value      string    `json:"value"`
	Numeric    float64   `json:"numeric"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Sampler periodically reads every sensor, appends the readings to the log,
// publishes them over MQTT and writes them to InfluxDB.
type Sampler struct {
	cfg SamplerConfig
	now func() time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// NewSampler creates a sampler. Call Start to begin sampling.
func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSampleInterval
	}
	return &Sampler{
		cfg:    cfg,
		now:    time.Now,
		done:   make(chan struct{}),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the sampler.
func (s *Sampler) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

func (s *Sampler) log() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

// Start samples once immediately and then on every interval until ctx is
// cancelled or Stop is called.
func (s *Sampler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop waits for the sampling loop to exit. Safe to call multiple times.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Sampler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var prune <-chan time.Time
	if s.cfg.Retention > 0 {
		pruneTicker := time.NewTicker(defaultPruneInterval)
		defer pruneTicker.Stop()
		prune = pruneTicker.C
	}

	s.sampleAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.sampleAndLog(ctx)
		case <-prune:
			n, err := s.cfg.Store.Prune(ctx, s.cfg.Retention)
			if err != nil {
				s.log().Error("pruning readings failed", "error", err)
				continue
			}
			if n > 0 {
				s.log().Info("readings pruned", "count", n)
			}
		}
	}
}

func (s *Sampler) sampleAndLog(ctx context.Context) {
	n, err := s.SampleOnce(ctx)
	if err != nil {
		s.log().Error("sampling failed", "error", err, "recorded", n)
		return
	}
	s.log().Debug("sensors sampled", "count", n)
}

// SampleOnce takes one reading from every sensor and returns how many were
// recorded. A failure for one sensor does not stop the others; the failures
// are joined into the returned error. Publish and metrics failures are
// logged only.
func (s *Sampler) SampleOnce(ctx context.Context) (int, error) {
	sensors, err := s.cfg.Sensors.ListSensors(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing sensors: %w", err)
	}

	at := s.now()
	recorded := 0
	var errs []error
	for _, sensor := range sensors {
		reading := NewReading(sensor, at)
		if err := s.cfg.Store.Record(ctx, reading); err != nil {
			errs = append(errs, fmt.Errorf("sensor %s: %w", sensor.ID(), err))
			continue
		}
		recorded++

		s.publish(sensor, reading)
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.WriteSensorSample(influxdb.SensorSample{
				SensorID:   reading.SensorID,
				DeviceID:   reading.DeviceID,
				TypeID:     reading.TypeID,
				ModelPath:  string(sensor.ModelPath()),
				Value:      reading.Numeric,
				RecordedAt: reading.RecordedAt,
			})
		}
	}
	return recorded, errors.Join(errs...)
}

func (s *Sampler) publish(sensor catalog.Sensor, r Reading) {
	if s.cfg.Publisher == nil {
		return
	}

	payload, err := json.Marshal(statePayload{
		SensorID:   r.SensorID,
		DeviceID:   r.DeviceID,
		TypeID:     r.TypeID,
		ModelPath:  string(sensor.ModelPath()),
		Value:      r.Value,
		Numeric:    r.Numeric,
		RecordedAt: r.RecordedAt,
	})
	if err != nil {
		s.log().Error("encoding reading", "sensor_id", r.SensorID, "error", err)
		return
	}

	if err := s.cfg.Publisher.Publish(mqtt.Topics{}.SensorState(r.SensorID), payload, s.cfg.QoS, true); err != nil {
		s.log().Warn("publishing reading failed", "sensor_id", r.SensorID, "error", err)
	}
}
