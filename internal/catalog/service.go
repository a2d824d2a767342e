package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceLookup reports whether a device exists and is active.
// Implementations return an error matching the device package's not-found
// sentinel for unknown devices.
type DeviceLookup interface {
	DeviceActive(ctx context.Context, id string) (bool, error)
}

// Service manages sensors and actuators attached to devices.
//
// Creation resolves the model, encodes the variant and saves the record.
// Reads decode records through the registry. Decoded variants are
// immutable, so they are cached and shared without copying.
//
// All public methods are thread-safe.
type Service struct {
	registry  *ModelRegistry
	codec     *Codec
	sensors   Repository
	actuators Repository
	devices   DeviceLookup

	cache   map[string]Variant // Decoded variants by ID
	cacheMu sync.RWMutex       // Protects cache
	logger  Logger
}

// NewService creates a catalog service over separate sensor and actuator stores.
//
// Parameters:
//   - registry: resolves model paths and checks type ids
//   - sensors: store for sensor records
//   - actuators: store for actuator records
//   - devices: checks that a device exists and is active before an add
//
// Returns:
//   - *Service: a service with an empty cache; call RefreshCache to fill it
func NewService(registry *ModelRegistry, sensors, actuators Repository, devices DeviceLookup) *Service {
	return &Service{
		registry:  registry,
		codec:     NewCodec(registry),
		sensors:   sensors,
		actuators: actuators,
		devices:   devices,
		cache:     make(map[string]Variant),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Registry returns the model registry used for resolution.
func (s *Service) Registry() *ModelRegistry {
	return s.registry
}

// RefreshCache reloads all variants from both stores into the cache.
// Records that fail to decode are logged and left out of the cache.
func (s *Service) RefreshCache(ctx context.Context) error {
	cache := make(map[string]Variant)
	for _, kind := range []Kind{KindSensor, KindActuator} {
		records, err := s.repo(kind).List(ctx)
		if err != nil {
			return fmt.Errorf("loading %ss: %w", kind, err)
		}
		for _, rec := range records {
			v, err := s.codec.DecodeKind(rec, kind)
			if err != nil {
				s.logger.Warn("skipping undecodable record", "id", rec.ID, "model_path", rec.ModelPath, "error", err)
				continue
			}
			cache[v.ID()] = v
		}
	}

	s.cacheMu.Lock()
	s.cache = cache
	s.cacheMu.Unlock()

	s.logger.Info("catalog cache refreshed", "count", len(cache))
	return nil
}

// AddSensor creates a sensor of the given model on an active device.
//
// Parameters:
//   - ctx: context for the device lookup and the store write
//   - path: a sensor model path
//   - args: constructor arguments; args.TypeID must be in the type table
//     and accepted by the model
//
// Returns:
//   - Sensor: the created sensor
//   - error: *NotFoundError, *ValidationError, ErrDeviceInactive,
//     ErrRecordExists, or the device or repository error unchanged
func (s *Service) AddSensor(ctx context.Context, path ModelPath, args Args) (Sensor, error) {
	v, err := s.add(ctx, KindSensor, path, args)
	if err != nil {
		return nil, err
	}
	return v.(Sensor), nil
}

// AddActuator creates an actuator of the given model on an active device.
// It checks and fails the same way as AddSensor.
func (s *Service) AddActuator(ctx context.Context, path ModelPath, args Args) (Actuator, error) {
	v, err := s.add(ctx, KindActuator, path, args)
	if err != nil {
		return nil, err
	}
	return v.(Actuator), nil
}

func (s *Service) add(ctx context.Context, kind Kind, path ModelPath, args Args) (Variant, error) {
	if err := s.checkDevice(ctx, args.DeviceID); err != nil {
		return nil, err
	}

	v, err := s.registry.Resolve(path, args)
	if err != nil {
		return nil, err
	}
	if v.Kind() != kind {
		return nil, &ValidationError{
			Field:  "model_path",
			Reason: fmt.Sprintf("%s is a %s model, not a %s", path, v.Kind(), kind),
			Err:    ErrKindMismatch,
		}
	}
	if err := s.registry.CheckType(path, args.TypeID); err != nil {
		return nil, err
	}

	// IDs are unique across both stores.
	if args.ID != "" {
		taken, err := s.repo(otherKind(kind)).Exists(ctx, v.ID())
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrRecordExists
		}
	}

	if err := s.repo(kind).Save(ctx, s.codec.Encode(v)); err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[v.ID()] = v
	s.cacheMu.Unlock()

	s.logger.Info("variant created", "id", v.ID(), "kind", kind, "model_path", path, "device_id", v.DeviceID())
	return v, nil
}

func (s *Service) checkDevice(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return invalid("device_id", "must not be blank")
	}
	active, err := s.devices.DeviceActive(ctx, deviceID)
	if err != nil {
		return err
	}
	if !active {
		return fmt.Errorf("%w: %s", ErrDeviceInactive, deviceID)
	}
	return nil
}

// Get retrieves a sensor or actuator by ID, sensors store first.
//
// Parameters:
//   - ctx: context for the store reads on a cache miss
//   - id: the variant ID
//
// Returns:
//   - Variant: the cached or freshly decoded variant
//   - error: ErrRecordNotFound if neither store holds it, a
//     *ValidationError matching ErrCorruptRecord for an undecodable record,
//     or the repository error unchanged
func (s *Service) Get(ctx context.Context, id string) (Variant, error) {
	s.cacheMu.RLock()
	cached, ok := s.cache[id]
	s.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	for _, kind := range []Kind{KindSensor, KindActuator} {
		rec, err := s.repo(kind).GetByID(ctx, id)
		if errors.Is(err, ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		v, err := s.codec.DecodeKind(*rec, kind)
		if err != nil {
			return nil, err
		}

		s.cacheMu.Lock()
		s.cache[id] = v
		s.cacheMu.Unlock()
		return v, nil
	}
	return nil, ErrRecordNotFound
}

// GetSensor retrieves a sensor by ID.
func (s *Service) GetSensor(ctx context.Context, id string) (Sensor, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sensor, ok := v.(Sensor)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a sensor", ErrRecordNotFound, id)
	}
	return sensor, nil
}

// GetActuator retrieves an actuator by ID.
func (s *Service) GetActuator(ctx context.Context, id string) (Actuator, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	actuator, ok := v.(Actuator)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an actuator", ErrRecordNotFound, id)
	}
	return actuator, nil
}

// ListSensors decodes every stored sensor.
func (s *Service) ListSensors(ctx context.Context) ([]Sensor, error) {
	variants, err := s.list(ctx, KindSensor)
	if err != nil {
		return nil, err
	}
	sensors := make([]Sensor, 0, len(variants))
	for _, v := range variants {
		sensors = append(sensors, v.(Sensor))
	}
	return sensors, nil
}

// ListActuators decodes every stored actuator.
func (s *Service) ListActuators(ctx context.Context) ([]Actuator, error) {
	variants, err := s.list(ctx, KindActuator)
	if err != nil {
		return nil, err
	}
	actuators := make([]Actuator, 0, len(variants))
	for _, v := range variants {
		actuators = append(actuators, v.(Actuator))
	}
	return actuators, nil
}

func (s *Service) list(ctx context.Context, kind Kind) ([]Variant, error) {
	records, err := s.repo(kind).List(ctx)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(records, kind)
}

// ListByDevice decodes every sensor and actuator owned by a device,
// sensors first.
func (s *Service) ListByDevice(ctx context.Context, deviceID string) ([]Variant, error) {
	var variants []Variant
	for _, kind := range []Kind{KindSensor, KindActuator} {
		records, err := s.repo(kind).ListByDevice(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		decoded, err := s.decodeAll(records, kind)
		if err != nil {
			return nil, err
		}
		variants = append(variants, decoded...)
	}
	return variants, nil
}

func (s *Service) decodeAll(records []Record, kind Kind) ([]Variant, error) {
	variants := make([]Variant, 0, len(records))
	for _, rec := range records {
		v, err := s.codec.DecodeKind(rec, kind)
		if err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", kind, rec.ID, err)
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// Remove deletes a sensor or actuator. Changing a variant is modelled as
// Remove followed by a fresh Add.
//
// Parameters:
//   - ctx: context for the store deletes
//   - id: the variant ID
//
// Returns:
//   - error: ErrRecordNotFound if neither store holds it, or the repository
//     error unchanged
func (s *Service) Remove(ctx context.Context, id string) error {
	err := s.sensors.Delete(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		err = s.actuators.Delete(ctx, id)
	}
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	delete(s.cache, id)
	s.cacheMu.Unlock()

	s.logger.Info("variant removed", "id", id)
	return nil
}

// Stats returns catalog statistics for monitoring.
type Stats struct {
	Total   int
	ByKind  map[Kind]int
	ByModel map[ModelPath]int
}

// GetStats summarises the cached variants.
func (s *Service) GetStats() Stats {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	stats := Stats{
		Total:   len(s.cache),
		ByKind:  make(map[Kind]int),
		ByModel: make(map[ModelPath]int),
	}
	for _, v := range s.cache {
		stats.ByKind[v.Kind()]++
		stats.ByModel[v.ModelPath()]++
	}
	return stats
}

// CachedIDs returns the IDs currently held in the cache, sorted.
func (s *Service) CachedIDs() []string {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	ids := make([]string, 0, len(s.cache))
	for id := range s.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) repo(kind Kind) Repository {
	if kind == KindActuator {
		return s.actuators
	}
	return s.sensors
}

func otherKind(kind Kind) Kind {
	if kind == KindActuator {
		return KindSensor
	}
	return KindActuator
}
