package device

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Logger is satisfied by logging.Logger.
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

// Registry caches devices in front of a Repository. Call RefreshCache at
// startup; writes through the Registry keep the cache current. Callers
// always receive copies.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - The cache is guarded by mu; repository calls happen outside the lock
//     except for the empty-cache fallback in list.
type Registry struct {
	repo Repository

	mu   sync.RWMutex
	byID map[string]*Device
	log  Logger
}

// NewRegistry returns an empty-cache Registry over repo.
//
// Parameters:
//   - repo: Persistence layer the cache reads through to
//
// Returns:
//   - *Registry: Registry with a no-op logger; call SetLogger to replace it
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo: repo,
		byID: make(map[string]*Device),
		log:  noopLogger{},
	}
}

// SetLogger replaces the logger used for cache and lifecycle events.
func (r *Registry) SetLogger(logger Logger) {
	r.log = logger
}

// RefreshCache replaces the cache with the repository contents.
//
// Parameters:
//   - ctx: Context for the repository read
//
// Returns:
//   - error: Wrapped repository error; the old cache is kept on failure
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	fresh := make(map[string]*Device, len(devices))
	for i := range devices {
		fresh[devices[i].ID] = devices[i].DeepCopy()
	}

	r.mu.Lock()
	r.byID = fresh
	r.mu.Unlock()

	r.log.Info("device cache refreshed", "count", len(fresh))
	return nil
}

// GetDevice returns a device by id. Cache misses are read through to the
// repository and cached.
//
// Parameters:
//   - ctx: Context for a read-through on cache miss
//   - id: Device identifier
//
// Returns:
//   - *Device: A copy the caller may modify freely
//   - error: ErrDeviceNotFound for an unknown id, or a repository error
func (r *Registry) GetDevice(ctx context.Context, id string) (*Device, error) {
	r.mu.RLock()
	d, ok := r.byID[id]
	r.mu.RUnlock()
	if ok {
		return d.DeepCopy(), nil
	}

	d, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(d)
	return d, nil
}

// ListDevices returns all devices ordered by name, case-insensitively.
func (r *Registry) ListDevices(ctx context.Context) ([]Device, error) {
	return r.list(ctx, func(*Device) bool { return true }, r.repo.List)
}

// GetDevicesByRoom returns the devices in roomID ordered by name.
func (r *Registry) GetDevicesByRoom(ctx context.Context, roomID string) ([]Device, error) {
	return r.list(ctx,
		func(d *Device) bool { return d.RoomID == roomID },
		func(ctx context.Context) ([]Device, error) { return r.repo.ListByRoom(ctx, roomID) },
	)
}

// list filters the cache, or falls back to the repository while it is empty.
func (r *Registry) list(ctx context.Context, keep func(*Device) bool, fallback func(context.Context) ([]Device, error)) ([]Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.byID) == 0 {
		return fallback(ctx)
	}

	var out []Device
	for _, d := range r.byID {
		if keep(d) {
			out = append(out, *d.DeepCopy())
		}
	}
	slices.SortFunc(out, func(a, b Device) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

// CreateDevice fills in a missing ID and slug, marks the device active,
// validates and persists it.
//
// Parameters:
//   - ctx: Context for the repository write
//   - d: Device to create; ID, Slug and Active are set in place
//
// Returns:
//   - error: ValidateDevice failure, ErrDeviceExists, or a repository error
func (r *Registry) CreateDevice(ctx context.Context, d *Device) error {
	if d.ID == "" {
		d.ID = GenerateID()
	}
	if d.Slug == "" {
		d.Slug = GenerateSlug(d.Name)
	}
	d.Active = true

	if err := ValidateDevice(d); err != nil {
		return err
	}
	if err := r.repo.Create(ctx, d); err != nil {
		return err
	}
	r.put(d)

	r.log.Info("device created", "id", d.ID, "name", d.Name, "room_id", d.RoomID)
	return nil
}

// DeactivateDevice takes a device out of service. Its sensors and actuators
// stay, but nothing new can be attached.
func (r *Registry) DeactivateDevice(ctx context.Context, id string) error {
	return r.setActive(ctx, id, false)
}

// ActivateDevice puts a device back in service.
func (r *Registry) ActivateDevice(ctx context.Context, id string) error {
	return r.setActive(ctx, id, true)
}

func (r *Registry) setActive(ctx context.Context, id string, active bool) error {
	if err := r.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	r.mu.Lock()
	if d, ok := r.byID[id]; ok {
		next := d.DeepCopy()
		next.Active = active
		r.byID[id] = next
	}
	r.mu.Unlock()

	r.log.Info("device active flag changed", "id", id, "active", active)
	return nil
}

// DeleteDevice removes the device row and evicts it from the cache.
// Sensors and actuators attached to it are removed by the catalog service,
// not here.
//
// Returns:
//   - error: ErrDeviceNotFound for an unknown id, or a repository error
func (r *Registry) DeleteDevice(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()

	r.log.Info("device deleted", "id", id)
	return nil
}

// DeviceActive reports whether the device is in service, or
// ErrDeviceNotFound.
func (r *Registry) DeviceActive(ctx context.Context, id string) (bool, error) {
	d, err := r.GetDevice(ctx, id)
	if err != nil {
		return false, err
	}
	return d.Active, nil
}

// GetDeviceCount returns the number of cached devices.
func (r *Registry) GetDeviceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) put(d *Device) {
	r.mu.Lock()
	r.byID[d.ID] = d.DeepCopy()
	r.mu.Unlock()
}
