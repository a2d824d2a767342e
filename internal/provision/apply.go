package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-catalog/internal/audit"
	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
	"github.com/nerrad567/gray-logic-catalog/internal/device"
)

// DeviceStore creates and looks up devices. Implemented by device.Registry.
type DeviceStore interface {
	GetDevice(ctx context.Context, id string) (*device.Device, error)
	CreateDevice(ctx context.Context, d *device.Device) error
}

// Catalog creates and looks up sensors and actuators. Implemented by
// catalog.Service.
type Catalog interface {
	Registry() *catalog.ModelRegistry
	Get(ctx context.Context, id string) (catalog.Variant, error)
	AddSensor(ctx context.Context, path catalog.ModelPath, args catalog.Args) (catalog.Sensor, error)
	AddActuator(ctx context.Context, path catalog.ModelPath, args catalog.Args) (catalog.Actuator, error)
}

// Logger defines the logging interface used by the Provisioner.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Result counts what Apply created and what already existed.
type Result struct {
	DevicesCreated   int
	DevicesSkipped   int
	SensorsCreated   int
	SensorsSkipped   int
	ActuatorsCreated int
	ActuatorsSkipped int
}

// Provisioner applies an Inventory through the device registry and the
// catalog service, so every catalog invariant holds for provisioned entries.
type Provisioner struct {
	devices DeviceStore
	catalog Catalog
	audit   audit.Recorder
	logger  Logger
}

// New creates a Provisioner.
func New(devices DeviceStore, cat Catalog) *Provisioner {
	return &Provisioner{devices: devices, catalog: cat, logger: noopLogger{}}
}

// SetLogger sets the logger for the provisioner.
func (p *Provisioner) SetLogger(logger Logger) {
	p.logger = logger
}

// SetAuditor records a create entry for everything Apply adds.
func (p *Provisioner) SetAuditor(r audit.Recorder) {
	p.audit = r
}

// Apply creates every entry in inv whose ID does not exist yet. Entries that
// exist are skipped unchanged, so applying the same inventory twice is a
// no-op.
//
// Model paths, kinds and type ids are checked against the catalog before
// anything is written; every problem found is returned joined. Past that
// check Apply stops at the first failure and entries created before it
// stay.
func (p *Provisioner) Apply(ctx context.Context, inv *Inventory) (Result, error) {
	var res Result
	if err := inv.CheckModels(p.catalog.Registry()); err != nil {
		return res, err
	}
	for _, d := range inv.Devices {
		created, err := p.applyDevice(ctx, d)
		if err != nil {
			return res, fmt.Errorf("device %s: %w", d.ID, err)
		}
		if created {
			res.DevicesCreated++
		} else {
			res.DevicesSkipped++
		}

		for _, s := range d.Sensors {
			created, err := p.applyVariant(ctx, d.ID, s, catalog.KindSensor)
			if err != nil {
				return res, fmt.Errorf("device %s sensor %s: %w", d.ID, s.ID, err)
			}
			if created {
				res.SensorsCreated++
			} else {
				res.SensorsSkipped++
			}
		}

		for _, a := range d.Actuators {
			created, err := p.applyVariant(ctx, d.ID, a, catalog.KindActuator)
			if err != nil {
				return res, fmt.Errorf("device %s actuator %s: %w", d.ID, a.ID, err)
			}
			if created {
				res.ActuatorsCreated++
			} else {
				res.ActuatorsSkipped++
			}
		}
	}

	p.logger.Info("inventory applied",
		"devices_created", res.DevicesCreated,
		"sensors_created", res.SensorsCreated,
		"actuators_created", res.ActuatorsCreated,
		"skipped", res.DevicesSkipped+res.SensorsSkipped+res.ActuatorsSkipped,
	)
	return res, nil
}

func (p *Provisioner) applyDevice(ctx context.Context, e DeviceEntry) (bool, error) {
	_, err := p.devices.GetDevice(ctx, e.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, device.ErrDeviceNotFound) {
		return false, err
	}

	d := &device.Device{
		ID:     e.ID,
		Name:   e.Name,
		RoomID: e.RoomID,
		TypeID: e.TypeID,
	}
	if e.Manufacturer != "" {
		d.Manufacturer = &e.Manufacturer
	}
	if e.Model != "" {
		d.Model = &e.Model
	}
	if err := p.devices.CreateDevice(ctx, d); err != nil {
		return false, err
	}
	p.record(ctx, audit.EntityDevice, d.ID, map[string]any{"room_id": d.RoomID, "type_id": d.TypeID})
	return true, nil
}

func (p *Provisioner) applyVariant(ctx context.Context, deviceID string, e VariantEntry, kind catalog.Kind) (bool, error) {
	existing, err := p.catalog.Get(ctx, e.ID)
	switch {
	case err == nil:
		if existing.Kind() != kind {
			p.logger.Warn("inventory entry exists with another kind",
				"id", e.ID, "want", kind, "have", existing.Kind())
		}
		return false, nil
	case !errors.Is(err, catalog.ErrRecordNotFound):
		return false, err
	}

	path := catalog.ModelPath(e.Model)
	args := e.Args(deviceID)
	if kind == catalog.KindSensor {
		_, err = p.catalog.AddSensor(ctx, path, args)
	} else {
		_, err = p.catalog.AddActuator(ctx, path, args)
	}
	if err != nil {
		return false, err
	}

	entity := audit.EntitySensor
	if kind == catalog.KindActuator {
		entity = audit.EntityActuator
	}
	p.record(ctx, entity, e.ID, map[string]any{"device_id": deviceID, "model_path": e.Model})
	return true, nil
}

// record writes a create entry. A failed write is logged, not returned.
func (p *Provisioner) record(ctx context.Context, entityType, id string, details map[string]any) {
	if p.audit == nil {
		return
	}
	err := p.audit.Create(ctx, &audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: entityType,
		EntityID:   id,
		Source:     audit.SourceProvision,
		Details:    details,
	})
	if err != nil {
		p.logger.Warn("recording audit entry failed", "entity_type", entityType, "id", id, "error", err)
	}
}
