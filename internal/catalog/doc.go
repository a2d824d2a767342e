// Package catalog provides the sensor and actuator model catalog for
// Gray Logic.
//
// Sensors and actuators are not a fixed set of types known to the storage
// layer. A caller names the concrete implementation with a model path
// (e.g. "blind-roller", "integer-bounded-actuator"), the ModelRegistry
// resolves it to a constructor, and the Codec projects the result onto a
// flat Record that every variant shares. On read the Codec reverses the
// projection and rebuilds the same concrete variant.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                              Service                                  │
//	│   device check ─▶ Resolve ─▶ Encode ─▶ Repository.Save ─▶ cache       │
//	│   Repository.List ─▶ Decode ─▶ Variant (Sensor / Actuator)            │
//	└──────────────────────────────────────────────────────────────────────┘
//	        │                    │                       │
//	        ▼                    ▼                       ▼
//	┌───────────────┐   ┌─────────────────┐   ┌──────────────────────────┐
//	│ ModelRegistry │   │      Codec      │   │        Repository        │
//	│ (registry.go) │◀──│   (codec.go)    │   │ SQLite: sensors/actuators│
//	│ closed map    │   │ type switch     │   │ Redis: hash per record   │
//	└───────────────┘   └─────────────────┘   └──────────────────────────┘
//
// # Key Types
//
//   - Variant: capability surface shared by every sensor and actuator
//   - ModelPath: string key naming a variant, persisted verbatim
//   - Args: constructor arguments, including optional bound pairs
//   - Record: flat persisted form with optional integer/decimal bound slots
//   - Value: reading or setting produced or accepted by a variant
//
// # Errors
//
// Resolve and Decode return typed errors and never log:
//
//   - *ValidationError (matches ErrInvalidVariant) for bad arguments
//   - *NotFoundError (matches ErrModelNotFound) for unknown model paths
//   - decode failures on stored data also match ErrCorruptRecord
//
// Storage failures are wrapped in *RepositoryError and passed through
// unchanged by the Service.
//
// # Usage
//
//	registry := catalog.NewModelRegistry()
//	svc := catalog.NewService(registry,
//	    catalog.NewSQLiteRepository(db, catalog.TableSensors),
//	    catalog.NewSQLiteRepository(db, catalog.TableActuators),
//	    deviceRegistry)
//
//	act, err := svc.AddActuator(ctx, catalog.PathIntegerBounded, catalog.Args{
//	    DeviceID:      "dev-1",
//	    TypeID:        "dimmer",
//	    Name:          "Hall dimmer",
//	    IntegerBounds: &catalog.IntegerBounds{Lower: 0, Upper: 255},
//	})
//
// # Thread Safety
//
// ModelRegistry and Codec are immutable after construction. Variants are
// immutable, so the Service caches and shares them without copying.
package catalog
