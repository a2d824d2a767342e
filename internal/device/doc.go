// Package device provides the Device Registry for Gray Logic.
//
// A device is a physical unit installed in a room. Sensors and actuators
// from the catalog package are attached to devices; the registry answers
// whether a referenced device exists and is still in service before a new
// variant is attached.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                     Device Registry                       │
//	│  ┌──────────────────┐    ┌──────────────────┐             │
//	│  │     Registry     │───▶│    Repository    │             │
//	│  │  (registry.go)   │    │ (repository.go)  │             │
//	│  │ • in-memory cache│    │ • SQLite queries │             │
//	│  │ • DeviceActive   │    │ • devices table  │             │
//	│  └──────────────────┘    └──────────────────┘             │
//	└──────────────────────────────────────────────────────────┘
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	dev := &device.Device{Name: "Living Room Blind", RoomID: "living", TypeID: "blind"}
//	if err := registry.CreateDevice(ctx, dev); err != nil {
//	    return err
//	}
//
//	active, err := registry.DeviceActive(ctx, dev.ID)
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All operations are protected by
// a read-write mutex. The Repository implementation must also be thread-safe.
package device
