package device

import "time"

// Device is a physical unit installed in a room. Sensors and actuators are
// attached to a device; the device itself only carries identity, placement
// and whether it is in service.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Location
	RoomID string `json:"room_id"`

	// Classification
	TypeID string `json:"type_id"`

	// Active is false once the device has been taken out of service.
	// Sensors and actuators can only be added to active devices.
	Active bool `json:"active"`

	// Metadata
	Manufacturer *string `json:"manufacturer,omitempty"`
	Model        *string `json:"model,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates an independent copy of the Device.
// Pointer fields are cloned so modifications to the copy do not affect
// the original.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.Manufacturer = copyString(d.Manufacturer)
	cpy.Model = copyString(d.Model)
	return &cpy
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
