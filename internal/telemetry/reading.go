package telemetry

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
)

// ErrInvalidReading is returned when a reading lacks its sensor or device.
var ErrInvalidReading = errors.New("telemetry: invalid reading")

// Reading is one sampled sensor value.
type Reading struct {
	ID       string `json:"id"`
	SensorID string `json:"sensor_id"`
	DeviceID string `json:"device_id"`
	TypeID   string `json:"type_id"`

	// Value is the rendered reading, e.g. "21.5°C" or "12km/h NE".
	Value string `json:"value"`

	// Numeric is the value's numeric form, used for metrics.
	Numeric float64 `json:"numeric"`

	RecordedAt time.Time `json:"recorded_at"`
}

// NewReading samples s once and stamps the result with at.
func NewReading(s catalog.Sensor, at time.Time) Reading {
	v := s.Value()
	return Reading{
		ID:         uuid.NewString(),
		SensorID:   s.ID(),
		DeviceID:   s.DeviceID(),
		TypeID:     s.TypeID(),
		Value:      v.String(),
		Numeric:    v.Float(),
		RecordedAt: at.UTC(),
	}
}
