package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementSensorReadings holds every numeric sensor sample.
const MeasurementSensorReadings = "sensor_readings"

// SensorSample is one numeric sensor reading.
type SensorSample struct {
	SensorID   string
	DeviceID   string
	TypeID     string
	ModelPath  string
	Value      float64
	RecordedAt time.Time
}

// sensorPoint maps a sample to a sensor_readings point. Identifiers are
// tags; the value is the only field.
func sensorPoint(s SensorSample) *write.Point {
	ts := s.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return write.NewPoint(
		MeasurementSensorReadings,
		map[string]string{
			"sensor_id":  s.SensorID,
			"device_id":  s.DeviceID,
			"type_id":    s.TypeID,
			"model_path": s.ModelPath,
		},
		map[string]any{
			"value": s.Value,
		},
		ts,
	)
}

// WriteSensorSample queues a sensor reading. It never blocks; after Close
// the sample is counted in Dropped.
func (c *Client) WriteSensorSample(s SensorSample) {
	c.queue(sensorPoint(s))
}

// WritePoint queues a custom point stamped with the current time.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.queue(write.NewPoint(measurement, tags, fields, time.Now()))
}

func (c *Client) queue(p *write.Point) {
	if !c.IsConnected() {
		c.dropped.Add(1)
		return
	}
	c.writeAPI.WritePoint(p)
}
