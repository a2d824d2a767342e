// Package influxdb provides InfluxDB connectivity for the catalog service.
//
// It wraps influxdb-client-go v2 and records numeric sensor samples in the
// sensor_readings measurement, tagged by sensor, device, type and model.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSensorSample(influxdb.SensorSample{SensorID: id, Value: 21.5})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Writes are batched according to batch_size and flush_interval.
package influxdb
