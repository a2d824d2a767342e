// Package telemetry moves sensor readings and actuator commands between the
// catalog and the outside world.
//
//   - Sampler reads every sensor on an interval, appends the readings to the
//     SQLite readings log, publishes them retained on
//     graylogic/state/catalog/{sensor_id} and writes numeric samples to the
//     InfluxDB sensor_readings measurement.
//   - CommandHandler subscribes to graylogic/command/catalog/+, applies each
//     {"value": ...} setting to its actuator and publishes an ack on
//     graylogic/ack/catalog/{actuator_id}.
//
// Actuators are immutable catalog variants: an accepted command is validated
// and reported, and the last accepted setting is kept in memory.
package telemetry
