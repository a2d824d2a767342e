package mqtt

import (
	"fmt"
	"strings"
)

const (
	// TopicPrefix is the root of every Gray Logic topic.
	TopicPrefix = "graylogic"

	// CatalogProtocol is the protocol segment used by the catalog service
	// in the flat scheme graylogic/{category}/{protocol}/{id}.
	CatalogProtocol = "catalog"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"
)

// Topics provides builders for catalog MQTT topics.
//
//	topic := mqtt.Topics{}.SensorState("7f0c...")
//	// Returns: "graylogic/state/catalog/7f0c..."
type Topics struct{}

// SensorState is where sampled sensor readings are published (retained).
//
// Example: graylogic/state/catalog/{sensor_id}
func (Topics) SensorState(sensorID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, CatalogProtocol, sensorID)
}

// ActuatorCommand is where settings for one actuator are received.
//
// Example: graylogic/command/catalog/{actuator_id}
func (Topics) ActuatorCommand(actuatorID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, CatalogProtocol, actuatorID)
}

// ActuatorAck is where command outcomes are published.
//
// Example: graylogic/ack/catalog/{actuator_id}
func (Topics) ActuatorAck(actuatorID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, CatalogProtocol, actuatorID)
}

// AllActuatorCommands matches every actuator command topic.
//
// Pattern: graylogic/command/catalog/+
func (Topics) AllActuatorCommands() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, CatalogProtocol)
}

// AllSensorStates matches every sensor state topic.
//
// Pattern: graylogic/state/catalog/+
func (Topics) AllSensorStates() string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, CatalogProtocol)
}

// SystemStatus returns the system status topic.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllTopics matches every Gray Logic topic.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// IDFromTopic returns the trailing id of a catalog topic in the given
// category ("state", "command" or "ack"). ok is false if topic does not
// belong to that category or the id is empty.
func IDFromTopic(topic, category string) (id string, ok bool) {
	prefix := fmt.Sprintf("%s/%s/%s/", TopicPrefix, category, CatalogProtocol)
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	id = strings.TrimPrefix(topic, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
