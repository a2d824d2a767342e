// Package mqtt provides MQTT connectivity for the catalog service.
//
// The catalog publishes sampled sensor readings and receives actuator
// commands over the Gray Logic bus:
//
//	graylogic/state/catalog/{sensor_id}     sensor readings (retained)
//	graylogic/command/catalog/{actuator_id} actuator settings
//	graylogic/ack/catalog/{actuator_id}     command outcomes
//	graylogic/system/status                 online/offline (LWT)
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllActuatorCommands(), client.QoS(), handler.HandleMessage)
package mqtt
