package mqtt

import "fmt"

// Subscribe registers handler for topic, which may contain + and # wildcards.
// The subscription is tracked and restored after a reconnect.
//
// Parameters:
//   - topic: Topic filter, wildcards allowed
//   - qos: 0, 1 or 2
//   - handler: Called in a paho goroutine for each message; panics are
//     recovered and logged
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected, or
//     ErrSubscribeFailed; a failed subscription is not tracked
//
// Example:
//
//	err := client.Subscribe(mqtt.Topics{}.AllActuatorCommands(), 1, handler.HandleMessage)
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, qos: qos, handler: handler}
	c.subMu.Unlock()

	if err := await(c.client.Subscribe(topic, qos, c.wrapHandler(handler)), ErrSubscribeFailed); err != nil {
		c.forget(topic)
		return err
	}
	return nil
}

// Unsubscribe drops the subscription for the exact topic pattern. It is
// forgotten locally even if the broker does not confirm.
//
// Returns:
//   - error: ErrInvalidTopic, ErrNotConnected, or ErrUnsubscribeFailed
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.forget(topic)
	return await(c.client.Unsubscribe(topic), ErrUnsubscribeFailed)
}

func (c *Client) forget(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether the exact topic pattern is tracked.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, ok := c.subscriptions[topic]
	return ok
}
