package publish

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var _ Publisher = (*Real)(nil)

// connectTimeout bounds the initial broker connection.
var connectTimeout = 10 * time.Second

// Real publishes to an actual MQTT broker.
type Real struct {
	client paho.Client
	topic  string
}

// NewReal creates a publisher connected to the given broker.
func NewReal(broker, clientID, topic string) (*Real, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	if err := connect(client, connectTimeout); err != nil {
		return nil, err
	}

	return &Real{
		client: client,
		topic:  topic,
	}, nil
}

// Publish sends the event without waiting for delivery. QoS 0, not retained.
func (p *Real) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if token.Error() != nil {
		return fmt.Errorf("publish: %w", token.Error())
	}
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (p *Real) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *Real) Close() error {
	p.client.Disconnect(1000)
	return nil
}

// connect waits for the first connection. On failure the client is
// disconnected so its connect retry loop stops.
func connect(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}
