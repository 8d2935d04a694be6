package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const timeout = 10 * time.Second

// Client publishes to an external broker.
type Client struct {
	client paho.Client
}

func Connect(broker, clientID, username, password string) (*Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)

	c := &Client{client: paho.NewClient(opts)}
	if err := wait(c.client.Connect(), "connect"); err != nil {
		return nil, fmt.Errorf("error connecting to mqtt broker %s: %w", broker, err)
	}
	return c, nil
}

func (c *Client) Publish(topic string, payload []byte, retain bool) error {
	return wait(c.client.Publish(topic, 0, retain, payload), "publish")
}

func (c *Client) Close() error {
	c.client.Disconnect(uint(time.Second.Milliseconds()))
	return nil
}

func wait(token paho.Token, what string) error {
	if !token.WaitTimeout(timeout) {
		return errors.New("MQTT " + what + " timed out")
	}
	return token.Error()
}
