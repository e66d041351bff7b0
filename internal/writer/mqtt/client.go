// internal/writer/mqtt/client.go
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const clientIDPrefix = "battery-modbus-connector-"

// DefaultClientID returns a per-process client id. Brokers drop the older
// session when two clients share an id.
func DefaultClientID() string {
	return clientIDPrefix + uuid.NewString()[:8]
}

// EndpointClient mirrors points to an MQTT broker, one topic per metric.
// Topic layout: <prefix>/<measurement>/<metric tag>.
type EndpointClient struct {
	client  paho.Client
	prefix  string
	qos     byte
	retain  bool
	timeout time.Duration
}

type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	Retain      bool
	Timeout     time.Duration
}

// payload is the JSON body of one published point.
type payload struct {
	Measurement string                 `json:"measurement"`
	Tags        map[string]string      `json:"tags,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
	Time        time.Time              `json:"time"`
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Broker == "" {
		return nil, errors.New("writer mqtt: broker required")
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("writer mqtt: invalid qos %d", cfg.QoS)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID()
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := paho.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("writer mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("writer mqtt: connect to %s: %w", cfg.Broker, err)
	}

	return &EndpointClient{
		client:  client,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.Timeout,
	}, nil
}

func (c *EndpointClient) Close() error {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
	}
	return nil
}

//
// Implements writer.endpointClient
//

func (c *EndpointClient) WritePoint(
	ctx context.Context,
	measurement string,
	tags map[string]string,
	fields map[string]interface{},
	at time.Time,
) error {
	body, err := json.Marshal(payload{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Time:        at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("writer mqtt: encode: %w", err)
	}

	topic := Topic(c.prefix, measurement, tags["metric"])
	token := c.client.Publish(topic, c.qos, c.retain, body)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("writer mqtt: publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("writer mqtt: publish %s: %w", topic, ctx.Err())
	}
}

// Topic builds the publish topic for a point. Empty segments are skipped.
func Topic(prefix, measurement, metric string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, measurement, metric} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}
