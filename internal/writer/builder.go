// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/battery-modbus-connector/internal/config"
	"github.com/tamzrod/battery-modbus-connector/internal/writer/influx"
	"github.com/tamzrod/battery-modbus-connector/internal/writer/mqtt"
)

// Sink names used in logs and SinkError.
const (
	SinkInflux = "influx"
	SinkMQTT   = "mqtt"
)

// Build creates one client per configured sink and wraps them in a Writer.
// The returned closer releases every client; call it on every exit path.
func Build(s cfg.SinksConfig) (Writer, func() error, error) {
	clients, closeAll, err := BuildEndpointClients(s)
	if err != nil {
		return nil, nil, err
	}
	return New(clients, ms(s.WriteTimeoutMs)), closeAll, nil
}

// BuildEndpointClients creates the sink clients in a fixed order
// (influx, then mqtt). On failure every client built so far is closed.
func BuildEndpointClients(s cfg.SinksConfig) ([]namedClient, func() error, error) {
	var clients []namedClient
	var closers []func() error

	fail := func(err error) ([]namedClient, func() error, error) {
		for _, fn := range closers {
			_ = fn()
		}
		return nil, nil, err
	}

	if ic := s.Influx; ic != nil {
		c, err := influx.NewEndpointClient(influx.Config{
			URL:     ic.URL,
			Token:   ic.Token,
			Org:     ic.Org,
			Bucket:  ic.Bucket,
			Timeout: ms(ic.TimeoutMs),
		})
		if err != nil {
			return fail(err)
		}
		clients = append(clients, namedClient{name: SinkInflux, cli: c})
		closers = append(closers, c.Close)
	}

	if mc := s.MQTT; mc != nil {
		c, err := mqtt.NewEndpointClient(mqtt.Config{
			Broker:      mc.Broker,
			ClientID:    mc.ClientID,
			Username:    mc.Username,
			Password:    mc.Password,
			TopicPrefix: mc.TopicPrefix,
			QoS:         mc.QoS,
			Retain:      mc.Retain,
			Timeout:     ms(mc.TimeoutMs),
		})
		if err != nil {
			return fail(err)
		}
		clients = append(clients, namedClient{name: SinkMQTT, cli: c})
		closers = append(closers, c.Close)
	}

	if len(clients) == 0 {
		return nil, nil, errors.New("writer: no sinks configured")
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
