// internal/writer/influx/client.go
package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// EndpointClient writes points to one InfluxDB v2 bucket.
// Writes are synchronous: a returned nil means the server accepted the point.
type EndpointClient struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	bucket string
}

type Config struct {
	URL     string
	Token   string
	Org     string
	Bucket  string
	Timeout time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("writer influx: url required")
	}
	if cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("writer influx: org and bucket required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := influxdb2.DefaultOptions().
		SetHTTPRequestTimeout(uint(cfg.Timeout.Seconds() + 0.5))

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	return &EndpointClient{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket: cfg.Bucket,
	}, nil
}

func (c *EndpointClient) Close() error {
	c.client.Close()
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
	p := influxdb2.NewPoint(measurement, tags, fields, at)
	if err := c.write.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("writer influx: bucket=%s: %w", c.bucket, err)
	}
	return nil
}
