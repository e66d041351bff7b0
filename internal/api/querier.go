// internal/api/querier.go
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

// SeriesPoint is one windowed value of a metric.
type SeriesPoint struct {
	Time  time.Time   `json:"time"`
	Value interface{} `json:"value"`
}

// Query selects one metric series over a trailing window.
type Query struct {
	Metric           string
	Field            string
	RangeHours       int
	AggregateMinutes int
}

// Querier reads back what the connector wrote.
type Querier interface {
	Series(ctx context.Context, q Query) ([]SeriesPoint, error)
	Latest(ctx context.Context) (map[string]interface{}, error)
}

// LatestWindow bounds how old a value returned by Latest may be.
const LatestWindow = 15 * time.Minute

// InfluxQuerier runs Flux queries against one bucket.
type InfluxQuerier struct {
	client      influxdb2.Client
	query       influxapi.QueryAPI
	bucket      string
	measurement string
}

type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	Timeout     time.Duration
}

func NewInfluxQuerier(cfg InfluxConfig) (*InfluxQuerier, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("api: influx url, org and bucket required")
	}
	if cfg.Measurement == "" {
		return nil, fmt.Errorf("api: measurement required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := influxdb2.DefaultOptions().
		SetHTTPRequestTimeout(uint(cfg.Timeout.Seconds() + 0.5))
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	return &InfluxQuerier{
		client:      client,
		query:       client.QueryAPI(cfg.Org),
		bucket:      cfg.Bucket,
		measurement: cfg.Measurement,
	}, nil
}

func (q *InfluxQuerier) Close() error {
	q.client.Close()
	return nil
}

func (q *InfluxQuerier) Series(ctx context.Context, sq Query) ([]SeriesPoint, error) {
	res, err := q.query.Query(ctx, seriesFlux(q.bucket, q.measurement, sq))
	if err != nil {
		return nil, fmt.Errorf("api: query %s: %w", sq.Metric, err)
	}
	defer res.Close()

	points := []SeriesPoint{}
	for res.Next() {
		r := res.Record()
		points = append(points, SeriesPoint{Time: r.Time(), Value: r.Value()})
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("api: query %s: %w", sq.Metric, err)
	}
	return points, nil
}

func (q *InfluxQuerier) Latest(ctx context.Context) (map[string]interface{}, error) {
	res, err := q.query.Query(ctx, latestFlux(q.bucket, q.measurement))
	if err != nil {
		return nil, fmt.Errorf("api: query latest: %w", err)
	}
	defer res.Close()

	out := map[string]interface{}{}
	for res.Next() {
		r := res.Record()
		if metric, ok := r.ValueByKey("metric").(string); ok {
			out[metric] = r.Value()
		}
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("api: query latest: %w", err)
	}
	return out, nil
}

// Flux builders. Every interpolated value is either an int or a name from
// the register table; request strings never reach the query text.

func seriesFlux(bucket, measurement string, q Query) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: -%dh)
  |> filter(fn: (r) => r["_measurement"] == %q)
  |> filter(fn: (r) => r["_field"] == %q)
  |> filter(fn: (r) => r["metric"] == %q)
  |> aggregateWindow(every: %dm, fn: mean, createEmpty: false)
  |> yield(name: "mean")`,
		bucket, q.RangeHours, measurement, q.Field, q.Metric, q.AggregateMinutes)
}

func latestFlux(bucket, measurement string) string {
	fields := []string{
		registers.FieldValueWatts,
		registers.FieldValuePercent,
		registers.FieldValueVolts,
		registers.FieldValueAmpere,
	}
	conds := make([]string, len(fields))
	for i, f := range fields {
		conds[i] = fmt.Sprintf(`r["_field"] == %q`, f)
	}

	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r["_measurement"] == %q)
  |> filter(fn: (r) => %s)
  |> last()`,
		bucket, int(LatestWindow/time.Minute), measurement, strings.Join(conds, " or "))
}
