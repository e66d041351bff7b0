// internal/writer/types.go
package writer

import (
	"context"
	"fmt"
	"time"
)

// Point is one tagged, typed sample for the time-series sink.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]interface{}
	At          time.Time
}

// Writer delivers points to every configured sink.
type Writer interface {
	Write(ctx context.Context, p Point) error
}

// endpointClient is the exact contract the writer uses per sink.
type endpointClient interface {
	WritePoint(
		ctx context.Context,
		measurement string,
		tags map[string]string,
		fields map[string]interface{},
		at time.Time,
	) error
}

// namedClient pairs a sink client with the name used in logs and errors.
type namedClient struct {
	name string
	cli  endpointClient
}

// SinkError reports a point rejected by one sink.
type SinkError struct {
	Sink        string
	Measurement string
	Err         error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("writer: sink=%s measurement=%s: %v", e.Sink, e.Measurement, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
