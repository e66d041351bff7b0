// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"time"
)

// defaultWriteTimeout bounds a single sink write when none is configured.
const defaultWriteTimeout = 5 * time.Second

type writerImpl struct {
	clients []namedClient
	timeout time.Duration
}

// New builds a fan-out writer over the given sinks, in order.
func New(clients []namedClient, timeout time.Duration) Writer {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &writerImpl{
		clients: clients,
		timeout: timeout,
	}
}

// Write delivers p to every sink. A failing sink does not stop delivery to
// the others; all failures are returned joined, one *SinkError per sink.
func (w *writerImpl) Write(ctx context.Context, p Point) error {
	if len(w.clients) == 0 {
		return errors.New("writer: no sinks configured")
	}
	if p.Measurement == "" {
		return errors.New("writer: measurement required")
	}
	if len(p.Fields) == 0 {
		return errors.New("writer: at least one field required")
	}

	at := p.At
	if at.IsZero() {
		at = time.Now()
	}

	var errs []error

	for _, nc := range w.clients {
		wctx, cancel := context.WithTimeout(ctx, w.timeout)
		err := nc.cli.WritePoint(wctx, p.Measurement, p.Tags, p.Fields, at)
		cancel()

		if err != nil {
			errs = append(errs, &SinkError{
				Sink:        nc.name,
				Measurement: p.Measurement,
				Err:         err,
			})
		}
	}

	return errors.Join(errs...)
}
