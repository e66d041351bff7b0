// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/battery-modbus-connector/internal/decoder"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
	"github.com/tamzrod/battery-modbus-connector/internal/status"
	"github.com/tamzrod/battery-modbus-connector/internal/writer"
)

// TagMetric is the tag carrying the metric name on every point.
const TagMetric = "metric"

// Client abstracts the Modbus operation needed by the poller.
// Addresses are 0-based wire addresses.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval    time.Duration
	Measurement string
	Entries     []registers.Entry

	// MaxDeadSweeps > 0 makes Run fail after that many consecutive sweeps
	// in which the connection was down for every read.
	MaxDeadSweeps int

	// StatusMeasurement enables the per-sweep status point when set.
	StatusMeasurement string
}

// Poller is a clock-driven reader. It owns its client and sink for its
// whole lifetime and is not safe for concurrent use.
type Poller struct {
	cfg    Config
	client Client
	sink   writer.Writer
	log    *zap.Logger

	tracker    *status.Tracker
	deadSweeps int
	now        func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, client Client, sink writer.Writer, log *zap.Logger) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Measurement == "" {
		return nil, errors.New("poller: measurement required")
	}
	if len(cfg.Entries) == 0 {
		return nil, errors.New("poller: at least one register entry required")
	}
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if sink == nil {
		return nil, errors.New("poller: sink required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	entries := make([]registers.Entry, len(cfg.Entries))
	copy(entries, cfg.Entries)
	cfg.Entries = entries

	return &Poller{
		cfg:     cfg,
		client:  client,
		sink:    sink,
		log:     log,
		tracker: status.NewTracker(),
		now:     time.Now,
	}, nil
}

// PollOnce performs exactly one sweep over the metric set, in table order.
// A failed metric is logged and skipped; it never aborts the sweep.
// Shutdown is checked between metrics; the in-flight metric is always
// completed.
func (p *Poller) PollOnce(ctx context.Context) SweepResult {
	res := SweepResult{At: p.now()}

	// In-flight writes must complete even when shutdown arrives mid-sweep.
	wctx := context.WithoutCancel(ctx)
	connDown := 0

	for _, e := range p.cfg.Entries {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}

		res.Reads++

		metrics, err := ReadEntry(p.client, e)
		if err != nil {
			res.Failed++
			res.LastErr = err
			if isConnectionLost(err) {
				connDown++
			}
			p.log.Warn("metric skipped",
				zap.String("metric", e.Name),
				zap.Uint16("address", e.WireAddress()),
				zap.Uint16("count", e.Words),
				zap.Error(err))
			continue
		}

		at := p.now()
		for _, m := range metrics {
			if err := p.sink.Write(wctx, p.point(m, at)); err != nil {
				res.SinkErrors++
				p.log.Warn("sink write failed",
					zap.String("metric", m.Name),
					zap.Error(err))
				continue
			}
			p.log.Debug("metric written", zap.Stringer("value", m))
			res.Written++
		}
	}

	res.ConnectionLost = res.Reads > 0 && connDown == res.Reads

	p.log.Debug("sweep done",
		zap.Int("reads", res.Reads),
		zap.Int("failed", res.Failed),
		zap.Int("written", res.Written),
		zap.Int("sink_errors", res.SinkErrors),
		zap.Duration("took", p.now().Sub(res.At)))

	return res
}

// ReadEntry reads and decodes one register entry.
// Transport failures are returned as *TransportError, decode failures as
// *decoder.DecodeError.
func ReadEntry(c Client, e registers.Entry) ([]decoder.Metric, error) {
	words, err := c.ReadHoldingRegisters(e.WireAddress(), e.Words)
	if err != nil {
		return nil, &TransportError{
			Metric:  e.Name,
			Address: e.WireAddress(),
			Count:   e.Words,
			Err:     err,
		}
	}
	return decoder.Decode(e, decoder.Block{Start: e.Start, Words: words})
}

func (p *Poller) point(m decoder.Metric, at time.Time) writer.Point {
	key, val := m.Field()
	return writer.Point{
		Measurement: p.cfg.Measurement,
		Tags:        map[string]string{TagMetric: m.Name},
		Fields:      map[string]interface{}{key: val},
		At:          at,
	}
}

// observe folds a sweep into the status tracker and, when enabled, writes
// the status point.
func (p *Poller) observe(ctx context.Context, res SweepResult) {
	snap := p.tracker.Observe(res.At, res.Reads, res.Failed, res.LastErr)

	if p.cfg.StatusMeasurement == "" {
		return
	}

	pt := writer.Point{
		Measurement: p.cfg.StatusMeasurement,
		Fields:      snap.Fields(),
		At:          res.At,
	}
	if err := p.sink.Write(context.WithoutCancel(ctx), pt); err != nil {
		p.log.Warn("status write failed", zap.Error(err))
	}
}
