// internal/poller/builder.go
package poller

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/battery-modbus-connector/internal/config"
	pmodbus "github.com/tamzrod/battery-modbus-connector/internal/poller/modbus"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
	"github.com/tamzrod/battery-modbus-connector/internal/writer"
)

// Dial opens the Modbus TCP connection described by the device config.
// The initial connection fails fast; afterwards the client redials on
// demand when a read finds the connection dead.
func Dial(d cfg.DeviceConfig) (*pmodbus.Client, error) {
	return pmodbus.New(pmodbus.Config{
		Endpoint: d.Endpoint(),
		UnitID:   d.UnitID,
		Timeout:  time.Duration(d.TimeoutMs) * time.Millisecond,
	})
}

// Build constructs a Poller and wires the Modbus client lifecycle.
// The returned closer releases the connection; call it on every exit path.
// Config must have passed Validate and Normalize.
func Build(c *cfg.Config, tbl *registers.Table, sink writer.Writer, log *zap.Logger) (*Poller, func() error, error) {
	entries, err := tbl.Select(c.Poll.Metrics)
	if err != nil {
		return nil, nil, err
	}

	for _, e := range entries {
		if e.AbsoluteNumbered() {
			log.Warn("register uses 4xxxx numbering; translated with the same -1 offset as the rest of the table",
				zap.String("metric", e.Name),
				zap.Uint16("register", e.Start),
				zap.Uint16("address", e.WireAddress()))
		}
	}

	client, err := Dial(c.Device)
	if err != nil {
		return nil, nil, err
	}

	statusMeasurement := ""
	if c.Status.Enabled {
		statusMeasurement = c.Status.Measurement
	}

	p, err := New(
		Config{
			Interval:          time.Duration(c.Poll.IntervalMs) * time.Millisecond,
			Measurement:       c.Poll.Measurement,
			Entries:           entries,
			MaxDeadSweeps:     c.Poll.MaxDeadSweeps,
			StatusMeasurement: statusMeasurement,
		},
		client,
		sink,
		log,
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return p, client.Close, nil
}
