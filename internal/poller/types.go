// internal/poller/types.go
package poller

import (
	"errors"
	"fmt"
	"time"
)

// ErrConnectionLost is returned by Run when the device stayed unreachable
// for more consecutive sweeps than allowed.
var ErrConnectionLost = errors.New("poller: connection to device lost")

// TransportError is a failed register read for one metric.
type TransportError struct {
	Metric  string
	Address uint16 // wire address
	Count   uint16
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("poller: read %s addr=%d count=%d: %v", e.Metric, e.Address, e.Count, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SweepResult summarizes one pass over the metric set.
type SweepResult struct {
	At time.Time

	Reads      int // entries attempted
	Failed     int // entries skipped (transport or decode failure)
	Written    int // metrics accepted by the sink
	SinkErrors int // metrics the sink rejected

	// ConnectionLost is set when every attempted read failed because the
	// connection itself was down.
	ConnectionLost bool

	// Interrupted is set when shutdown was observed before the sweep ended.
	Interrupted bool

	LastErr error // last read/decode failure, nil when none
}

// connectionLost matches errors that report a dead transport connection.
type connectionLost interface {
	ConnectionLost() bool
}

func isConnectionLost(err error) bool {
	var cl connectionLost
	return errors.As(err, &cl) && cl.ConnectionLost()
}
