// internal/status/snapshot.go
package status

import (
	"errors"
	"time"

	"github.com/goburrow/modbus"
)

// Snapshot represents exactly what the status point carries.
// It contains no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	FailedReads    uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Fields encodes a snapshot as sink fields.
// No IO. No side effects.
func (s Snapshot) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldHealth:         int64(s.Health),
		FieldFailedReads:    int64(s.FailedReads),
		FieldLastErrorCode:  int64(s.LastErrorCode),
		FieldSecondsInError: int64(s.SecondsInError),
	}
}

// Tracker folds sweep outcomes into a Snapshot.
// It is owned by the polling loop; not safe for concurrent use.
type Tracker struct {
	snap       Snapshot
	errorSince time.Time
}

// NewTracker returns a tracker in the unknown state.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Observe records one sweep: reads attempted, reads failed and the last
// failure (nil when none failed).
func (t *Tracker) Observe(at time.Time, reads, failed int, lastErr error) Snapshot {
	switch {
	case failed == 0:
		t.snap.Health = HealthOK
	case failed >= reads:
		t.snap.Health = HealthError
	default:
		t.snap.Health = HealthDegraded
	}

	t.snap.FailedReads = clamp(failed)

	if failed == 0 {
		// Reset on recovery.
		t.snap.LastErrorCode = 0
		t.snap.SecondsInError = 0
		t.errorSince = time.Time{}
		return t.snap
	}

	t.snap.LastErrorCode = ErrorCode(lastErr)
	if t.errorSince.IsZero() {
		t.errorSince = at
	}
	t.snap.SecondsInError = clamp(int(at.Sub(t.errorSince) / time.Second))

	return t.snap
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// ErrorCode extracts a best-effort uint16 code from an error.
// Modbus exceptions yield their exception code; anything else yields
// GenericErrorCode.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return uint16(mbErr.ExceptionCode)
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	return GenericErrorCode
}

func clamp(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > SecondsInErrorMax {
		return SecondsInErrorMax
	}
	return uint16(n)
}
