// internal/status/snapshot_test.go
package status

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goburrow/modbus"
)

func TestTracker_HealthTransitions(t *testing.T) {
	tr := NewTracker()
	if tr.Snapshot().Health != HealthUnknown {
		t.Fatalf("expected unknown on start, got %d", tr.Snapshot().Health)
	}

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := tr.Observe(t0, 10, 0, nil)
	if s.Health != HealthOK {
		t.Fatalf("expected ok, got %d", s.Health)
	}

	s = tr.Observe(t0.Add(time.Second), 10, 3, errors.New("boom"))
	if s.Health != HealthDegraded {
		t.Fatalf("expected degraded, got %d", s.Health)
	}
	if s.FailedReads != 3 {
		t.Fatalf("expected 3 failed reads, got %d", s.FailedReads)
	}
	if s.LastErrorCode != GenericErrorCode {
		t.Fatalf("expected generic error code, got %d", s.LastErrorCode)
	}

	s = tr.Observe(t0.Add(5*time.Second), 10, 10, errors.New("boom"))
	if s.Health != HealthError {
		t.Fatalf("expected error, got %d", s.Health)
	}
	if s.SecondsInError != 4 {
		t.Fatalf("expected 4 seconds in error, got %d", s.SecondsInError)
	}
}

func TestTracker_SecondsInErrorResetOnRecovery(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.Observe(t0, 4, 4, errors.New("down"))
	s := tr.Observe(t0.Add(30*time.Second), 4, 4, errors.New("down"))
	if s.SecondsInError != 30 {
		t.Fatalf("expected 30 seconds in error, got %d", s.SecondsInError)
	}

	s = tr.Observe(t0.Add(31*time.Second), 4, 0, nil)
	if s.SecondsInError != 0 || s.LastErrorCode != 0 || s.FailedReads != 0 {
		t.Fatalf("expected reset on recovery, got %+v", s)
	}

	// a new error sequence starts counting from zero
	s = tr.Observe(t0.Add(40*time.Second), 4, 1, errors.New("again"))
	if s.SecondsInError != 0 {
		t.Fatalf("expected fresh counter, got %d", s.SecondsInError)
	}
}

func TestTracker_SecondsInErrorSaturates(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.Observe(t0, 1, 1, errors.New("down"))
	s := tr.Observe(t0.Add(48*time.Hour), 1, 1, errors.New("down"))
	if s.SecondsInError != SecondsInErrorMax {
		t.Fatalf("expected saturation at %d, got %d", SecondsInErrorMax, s.SecondsInError)
	}
}

func TestErrorCode_ModbusException(t *testing.T) {
	err := fmt.Errorf("read pv_power: %w", &modbus.ModbusError{
		FunctionCode:  0x83,
		ExceptionCode: modbus.ExceptionCodeIllegalDataAddress,
	})

	if got := ErrorCode(err); got != uint16(modbus.ExceptionCodeIllegalDataAddress) {
		t.Fatalf("expected exception code %d, got %d", modbus.ExceptionCodeIllegalDataAddress, got)
	}
	if got := ErrorCode(nil); got != 0 {
		t.Fatalf("expected 0 for nil, got %d", got)
	}
}

func TestSnapshot_Fields(t *testing.T) {
	f := Snapshot{Health: HealthDegraded, FailedReads: 2, LastErrorCode: 4, SecondsInError: 9}.Fields()

	want := map[string]int64{
		FieldHealth:         int64(HealthDegraded),
		FieldFailedReads:    2,
		FieldLastErrorCode:  4,
		FieldSecondsInError: 9,
	}
	for k, v := range want {
		if f[k] != v {
			t.Fatalf("field %s: got %v, want %d", k, f[k], v)
		}
	}
}
