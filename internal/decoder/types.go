// internal/decoder/types.go
package decoder

import (
	"fmt"

	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

// Block is the raw result of one register read.
// Start is the 1-based register number of Words[0].
type Block struct {
	Start uint16
	Words []uint16
}

// Kind tells which Metric value field is populated.
type Kind uint8

const (
	KindInt Kind = iota
	KindBool
	KindText
)

// Metric is one decoded value, ready to be forwarded.
type Metric struct {
	Name string
	Unit registers.Unit
	Kind Kind

	// Exactly one of these is used depending on Kind.
	Int  int64
	Bool bool
	Text string
}

// Field returns the sink field key and value for the metric.
// Booleans are written as 0/1 integers.
func (m Metric) Field() (string, interface{}) {
	key := m.Unit.FieldKey()
	switch m.Kind {
	case KindBool:
		if m.Bool {
			return key, int64(1)
		}
		return key, int64(0)
	case KindText:
		return key, m.Text
	default:
		return key, m.Int
	}
}

// String renders the value for logs.
func (m Metric) String() string {
	switch m.Kind {
	case KindBool:
		return fmt.Sprintf("%s=%t", m.Name, m.Bool)
	case KindText:
		return fmt.Sprintf("%s=%q", m.Name, m.Text)
	default:
		return fmt.Sprintf("%s=%d%s", m.Name, m.Int, unitSuffix(m.Unit))
	}
}

func unitSuffix(u registers.Unit) string {
	switch u {
	case registers.UnitRaw:
		return ""
	default:
		return " " + u.String()
	}
}

// DecodeError reports a register block that does not fit its entry.
type DecodeError struct {
	Metric string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoder: %s: %s", e.Metric, e.Reason)
}
