// internal/decoder/decoder.go
package decoder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

// Decode turns the raw words of one entry into typed metrics.
// Split encodings (uint8 pair, bit flags) yield several metrics.
// No IO. No state.
func Decode(e registers.Entry, b Block) ([]Metric, error) {
	if len(b.Words) != int(e.Words) {
		return nil, &DecodeError{
			Metric: e.Name,
			Reason: fmt.Sprintf("expected %d words, got %d", e.Words, len(b.Words)),
		}
	}

	switch enc := e.Encoding.(type) {
	case registers.UInt16:
		return []Metric{intMetric(e.Name, e.Unit, int64(b.Words[0]))}, nil

	case registers.UInt8Pair:
		hi, lo := SplitBytes(b.Words[0])
		return []Metric{
			intMetric(enc.High, e.Unit, int64(hi)),
			intMetric(enc.Low, e.Unit, int64(lo)),
		}, nil

	case registers.Int32LittleWordOrder:
		v := Int32LowWordFirst(b.Words[0], b.Words[1])
		return []Metric{intMetric(e.Name, e.Unit, int64(v))}, nil

	case registers.FixedString:
		s, err := TrimmedString(b.Words)
		if err != nil {
			return nil, &DecodeError{Metric: e.Name, Reason: err.Error()}
		}
		return []Metric{{Name: e.Name, Unit: e.Unit, Kind: KindText, Text: s}}, nil

	case registers.BitFlags:
		out := make([]Metric, 0, len(enc.Flags))
		for _, bit := range enc.Bits() {
			out = append(out, Metric{
				Name: enc.Flags[bit],
				Unit: registers.UnitFlag,
				Kind: KindBool,
				Bool: b.Words[0]&(1<<bit) != 0,
			})
		}
		return out, nil

	default:
		return nil, &DecodeError{
			Metric: e.Name,
			Reason: fmt.Sprintf("unsupported encoding %T", e.Encoding),
		}
	}
}

func intMetric(name string, u registers.Unit, v int64) Metric {
	return Metric{Name: name, Unit: u, Kind: KindInt, Int: v}
}

// SplitBytes returns the high and low byte of a register.
func SplitBytes(w uint16) (hi, lo uint8) {
	return uint8(w >> 8), uint8(w & 0xFF)
}

// Int32LowWordFirst combines two registers, low-order word first, into a
// two's-complement signed value.
func Int32LowWordFirst(lo, hi uint16) int32 {
	return int32(uint32(hi)<<16 | uint32(lo))
}

// Int32Words is the inverse of Int32LowWordFirst.
func Int32Words(v int32) (lo, hi uint16) {
	u := uint32(v)
	return uint16(u), uint16(u >> 16)
}

// TrimmedString unpacks registers into text, two bytes per register in
// big-endian order, and strips the trailing NUL padding.
func TrimmedString(words []uint16) (string, error) {
	buf := make([]byte, 0, len(words)*2)
	for _, w := range words {
		buf = append(buf, byte(w>>8), byte(w))
	}

	s := strings.TrimRight(string(buf), "\x00")
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("string payload is not valid UTF-8")
	}
	return s, nil
}
