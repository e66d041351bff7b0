// internal/registers/encoding.go
package registers

import (
	"fmt"
	"sort"
)

// Encoding is the closed set of value layouts a register group can carry.
// The set is closed by the unexported validate method.
type Encoding interface {
	// WordCount is the number of 16-bit registers the encoding occupies.
	WordCount() uint16
	String() string

	validate(name string) error
}

// UInt16 is a single register read as an unsigned value.
type UInt16 struct{}

// UInt8Pair is a single register split into two independent byte metrics.
// High names the metric taken from the upper byte, Low from the lower byte.
type UInt8Pair struct {
	High string
	Low  string
}

// Int32LittleWordOrder is a signed 32-bit value spread over two registers,
// low-order word first.
type Int32LittleWordOrder struct{}

// FixedString is Length registers of packed text, two bytes per register,
// NUL padded.
type FixedString struct {
	Length uint16
}

// BitFlags is a single register where each listed bit is its own boolean.
type BitFlags struct {
	Flags map[uint8]string
}

func (UInt16) WordCount() uint16               { return 1 }
func (UInt8Pair) WordCount() uint16            { return 1 }
func (Int32LittleWordOrder) WordCount() uint16 { return 2 }
func (s FixedString) WordCount() uint16        { return s.Length }
func (BitFlags) WordCount() uint16             { return 1 }

func (UInt16) String() string               { return "uint16" }
func (UInt8Pair) String() string            { return "uint8-pair" }
func (Int32LittleWordOrder) String() string { return "int32-le-words" }
func (s FixedString) String() string        { return fmt.Sprintf("string(%d)", s.Length) }
func (BitFlags) String() string             { return "bitflags" }

func (UInt16) validate(string) error               { return nil }
func (Int32LittleWordOrder) validate(string) error { return nil }

func (p UInt8Pair) validate(name string) error {
	if p.High == "" || p.Low == "" {
		return fmt.Errorf("registers: %s: uint8 pair needs both sub-metric names", name)
	}
	if p.High == p.Low {
		return fmt.Errorf("registers: %s: uint8 pair sub-metrics must differ", name)
	}
	return nil
}

func (s FixedString) validate(name string) error {
	if s.Length == 0 {
		return fmt.Errorf("registers: %s: string length must be > 0", name)
	}
	return nil
}

func (f BitFlags) validate(name string) error {
	if len(f.Flags) == 0 {
		return fmt.Errorf("registers: %s: bitflags needs at least one flag", name)
	}
	seen := make(map[string]uint8, len(f.Flags))
	for bit, flag := range f.Flags {
		if bit > 15 {
			return fmt.Errorf("registers: %s: bit %d outside a 16-bit register", name, bit)
		}
		if flag == "" {
			return fmt.Errorf("registers: %s: bit %d has no flag name", name, bit)
		}
		if prev, dup := seen[flag]; dup {
			return fmt.Errorf("registers: %s: flag %q used by bits %d and %d", name, flag, prev, bit)
		}
		seen[flag] = bit
	}
	return nil
}

// Bits returns the configured bit indices in ascending order.
func (f BitFlags) Bits() []uint8 {
	bits := make([]uint8, 0, len(f.Flags))
	for b := range f.Flags {
		bits = append(bits, b)
	}
	sort.Slice(bits, func(i, j int) bool { return bits[i] < bits[j] })
	return bits
}
