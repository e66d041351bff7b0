// internal/registers/registers.go
package registers

import (
	"errors"
	"fmt"
)

// ErrUnknownMetric is returned when a metric name is not part of the table.
var ErrUnknownMetric = errors.New("registers: unknown metric")

// absoluteBase is the first register number of the classic 4xxxx holding
// register numbering.
const absoluteBase = 40001

// Entry describes one named register group on the device.
// Start is the 1-based human register number from the device manual.
type Entry struct {
	Name     string
	Start    uint16
	Words    uint16
	Encoding Encoding
	Unit     Unit
}

// WireAddress is the 0-based protocol address of the first register.
func (e Entry) WireAddress() uint16 {
	return e.Start - 1
}

// AbsoluteNumbered reports whether the entry is written in 4xxxx numbering
// while most of the table uses local numbering. Both get the same -1
// translation; callers should surface this as a compatibility warning.
func (e Entry) AbsoluteNumbered() bool {
	return e.Start >= absoluteBase
}

// Table is an ordered, name-indexed register map.
// Iteration order is declaration order and never changes.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a table and validates every entry.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	series := make(map[string]string, len(entries))

	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.index[e.Name]; dup {
			return nil, fmt.Errorf("registers: duplicate metric name %q", e.Name)
		}
		for _, s := range e.Series() {
			if owner, dup := series[s.Name]; dup {
				return nil, fmt.Errorf("registers: series %q emitted by both %s and %s", s.Name, owner, e.Name)
			}
			series[s.Name] = e.Name
		}
		t.index[e.Name] = len(t.entries)
		t.entries = append(t.entries, e)
	}

	if len(t.entries) == 0 {
		return nil, errors.New("registers: empty table")
	}
	return t, nil
}

// Entries returns a copy of all entries in table order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup returns the entry registered under name.
func (t *Table) Lookup(name string) (Entry, error) {
	i, ok := t.index[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return t.entries[i], nil
}

// Select resolves names to entries, returned in table order regardless of
// the order of names. An empty selection returns the whole table.
func (t *Table) Select(names []string) ([]Entry, error) {
	if len(names) == 0 {
		return t.Entries(), nil
	}

	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, err := t.Lookup(n); err != nil {
			return nil, err
		}
		want[n] = struct{}{}
	}

	out := make([]Entry, 0, len(want))
	for _, e := range t.entries {
		if _, ok := want[e.Name]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Series is one metric name as it appears in the sink, with its unit.
type Series struct {
	Name string
	Unit Unit
}

// Series lists the metric names an entry emits. Split encodings emit their
// sub-metric names instead of the entry name.
func (e Entry) Series() []Series {
	switch enc := e.Encoding.(type) {
	case UInt8Pair:
		return []Series{{Name: enc.High, Unit: e.Unit}, {Name: enc.Low, Unit: e.Unit}}
	case BitFlags:
		out := make([]Series, 0, len(enc.Flags))
		for _, b := range enc.Bits() {
			out = append(out, Series{Name: enc.Flags[b], Unit: UnitFlag})
		}
		return out
	default:
		return []Series{{Name: e.Name, Unit: e.Unit}}
	}
}

// Series lists every emitted metric of the table in table order.
func (t *Table) Series() []Series {
	var out []Series
	for _, e := range t.entries {
		out = append(out, e.Series()...)
	}
	return out
}

func (e Entry) validate() error {
	if e.Name == "" {
		return errors.New("registers: entry name required")
	}
	if e.Start < 1 {
		return fmt.Errorf("registers: %s: start address must be >= 1", e.Name)
	}
	if e.Words < 1 {
		return fmt.Errorf("registers: %s: word count must be >= 1", e.Name)
	}
	if e.Encoding == nil {
		return fmt.Errorf("registers: %s: encoding required", e.Name)
	}
	if want := e.Encoding.WordCount(); want != e.Words {
		return fmt.Errorf(
			"registers: %s: %s needs %d words, entry declares %d",
			e.Name, e.Encoding, want, e.Words,
		)
	}
	if uint32(e.Start)+uint32(e.Words)-1 > 0xFFFF+1 {
		return fmt.Errorf("registers: %s: range exceeds address space", e.Name)
	}
	return e.Encoding.validate(e.Name)
}
