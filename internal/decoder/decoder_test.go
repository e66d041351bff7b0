// internal/decoder/decoder_test.go
package decoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

func entry(t *testing.T, name string) registers.Entry {
	t.Helper()
	e, err := registers.Default().Lookup(name)
	require.NoError(t, err)
	return e
}

func TestSplitBytes_AllValues(t *testing.T) {
	for v := 0; v <= 0xFFFF; v++ {
		hi, lo := SplitBytes(uint16(v))
		if uint8(v>>8) != hi || uint8(v&0xFF) != lo {
			t.Fatalf("v=%#04x: got (%d,%d)", v, hi, lo)
		}
		if int(hi)*256+int(lo) != v {
			t.Fatalf("v=%#04x: hi*256+lo=%d", v, int(hi)*256+int(lo))
		}
	}
}

func TestInt32_RoundTrip(t *testing.T) {
	words := []uint16{0x0000, 0x0001, 0x7FFF, 0x8000, 0xFFFE, 0xFFFF, 0x1234}
	for _, lo := range words {
		for _, hi := range words {
			v := Int32LowWordFirst(lo, hi)
			gotLo, gotHi := Int32Words(v)
			require.Equal(t, lo, gotLo, "lo for (%#x,%#x)", lo, hi)
			require.Equal(t, hi, gotHi, "hi for (%#x,%#x)", lo, hi)
		}
	}
}

func TestInt32_TwosComplement(t *testing.T) {
	assert.Equal(t, int32(-1), Int32LowWordFirst(0xFFFF, 0xFFFF))
	assert.Equal(t, int32(-2), Int32LowWordFirst(0xFFFE, 0xFFFF))
	assert.Equal(t, int32(-65536), Int32LowWordFirst(0x0000, 0xFFFF))
	assert.Equal(t, int32(65536), Int32LowWordFirst(0x0000, 0x0001))
	assert.Equal(t, int32(1500), Int32LowWordFirst(1500, 0))
	assert.Less(t, Int32LowWordFirst(0x1234, 0xFFFF), int32(0))
}

func TestDecode_UInt16(t *testing.T) {
	got, err := Decode(entry(t, "battery_soc"), Block{Start: 83, Words: []uint16{87}})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "battery_soc", got[0].Name)
	assert.Equal(t, int64(87), got[0].Int)

	key, val := got[0].Field()
	assert.Equal(t, "value_percent", key)
	assert.Equal(t, int64(87), val)
}

func TestDecode_UInt16_Unsigned(t *testing.T) {
	got, err := Decode(entry(t, "magic_byte"), Block{Start: 1, Words: []uint16{0xE3DC}})
	require.NoError(t, err)
	assert.Equal(t, int64(0xE3DC), got[0].Int)
}

func TestDecode_Firmware(t *testing.T) {
	got, err := Decode(entry(t, "firmware"), Block{Start: 2, Words: []uint16{0x0102}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "firmware_major", got[0].Name)
	assert.Equal(t, int64(1), got[0].Int)
	assert.Equal(t, "firmware_minor", got[1].Name)
	assert.Equal(t, int64(2), got[1].Int)
}

func TestDecode_Efficiency(t *testing.T) {
	// 80% self sufficiency, 95% self consumption
	got, err := Decode(entry(t, "efficiency"), Block{Start: 82, Words: []uint16{80<<8 | 95}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "self_sufficiency", got[0].Name)
	assert.Equal(t, int64(80), got[0].Int)
	assert.Equal(t, "self_consumption", got[1].Name)
	assert.Equal(t, int64(95), got[1].Int)

	key, _ := got[0].Field()
	assert.Equal(t, "value_percent", key)
}

func TestDecode_Power(t *testing.T) {
	lo, hi := Int32Words(-2500)
	got, err := Decode(entry(t, "grid_power"), Block{Start: 74, Words: []uint16{lo, hi}})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, int64(-2500), got[0].Int)
	key, val := got[0].Field()
	assert.Equal(t, "value_watts", key)
	assert.Equal(t, int64(-2500), val)
}

func TestDecode_String(t *testing.T) {
	// "E3/DC GmbH" packed big-endian, NUL padded to 16 words
	words := make([]uint16, 16)
	text := []byte("E3/DC GmbH")
	for i := 0; i < len(text); i += 2 {
		var lo byte
		if i+1 < len(text) {
			lo = text[i+1]
		}
		words[i/2] = uint16(text[i])<<8 | uint16(lo)
	}

	got, err := Decode(entry(t, "manufacturer"), Block{Start: 4, Words: words})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, KindText, got[0].Kind)
	assert.Equal(t, "E3/DC GmbH", got[0].Text)

	key, val := got[0].Field()
	assert.Equal(t, "value_text", key)
	assert.Equal(t, "E3/DC GmbH", val)
}

func TestDecode_String_AllZeroIsEmpty(t *testing.T) {
	for _, n := range []int{1, 2, 7, 16} {
		words := make([]uint16, n)
		first, err := TrimmedString(words)
		require.NoError(t, err)
		again, err := TrimmedString(words)
		require.NoError(t, err)

		assert.Equal(t, "", first)
		assert.Equal(t, first, again)
	}

	got, err := Decode(entry(t, "model"), Block{Start: 20, Words: make([]uint16, 16)})
	require.NoError(t, err)
	assert.Equal(t, "", got[0].Text)
}

func TestDecode_String_InvalidUTF8(t *testing.T) {
	words := make([]uint16, 16)
	words[0] = 0xFFFE

	_, err := Decode(entry(t, "serial_number"), Block{Start: 36, Words: words})

	var de *DecodeError
	require.True(t, errors.As(err, &de), "expected DecodeError, got %v", err)
	assert.Equal(t, "serial_number", de.Metric)
}

func TestDecode_BitFlags(t *testing.T) {
	e := entry(t, "ems_status")
	names := []string{
		"battery_charging_locked",
		"battery_discharging_locked",
		"emergency_power_possible",
		"weather_based_charging",
		"curtailment_active",
		"charging_lock_active",
		"discharging_lock_active",
	}

	none, err := Decode(e, Block{Start: 40085, Words: []uint16{0}})
	require.NoError(t, err)
	require.Len(t, none, len(names))
	for i, m := range none {
		assert.Equal(t, names[i], m.Name)
		assert.False(t, m.Bool, m.Name)

		key, val := m.Field()
		assert.Equal(t, "value", key)
		assert.Equal(t, int64(0), val)
	}

	all, err := Decode(e, Block{Start: 40085, Words: []uint16{0xFFFF}})
	require.NoError(t, err)
	require.Len(t, all, len(names))
	for _, m := range all {
		assert.True(t, m.Bool, m.Name)
	}

	// each bit maps to exactly its own flag
	for bit := range names {
		got, err := Decode(e, Block{Start: 40085, Words: []uint16{1 << bit}})
		require.NoError(t, err)
		for i, m := range got {
			assert.Equal(t, i == bit, m.Bool, "bit %d flag %s", bit, m.Name)
		}
	}
}

func TestDecode_WordCountMismatch(t *testing.T) {
	cases := map[string][]uint16{
		"pv_power":     {1},
		"battery_soc":  {1, 2},
		"manufacturer": make([]uint16, 15),
		"ems_status":   nil,
	}

	for name, words := range cases {
		_, err := Decode(entry(t, name), Block{Words: words})

		var de *DecodeError
		require.True(t, errors.As(err, &de), "%s: expected DecodeError, got %v", name, err)
		assert.Equal(t, name, de.Metric)
	}
}
