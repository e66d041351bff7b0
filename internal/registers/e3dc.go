// internal/registers/e3dc.go
package registers

// E3DC simple-mode holding register layout.
// Register numbers follow the device manual (1-based).
// The EMS block is listed in 4xxxx numbering in the manual; it is kept as
// published and translated like every other entry.

const (
	stringWords = 16
)

// Default returns the register table of the supported device family.
func Default() *Table {
	t, err := NewTable(defaultEntries()...)
	if err != nil {
		// static table: a failure here is a programming error
		panic(err)
	}
	return t
}

func defaultEntries() []Entry {
	return []Entry{
		// ---- identity ----
		{Name: "magic_byte", Start: 1, Words: 1, Encoding: UInt16{}, Unit: UnitRaw},
		{Name: "firmware", Start: 2, Words: 1, Encoding: UInt8Pair{High: "firmware_major", Low: "firmware_minor"}, Unit: UnitRaw},
		{Name: "register_count", Start: 3, Words: 1, Encoding: UInt16{}, Unit: UnitRaw},
		{Name: "manufacturer", Start: 4, Words: stringWords, Encoding: FixedString{Length: stringWords}, Unit: UnitText},
		{Name: "model", Start: 20, Words: stringWords, Encoding: FixedString{Length: stringWords}, Unit: UnitText},
		{Name: "serial_number", Start: 36, Words: stringWords, Encoding: FixedString{Length: stringWords}, Unit: UnitText},
		{Name: "firmware_version", Start: 52, Words: stringWords, Encoding: FixedString{Length: stringWords}, Unit: UnitText},

		// ---- power flows ----
		{Name: "pv_power", Start: 68, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},
		{Name: "battery_power", Start: 70, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},
		{Name: "house_consumption", Start: 72, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},
		{Name: "grid_power", Start: 74, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},
		{Name: "additional_feed_in_power", Start: 76, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},
		{Name: "wallbox_consumption", Start: 78, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},
		{Name: "wallbox_solar_consumption", Start: 80, Words: 2, Encoding: Int32LittleWordOrder{}, Unit: UnitWatts},

		// ---- ratios ----
		{Name: "efficiency", Start: 82, Words: 1, Encoding: UInt8Pair{High: "self_sufficiency", Low: "self_consumption"}, Unit: UnitPercent},
		{Name: "battery_soc", Start: 83, Words: 1, Encoding: UInt16{}, Unit: UnitPercent},

		// ---- emergency power & EMS ----
		{Name: "emergency_power_status", Start: 40084, Words: 1, Encoding: UInt16{}, Unit: UnitRaw},
		{Name: "ems_status", Start: 40085, Words: 1, Encoding: BitFlags{Flags: map[uint8]string{
			0: "battery_charging_locked",
			1: "battery_discharging_locked",
			2: "emergency_power_possible",
			3: "weather_based_charging",
			4: "curtailment_active",
			5: "charging_lock_active",
			6: "discharging_lock_active",
		}}, Unit: UnitFlag},
		{Name: "ems_remote_control", Start: 40086, Words: 1, Encoding: UInt16{}, Unit: UnitRaw},
		{Name: "ems_ctrl", Start: 40087, Words: 1, Encoding: UInt16{}, Unit: UnitRaw},
	}
}

// IdentityNames lists the static identity entries read by the info command.
var IdentityNames = []string{
	"magic_byte",
	"firmware",
	"register_count",
	"manufacturer",
	"model",
	"serial_number",
	"firmware_version",
}
