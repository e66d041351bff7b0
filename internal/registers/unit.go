// internal/registers/unit.go
package registers

// Unit is the physical meaning of a decoded value.
// It selects the sink field key, which downstream queries depend on.
type Unit uint8

const (
	UnitRaw Unit = iota
	UnitWatts
	UnitPercent
	UnitVolts
	UnitAmpere
	UnitFlag
	UnitText
)

// Field keys are part of the sink schema. Do not rename.
const (
	FieldValue        = "value"
	FieldValueWatts   = "value_watts"
	FieldValuePercent = "value_percent"
	FieldValueVolts   = "value_volts"
	FieldValueAmpere  = "value_ampere"
	FieldValueText    = "value_text"
)

// FieldKey returns the sink field key for values of this unit.
func (u Unit) FieldKey() string {
	switch u {
	case UnitWatts:
		return FieldValueWatts
	case UnitPercent:
		return FieldValuePercent
	case UnitVolts:
		return FieldValueVolts
	case UnitAmpere:
		return FieldValueAmpere
	case UnitText:
		return FieldValueText
	default:
		return FieldValue
	}
}

func (u Unit) String() string {
	switch u {
	case UnitWatts:
		return "W"
	case UnitPercent:
		return "%"
	case UnitVolts:
		return "V"
	case UnitAmpere:
		return "A"
	case UnitFlag:
		return "flag"
	case UnitText:
		return "text"
	default:
		return "raw"
	}
}

// Numeric reports whether values of this unit can be aggregated.
func (u Unit) Numeric() bool {
	return u != UnitText && u != UnitFlag
}
