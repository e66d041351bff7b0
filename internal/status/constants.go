// internal/status/constants.go
package status

// Connector status point layout.
// Field names are part of the sink schema and MUST NOT be configurable.

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first sweep.
const HealthUnknown uint16 = 0

// HealthOK means every read of the last sweep succeeded.
const HealthOK uint16 = 1

// HealthDegraded means some, but not all, reads of the last sweep failed.
const HealthDegraded uint16 = 2

// HealthError means every read of the last sweep failed.
const HealthError uint16 = 3

// ---- FIELDS ----

const (
	FieldHealth         = "health"
	FieldFailedReads    = "failed_reads"
	FieldLastErrorCode  = "last_error_code"
	FieldSecondsInError = "seconds_in_error"
)

// ---- LIMITS ----

// SecondsInErrorMax is the saturation value of the seconds counter.
const SecondsInErrorMax = 65535

// GenericErrorCode is used when an error carries no device exception code.
const GenericErrorCode uint16 = 1
