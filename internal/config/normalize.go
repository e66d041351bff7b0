// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultDevicePort        = 502
	DefaultUnitID            = 1
	DefaultDeviceTimeoutMs   = 2000
	DefaultPollIntervalMs    = 1000
	DefaultMeasurement       = "battery_modbus_metrics"
	DefaultStatusMeasurement = "battery_modbus_status"
	DefaultInfluxBucket      = "battery-modbus"
	DefaultSinkTimeoutMs     = 5000
	DefaultMQTTTopicPrefix   = "battery"
	DefaultAPIListen         = ":8085"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- device ----
	if cfg.Device.Port == 0 {
		cfg.Device.Port = DefaultDevicePort
	}
	if cfg.Device.UnitID == 0 {
		cfg.Device.UnitID = DefaultUnitID
	}
	if cfg.Device.TimeoutMs == 0 {
		cfg.Device.TimeoutMs = DefaultDeviceTimeoutMs
	}

	// ---- poll ----
	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultPollIntervalMs
	}
	if cfg.Poll.Measurement == "" {
		cfg.Poll.Measurement = DefaultMeasurement
	}

	// ---- status ----
	if cfg.Status.Measurement == "" {
		cfg.Status.Measurement = DefaultStatusMeasurement
	}

	// ---- sinks ----
	if cfg.Sinks.WriteTimeoutMs == 0 {
		cfg.Sinks.WriteTimeoutMs = DefaultSinkTimeoutMs
	}
	if ic := cfg.Sinks.Influx; ic != nil {
		if ic.Bucket == "" {
			ic.Bucket = DefaultInfluxBucket
		}
		if ic.TimeoutMs == 0 {
			ic.TimeoutMs = DefaultSinkTimeoutMs
		}
	}
	if mc := cfg.Sinks.MQTT; mc != nil {
		if mc.TopicPrefix == "" {
			mc.TopicPrefix = DefaultMQTTTopicPrefix
		}
		if mc.TimeoutMs == 0 {
			mc.TimeoutMs = DefaultSinkTimeoutMs
		}
	}

	// ---- api ----
	if cfg.API.Listen == "" {
		cfg.API.Listen = DefaultAPIListen
	}

	// ---- log ----
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
