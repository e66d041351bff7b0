// internal/config/validate.go
package config

import (
	"errors"
	"fmt"

	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

// Validate checks configuration correctness against the register table.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config, tbl *registers.Table) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if err := ValidateDevice(cfg.Device); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return errors.New("poll.interval_ms must be >= 0")
	}
	if cfg.Poll.MaxDeadSweeps < 0 {
		return errors.New("poll.max_dead_sweeps must be >= 0")
	}

	seen := make(map[string]struct{}, len(cfg.Poll.Metrics))
	for _, name := range cfg.Poll.Metrics {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("poll.metrics: %q listed twice", name)
		}
		seen[name] = struct{}{}

		// unknown names are a startup error, never a runtime one
		if _, err := tbl.Lookup(name); err != nil {
			return fmt.Errorf("poll.metrics: %w", err)
		}
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	if cfg.Sinks.Influx == nil && cfg.Sinks.MQTT == nil {
		return errors.New("sinks: at least one of influx or mqtt must be configured")
	}
	if cfg.Sinks.WriteTimeoutMs < 0 {
		return errors.New("sinks.write_timeout_ms must be >= 0")
	}

	if ic := cfg.Sinks.Influx; ic != nil {
		if ic.URL == "" {
			return fmt.Errorf("sinks.influx.url is required (or set %s)", EnvInfluxHost)
		}
		if ic.Org == "" {
			return fmt.Errorf("sinks.influx.org is required (or set %s)", EnvInfluxOrg)
		}
		if ic.TimeoutMs < 0 {
			return errors.New("sinks.influx.timeout_ms must be >= 0")
		}
	}

	if mc := cfg.Sinks.MQTT; mc != nil {
		if mc.Broker == "" {
			return fmt.Errorf("sinks.mqtt.broker is required (or set %s)", EnvMQTTBroker)
		}
		if mc.QoS > 2 {
			return fmt.Errorf("sinks.mqtt.qos %d invalid (0, 1 or 2)", mc.QoS)
		}
		if mc.TimeoutMs < 0 {
			return errors.New("sinks.mqtt.timeout_ms must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q invalid", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format %q invalid", cfg.Log.Format)
	}

	return nil
}

// ValidateDevice checks the device section alone. Commands that only talk
// to the device use it instead of Validate.
func ValidateDevice(d DeviceConfig) error {
	if d.Host == "" {
		return fmt.Errorf("device.host is required (or set %s)", EnvDeviceHost)
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("device.port %d out of range", d.Port)
	}
	if d.TimeoutMs < 0 {
		return errors.New("device.timeout_ms must be >= 0")
	}
	return nil
}
