// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables understood by the connector. They override the
// config file so an existing .env based deployment keeps working.
const (
	EnvDeviceHost     = "E3DC_IP"
	EnvDevicePort     = "E3DC_PORT"
	EnvDeviceUnitID   = "E3DC_UNIT_ID"
	EnvInfluxHost     = "INFLUXDB_HOST"
	EnvInfluxToken    = "INFLUXDB_TOKEN"
	EnvInfluxOrg      = "INFLUXDB_ORG"
	EnvInfluxBucket   = "INFLUXDB_BUCKET"
	EnvPollIntervalMs = "POLL_INTERVAL_MS"
	EnvMQTTBroker     = "MQTT_BROKER"
	EnvLogLevel       = "LOG_LEVEL"
	EnvAPIPort        = "PORT"
)

// Load reads the YAML file at path (optional when empty) and applies
// environment overrides. It does not validate or fill defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment values onto cfg.
// lookup is os.LookupEnv in production.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDeviceHost); ok && v != "" {
		cfg.Device.Host = v
	}
	if v, ok := lookup(EnvDevicePort); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvDevicePort, err)
		}
		cfg.Device.Port = n
	}
	if v, ok := lookup(EnvDeviceUnitID); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvDeviceUnitID, err)
		}
		cfg.Device.UnitID = uint8(n)
	}
	if v, ok := lookup(EnvPollIntervalMs); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvPollIntervalMs, err)
		}
		cfg.Poll.IntervalMs = n
	}

	// InfluxDB: any variable opts the sink in.
	ic := InfluxConfig{}
	if cfg.Sinks.Influx != nil {
		ic = *cfg.Sinks.Influx
	}
	influxSet := false
	for env, dst := range map[string]*string{
		EnvInfluxHost:   &ic.URL,
		EnvInfluxToken:  &ic.Token,
		EnvInfluxOrg:    &ic.Org,
		EnvInfluxBucket: &ic.Bucket,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
			influxSet = true
		}
	}
	if influxSet || cfg.Sinks.Influx != nil {
		cfg.Sinks.Influx = &ic
	}

	if v, ok := lookup(EnvMQTTBroker); ok && v != "" {
		if cfg.Sinks.MQTT == nil {
			cfg.Sinks.MQTT = &MQTTConfig{}
		}
		cfg.Sinks.MQTT.Broker = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvAPIPort); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: %s: %w", EnvAPIPort, err)
		}
		cfg.API.Listen = ":" + v
	}

	return nil
}
