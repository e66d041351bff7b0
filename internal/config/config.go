// internal/config/config.go
package config

import (
	"net"
	"strconv"
)

type Config struct {
	Device DeviceConfig `yaml:"device"`
	Poll   PollConfig   `yaml:"poll"`
	Status StatusConfig `yaml:"status"`
	Sinks  SinksConfig  `yaml:"sinks"`
	API    APIConfig    `yaml:"api"`
	Log    LogConfig    `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Endpoint is the host:port of the Modbus TCP server.
func (d DeviceConfig) Endpoint() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs  int    `yaml:"interval_ms"`
	Measurement string `yaml:"measurement"`

	// Metrics restricts the sweep to these register names.
	// Empty means the whole register table.
	Metrics []string `yaml:"metrics"`

	// MaxDeadSweeps is how many consecutive sweeps may lose the connection
	// on every read before the loop gives up. 0 disables the limit.
	MaxDeadSweeps int `yaml:"max_dead_sweeps"`
}

// ---- STATUS POINT (OPT-IN) ----

type StatusConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Measurement string `yaml:"measurement"`
}

// ---- SINKS ----

type SinksConfig struct {
	Influx *InfluxConfig `yaml:"influx"`
	MQTT   *MQTTConfig   `yaml:"mqtt"`

	// WriteTimeoutMs bounds every single sink write.
	WriteTimeoutMs int `yaml:"write_timeout_ms"`
}

type InfluxConfig struct {
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	Org       string `yaml:"org"`
	Bucket    string `yaml:"bucket"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// ---- QUERY API ----

type APIConfig struct {
	Listen string `yaml:"listen"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
