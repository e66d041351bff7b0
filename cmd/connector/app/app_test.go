package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tamzrod/battery-modbus-connector/internal/decoder"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

func TestConnectorCmd_Subcommands(t *testing.T) {
	cmd := NewConnectorCmd()

	for _, name := range []string{"run", "info", "serve"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "env-file", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestIdentityFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	log.Info("device identity", zap.Dict("identity", identityFields([]decoder.Metric{
		{Name: "magic_byte", Unit: registers.UnitRaw, Kind: decoder.KindInt, Int: 0xE3DC},
		{Name: "firmware_major", Unit: registers.UnitRaw, Kind: decoder.KindInt, Int: 1},
		{Name: "firmware_minor", Unit: registers.UnitRaw, Kind: decoder.KindInt, Int: 2},
		{Name: "manufacturer", Unit: registers.UnitText, Kind: decoder.KindText, Text: "E3/DC GmbH"},
		{Name: "register_count", Unit: registers.UnitRaw, Kind: decoder.KindInt, Int: 69},
	})...))

	require.Equal(t, 1, logs.Len())
	id, ok := logs.All()[0].ContextMap()["identity"].(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "0xE3DC", id["magic_byte"])
	assert.Equal(t, "1.2", id["firmware"])
	assert.Equal(t, "E3/DC GmbH", id["manufacturer"])
	assert.Equal(t, int64(69), id["register_count"])
	assert.NotContains(t, id, "firmware_major")
}

func TestLoad_ScopeDevice(t *testing.T) {
	t.Setenv("E3DC_IP", "192.0.2.10")
	t.Setenv("E3DC_PORT", "")
	t.Setenv("INFLUXDB_HOST", "")
	t.Setenv("INFLUXDB_TOKEN", "")
	t.Setenv("INFLUXDB_ORG", "")
	t.Setenv("INFLUXDB_BUCKET", "")
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("E3DC_UNIT_ID", "")
	t.Setenv("POLL_INTERVAL_MS", "")
	t.Setenv("PORT", "")

	o := &Options{LogLevel: "warn"}
	c, log, err := o.load(scopeDevice, registers.Default())
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.Equal(t, "192.0.2.10:502", c.Device.Endpoint())
	assert.Equal(t, "warn", c.Log.Level)

	// the full scope wants a sink
	_, _, err = o.load(scopeFull, registers.Default())
	assert.Error(t, err)

	_, _, err = o.load(scopeQuery, registers.Default())
	assert.Error(t, err)
}
