// cmd/connector/app/info.go
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/battery-modbus-connector/internal/decoder"
	"github.com/tamzrod/battery-modbus-connector/internal/poller"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

func newInfoCmd(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Read and log the device identity registers once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return info(o)
		},
	}
}

func info(o *Options) error {
	tbl := registers.Default()

	c, log, err := o.load(scopeDevice, tbl)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := poller.Dial(c.Device)
	if err != nil {
		log.Error("device connect failed", zap.String("endpoint", c.Device.Endpoint()), zap.Error(err))
		return err
	}
	defer func() { _ = client.Close() }()

	entries, err := tbl.Select(registers.IdentityNames)
	if err != nil {
		return err
	}

	var metrics []decoder.Metric
	failed := 0
	for _, e := range entries {
		ms, err := poller.ReadEntry(client, e)
		if err != nil {
			failed++
			log.Warn("identity register unreadable", zap.String("metric", e.Name), zap.Error(err))
			continue
		}
		metrics = append(metrics, ms...)
	}

	log.Info("device identity",
		zap.String("endpoint", c.Device.Endpoint()),
		zap.Uint8("unit_id", c.Device.UnitID),
		zap.Dict("identity", identityFields(metrics)...))

	if failed == len(entries) {
		return fmt.Errorf("no identity register could be read from %s", c.Device.Endpoint())
	}
	return nil
}

// identityFields renders identity metrics for humans: the magic byte in hex
// and the firmware as major.minor.
func identityFields(metrics []decoder.Metric) []zap.Field {
	var fields []zap.Field
	var major, minor *int64

	for i := range metrics {
		m := metrics[i]
		switch m.Name {
		case "magic_byte":
			fields = append(fields, zap.String(m.Name, fmt.Sprintf("0x%04X", m.Int)))
		case "firmware_major":
			major = &metrics[i].Int
		case "firmware_minor":
			minor = &metrics[i].Int
		default:
			if m.Kind == decoder.KindText {
				fields = append(fields, zap.String(m.Name, m.Text))
			} else {
				fields = append(fields, zap.Int64(m.Name, m.Int))
			}
		}
	}

	if major != nil && minor != nil {
		fields = append(fields, zap.String("firmware", fmt.Sprintf("%d.%d", *major, *minor)))
	}
	return fields
}
