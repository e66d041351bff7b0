// cmd/connector/app/run.go
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/battery-modbus-connector/internal/poller"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
	"github.com/tamzrod/battery-modbus-connector/internal/writer"
)

func newRunCmd(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the device every interval until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}
}

func run(parent context.Context, o *Options) error {
	tbl := registers.Default()

	c, log, err := o.load(scopeFull, tbl)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// ---- sinks ----
	sink, closeSinks, err := writer.Build(c.Sinks)
	if err != nil {
		log.Error("sink setup failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := closeSinks(); err != nil {
			log.Warn("sink close failed", zap.Error(err))
		}
	}()

	// ---- device ----
	p, closeDevice, err := poller.Build(c, tbl, sink, log)
	if err != nil {
		log.Error("device setup failed",
			zap.String("endpoint", c.Device.Endpoint()),
			zap.Error(err))
		return err
	}
	defer func() {
		if err := closeDevice(); err != nil {
			log.Warn("device close failed", zap.Error(err))
		}
	}()

	log.Info("connected",
		zap.String("endpoint", c.Device.Endpoint()),
		zap.Uint8("unit_id", c.Device.UnitID))

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = p.Run(ctx)
	switch {
	case err == nil:
		log.Info("shutdown complete")
		return nil
	case errors.Is(err, poller.ErrConnectionLost):
		log.Error("giving up on device", zap.Error(err))
		return err
	default:
		log.Error("polling failed", zap.Error(err))
		return err
	}
}
