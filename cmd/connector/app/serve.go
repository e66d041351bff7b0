// cmd/connector/app/serve.go
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/battery-modbus-connector/internal/api"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP query API over the InfluxDB sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), o)
		},
	}
}

func serve(parent context.Context, o *Options) error {
	tbl := registers.Default()

	c, log, err := o.load(scopeQuery, tbl)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if c.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ic := c.Sinks.Influx
	q, err := api.NewInfluxQuerier(api.InfluxConfig{
		URL:         ic.URL,
		Token:       ic.Token,
		Org:         ic.Org,
		Bucket:      ic.Bucket,
		Measurement: c.Poll.Measurement,
		Timeout:     time.Duration(ic.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(q, tbl.Series(), log)
	if err := api.Serve(ctx, c.API.Listen, router, shutdownTimeout, log); err != nil {
		log.Error("query api failed", zap.Error(err))
		return err
	}
	return nil
}
