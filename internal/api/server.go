// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

const (
	DefaultRangeHours       = 1
	DefaultAggregateMinutes = 1

	// MaxRangeHours caps the lookback of a single request (one year).
	MaxRangeHours = 24 * 366
)

// NewRouter exposes one GET route per numeric series plus /api/now.
func NewRouter(q Querier, series []registers.Series, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors.Default())

	g := r.Group("/api")
	g.GET("/now", latestHandler(q, log))

	for _, s := range series {
		if !s.Unit.Numeric() {
			continue
		}
		g.GET("/"+s.Name, seriesHandler(q, s, log))
	}

	return r
}

func seriesHandler(q Querier, s registers.Series, log *zap.Logger) gin.HandlerFunc {
	field := s.Unit.FieldKey()

	return func(c *gin.Context) {
		rangeHours, err := intParam(c, "range", DefaultRangeHours, MaxRangeHours)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		aggregate, err := intParam(c, "aggregate", DefaultAggregateMinutes, rangeHours*60)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		points, err := q.Series(c.Request.Context(), Query{
			Metric:           s.Name,
			Field:            field,
			RangeHours:       rangeHours,
			AggregateMinutes: aggregate,
		})
		if err != nil {
			log.Warn("series query failed", zap.String("metric", s.Name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, points)
	}
}

func latestHandler(q Querier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := q.Latest(c.Request.Context())
		if err != nil {
			log.Warn("latest query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

// intParam reads a positive integer query parameter in [1, max].
func intParam(c *gin.Context, name string, def, max int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > max {
		return 0, errors.New(name + " must be an integer between 1 and " + strconv.Itoa(max))
	}
	return v, nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within shutdownTimeout.
func Serve(ctx context.Context, listen string, h http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("query api listening", zap.String("listen", listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	log.Info("query api stopped")
	return nil
}
