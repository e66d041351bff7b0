// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/goburrow/modbus"
)

// Client implements poller.Client using Modbus TCP.
// This adapter is geometry-only: it issues reads and unpacks raw responses.
// Addresses are 0-based wire addresses.
type Client struct {
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// ConnError marks a failure of the TCP connection itself, as opposed to a
// Modbus exception returned by a healthy device.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string { return "modbus connection: " + e.Err.Error() }

func (e *ConnError) Unwrap() error { return e.Err }

// ConnectionLost lets callers classify the error without importing this package.
func (e *ConnError) ConnectionLost() bool { return true }

// New creates a connected Modbus TCP client.
// The initial dial fails fast; later reads redial on demand.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, &ConnError{Err: fmt.Errorf("connect %s: %w", cfg.Endpoint, err)}
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// ---- poller.Client interface ----

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	if qty == 0 {
		return nil, nil
	}

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		if isConnectionError(err) {
			// Drop the socket so the next request redials instead of
			// reading a late response from this one.
			_ = c.handler.Close()
			return nil, &ConnError{Err: err}
		}
		return nil, err
	}

	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf(
			"modbus: read-registers payload length %d, want %d",
			len(raw), int(qty)*2,
		)
	}
	return unpackRegisters(raw), nil
}

// ---- helpers ----

func isConnectionError(err error) bool {
	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

// Modbus register memory order (BIG-ENDIAN)
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
