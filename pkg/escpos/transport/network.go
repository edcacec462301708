// pkg/escpos/transport/network.go
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"escpos-driver/pkg/escpos"
)

// NetworkConfig configures a raw TCP sink. Most printers listen on 9100.
type NetworkConfig struct {
	Host         string        `mapstructure:"host" json:"host"`
	Port         int           `mapstructure:"port" json:"port"`
	KeepAlive    bool          `mapstructure:"keep_alive" json:"keep_alive"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
}

// NetworkSink implements Sink over a TCP connection.
type NetworkSink struct {
	config *NetworkConfig
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  *Stats
}

// NewNetworkSink creates a TCP sink for the given printer address.
func NewNetworkSink(config *NetworkConfig, logger *zap.Logger) *NetworkSink {
	return &NetworkSink{
		config: config,
		logger: logger.With(
			zap.String("transport", "network"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
		stats: &Stats{},
	}
}

// Open dials the printer.
func (ns *NetworkSink) Open(ctx context.Context) error {
	ns.mutex.Lock()
	defer ns.mutex.Unlock()

	if ns.isOpen {
		return nil
	}

	ns.logger.Info("Opening network connection")

	dialer := &net.Dialer{
		Timeout:   ns.config.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	address := fmt.Sprintf("%s:%d", ns.config.Host, ns.config.Port)
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		ns.logger.Error("Failed to open network connection", zap.Error(err))
		return fmt.Errorf("%w: connect to %s: %v", escpos.ErrIO, address, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok && ns.config.KeepAlive {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}

	ns.conn = conn
	ns.isOpen = true
	ns.stats.IsConnected = true
	ns.stats.LastActivity = time.Now()

	ns.logger.Info("Network connection opened")
	return nil
}

// Close closes the connection.
func (ns *NetworkSink) Close() error {
	ns.mutex.Lock()
	defer ns.mutex.Unlock()

	if !ns.isOpen || ns.conn == nil {
		return nil
	}

	if err := ns.conn.Close(); err != nil {
		ns.logger.Error("Failed to close network connection", zap.Error(err))
		return fmt.Errorf("%w: close: %v", escpos.ErrIO, err)
	}

	ns.conn = nil
	ns.isOpen = false
	ns.stats.IsConnected = false

	ns.logger.Info("Network connection closed")
	return nil
}

// IsOpen returns whether the connection is open.
func (ns *NetworkSink) IsOpen() bool {
	ns.mutex.RLock()
	defer ns.mutex.RUnlock()
	return ns.isOpen && ns.conn != nil
}

// Write transmits data to the printer.
func (ns *NetworkSink) Write(ctx context.Context, data []byte) error {
	ns.mutex.RLock()
	defer ns.mutex.RUnlock()

	if !ns.isOpen || ns.conn == nil {
		return fmt.Errorf("%w: network sink", escpos.ErrClosed)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if ns.config.WriteTimeout > 0 {
		ns.conn.SetWriteDeadline(time.Now().Add(ns.config.WriteTimeout))
	}

	startTime := time.Now()
	n, err := ns.conn.Write(data)
	if err != nil {
		ns.stats.ErrorCount++
		ns.logger.Error("Network write failed", zap.Error(err))
		return fmt.Errorf("%w: write: %v", escpos.ErrIO, err)
	}
	if n != len(data) {
		ns.stats.ErrorCount++
		return fmt.Errorf("%w: incomplete write: %d of %d bytes", escpos.ErrIO, n, len(data))
	}

	ns.stats.recordWrite(len(data), time.Since(startTime))
	ns.logger.Debug("Network write completed", zap.Int("bytes", len(data)))
	return nil
}

// Read receives status bytes from the printer.
func (ns *NetworkSink) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	ns.mutex.RLock()
	defer ns.mutex.RUnlock()

	if !ns.isOpen || ns.conn == nil {
		return nil, fmt.Errorf("%w: network sink", escpos.ErrClosed)
	}

	if ns.config.ReadTimeout > 0 {
		ns.conn.SetReadDeadline(time.Now().Add(ns.config.ReadTimeout))
	}

	buffer := make([]byte, maxBytes)

	done := make(chan readResult, 1)
	go func() {
		n, err := ns.conn.Read(buffer)
		if err != nil {
			done <- readResult{err: fmt.Errorf("%w: read: %v", escpos.ErrIO, err)}
			return
		}
		data := make([]byte, n)
		copy(data, buffer[:n])
		done <- readResult{data: data}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			ns.stats.ErrorCount++
			return nil, result.err
		}
		ns.stats.recordRead(len(result.data))
		return result.data, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush is a no-op; TCP writes are not buffered by the sink.
func (ns *NetworkSink) Flush() error {
	ns.mutex.RLock()
	defer ns.mutex.RUnlock()
	if !ns.isOpen {
		return fmt.Errorf("%w: connection not open", escpos.ErrClosed)
	}
	return nil
}

// Type returns the transport type.
func (ns *NetworkSink) Type() Type {
	return TypeNetwork
}

type readResult struct {
	data []byte
	err  error
}
