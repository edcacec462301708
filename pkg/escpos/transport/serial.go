// pkg/escpos/transport/serial.go
package transport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"escpos-driver/pkg/escpos"
)

// SerialConfig configures a serial line sink.
type SerialConfig struct {
	Port     string        `mapstructure:"port" json:"port"`
	BaudRate int           `mapstructure:"baud_rate" json:"baud_rate"`
	DataBits int           `mapstructure:"data_bits" json:"data_bits"`
	StopBits int           `mapstructure:"stop_bits" json:"stop_bits"`
	Parity   string        `mapstructure:"parity" json:"parity"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
}

// SerialSink implements Sink over a serial port.
type SerialSink struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  *Stats
}

// NewSerialSink creates a serial sink for the given port.
func NewSerialSink(config *SerialConfig, logger *zap.Logger) *SerialSink {
	return &SerialSink{
		config: config,
		logger: logger.With(
			zap.String("transport", "serial"),
			zap.String("port", config.Port),
		),
		stats: &Stats{},
	}
}

// Open opens the serial port.
func (ss *SerialSink) Open(ctx context.Context) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.isOpen {
		return nil
	}

	ss.logger.Info("Opening serial port",
		zap.Int("baud_rate", ss.config.BaudRate),
	)

	mode := &serial.Mode{
		BaudRate: ss.config.BaudRate,
		DataBits: ss.config.DataBits,
		StopBits: serial.StopBits(ss.config.StopBits),
	}

	switch ss.config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(ss.config.Port, mode)
	if err != nil {
		ss.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("%w: open %s: %v", escpos.ErrIO, ss.config.Port, err)
	}

	if err := port.SetReadTimeout(ss.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("%w: set read timeout: %v", escpos.ErrIO, err)
	}

	ss.port = port
	ss.isOpen = true
	ss.stats.IsConnected = true
	ss.stats.LastActivity = time.Now()

	ss.logger.Info("Serial port opened")
	return nil
}

// Close closes the serial port.
func (ss *SerialSink) Close() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isOpen || ss.port == nil {
		return nil
	}

	if err := ss.port.Close(); err != nil {
		ss.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("%w: close: %v", escpos.ErrIO, err)
	}

	ss.port = nil
	ss.isOpen = false
	ss.stats.IsConnected = false

	ss.logger.Info("Serial port closed")
	return nil
}

// IsOpen returns whether the port is open.
func (ss *SerialSink) IsOpen() bool {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return ss.isOpen && ss.port != nil
}

// Write transmits data over the serial line.
func (ss *SerialSink) Write(ctx context.Context, data []byte) error {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isOpen || ss.port == nil {
		return fmt.Errorf("%w: serial sink", escpos.ErrClosed)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startTime := time.Now()
	n, err := ss.port.Write(data)
	if err != nil {
		ss.stats.ErrorCount++
		ss.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("%w: write: %v", escpos.ErrIO, err)
	}
	if n != len(data) {
		ss.stats.ErrorCount++
		return fmt.Errorf("%w: incomplete write: %d of %d bytes", escpos.ErrIO, n, len(data))
	}

	ss.stats.recordWrite(len(data), time.Since(startTime))
	ss.logger.Debug("Serial write completed", zap.Int("bytes", len(data)))
	return nil
}

// Read receives status bytes from the printer.
func (ss *SerialSink) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isOpen || ss.port == nil {
		return nil, fmt.Errorf("%w: serial sink", escpos.ErrClosed)
	}

	buffer := make([]byte, maxBytes)

	done := make(chan readResult, 1)
	go func() {
		n, err := ss.port.Read(buffer)
		if err != nil && err != io.EOF {
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
			ss.stats.ErrorCount++
			return nil, result.err
		}
		ss.stats.recordRead(len(result.data))
		return result.data, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush drains the port's transmit buffer by way of the driver; go.bug.st
// writes synchronously, so there is nothing further to push.
func (ss *SerialSink) Flush() error {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	if !ss.isOpen {
		return fmt.Errorf("%w: port not open", escpos.ErrClosed)
	}
	return nil
}

// Type returns the transport type.
func (ss *SerialSink) Type() Type {
	return TypeSerial
}
