// Package transport provides the byte sinks a printer writes to: raw TCP
// (port 9100 style), serial lines, USB printer class devices and plain
// io.Writer targets for spooling to files or tests.
package transport

import (
	"context"
	"time"
)

// Type identifies a transport kind.
type Type string

const (
	TypeNetwork Type = "network"
	TypeSerial  Type = "serial"
	TypeUSB     Type = "usb"
	TypeWriter  Type = "writer"
)

// Sink is a connection to a printer. Implementations are safe for
// concurrent use; Write transmits the whole buffer or fails.
type Sink interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data transfer
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)
	Flush() error

	// Transport information
	Type() Type
}

// Stats carries per-sink transfer counters.
type Stats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

func (s *Stats) recordWrite(n int, latency time.Duration) {
	s.BytesWritten += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
	if s.AverageLatency == 0 {
		s.AverageLatency = latency
	} else {
		s.AverageLatency = (s.AverageLatency + latency) / 2
	}
}

func (s *Stats) recordRead(n int) {
	s.BytesRead += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
}
