// pkg/escpos/transport/writer.go
package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"escpos-driver/pkg/escpos"
)

// WriterSink adapts an io.Writer into a Sink. It spools command streams to
// files or buffers and backs the dry-run mode of the CLI.
type WriterSink struct {
	w      io.Writer
	closer io.Closer
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  *Stats
}

// NewWriterSink wraps w. The sink starts open; Close calls w's Close when
// it has one.
func NewWriterSink(w io.Writer, logger *zap.Logger) *WriterSink {
	ws := &WriterSink{
		w:      w,
		logger: logger.With(zap.String("transport", "writer")),
		isOpen: true,
		stats:  &Stats{IsConnected: true},
	}
	if c, ok := w.(io.Closer); ok && w != os.Stdout && w != os.Stderr {
		ws.closer = c
	}
	return ws
}

// NewFileSink creates a sink spooling to the named file.
func NewFileSink(path string, logger *zap.Logger) (*WriterSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", escpos.ErrIO, path, err)
	}
	return NewWriterSink(f, logger.With(zap.String("path", path))), nil
}

// Open is a no-op; the sink opens on construction.
func (ws *WriterSink) Open(ctx context.Context) error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()
	if !ws.isOpen {
		return fmt.Errorf("%w: writer sink", escpos.ErrClosed)
	}
	return nil
}

// Close closes the underlying writer when it is closable.
func (ws *WriterSink) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isOpen {
		return nil
	}
	ws.isOpen = false
	ws.stats.IsConnected = false

	if ws.closer != nil {
		if err := ws.closer.Close(); err != nil {
			return fmt.Errorf("%w: close: %v", escpos.ErrIO, err)
		}
	}
	return nil
}

// IsOpen returns whether the sink accepts writes.
func (ws *WriterSink) IsOpen() bool {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	return ws.isOpen
}

// Write copies data to the underlying writer.
func (ws *WriterSink) Write(ctx context.Context, data []byte) error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isOpen {
		return fmt.Errorf("%w: writer sink", escpos.ErrClosed)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startTime := time.Now()
	n, err := ws.w.Write(data)
	if err != nil {
		ws.stats.ErrorCount++
		return fmt.Errorf("%w: write: %v", escpos.ErrIO, err)
	}
	if n != len(data) {
		ws.stats.ErrorCount++
		return fmt.Errorf("%w: incomplete write: %d of %d bytes", escpos.ErrIO, n, len(data))
	}

	ws.stats.recordWrite(len(data), time.Since(startTime))
	return nil
}

// Flush pushes buffered bytes through to stable storage when the underlying
// writer supports it.
func (ws *WriterSink) Flush() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isOpen {
		return fmt.Errorf("%w: writer sink", escpos.ErrClosed)
	}

	switch w := ws.w.(type) {
	case interface{ Sync() error }:
		// Stdout and stderr reject fsync on some platforms; only sync
		// writers the sink owns.
		if ws.closer == nil {
			return nil
		}
		if err := w.Sync(); err != nil {
			ws.stats.ErrorCount++
			return fmt.Errorf("%w: sync: %v", escpos.ErrIO, err)
		}
	case interface{ Flush() error }:
		if err := w.Flush(); err != nil {
			ws.stats.ErrorCount++
			return fmt.Errorf("%w: flush: %v", escpos.ErrIO, err)
		}
	}
	return nil
}

// Read always reports that no status channel exists.
func (ws *WriterSink) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	return nil, fmt.Errorf("%w: writer sink has no status channel", escpos.ErrUnsupported)
}

// Type returns the transport type.
func (ws *WriterSink) Type() Type {
	return TypeWriter
}
