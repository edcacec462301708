// pkg/escpos/printer/printer_test.go
package printer

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"escpos-driver/pkg/escpos"
	"escpos-driver/pkg/escpos/barcode"
	"escpos-driver/pkg/escpos/pagecode"
	"escpos-driver/pkg/escpos/qrcode"
	"escpos-driver/pkg/escpos/transport"
)

// mockSink records every write and can be told to fail the next n writes.
type mockSink struct {
	writes   [][]byte
	failNext int
	closed   bool
}

func (m *mockSink) Open(ctx context.Context) error { return nil }

func (m *mockSink) Close() error {
	m.closed = true
	return nil
}

func (m *mockSink) IsOpen() bool { return !m.closed }

func (m *mockSink) Write(ctx context.Context, data []byte) error {
	if m.failNext > 0 {
		m.failNext--
		return fmt.Errorf("%w: injected failure", escpos.ErrIO)
	}
	m.writes = append(m.writes, append([]byte(nil), data...))
	return nil
}

func (m *mockSink) Flush() error { return nil }

func (m *mockSink) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	return nil, fmt.Errorf("%w: mock sink", escpos.ErrUnsupported)
}

func (m *mockSink) Type() transport.Type { return transport.TypeWriter }

func TestInitSelectsPageCode(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.Init()
	require.NoError(t, err)

	// ESC @ then ESC t 0 for the default PC437 table.
	require.NoError(t, p.Flush(context.Background()))
	require.Len(t, sink.writes, 1)
	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x74, 0x00}, sink.writes[0])
}

func TestWritelnTranslatesText(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.Writeln("café")
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))

	require.Len(t, sink.writes, 1)
	assert.Equal(t, []byte{'c', 'a', 'f', 0x82, 0x0A}, sink.writes[0])
}

func TestPageCodeSwitch(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.PageCode(pagecode.WPC1252)
	require.NoError(t, err)
	_, err = p.Write("€")
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))

	require.Len(t, sink.writes, 1)
	assert.Equal(t, []byte{0x1B, 0x74, 16, 0x80}, sink.writes[0])
}

func TestStateDiffing(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	// The second identical call stages nothing.
	_, err := p.Justify(escpos.JustifyCenter)
	require.NoError(t, err)
	_, err = p.Justify(escpos.JustifyCenter)
	require.NoError(t, err)
	_, _ = p.Bold(true)
	_, _ = p.Bold(true)

	assert.Equal(t, 6, p.Buffered()) // 1B 61 01, 1B 45 01
}

func TestInvalidOptionLeavesBufferUntouched(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.Size(9, 1)
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = p.Barcode(barcode.EAN13, "not-digits")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = p.Feeds(300)
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)

	assert.Zero(t, p.Buffered())
}

func TestUnsupportedFeatures(t *testing.T) {
	sink := &mockSink{}
	p := New(sink, WithProfile(Profile58mm()))

	_, err := p.Cut()
	assert.ErrorIs(t, err, escpos.ErrUnsupported)
	_, err = p.PartialCut()
	assert.ErrorIs(t, err, escpos.ErrUnsupported)
	_, err = p.CashDrawer(escpos.Pin2)
	assert.ErrorIs(t, err, escpos.ErrUnsupported)
	_, err = p.PrintCut()
	assert.ErrorIs(t, err, escpos.ErrUnsupported)
	assert.Zero(t, p.Buffered())
}

func TestPrintCut(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.PrintCut()
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))

	assert.Equal(t, []byte{0x1B, 0x64, 3, 0x1D, 0x56, 0x41, 0x00}, sink.writes[0])
}

func TestBarcodeStaged(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.EAN13("4006381333931")
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))

	out := sink.writes[0]
	// Option commands first, GS k function B with the 13 digits last.
	assert.True(t, bytes.HasPrefix(out, []byte{0x1D, 0x68, 162}))
	assert.True(t, bytes.HasSuffix(out, append([]byte{0x1D, 0x6B, 67, 13}, "4006381333931"...)))
}

func TestQRCodeNativeVsRaster(t *testing.T) {
	native := &mockSink{}
	p := New(native)
	_, err := p.QRCode("HELLO", qrcode.LevelM, 4)
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))
	assert.True(t, bytes.HasPrefix(native.writes[0], []byte{0x1D, 0x28, 0x6B}))

	raster := &mockSink{}
	p = New(raster, WithProfile(Profile58mm()))
	_, err = p.QRCode("HELLO", qrcode.LevelM, 4)
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))
	assert.True(t, bytes.HasPrefix(raster.writes[0], []byte{0x1D, 0x76, 0x30, 0x00}))
}

func TestBitImage(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	// 16x2 checkerboard rows.
	bits := []byte{0xAA, 0xAA, 0x55, 0x55}
	_, err := p.BitImage(16, 2, bits)
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))

	want := append([]byte{0x1D, 0x76, 0x30, 0x00, 2, 0, 2, 0}, bits...)
	assert.Equal(t, want, sink.writes[0])
}

func TestBitImageValidation(t *testing.T) {
	p := New(&mockSink{})

	_, err := p.BitImage(16, 2, []byte{0xFF})
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)

	_, err = p.BitImage(1000, 1, make([]byte, 125))
	assert.ErrorIs(t, err, escpos.ErrInvalidOption) // wider than the line

	_, err = p.BitImage(0, 1, nil)
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestFlushRetryPreservesBuffer(t *testing.T) {
	sink := &mockSink{failNext: 1}
	p := New(sink) // default one retry

	_, err := p.Writeln("RECEIPT")
	require.NoError(t, err)

	// First attempt fails, the retry transmits the identical buffer once.
	require.NoError(t, p.Flush(context.Background()))
	require.Len(t, sink.writes, 1)
	assert.Equal(t, []byte("RECEIPT\n"), sink.writes[0])
	assert.Zero(t, p.Buffered())
}

func TestFlushLogsJobScope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := &mockSink{}
	p := New(sink, WithLogger(zap.New(core)))

	_, err := p.Writeln("X")
	require.NoError(t, err)
	require.NoError(t, p.Flush(context.Background()))

	completed := logs.FilterMessage("Print job completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.NotEmpty(t, fields["job_id"])
	assert.Equal(t, int64(2), fields["bytes"])
	assert.Equal(t, true, fields["success"])
}

func TestFlushExhaustedRetriesKeepsBuffer(t *testing.T) {
	sink := &mockSink{failNext: 5}
	p := New(sink, WithRetries(2))

	_, err := p.Writeln("RECEIPT")
	require.NoError(t, err)

	err = p.Flush(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, escpos.ErrIO)
	assert.Equal(t, 8, p.Buffered())
	assert.Empty(t, sink.writes)

	// The sink recovers; the retained buffer goes out exactly once.
	sink.failNext = 0
	require.NoError(t, p.Flush(context.Background()))
	require.Len(t, sink.writes, 1)
	assert.Equal(t, []byte("RECEIPT\n"), sink.writes[0])
}

func TestFlushEmptyBufferWritesNothing(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	require.NoError(t, p.Flush(context.Background()))
	assert.Empty(t, sink.writes)
}

func TestCloseIsTerminal(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	_, err := p.Writeln("pending")
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, sink.closed)
	require.NoError(t, p.Close()) // idempotent

	_, err = p.Writeln("after close")
	assert.ErrorIs(t, err, escpos.ErrClosed)
	_, err = p.Init()
	assert.ErrorIs(t, err, escpos.ErrClosed)
	assert.ErrorIs(t, p.Flush(context.Background()), escpos.ErrClosed)
	assert.Zero(t, p.Buffered())
}

func TestChainedReceipt(t *testing.T) {
	sink := &mockSink{}
	p := New(sink)

	steps := []func() (*Printer, error){
		func() (*Printer, error) { return p.Init() },
		func() (*Printer, error) { return p.Justify(escpos.JustifyCenter) },
		func() (*Printer, error) { return p.Bold(true) },
		func() (*Printer, error) { return p.Writeln("ACME STORE") },
		func() (*Printer, error) { return p.Bold(false) },
		func() (*Printer, error) { return p.Justify(escpos.JustifyLeft) },
		func() (*Printer, error) { return p.Writeln("1x Coffee   3.50") },
		func() (*Printer, error) { return p.EAN8("9638507") },
		func() (*Printer, error) { return p.PrintCut() },
	}
	for _, step := range steps {
		_, err := step()
		require.NoError(t, err)
	}

	require.NoError(t, p.Flush(context.Background()))
	require.Len(t, sink.writes, 1)
	assert.NotEmpty(t, sink.writes[0])
}
