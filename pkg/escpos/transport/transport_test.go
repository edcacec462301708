// pkg/escpos/transport/transport_test.go
package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"escpos-driver/pkg/escpos"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"network ok", Config{Type: TypeNetwork, Network: NetworkConfig{Host: "10.0.0.5"}}, false},
		{"network missing host", Config{Type: TypeNetwork}, true},
		{"network bad port", Config{Type: TypeNetwork, Network: NetworkConfig{Host: "h", Port: 70000}}, true},
		{"serial ok", Config{Type: TypeSerial, Serial: SerialConfig{Port: "/dev/ttyUSB0"}}, false},
		{"serial missing port", Config{Type: TypeSerial}, true},
		{"serial bad baud", Config{Type: TypeSerial, Serial: SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 1234}}, true},
		{"usb ok", Config{Type: TypeUSB, USB: USBConfig{VendorID: "0x04b8", ProductID: "0202"}}, false},
		{"usb missing ids", Config{Type: TypeUSB}, true},
		{"usb bad hex", Config{Type: TypeUSB, USB: USBConfig{VendorID: "zzzz", ProductID: "0202"}}, true},
		{"writer ok", Config{Type: TypeWriter, Output: "/tmp/out.bin"}, false},
		{"writer missing output", Config{Type: TypeWriter}, true},
		{"unknown type", Config{Type: "bluetooth"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, escpos.ErrInvalidOption)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	sink, err := New(&Config{Type: TypeNetwork, Network: NetworkConfig{Host: "10.0.0.5"}}, zap.NewNop())
	require.NoError(t, err)

	ns, ok := sink.(*NetworkSink)
	require.True(t, ok)
	assert.Equal(t, 9100, ns.config.Port)
	assert.Equal(t, 10*time.Second, ns.config.DialTimeout)
	assert.Equal(t, TypeNetwork, ns.Type())
	assert.False(t, ns.IsOpen())

	sink, err = New(&Config{Type: TypeSerial, Serial: SerialConfig{Port: "/dev/ttyUSB0"}}, zap.NewNop())
	require.NoError(t, err)

	ss, ok := sink.(*SerialSink)
	require.True(t, ok)
	assert.Equal(t, 9600, ss.config.BaudRate)
	assert.Equal(t, 8, ss.config.DataBits)
	assert.Equal(t, "none", ss.config.Parity)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	ws := NewWriterSink(&buf, zap.NewNop())
	ctx := context.Background()

	require.True(t, ws.IsOpen())
	require.NoError(t, ws.Open(ctx))

	require.NoError(t, ws.Write(ctx, []byte{0x1B, 0x40}))
	require.NoError(t, ws.Write(ctx, []byte("hello")))
	assert.Equal(t, append([]byte{0x1B, 0x40}, "hello"...), buf.Bytes())
	assert.Equal(t, int64(7), ws.stats.BytesWritten)
	require.NoError(t, ws.Flush())

	_, err := ws.Read(ctx, 1)
	assert.ErrorIs(t, err, escpos.ErrUnsupported)

	require.NoError(t, ws.Close())
	assert.False(t, ws.IsOpen())
	assert.ErrorIs(t, ws.Write(ctx, []byte("x")), escpos.ErrClosed)
	assert.ErrorIs(t, ws.Flush(), escpos.ErrClosed)
	assert.ErrorIs(t, ws.Open(ctx), escpos.ErrClosed)
	assert.NoError(t, ws.Close())
}

func TestWriterSinkCancelledContext(t *testing.T) {
	ws := NewWriterSink(&bytes.Buffer{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ws.Write(ctx, []byte("x")), context.Canceled)
}

func TestNetworkSinkRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- buf[:n]
	}()

	addr := ln.Addr().(*net.TCPAddr)
	ns := NewNetworkSink(&NetworkConfig{
		Host:        "127.0.0.1",
		Port:        addr.Port,
		DialTimeout: 2 * time.Second,
	}, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, ns.Open(ctx))
	require.True(t, ns.IsOpen())
	require.NoError(t, ns.Open(ctx)) // idempotent

	payload := []byte{0x1B, 0x40, 'O', 'K'}
	require.NoError(t, ns.Write(ctx, payload))

	select {
	case got := <-received:
		assert.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive payload")
	}

	require.NoError(t, ns.Close())
	assert.False(t, ns.IsOpen())
	assert.ErrorIs(t, ns.Write(ctx, payload), escpos.ErrClosed)
}

func TestNetworkSinkDialFailure(t *testing.T) {
	ns := NewNetworkSink(&NetworkConfig{
		Host:        "127.0.0.1",
		Port:        1, // nothing listens here
		DialTimeout: 500 * time.Millisecond,
	}, zap.NewNop())

	err := ns.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, escpos.ErrIO)
	assert.False(t, ns.IsOpen())
}

func TestParseHexID(t *testing.T) {
	id, err := parseHexID("0x04b8")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x04B8), uint16(id))

	id, err = parseHexID("0202")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0202), uint16(id))

	_, err = parseHexID("not-hex")
	assert.Error(t, err)
}
