// pkg/escpos/builder_test.go
package escpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderInitialize(t *testing.T) {
	b := NewBuilder()
	b.Bold(true)
	b.Initialize()

	assert.Equal(t, []byte{ESC, 0x45, 0x01, ESC, 0x40}, b.Bytes())
	assert.Equal(t, DefaultPrintState(), b.State())
}

func TestBuilderStateDiffing(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.Justify(JustifyCenter))
	require.NoError(t, b.Justify(JustifyCenter)) // no-op
	b.Bold(true)
	b.Bold(true) // no-op
	require.NoError(t, b.Underline(UnderlineSingle))
	require.NoError(t, b.Underline(UnderlineSingle)) // no-op

	want := []byte{
		ESC, 0x61, 0x01,
		ESC, 0x45, 0x01,
		ESC, 0x2D, 0x01,
	}
	assert.Equal(t, want, b.Bytes())

	// Defaults are already active, so setting them first emits nothing.
	b2 := NewBuilder()
	require.NoError(t, b2.Justify(JustifyLeft))
	require.NoError(t, b2.Font(FontA))
	b2.Bold(false)
	assert.Zero(t, b2.Len())
}

func TestBuilderSizeEncoding(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.Size(2, 3))
	assert.Equal(t, []byte{GS, 0x21, 0x12}, b.Bytes())

	b.Clear()
	require.NoError(t, b.Size(8, 8))
	assert.Equal(t, []byte{GS, 0x21, 0x77}, b.Bytes())

	b.Clear()
	b.ResetSize()
	assert.Equal(t, []byte{GS, 0x21, 0x00}, b.Bytes())
}

func TestBuilderSizeValidation(t *testing.T) {
	b := NewBuilder()

	assert.ErrorIs(t, b.Size(0, 1), ErrInvalidOption)
	assert.ErrorIs(t, b.Size(1, 9), ErrInvalidOption)
	assert.Zero(t, b.Len())
}

func TestBuilderInvalidEnums(t *testing.T) {
	b := NewBuilder()

	assert.ErrorIs(t, b.Justify(Justify(3)), ErrInvalidOption)
	assert.ErrorIs(t, b.Font(Font(3)), ErrInvalidOption)
	assert.ErrorIs(t, b.Underline(Underline(3)), ErrInvalidOption)
	assert.ErrorIs(t, b.Feed(256), ErrInvalidOption)
	assert.ErrorIs(t, b.CashDrawer(CashDrawerPin(2)), ErrInvalidOption)
	assert.Zero(t, b.Len())
}

func TestBuilderLineSpacing(t *testing.T) {
	b := NewBuilder()

	b.ResetLineSpacing() // default active, no-op
	assert.Zero(t, b.Len())

	b.LineSpacing(60)
	b.LineSpacing(60) // no-op
	b.ResetLineSpacing()
	assert.Equal(t, []byte{ESC, 0x33, 60, ESC, 0x32}, b.Bytes())
}

func TestBuilderFeedAndCut(t *testing.T) {
	b := NewBuilder()

	b.LineFeed()
	require.NoError(t, b.Feed(5))
	b.Cut(false)
	b.Cut(true)

	want := []byte{
		LF,
		ESC, 0x64, 5,
		GS, 0x56, 0x41, 0x00,
		GS, 0x56, 0x41, 0x01,
	}
	assert.Equal(t, want, b.Bytes())
}

func TestBuilderCashDrawer(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.CashDrawer(Pin5))
	assert.Equal(t, []byte{ESC, 0x70, 0x01, 0x19, 0x19}, b.Bytes())
}

func TestBuilderTextAndRaw(t *testing.T) {
	b := NewBuilder()

	b.Text([]byte("TOTAL"))
	b.Raw([]byte{GS, 0x21, 0x11})
	assert.Equal(t, append([]byte("TOTAL"), GS, 0x21, 0x11), b.Bytes())

	b.Clear()
	assert.Zero(t, b.Len())
}

func TestBuilderPageCode(t *testing.T) {
	b := NewBuilder()

	b.PageCode(16)
	b.PageCode(16) // no-op
	b.PageCode(0)
	assert.Equal(t, []byte{ESC, 0x74, 16, ESC, 0x74, 0}, b.Bytes())
}
