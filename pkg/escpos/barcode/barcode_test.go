// pkg/escpos/barcode/barcode_test.go
package barcode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escpos-driver/pkg/escpos"
)

func TestMod10CheckDigit(t *testing.T) {
	tests := []struct {
		digits string
		want   byte
	}{
		{"400638133393", '1'}, // EAN-13 body
		{"9638507", '4'},      // EAN-8 body
		{"03600029145", '2'},  // UPC-A body
		{"000000000000", '0'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mod10CheckDigit(tt.digits), tt.digits)
	}
}

func TestEncodeEmitsOptionCommands(t *testing.T) {
	opt := Options{Width: 4, Height: 100, HRI: HRIAbove, HRIFont: escpos.FontB}
	out, err := Encode(EAN8, "96385074", opt)
	require.NoError(t, err)

	want := []byte{
		0x1D, 0x68, 100, // GS h height
		0x1D, 0x77, 4, // GS w width
		0x1D, 0x48, 1, // GS H position
		0x1D, 0x66, 1, // GS f font
		0x1D, 0x6B, 68, 8, // GS k EAN-8, length
	}
	want = append(want, "96385074"...)
	assert.Equal(t, want, out)
}

func TestEncodeOptionValidation(t *testing.T) {
	for _, opt := range []Options{
		{Width: 1, Height: 100, HRI: HRIBelow},
		{Width: 7, Height: 100, HRI: HRIBelow},
		{Width: 3, Height: 0, HRI: HRIBelow},
		{Width: 3, Height: 100, HRI: HRIPosition(4)},
		{Width: 3, Height: 100, HRI: HRIBelow, HRIFont: escpos.FontC},
	} {
		_, err := Encode(EAN8, "96385074", opt)
		assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	}
}

func TestUPCA(t *testing.T) {
	// 11 digits: check appended.
	out, err := normalizeUPCA("03600029145")
	require.NoError(t, err)
	assert.Equal(t, []byte("036000291452"), out)

	// 12 digits with a valid check pass through.
	out, err = normalizeUPCA("036000291452")
	require.NoError(t, err)
	assert.Equal(t, []byte("036000291452"), out)

	// Wrong check digit rejected.
	_, err = normalizeUPCA("036000291453")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)

	_, err = normalizeUPCA("0360002914")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = normalizeUPCA("03600029145X")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestUPCEExpansion(t *testing.T) {
	tests := []struct {
		body string
		want string // expanded 11-digit UPC-A form
	}{
		{"654321", "06510000432"},
		{"123450", "01200000345"},
		{"123453", "01230000045"},
		{"123454", "01234000005"},
		{"123459", "01234500009"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandUPCE('0', tt.body), tt.body)
	}
}

func TestUPCE(t *testing.T) {
	// 6 digits assume number system 0; the check digit of the expanded
	// UPC-A form is appended.
	out, err := normalizeUPCE("123450")
	require.NoError(t, err)
	require.Len(t, out, 8)
	assert.Equal(t, byte('0'), out[0])
	assert.Equal(t, "123450", string(out[1:7]))
	assert.Equal(t, mod10CheckDigit("01200000345"), out[7])

	// 7 digits carry the number system.
	out, err = normalizeUPCE("1123450")
	require.NoError(t, err)
	assert.Equal(t, byte('1'), out[0])

	// Number system other than 0/1 rejected.
	_, err = normalizeUPCE("2123450")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)

	// 8 digits validate the check.
	valid := string(out)
	out2, err := normalizeUPCE(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, string(out2))

	bad := valid[:7] + string('0'+(valid[7]-'0'+1)%10)
	_, err = normalizeUPCE(bad)
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestEAN(t *testing.T) {
	out, err := normalizeEAN("400638133393", 13)
	require.NoError(t, err)
	assert.Equal(t, "4006381333931", string(out))

	out, err = normalizeEAN("4006381333931", 13)
	require.NoError(t, err)
	assert.Equal(t, "4006381333931", string(out))

	_, err = normalizeEAN("4006381333930", 13)
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)

	out, err = normalizeEAN("9638507", 8)
	require.NoError(t, err)
	assert.Equal(t, "96385074", string(out))

	_, err = normalizeEAN("12345", 8)
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestCode39Charset(t *testing.T) {
	out, err := normalizeCode39("CODE-39 $/+%")
	require.NoError(t, err)
	assert.Equal(t, "CODE-39 $/+%", string(out))

	_, err = normalizeCode39("lower")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = normalizeCode39("STAR*STAR")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = normalizeCode39("")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestITF(t *testing.T) {
	out, err := normalizeITF("0123456789")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(out))

	_, err = normalizeITF("123")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = normalizeITF("12A4")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestCodabar(t *testing.T) {
	out, err := normalizeCodabar("A40156B")
	require.NoError(t, err)
	assert.Equal(t, "A40156B", string(out))

	out, err = normalizeCodabar("C$99.95D")
	require.NoError(t, err)
	assert.Equal(t, "C$99.95D", string(out))

	_, err = normalizeCodabar("40156")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = normalizeCodabar("A401E6B")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = normalizeCodabar("AB")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestCode128SetSelection(t *testing.T) {
	// Plain text opens with set B.
	out, err := encodeCode128("Hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("{BHello"), out)

	// A leading digit run of four or more enters set C first.
	out, err = encodeCode128("123456AB")
	require.NoError(t, err)
	assert.Equal(t, []byte{'{', 'C', 12, 34, 56, '{', 'B', 'A', 'B'}, out)

	// A short inner digit run stays in set B.
	out, err = encodeCode128("AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []byte("{BAB12CD"), out)

	// A long inner digit run switches to C and back.
	out, err = encodeCode128("AB123456CD")
	require.NoError(t, err)
	assert.Equal(t, []byte{'{', 'B', 'A', 'B', '{', 'C', 12, 34, 56, '{', 'B', 'C', 'D'}, out)

	// Odd-length run keeps the stray digit in the text set.
	out, err = encodeCode128("12345")
	require.NoError(t, err)
	assert.Equal(t, []byte{'{', 'C', 12, 34, '{', 'B', '5'}, out)

	// Control characters need set A.
	out, err = encodeCode128("A\x06B")
	require.NoError(t, err)
	assert.Equal(t, []byte{'{', 'B', 'A', '{', 'A', 0x06, 'B'}, out)

	// Literal brace escapes as a double brace.
	out, err = encodeCode128("x{y")
	require.NoError(t, err)
	assert.Equal(t, []byte("{Bx{{y"), out)
}

func TestCode128Validation(t *testing.T) {
	_, err := encodeCode128("")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
	_, err = encodeCode128("caf\xc3\xa9")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	long := bytes.Repeat([]byte{'A'}, 300)
	_, err := Encode(Code39, string(long), DefaultOptions())
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestSymbologyString(t *testing.T) {
	assert.Equal(t, "UPC-A", UPCA.String())
	assert.Equal(t, "CODE128", Code128.String())
	assert.Equal(t, "symbology(42)", Symbology(42).String())
}
