// pkg/escpos/pagecode/pagecode_test.go
package pagecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escpos-driver/pkg/escpos"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		code PageCode
		want byte
	}{
		{PC437, 0},
		{PC850, 2},
		{PC865, 5},
		{WPC1252, 16},
		{PC866, 17},
		{PC858, 19},
	}
	for _, tt := range tests {
		n, err := tt.code.Number()
		require.NoError(t, err)
		assert.Equal(t, tt.want, n, tt.code.String())
	}
}

func TestNumberUnknown(t *testing.T) {
	_, err := PageCode(99).Number()
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}

func TestTranslate(t *testing.T) {
	// ASCII passes through untouched on every table.
	out, err := PC437.Translate("Receipt 42")
	require.NoError(t, err)
	assert.Equal(t, []byte("Receipt 42"), out)

	// PC437 has its own slots for accented Latin.
	out, err = PC437.Translate("café")
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0x82}, out)

	// The euro sign exists in PC858 and WPC1252 but not PC437.
	out, err = PC858.Translate("€")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD5}, out)

	out, err = WPC1252.Translate("€")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, out)

	out, err = PC437.Translate("€")
	require.NoError(t, err)
	assert.Equal(t, []byte{'?'}, out)

	// Cyrillic on PC866.
	out, err = PC866.Translate("Да")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x84, 0xA0}, out)
}

func TestTranslateUnknownTable(t *testing.T) {
	_, err := PageCode(99).Translate("x")
	assert.ErrorIs(t, err, escpos.ErrInvalidOption)
}
