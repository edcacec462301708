// pkg/escpos/qrcode/command.go
package qrcode

import (
	"fmt"

	"escpos-driver/pkg/escpos"
)

// Module size bounds accepted by the printer for native symbols.
const (
	MinModuleSize = 1
	MaxModuleSize = 16
)

// Native printing uses the GS ( k function group: the printer stores the
// payload and renders the symbol itself. Payloads are capped by the
// two-byte length field minus the 3-byte function header.
const maxNativeLen = 0xFFFF - 3

// levelNativeByte maps a level to the cn=49 fn=69 level byte.
var levelNativeByte = [4]byte{LevelL: '0', LevelM: '1', LevelQ: '2', LevelH: '3'}

// NativeCommands builds the command sequence that makes the printer render
// data as a QR code on its own: select model 2, set the module size and
// error correction level, store the payload, then print.
func NativeCommands(data []byte, level Level, moduleSize int) ([]byte, error) {
	if level < LevelL || level > LevelH {
		return nil, fmt.Errorf("%w: error correction level %d", escpos.ErrInvalidOption, int(level))
	}
	if moduleSize < MinModuleSize || moduleSize > MaxModuleSize {
		return nil, fmt.Errorf("%w: module size %d not in %d..%d",
			escpos.ErrInvalidOption, moduleSize, MinModuleSize, MaxModuleSize)
	}
	if len(data) > maxNativeLen {
		return nil, fmt.Errorf("%w: %d bytes exceed the native symbol store",
			escpos.ErrEncodingTooLarge, len(data))
	}

	prefix := escpos.COMMANDS.QR_PREFIX

	out := make([]byte, 0, len(data)+32)
	append3 := func(pL, pH byte, fn byte, args ...byte) {
		out = append(out, prefix...)
		out = append(out, pL, pH, '1', fn)
		out = append(out, args...)
	}

	append3(4, 0, 'A', '2', 0)			// fn 65: model 2
	append3(3, 0, 'C', byte(moduleSize))		// fn 67: module size in dots
	append3(3, 0, 'E', levelNativeByte[level])	// fn 69: error correction

	storeLen := len(data) + 3
	out = append(out, prefix...)
	out = append(out, byte(storeLen&0xFF), byte(storeLen>>8), '1', 'P', '0')
	out = append(out, data...)

	append3(3, 0, 'Q', '0') // fn 81: print the stored symbol

	return out, nil
}

// Raster renders the symbol as a GS v 0 raster image with a four module
// quiet zone, scaling each module to size x size dots. Printers without the
// native QR function group print this instead.
func (s *Symbol) Raster(size int) ([]byte, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: raster module size %d", escpos.ErrInvalidOption, size)
	}

	const quiet = 4
	side := (s.Size + 2*quiet) * size
	widthBytes := (side + 7) / 8
	if widthBytes > 0xFFFF || side > 0xFFFF {
		return nil, fmt.Errorf("%w: raster %d dots wide", escpos.ErrEncodingTooLarge, side)
	}

	out := make([]byte, 0, 8+widthBytes*side)
	out = append(out, escpos.COMMANDS.RASTER_IMAGE...)
	out = append(out, byte(widthBytes&0xFF), byte(widthBytes>>8))
	out = append(out, byte(side&0xFF), byte(side>>8))

	row := make([]byte, widthBytes)
	for y := 0; y < side; y++ {
		for i := range row {
			row[i] = 0
		}
		my := y/size - quiet
		for x := 0; x < side; x++ {
			if s.Module(x/size-quiet, my) {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
		out = append(out, row...)
	}
	return out, nil
}
