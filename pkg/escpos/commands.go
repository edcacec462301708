// pkg/escpos/commands.go
package escpos

// Control characters used by the ESC/POS command set.
const (
	LF  = 0x0A
	FF  = 0x0C
	ESC = 0x1B
	GS  = 0x1D
)

// Justify selects horizontal alignment (ESC a).
type Justify byte

const (
	JustifyLeft   Justify = 0x00
	JustifyCenter Justify = 0x01
	JustifyRight  Justify = 0x02
)

// Font selects the built-in character font (ESC M).
type Font byte

const (
	FontA Font = 0x00
	FontB Font = 0x01
	FontC Font = 0x02
)

// Underline selects the underline mode (ESC -).
type Underline byte

const (
	UnderlineNone   Underline = 0x00
	UnderlineSingle Underline = 0x01
	UnderlineDouble Underline = 0x02
)

// CashDrawerPin selects the drawer kick-out connector pin (ESC p).
type CashDrawerPin byte

const (
	Pin2 CashDrawerPin = 0x00
	Pin5 CashDrawerPin = 0x01
)

// COMMANDS contains the fixed ESC/POS command prefixes. Commands carrying a
// parameter byte list only their prefix; the builder appends the parameter.
var COMMANDS = struct {
	// Basic commands
	INITIALIZE []byte
	RESET      []byte

	// Text formatting
	TEXT_BOLD      []byte // ESC E + n
	TEXT_UNDERLINE []byte // ESC - + n
	DOUBLE_STRIKE  []byte // ESC G + n
	SELECT_FONT    []byte // ESC M + n
	FLIP           []byte // ESC V + n
	REVERSE        []byte // GS B + n
	TEXT_SIZE      []byte // GS ! + n
	SMOOTHING      []byte // GS b + n
	UPSIDE_DOWN    []byte // ESC { + n

	// Alignment
	JUSTIFY []byte // ESC a + n

	// Character tables
	PAGE_CODE []byte // ESC t + n

	// Paper handling
	LINE_FEED          []byte
	FEED_LINES         []byte // ESC d + n
	LINE_SPACING       []byte // ESC 3 + n
	RESET_LINE_SPACING []byte
	MOTION_UNITS       []byte // GS P + x + y

	// Cutting
	CUT_FULL    []byte
	CUT_PARTIAL []byte

	// Cash drawer
	DRAWER_KICK []byte // ESC p + pin + on + off

	// Barcode options
	BARCODE_HEIGHT   []byte // GS h + n
	BARCODE_WIDTH    []byte // GS w + n
	BARCODE_HRI_POS  []byte // GS H + n
	BARCODE_HRI_FONT []byte // GS f + n
	BARCODE_PRINT    []byte // GS k + m + n + data (function B)

	// 2D symbols and graphics
	QR_PREFIX    []byte // GS ( k + pL + pH + cn + fn ...
	RASTER_IMAGE []byte // GS v 0 + m + xL xH yL yH + data
}{
	INITIALIZE: []byte{ESC, 0x40},             // ESC @
	RESET:      []byte{ESC, 0x3F, LF, 0x00},   // ESC ? LF 0

	TEXT_BOLD:      []byte{ESC, 0x45}, // ESC E
	TEXT_UNDERLINE: []byte{ESC, 0x2D}, // ESC -
	DOUBLE_STRIKE:  []byte{ESC, 0x47}, // ESC G
	SELECT_FONT:    []byte{ESC, 0x4D}, // ESC M
	FLIP:           []byte{ESC, 0x56}, // ESC V
	REVERSE:        []byte{GS, 0x42},  // GS B
	TEXT_SIZE:      []byte{GS, 0x21},  // GS !
	SMOOTHING:      []byte{GS, 0x62},  // GS b
	UPSIDE_DOWN:    []byte{ESC, 0x7B}, // ESC {

	JUSTIFY: []byte{ESC, 0x61}, // ESC a

	PAGE_CODE: []byte{ESC, 0x74}, // ESC t

	LINE_FEED:          []byte{LF},
	FEED_LINES:         []byte{ESC, 0x64}, // ESC d
	LINE_SPACING:       []byte{ESC, 0x33}, // ESC 3
	RESET_LINE_SPACING: []byte{ESC, 0x32}, // ESC 2
	MOTION_UNITS:       []byte{GS, 0x50},  // GS P

	CUT_FULL:    []byte{GS, 0x56, 0x41, 0x00}, // GS V A 0
	CUT_PARTIAL: []byte{GS, 0x56, 0x41, 0x01}, // GS V A 1

	DRAWER_KICK: []byte{ESC, 0x70}, // ESC p

	BARCODE_HEIGHT:   []byte{GS, 0x68}, // GS h
	BARCODE_WIDTH:    []byte{GS, 0x77}, // GS w
	BARCODE_HRI_POS:  []byte{GS, 0x48}, // GS H
	BARCODE_HRI_FONT: []byte{GS, 0x66}, // GS f
	BARCODE_PRINT:    []byte{GS, 0x6B}, // GS k

	QR_PREFIX:    []byte{GS, 0x28, 0x6B},       // GS ( k
	RASTER_IMAGE: []byte{GS, 0x76, 0x30, 0x00}, // GS v 0, normal density
}
