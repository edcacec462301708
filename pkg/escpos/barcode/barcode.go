// pkg/escpos/barcode/barcode.go

// Package barcode validates barcode data against per-symbology charset and
// length rules, computes checksum digits and emits the native ESC/POS
// barcode command (GS k, function B).
package barcode

import (
	"fmt"
	"strings"

	"escpos-driver/pkg/escpos"
)

// Symbology identifies a barcode encoding standard.
type Symbology int

const (
	UPCA Symbology = iota
	UPCE
	EAN13
	EAN8
	Code39
	ITF
	Codabar
	Code93
	Code128
)

// GS k function-B symbology identifiers, in Symbology order.
var symbologyID = [...]byte{65, 66, 67, 68, 69, 70, 71, 72, 73}

var symbologyName = [...]string{
	"UPC-A", "UPC-E", "EAN-13", "EAN-8", "CODE39", "ITF", "CODABAR", "CODE93", "CODE128",
}

func (s Symbology) String() string {
	if s < UPCA || s > Code128 {
		return fmt.Sprintf("symbology(%d)", int(s))
	}
	return symbologyName[s]
}

// HRIPosition selects where the human readable interpretation is printed.
type HRIPosition byte

const (
	HRINone  HRIPosition = 0x00
	HRIAbove HRIPosition = 0x01
	HRIBelow HRIPosition = 0x02
	HRIBoth  HRIPosition = 0x03
)

// Options holds the printable barcode parameters.
type Options struct {
	// Width is the module width in dots (GS w), 2..6.
	Width uint8
	// Height is the bar height in dots (GS h), 1..255.
	Height uint8
	// HRI selects the human readable interpretation position (GS H).
	HRI HRIPosition
	// HRIFont selects the HRI character font (GS f).
	HRIFont escpos.Font
}

// DefaultOptions returns the option set used by the no-option print helpers.
func DefaultOptions() Options {
	return Options{
		Width:   3,
		Height:  162,
		HRI:     HRIBelow,
		HRIFont: escpos.FontA,
	}
}

func (o Options) validate() error {
	if o.Width < 2 || o.Width > 6 {
		return fmt.Errorf("%w: barcode width %d (valid: 2..6)", escpos.ErrInvalidOption, o.Width)
	}
	if o.Height < 1 {
		return fmt.Errorf("%w: barcode height 0 (valid: 1..255)", escpos.ErrInvalidOption)
	}
	if o.HRI > HRIBoth {
		return fmt.Errorf("%w: HRI position %d", escpos.ErrInvalidOption, o.HRI)
	}
	if o.HRIFont > escpos.FontB {
		return fmt.Errorf("%w: HRI font %d", escpos.ErrInvalidOption, o.HRIFont)
	}
	return nil
}

// Encode validates data for the symbology, appends or verifies its checksum
// digit and returns the complete command byte sequence: option commands
// (GS h, GS w, GS H, GS f) followed by GS k. Encode is a pure function of
// its input; invalid data yields escpos.ErrInvalidOption and no bytes.
func Encode(sym Symbology, data string, opt Options) ([]byte, error) {
	if sym < UPCA || sym > Code128 {
		return nil, fmt.Errorf("%w: unknown symbology %d", escpos.ErrInvalidOption, sym)
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}

	payload, err := normalize(sym, data)
	if err != nil {
		return nil, err
	}
	if len(payload) > 255 {
		return nil, fmt.Errorf("%w: %s data too long (%d bytes)", escpos.ErrInvalidOption, sym, len(payload))
	}

	out := make([]byte, 0, len(payload)+16)
	out = append(out, escpos.COMMANDS.BARCODE_HEIGHT...)
	out = append(out, opt.Height)
	out = append(out, escpos.COMMANDS.BARCODE_WIDTH...)
	out = append(out, opt.Width)
	out = append(out, escpos.COMMANDS.BARCODE_HRI_POS...)
	out = append(out, byte(opt.HRI))
	out = append(out, escpos.COMMANDS.BARCODE_HRI_FONT...)
	out = append(out, byte(opt.HRIFont))
	out = append(out, escpos.COMMANDS.BARCODE_PRINT...)
	out = append(out, symbologyID[sym], byte(len(payload)))
	out = append(out, payload...)
	return out, nil
}

// normalize validates the data and returns the exact bytes handed to the
// printer, checksum included where the symbology defines one.
func normalize(sym Symbology, data string) ([]byte, error) {
	switch sym {
	case UPCA:
		return normalizeUPCA(data)
	case UPCE:
		return normalizeUPCE(data)
	case EAN13:
		return normalizeEAN(data, 13)
	case EAN8:
		return normalizeEAN(data, 8)
	case Code39:
		return normalizeCode39(data)
	case ITF:
		return normalizeITF(data)
	case Codabar:
		return normalizeCodabar(data)
	case Code93:
		return normalizeCode93(data)
	case Code128:
		return encodeCode128(data)
	}
	return nil, fmt.Errorf("%w: unknown symbology %d", escpos.ErrInvalidOption, sym)
}

func digitsOnly(sym Symbology, data string) error {
	for i := 0; i < len(data); i++ {
		if data[i] < '0' || data[i] > '9' {
			return fmt.Errorf("%w: %s accepts digits only, got %q", escpos.ErrInvalidOption, sym, data[i])
		}
	}
	return nil
}

// mod10CheckDigit computes the GS1 modulo-10 check digit: walking from the
// rightmost data digit, weights alternate 3, 1, 3, ...
func mod10CheckDigit(digits string) byte {
	sum := 0
	weight := 3
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight = 4 - weight
	}
	return byte((10-sum%10)%10) + '0'
}

func normalizeUPCA(data string) ([]byte, error) {
	if err := digitsOnly(UPCA, data); err != nil {
		return nil, err
	}
	switch len(data) {
	case 11:
		return append([]byte(data), mod10CheckDigit(data)), nil
	case 12:
		if data[11] != mod10CheckDigit(data[:11]) {
			return nil, fmt.Errorf("%w: UPC-A check digit mismatch", escpos.ErrInvalidOption)
		}
		return []byte(data), nil
	}
	return nil, fmt.Errorf("%w: UPC-A requires 11 or 12 digits, got %d", escpos.ErrInvalidOption, len(data))
}

// expandUPCE returns the 11-digit UPC-A form of a UPC-E number system digit
// plus 6-digit zero-suppressed body.
func expandUPCE(ns byte, body string) string {
	var man, prod string
	switch last := body[5]; {
	case last <= '2':
		man = body[:2] + string(last) + "00"
		prod = "00" + body[2:5]
	case last == '3':
		man = body[:3] + "00"
		prod = "000" + body[3:5]
	case last == '4':
		man = body[:4] + "0"
		prod = "0000" + body[4:5]
	default:
		man = body[:5]
		prod = "0000" + string(last)
	}
	return string(ns) + man + prod
}

func normalizeUPCE(data string) ([]byte, error) {
	if err := digitsOnly(UPCE, data); err != nil {
		return nil, err
	}
	var ns byte = '0'
	var body, check string
	switch len(data) {
	case 6:
		body = data
	case 7:
		ns, body = data[0], data[1:]
	case 8:
		ns, body, check = data[0], data[1:7], data[7:]
	default:
		return nil, fmt.Errorf("%w: UPC-E requires 6 to 8 digits, got %d", escpos.ErrInvalidOption, len(data))
	}
	if ns != '0' && ns != '1' {
		return nil, fmt.Errorf("%w: UPC-E number system must be 0 or 1", escpos.ErrInvalidOption)
	}
	want := mod10CheckDigit(expandUPCE(ns, body))
	if check != "" && check[0] != want {
		return nil, fmt.Errorf("%w: UPC-E check digit mismatch", escpos.ErrInvalidOption)
	}
	out := make([]byte, 0, 8)
	out = append(out, ns)
	out = append(out, body...)
	out = append(out, want)
	return out, nil
}

func normalizeEAN(data string, size int) ([]byte, error) {
	sym := EAN13
	if size == 8 {
		sym = EAN8
	}
	if err := digitsOnly(sym, data); err != nil {
		return nil, err
	}
	switch len(data) {
	case size - 1:
		return append([]byte(data), mod10CheckDigit(data)), nil
	case size:
		if data[size-1] != mod10CheckDigit(data[:size-1]) {
			return nil, fmt.Errorf("%w: %s check digit mismatch", escpos.ErrInvalidOption, sym)
		}
		return []byte(data), nil
	}
	return nil, fmt.Errorf("%w: %s requires %d or %d digits, got %d",
		escpos.ErrInvalidOption, sym, size-1, size, len(data))
}

const code39Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

func normalizeCode39(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("%w: CODE39 data is empty", escpos.ErrInvalidOption)
	}
	for i := 0; i < len(data); i++ {
		if strings.IndexByte(code39Charset, data[i]) < 0 {
			// The printer adds the * delimiters itself.
			return nil, fmt.Errorf("%w: CODE39 cannot encode %q", escpos.ErrInvalidOption, data[i])
		}
	}
	return []byte(data), nil
}

func normalizeCode93(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("%w: CODE93 data is empty", escpos.ErrInvalidOption)
	}
	for i := 0; i < len(data); i++ {
		if strings.IndexByte(code39Charset, data[i]) < 0 {
			return nil, fmt.Errorf("%w: CODE93 cannot encode %q", escpos.ErrInvalidOption, data[i])
		}
	}
	// The printer computes the two C/K check characters.
	return []byte(data), nil
}

func normalizeITF(data string) ([]byte, error) {
	if err := digitsOnly(ITF, data); err != nil {
		return nil, err
	}
	if len(data) < 2 || len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: ITF requires an even number of digits, got %d",
			escpos.ErrInvalidOption, len(data))
	}
	return []byte(data), nil
}

const codabarBody = "0123456789-$:/.+"

func normalizeCodabar(data string) ([]byte, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("%w: CODABAR requires start and stop characters", escpos.ErrInvalidOption)
	}
	start, stop := data[0], data[len(data)-1]
	if start < 'A' || start > 'D' || stop < 'A' || stop > 'D' {
		return nil, fmt.Errorf("%w: CODABAR start/stop must be A-D", escpos.ErrInvalidOption)
	}
	for i := 1; i < len(data)-1; i++ {
		if strings.IndexByte(codabarBody, data[i]) < 0 {
			return nil, fmt.Errorf("%w: CODABAR cannot encode %q", escpos.ErrInvalidOption, data[i])
		}
	}
	return []byte(data), nil
}
