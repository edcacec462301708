// Package qrcode generates QR Code model 2 symbols for receipt printing.
// The encoder picks the densest text mode the payload allows, the smallest
// version that fits it and the mask pattern with the lowest penalty score,
// so the same input always produces the same symbol.
package qrcode

import (
	"fmt"

	"escpos-driver/pkg/escpos"
)

// Version bounds of the model 2 symbology.
const (
	MinVersion = 1
	MaxVersion = 40

	// VersionAuto selects the smallest version that fits the payload.
	VersionAuto = 0
)

// Level is the error correction level of a symbol.
type Level int

const (
	LevelL Level = iota // recovers ~7% of codewords
	LevelM              // recovers ~15% of codewords
	LevelQ              // recovers ~25% of codewords
	LevelH              // recovers ~30% of codewords
)

// levelIndicator maps a level to its two format information bits.
var levelIndicator = [4]int{LevelL: 1, LevelM: 0, LevelQ: 3, LevelH: 2}

func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Mode is the data encoding mode of a segment.
type Mode int

const (
	Numeric      Mode = iota // digits 0-9, 10 bits per 3 digits
	Alphanumeric             // digits, upper-case letters and " $%*+-./:", 11 bits per 2 chars
	Byte                     // arbitrary 8-bit data
)

var modeIndicator = [3]int{Numeric: 1, Alphanumeric: 2, Byte: 4}

func (m Mode) String() string {
	switch m {
	case Numeric:
		return "numeric"
	case Alphanumeric:
		return "alphanumeric"
	case Byte:
		return "byte"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// alnumValue maps a byte to its alphanumeric-mode value, -1 if not encodable.
var alnumValue [256]int8

func init() {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
	for i := range alnumValue {
		alnumValue[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		alnumValue[alphabet[i]] = int8(i)
	}
}

// selectMode returns the densest mode able to carry all of data.
func selectMode(data []byte) Mode {
	mode := Numeric
	for _, b := range data {
		if b >= '0' && b <= '9' {
			continue
		}
		if alnumValue[b] >= 0 {
			if mode == Numeric {
				mode = Alphanumeric
			}
			continue
		}
		return Byte
	}
	return mode
}

// charCountBits returns the width of the character count field for a mode at
// a version.
func charCountBits(mode Mode, version int) int {
	var class int
	switch {
	case version <= 9:
		class = 0
	case version <= 26:
		class = 1
	default:
		class = 2
	}
	switch mode {
	case Numeric:
		return [3]int{10, 12, 14}[class]
	case Alphanumeric:
		return [3]int{9, 11, 13}[class]
	default:
		return [3]int{8, 16, 16}[class]
	}
}

// encodedBitLen returns the payload bit length of data in a mode, excluding
// the mode indicator and character count field.
func encodedBitLen(mode Mode, n int) int {
	switch mode {
	case Numeric:
		return 10*(n/3) + [3]int{0, 4, 7}[n%3]
	case Alphanumeric:
		return 11*(n/2) + 6*(n%2)
	default:
		return 8 * n
	}
}

// numRawDataModules returns the number of modules available for codewords
// at a version, i.e. everything outside the function patterns.
func numRawDataModules(version int) int {
	result := (16*version+128)*version + 64
	if version >= 2 {
		numAlign := version/7 + 2
		result -= (25*numAlign-10)*numAlign - 55
		if version >= 7 {
			result -= 36
		}
	}
	return result
}

// numDataCodewords returns the data codeword capacity at a version and level.
func numDataCodewords(version int, level Level) int {
	ec := ecTable[version][level]
	return numRawDataModules(version)/8 - ec.PerBlock*ec.Blocks
}

// Symbol is a finished QR code matrix together with the parameters chosen
// during encoding.
type Symbol struct {
	Version int
	Level   Level
	Mode    Mode
	Mask    int
	Size    int

	modules []bool
}

// Module reports whether the module at column x, row y is dark. Coordinates
// outside the symbol are light, so callers may sample the quiet zone freely.
func (s *Symbol) Module(x, y int) bool {
	if x < 0 || x >= s.Size || y < 0 || y >= s.Size {
		return false
	}
	return s.modules[y*s.Size+x]
}

// Encode builds a symbol carrying data at the given error correction level.
// version is either VersionAuto or a fixed version 1..40; the payload must
// fit the chosen version or escpos.ErrEncodingTooLarge is returned.
func Encode(data []byte, level Level, version int) (*Symbol, error) {
	if level < LevelL || level > LevelH {
		return nil, fmt.Errorf("%w: error correction level %d", escpos.ErrInvalidOption, int(level))
	}
	if version != VersionAuto && (version < MinVersion || version > MaxVersion) {
		return nil, fmt.Errorf("%w: version %d", escpos.ErrInvalidOption, version)
	}

	mode := selectMode(data)

	lo, hi := version, version
	if version == VersionAuto {
		lo, hi = MinVersion, MaxVersion
	}
	chosen := -1
	for v := lo; v <= hi; v++ {
		bits := 4 + charCountBits(mode, v) + encodedBitLen(mode, len(data))
		if bits <= numDataCodewords(v, level)*8 {
			chosen = v
			break
		}
	}
	if chosen < 0 {
		return nil, fmt.Errorf("%w: %d bytes of %s data do not fit version %d-%s",
			escpos.ErrEncodingTooLarge, len(data), mode, hi, level)
	}

	codewords := buildCodewords(data, mode, level, chosen)
	interleaved := interleaveBlocks(codewords, chosen, level)

	m := newMatrix(chosen)
	m.placeData(interleaved)

	bestMask := -1
	bestPenalty := int(^uint(0) >> 1)
	var bestModules []bool
	for mask := 0; mask < 8; mask++ {
		m.applyMask(mask)
		m.drawFormat(level, mask)
		if p := m.penalty(); p < bestPenalty {
			bestMask, bestPenalty = mask, p
			bestModules = append(bestModules[:0], m.modules...)
		}
		m.applyMask(mask)
	}

	return &Symbol{
		Version: chosen,
		Level:   level,
		Mode:    mode,
		Mask:    bestMask,
		Size:    m.size,
		modules: bestModules,
	}, nil
}

// bitBuffer accumulates big-endian bit strings.
type bitBuffer struct {
	bytes  []byte
	length int
}

func (b *bitBuffer) append(value uint, n int) {
	for i := n - 1; i >= 0; i-- {
		if b.length%8 == 0 {
			b.bytes = append(b.bytes, 0)
		}
		if value>>i&1 != 0 {
			b.bytes[b.length/8] |= 0x80 >> (b.length % 8)
		}
		b.length++
	}
}

// buildCodewords assembles the data codeword sequence: mode indicator,
// character count, payload bits, terminator and pad bytes.
func buildCodewords(data []byte, mode Mode, level Level, version int) []byte {
	capacity := numDataCodewords(version, level) * 8

	var bb bitBuffer
	bb.append(uint(modeIndicator[mode]), 4)
	bb.append(uint(len(data)), charCountBits(mode, version))

	switch mode {
	case Numeric:
		for i := 0; i < len(data); i += 3 {
			n := len(data) - i
			if n > 3 {
				n = 3
			}
			v := uint(0)
			for _, c := range data[i : i+n] {
				v = v*10 + uint(c-'0')
			}
			bb.append(v, [4]int{0, 4, 7, 10}[n])
		}
	case Alphanumeric:
		for i := 0; i+1 < len(data); i += 2 {
			v := uint(alnumValue[data[i]])*45 + uint(alnumValue[data[i+1]])
			bb.append(v, 11)
		}
		if len(data)%2 == 1 {
			bb.append(uint(alnumValue[data[len(data)-1]]), 6)
		}
	default:
		for _, c := range data {
			bb.append(uint(c), 8)
		}
	}

	// Terminator, byte alignment, then alternating pad bytes.
	term := capacity - bb.length
	if term > 4 {
		term = 4
	}
	bb.append(0, term)
	bb.append(0, (8-bb.length%8)%8)
	for pad := uint(0xEC); bb.length < capacity; pad ^= 0xEC ^ 0x11 {
		bb.append(pad, 8)
	}
	return bb.bytes
}

// interleaveBlocks splits the data codewords into error correction blocks,
// appends Reed-Solomon codewords to each and interleaves the result. Short
// blocks come first; when the capacity does not divide evenly the trailing
// blocks carry one extra data codeword.
func interleaveBlocks(data []byte, version int, level Level) []byte {
	ec := ecTable[version][level]
	numBlocks := ec.Blocks
	total := numRawDataModules(version) / 8
	shortLen := total/numBlocks - ec.PerBlock
	numLong := total % numBlocks

	blocks := make([][]byte, numBlocks)
	k := 0
	for i := range blocks {
		n := shortLen
		if i >= numBlocks-numLong {
			n++
		}
		block := data[k : k+n]
		k += n
		blocks[i] = append(append([]byte(nil), block...), rsEncode(block, ec.PerBlock)...)
	}

	// Column-major walk over the blocks; short blocks simply have no byte
	// at index shortLen.
	result := make([]byte, 0, total)
	longLen := shortLen + 1
	maxLen := longLen + ec.PerBlock
	for i := 0; i < maxLen; i++ {
		for _, block := range blocks {
			dataLen := len(block) - ec.PerBlock
			switch {
			case i < dataLen:
				result = append(result, block[i])
			case i >= longLen:
				result = append(result, block[dataLen+i-longLen])
			}
		}
	}
	return result
}
