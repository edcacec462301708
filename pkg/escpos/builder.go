// pkg/escpos/builder.go
package escpos

import (
	"bytes"
	"fmt"
)

// PrintState tracks the formatting state the printer is in after the bytes
// accumulated so far. State-changing operations diff against it so repeated
// identical calls emit no redundant command bytes.
type PrintState struct {
	Justify      Justify
	Font         Font
	Bold         bool
	Underline    Underline
	DoubleStrike bool
	Flip         bool
	Reverse      bool
	UpsideDown   bool
	Smoothing    bool
	WidthScale   uint8 // 1..8
	HeightScale  uint8 // 1..8
	LineSpacing  int   // -1 means printer default
	PageCode     int   // -1 means not selected yet
}

// DefaultPrintState returns the state a printer is in after ESC @.
func DefaultPrintState() PrintState {
	return PrintState{
		Justify:     JustifyLeft,
		Font:        FontA,
		Underline:   UnderlineNone,
		WidthScale:  1,
		HeightScale: 1,
		LineSpacing: -1,
		PageCode:    -1,
	}
}

// Builder accumulates ordered printer instructions into a byte buffer.
// It performs no I/O; the caller flushes the buffer to a transport.
type Builder struct {
	buf   bytes.Buffer
	state PrintState
}

// NewBuilder returns a Builder with default print state and an empty buffer.
func NewBuilder() *Builder {
	return &Builder{state: DefaultPrintState()}
}

// Bytes returns the accumulated command bytes.
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// Len returns the number of accumulated bytes.
func (b *Builder) Len() int { return b.buf.Len() }

// State returns the tracked print state.
func (b *Builder) State() PrintState { return b.state }

// Clear drops the accumulated bytes without touching the tracked state.
func (b *Builder) Clear() { b.buf.Reset() }

// Raw appends pre-built command bytes verbatim.
func (b *Builder) Raw(data []byte) {
	b.buf.Write(data)
}

func (b *Builder) cmd(prefix []byte, params ...byte) {
	b.buf.Write(prefix)
	b.buf.Write(params)
}

func onOff(v bool) byte {
	if v {
		return 0x01
	}
	return 0x00
}

// Initialize emits ESC @ and resets the tracked state to defaults.
func (b *Builder) Initialize() {
	b.cmd(COMMANDS.INITIALIZE)
	b.state = DefaultPrintState()
}

// Reset emits the hardware reset sequence and resets the tracked state.
func (b *Builder) Reset() {
	b.cmd(COMMANDS.RESET)
	b.state = DefaultPrintState()
}

// Justify sets horizontal alignment. No bytes are emitted if the alignment
// is already active.
func (b *Builder) Justify(j Justify) error {
	if j > JustifyRight {
		return fmt.Errorf("%w: justify mode %d", ErrInvalidOption, j)
	}
	if b.state.Justify == j {
		return nil
	}
	b.cmd(COMMANDS.JUSTIFY, byte(j))
	b.state.Justify = j
	return nil
}

// Font selects the character font.
func (b *Builder) Font(f Font) error {
	if f > FontC {
		return fmt.Errorf("%w: font %d", ErrInvalidOption, f)
	}
	if b.state.Font == f {
		return nil
	}
	b.cmd(COMMANDS.SELECT_FONT, byte(f))
	b.state.Font = f
	return nil
}

// Bold toggles emphasis.
func (b *Builder) Bold(on bool) {
	if b.state.Bold == on {
		return
	}
	b.cmd(COMMANDS.TEXT_BOLD, onOff(on))
	b.state.Bold = on
}

// Underline sets the underline mode.
func (b *Builder) Underline(u Underline) error {
	if u > UnderlineDouble {
		return fmt.Errorf("%w: underline mode %d", ErrInvalidOption, u)
	}
	if b.state.Underline == u {
		return nil
	}
	b.cmd(COMMANDS.TEXT_UNDERLINE, byte(u))
	b.state.Underline = u
	return nil
}

// DoubleStrike toggles double-strike mode.
func (b *Builder) DoubleStrike(on bool) {
	if b.state.DoubleStrike == on {
		return
	}
	b.cmd(COMMANDS.DOUBLE_STRIKE, onOff(on))
	b.state.DoubleStrike = on
}

// Flip toggles 90-degree clockwise rotation.
func (b *Builder) Flip(on bool) {
	if b.state.Flip == on {
		return
	}
	b.cmd(COMMANDS.FLIP, onOff(on))
	b.state.Flip = on
}

// Reverse toggles white/black reverse printing.
func (b *Builder) Reverse(on bool) {
	if b.state.Reverse == on {
		return
	}
	b.cmd(COMMANDS.REVERSE, onOff(on))
	b.state.Reverse = on
}

// UpsideDown toggles upside-down printing.
func (b *Builder) UpsideDown(on bool) {
	if b.state.UpsideDown == on {
		return
	}
	b.cmd(COMMANDS.UPSIDE_DOWN, onOff(on))
	b.state.UpsideDown = on
}

// Smoothing toggles character smoothing.
func (b *Builder) Smoothing(on bool) {
	if b.state.Smoothing == on {
		return
	}
	b.cmd(COMMANDS.SMOOTHING, onOff(on))
	b.state.Smoothing = on
}

// Size sets the character scale. Width and height run from 1 to 8.
func (b *Builder) Size(width, height uint8) error {
	if width < 1 || width > 8 || height < 1 || height > 8 {
		return fmt.Errorf("%w: text size %dx%d (valid: 1..8)", ErrInvalidOption, width, height)
	}
	if b.state.WidthScale == width && b.state.HeightScale == height {
		return nil
	}
	b.cmd(COMMANDS.TEXT_SIZE, (width-1)<<4|(height-1))
	b.state.WidthScale = width
	b.state.HeightScale = height
	return nil
}

// ResetSize restores the 1x1 character scale.
func (b *Builder) ResetSize() {
	_ = b.Size(1, 1)
}

// LineSpacing sets the line spacing in motion units.
func (b *Builder) LineSpacing(n uint8) {
	if b.state.LineSpacing == int(n) {
		return
	}
	b.cmd(COMMANDS.LINE_SPACING, n)
	b.state.LineSpacing = int(n)
}

// ResetLineSpacing restores the printer's default line spacing.
func (b *Builder) ResetLineSpacing() {
	if b.state.LineSpacing == -1 {
		return
	}
	b.cmd(COMMANDS.RESET_LINE_SPACING)
	b.state.LineSpacing = -1
}

// PageCode selects the character code table (ESC t).
func (b *Builder) PageCode(n byte) {
	if b.state.PageCode == int(n) {
		return
	}
	b.cmd(COMMANDS.PAGE_CODE, n)
	b.state.PageCode = int(n)
}

// MotionUnits sets the horizontal and vertical motion units.
func (b *Builder) MotionUnits(x, y uint8) {
	b.cmd(COMMANDS.MOTION_UNITS, x, y)
}

// Text appends text bytes to print. The bytes must already be translated to
// the selected page code; see the pagecode package.
func (b *Builder) Text(data []byte) {
	b.buf.Write(data)
}

// LineFeed prints the line buffer and feeds one line.
func (b *Builder) LineFeed() {
	b.cmd(COMMANDS.LINE_FEED)
}

// Feed prints the line buffer and feeds n lines. n must fit the single
// parameter byte of ESC d.
func (b *Builder) Feed(n int) error {
	if n < 0 || n > 255 {
		return fmt.Errorf("%w: feed %d lines (valid: 0..255)", ErrInvalidOption, n)
	}
	b.cmd(COMMANDS.FEED_LINES, byte(n))
	return nil
}

// Cut performs a full or partial paper cut.
func (b *Builder) Cut(partial bool) {
	if partial {
		b.cmd(COMMANDS.CUT_PARTIAL)
	} else {
		b.cmd(COMMANDS.CUT_FULL)
	}
}

// CashDrawer generates the drawer kick-out pulse on the given pin.
func (b *Builder) CashDrawer(pin CashDrawerPin) error {
	if pin > Pin5 {
		return fmt.Errorf("%w: drawer pin %d", ErrInvalidOption, pin)
	}
	// 25x2ms on, 25x2ms off, the common kick pulse
	b.cmd(COMMANDS.DRAWER_KICK, byte(pin), 0x19, 0x19)
	return nil
}
