// Package printer exposes the high level driver facade. A Printer stages
// formatting, text, barcode and QR commands in an in-memory buffer and
// transmits the whole buffer on Flush, so a receipt reaches the device as
// one ordered write per flush.
//
// Methods return the printer for chaining together with the first error the
// call produced. Failed calls append nothing, so a receipt under
// construction is never left with a partial command.
package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"escpos-driver/internal/logging"
	"escpos-driver/pkg/escpos"
	"escpos-driver/pkg/escpos/barcode"
	"escpos-driver/pkg/escpos/pagecode"
	"escpos-driver/pkg/escpos/qrcode"
	"escpos-driver/pkg/escpos/transport"
)

// Printer drives one device through a transport sink. A Printer is not safe
// for concurrent use; each goroutine gets its own.
type Printer struct {
	sink    transport.Sink
	builder *escpos.Builder
	profile Profile
	logger  *zap.Logger
	page    pagecode.PageCode
	retries int
	closed  bool
	mu      sync.Mutex
}

// Option configures a Printer.
type Option func(*Printer)

// WithProfile sets the target printer profile.
func WithProfile(p Profile) Option {
	return func(pr *Printer) { pr.profile = p; pr.page = p.PageCode }
}

// WithLogger sets the logger; flushes are logged with a job id.
func WithLogger(l *zap.Logger) Option {
	return func(pr *Printer) { pr.logger = l }
}

// WithRetries sets how many times a failed flush is retried before the
// error is returned. The buffer survives failed attempts either way.
func WithRetries(n int) Option {
	return func(pr *Printer) { pr.retries = n }
}

// New creates a Printer writing to sink. The default profile is the full
// featured 80mm class with one flush retry.
func New(sink transport.Sink, opts ...Option) *Printer {
	p := &Printer{
		sink:    sink,
		builder: escpos.NewBuilder(),
		profile: DefaultProfile(),
		logger:  zap.NewNop(),
		retries: 1,
	}
	p.page = p.profile.PageCode
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(
		zap.String("component", "printer"),
		zap.String("model", p.profile.Model),
		zap.String("transport", string(sink.Type())),
	)
	return p
}

// Profile returns the active printer profile.
func (p *Printer) Profile() Profile { return p.profile }

// Buffered returns the number of staged bytes awaiting Flush.
func (p *Printer) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.builder.Len()
}

func (p *Printer) guard() error {
	if p.closed {
		return escpos.ErrClosed
	}
	return nil
}

// Init stages ESC @ and selects the profile's character code table.
func (p *Printer) Init() (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	p.builder.Initialize()
	n, err := p.profile.PageCode.Number()
	if err != nil {
		return p, err
	}
	p.builder.PageCode(n)
	p.page = p.profile.PageCode
	return p, nil
}

// Reset stages the hardware reset sequence.
func (p *Printer) Reset() (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	p.builder.Reset()
	return p, nil
}

// Justify sets horizontal alignment.
func (p *Printer) Justify(j escpos.Justify) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { return b.Justify(j) })
}

// Font selects the character font.
func (p *Printer) Font(f escpos.Font) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { return b.Font(f) })
}

// Bold toggles emphasis.
func (p *Printer) Bold(on bool) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.Bold(on); return nil })
}

// Underline sets the underline mode.
func (p *Printer) Underline(u escpos.Underline) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { return b.Underline(u) })
}

// DoubleStrike toggles double-strike printing.
func (p *Printer) DoubleStrike(on bool) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.DoubleStrike(on); return nil })
}

// Flip toggles 90-degree rotated characters.
func (p *Printer) Flip(on bool) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.Flip(on); return nil })
}

// Reverse toggles white on black printing.
func (p *Printer) Reverse(on bool) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.Reverse(on); return nil })
}

// UpsideDown toggles upside-down printing.
func (p *Printer) UpsideDown(on bool) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.UpsideDown(on); return nil })
}

// Smoothing toggles character smoothing.
func (p *Printer) Smoothing(on bool) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.Smoothing(on); return nil })
}

// Size sets the character scale, width and height 1..8.
func (p *Printer) Size(width, height uint8) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { return b.Size(width, height) })
}

// ResetSize restores the 1x1 character scale.
func (p *Printer) ResetSize() (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.ResetSize(); return nil })
}

// LineSpacing sets the line spacing in motion units.
func (p *Printer) LineSpacing(n uint8) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.LineSpacing(n); return nil })
}

// ResetLineSpacing restores the default line spacing.
func (p *Printer) ResetLineSpacing() (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.ResetLineSpacing(); return nil })
}

// MotionUnits sets the horizontal and vertical motion units.
func (p *Printer) MotionUnits(x, y uint8) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.MotionUnits(x, y); return nil })
}

// PageCode switches the character code table used by subsequent Write calls.
func (p *Printer) PageCode(pc pagecode.PageCode) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	n, err := pc.Number()
	if err != nil {
		return p, err
	}
	p.builder.PageCode(n)
	p.page = pc
	return p, nil
}

// Write stages UTF-8 text, translated to the active code table.
func (p *Printer) Write(text string) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	data, err := p.page.Translate(text)
	if err != nil {
		return p, err
	}
	p.builder.Text(data)
	return p, nil
}

// Writeln stages text followed by a line feed.
func (p *Printer) Writeln(text string) (*Printer, error) {
	if _, err := p.Write(text); err != nil {
		return p, err
	}
	return p.Feed()
}

// Feed prints the line buffer and feeds one line.
func (p *Printer) Feed() (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.LineFeed(); return nil })
}

// Feeds prints the line buffer and feeds n lines.
func (p *Printer) Feeds(n int) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { return b.Feed(n) })
}

// Cut performs a full cut.
func (p *Printer) Cut() (*Printer, error) {
	return p.cut(false)
}

// PartialCut performs a partial cut, leaving one point of paper.
func (p *Printer) PartialCut() (*Printer, error) {
	return p.cut(true)
}

func (p *Printer) cut(partial bool) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	if !p.profile.HasCutter {
		return p, fmt.Errorf("%w: profile %s has no cutter", escpos.ErrUnsupported, p.profile.Model)
	}
	p.builder.Cut(partial)
	return p, nil
}

// PrintCut feeds the receipt clear of the print head and cuts. Nothing is
// staged when the profile has no cutter.
func (p *Printer) PrintCut() (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	if !p.profile.HasCutter {
		return p, fmt.Errorf("%w: profile %s has no cutter", escpos.ErrUnsupported, p.profile.Model)
	}
	if err := p.builder.Feed(3); err != nil {
		return p, err
	}
	p.builder.Cut(false)
	return p, nil
}

// CashDrawer fires the drawer kick-out pulse.
func (p *Printer) CashDrawer(pin escpos.CashDrawerPin) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	if !p.profile.HasDrawer {
		return p, fmt.Errorf("%w: profile %s has no drawer port", escpos.ErrUnsupported, p.profile.Model)
	}
	return p, p.builder.CashDrawer(pin)
}

// Barcode stages a barcode with the default options.
func (p *Printer) Barcode(sym barcode.Symbology, data string) (*Printer, error) {
	return p.BarcodeOpts(sym, data, barcode.DefaultOptions())
}

// BarcodeOpts stages a barcode with explicit options.
func (p *Printer) BarcodeOpts(sym barcode.Symbology, data string, opt barcode.Options) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	cmd, err := barcode.Encode(sym, data, opt)
	if err != nil {
		return p, err
	}
	p.builder.Raw(cmd)
	return p, nil
}

// Per-symbology helpers with default options.

func (p *Printer) UPCA(data string) (*Printer, error)    { return p.Barcode(barcode.UPCA, data) }
func (p *Printer) UPCE(data string) (*Printer, error)    { return p.Barcode(barcode.UPCE, data) }
func (p *Printer) EAN13(data string) (*Printer, error)   { return p.Barcode(barcode.EAN13, data) }
func (p *Printer) EAN8(data string) (*Printer, error)    { return p.Barcode(barcode.EAN8, data) }
func (p *Printer) Code39(data string) (*Printer, error)  { return p.Barcode(barcode.Code39, data) }
func (p *Printer) ITF(data string) (*Printer, error)     { return p.Barcode(barcode.ITF, data) }
func (p *Printer) Codabar(data string) (*Printer, error) { return p.Barcode(barcode.Codabar, data) }
func (p *Printer) Code93(data string) (*Printer, error)  { return p.Barcode(barcode.Code93, data) }
func (p *Printer) Code128(data string) (*Printer, error) { return p.Barcode(barcode.Code128, data) }

// QRCode stages a QR code. Profiles with native QR support send the data to
// the printer's own generator; the rest get a pre-rendered raster of the
// encoded matrix.
func (p *Printer) QRCode(data string, level qrcode.Level, moduleSize int) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}

	if p.profile.NativeQR {
		cmd, err := qrcode.NativeCommands([]byte(data), level, moduleSize)
		if err != nil {
			return p, err
		}
		p.builder.Raw(cmd)
		return p, nil
	}

	sym, err := qrcode.Encode([]byte(data), level, qrcode.VersionAuto)
	if err != nil {
		return p, err
	}
	cmd, err := sym.Raster(moduleSize)
	if err != nil {
		return p, err
	}
	p.builder.Raw(cmd)
	return p, nil
}

// BitImage stages a packed monochrome bitmap, one bit per dot, rows padded
// to whole bytes, printed via GS v 0.
func (p *Printer) BitImage(width, height int, bits []byte) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}

	if width < 1 || height < 1 {
		return p, fmt.Errorf("%w: bit image %dx%d", escpos.ErrInvalidOption, width, height)
	}
	if width > p.profile.DotsPerLine {
		return p, fmt.Errorf("%w: bit image %d dots exceeds %d dots per line",
			escpos.ErrInvalidOption, width, p.profile.DotsPerLine)
	}
	widthBytes := (width + 7) / 8
	if len(bits) != widthBytes*height {
		return p, fmt.Errorf("%w: bit image expects %d bytes, got %d",
			escpos.ErrInvalidOption, widthBytes*height, len(bits))
	}
	if widthBytes > 0xFFFF || height > 0xFFFF {
		return p, fmt.Errorf("%w: bit image %dx%d", escpos.ErrEncodingTooLarge, width, height)
	}

	p.builder.Raw(escpos.COMMANDS.RASTER_IMAGE)
	p.builder.Raw([]byte{
		byte(widthBytes & 0xFF), byte(widthBytes >> 8),
		byte(height & 0xFF), byte(height >> 8),
	})
	p.builder.Raw(bits)
	return p, nil
}

// Raw stages pre-built command bytes verbatim.
func (p *Printer) Raw(data []byte) (*Printer, error) {
	return p.stage(func(b *escpos.Builder) error { b.Raw(data); return nil })
}

// Flush transmits the staged buffer to the sink as a single write, retrying
// transient transport failures up to the configured count. The buffer is
// cleared only after a successful transmit, so a failed flush can be retried
// with nothing lost and nothing duplicated.
func (p *Printer) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return err
	}
	if p.builder.Len() == 0 {
		return nil
	}

	staged := p.builder.Len()
	jobLogger := logging.NewJobLogger(p.logger, uuid.New().String())
	jobLogger.Debug("Flushing print job", zap.Int("bytes", staged))

	var err error
	for attempt := 0; attempt <= p.retries; attempt++ {
		err = p.sink.Write(ctx, p.builder.Bytes())
		if err == nil {
			err = p.sink.Flush()
		}
		if err == nil {
			p.builder.Clear()
			jobLogger.Success(staged)
			return nil
		}
		if ctx.Err() != nil || !errors.Is(err, escpos.ErrIO) {
			break
		}
		jobLogger.Warn("Flush attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	jobLogger.Failure(err)
	return err
}

// Close closes the printer and its sink. The staged buffer is discarded;
// call Flush first to transmit it. Close is idempotent and every later
// operation returns escpos.ErrClosed.
func (p *Printer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.builder.Clear()
	p.logger.Info("Printer closed")
	return p.sink.Close()
}

// stage runs fn on the builder under the closed-state guard.
func (p *Printer) stage(fn func(*escpos.Builder) error) (*Printer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(); err != nil {
		return p, err
	}
	return p, fn(p.builder)
}
