// cmd/escpos-print/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"escpos-driver/internal/config"
	"escpos-driver/internal/logging"
	"escpos-driver/pkg/escpos"
	"escpos-driver/pkg/escpos/barcode"
	"escpos-driver/pkg/escpos/printer"
	"escpos-driver/pkg/escpos/qrcode"
	"escpos-driver/pkg/escpos/transport"
)

// Application wires configuration, logging, transport and printer for one
// print run.
type Application struct {
	config  *config.Config
	logger  *zap.Logger
	sink    transport.Sink
	printer *printer.Printer
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	testPage := flag.Bool("test-page", false, "print the driver test page")
	cut := flag.Bool("cut", true, "cut after printing")
	flag.Parse()

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(*testPage, *cut, flag.Args()); err != nil {
		app.logger.Fatal("Print run failed", zap.Error(err))
	}
}

// NewApplication builds the application from configuration.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	sink, err := transport.New(&cfg.Transport, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	p := printer.New(sink,
		printer.WithProfile(cfg.Profile),
		printer.WithLogger(logger),
		printer.WithRetries(cfg.Job.Retries),
	)

	return &Application{
		config:  cfg,
		logger:  logger,
		sink:    sink,
		printer: p,
	}, nil
}

// Run opens the transport, stages the requested content and flushes it.
// Each non-flag argument prints as one text line; -test-page stages the
// driver test page instead.
func (app *Application) Run(testPage, cut bool, lines []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := app.sink.Open(ctx); err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}

	if _, err := app.printer.Init(); err != nil {
		return err
	}

	if testPage {
		if err := app.stageTestPage(); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := app.printer.Writeln(line); err != nil {
			return err
		}
	}

	if cut && app.printer.Profile().HasCutter {
		if _, err := app.printer.PrintCut(); err != nil {
			return err
		}
	}

	return app.printer.Flush(ctx)
}

// stageTestPage stages a page exercising formatting, barcodes and a QR code.
func (app *Application) stageTestPage() error {
	p := app.printer

	steps := []func() (*printer.Printer, error){
		func() (*printer.Printer, error) { return p.Justify(escpos.JustifyCenter) },
		func() (*printer.Printer, error) { return p.Size(2, 2) },
		func() (*printer.Printer, error) { return p.Writeln("ESC/POS TEST") },
		func() (*printer.Printer, error) { return p.ResetSize() },
		func() (*printer.Printer, error) { return p.Bold(true) },
		func() (*printer.Printer, error) { return p.Writeln(app.config.Profile.Model) },
		func() (*printer.Printer, error) { return p.Bold(false) },
		func() (*printer.Printer, error) { return p.Justify(escpos.JustifyLeft) },
		func() (*printer.Printer, error) { return p.Underline(escpos.UnderlineSingle) },
		func() (*printer.Printer, error) { return p.Writeln("underline") },
		func() (*printer.Printer, error) { return p.Underline(escpos.UnderlineNone) },
		func() (*printer.Printer, error) { return p.Reverse(true) },
		func() (*printer.Printer, error) { return p.Writeln("reverse") },
		func() (*printer.Printer, error) { return p.Reverse(false) },
		func() (*printer.Printer, error) { return p.Feed() },
		func() (*printer.Printer, error) { return p.Justify(escpos.JustifyCenter) },
		func() (*printer.Printer, error) { return p.Barcode(barcode.EAN13, "4006381333931") },
		func() (*printer.Printer, error) { return p.Feed() },
		func() (*printer.Printer, error) { return p.QRCode("https://example.com/receipt", qrcode.LevelM, 4) },
		func() (*printer.Printer, error) { return p.Feed() },
		func() (*printer.Printer, error) { return p.Justify(escpos.JustifyLeft) },
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the printer and flushes the logger.
func (app *Application) Close() {
	if app.printer != nil {
		if err := app.printer.Close(); err != nil {
			app.logger.Warn("Failed to close printer", zap.Error(err))
		}
	}
	if app.logger != nil {
		_ = app.logger.Sync()
	}
}
