// pkg/escpos/transport/usb.go
package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"escpos-driver/pkg/escpos"
)

// USBConfig configures a USB printer class sink. Vendor and product IDs
// accept "0x04b8" or "04b8".
type USBConfig struct {
	VendorID  string        `mapstructure:"vendor_id" json:"vendor_id"`
	ProductID string        `mapstructure:"product_id" json:"product_id"`
	Endpoint  int           `mapstructure:"endpoint" json:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
}

// USBSink implements Sink over a USB bulk out endpoint.
type USBSink struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	intf     *gousb.Interface
	intfDone func()
	outEndpt *gousb.OutEndpoint
	inEndpt  *gousb.InEndpoint
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    *Stats
}

// NewUSBSink creates a USB sink for the given vendor/product pair.
func NewUSBSink(config *USBConfig, logger *zap.Logger) *USBSink {
	return &USBSink{
		config: config,
		logger: logger.With(
			zap.String("transport", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
		stats: &Stats{},
	}
}

// Open finds the device, claims its default interface and resolves the
// bulk endpoints.
func (us *USBSink) Open(ctx context.Context) error {
	us.mutex.Lock()
	defer us.mutex.Unlock()

	if us.isOpen {
		return nil
	}

	us.logger.Info("Opening USB device")

	vendorID, err := parseHexID(us.config.VendorID)
	if err != nil {
		return fmt.Errorf("%w: vendor id %q: %v", escpos.ErrInvalidOption, us.config.VendorID, err)
	}
	productID, err := parseHexID(us.config.ProductID)
	if err != nil {
		return fmt.Errorf("%w: product id %q: %v", escpos.ErrInvalidOption, us.config.ProductID, err)
	}

	usbCtx := gousb.NewContext()

	device, err := usbCtx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil || device == nil {
		usbCtx.Close()
		if err == nil {
			err = fmt.Errorf("no device %s:%s found", us.config.VendorID, us.config.ProductID)
		}
		return fmt.Errorf("%w: open USB device: %v", escpos.ErrIO, err)
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("%w: claim interface: %v", escpos.ErrIO, err)
	}

	outEndpt, err := intf.OutEndpoint(us.config.Endpoint)
	if err != nil {
		done()
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("%w: out endpoint %d: %v", escpos.ErrIO, us.config.Endpoint, err)
	}

	inEndpt, err := intf.InEndpoint(us.config.Endpoint)
	if err != nil {
		// Print-only devices have no in endpoint.
		us.logger.Warn("No in endpoint found", zap.Error(err))
	}

	us.ctx = usbCtx
	us.device = device
	us.intf = intf
	us.intfDone = done
	us.outEndpt = outEndpt
	us.inEndpt = inEndpt
	us.isOpen = true
	us.stats.IsConnected = true
	us.stats.LastActivity = time.Now()

	us.logger.Info("USB device opened")
	return nil
}

// Close releases the interface, device and USB context.
func (us *USBSink) Close() error {
	us.mutex.Lock()
	defer us.mutex.Unlock()

	if !us.isOpen {
		return nil
	}

	if us.intfDone != nil {
		us.intfDone()
		us.intfDone = nil
	}
	if us.intf != nil {
		us.intf.Close()
		us.intf = nil
	}
	if us.device != nil {
		us.device.Close()
		us.device = nil
	}
	if us.ctx != nil {
		us.ctx.Close()
		us.ctx = nil
	}

	us.outEndpt = nil
	us.inEndpt = nil
	us.isOpen = false
	us.stats.IsConnected = false

	us.logger.Info("USB device closed")
	return nil
}

// IsOpen returns whether the device is open.
func (us *USBSink) IsOpen() bool {
	us.mutex.RLock()
	defer us.mutex.RUnlock()
	return us.isOpen && us.device != nil && us.outEndpt != nil
}

// Write transmits data to the bulk out endpoint.
func (us *USBSink) Write(ctx context.Context, data []byte) error {
	us.mutex.RLock()
	defer us.mutex.RUnlock()

	if !us.isOpen || us.outEndpt == nil {
		return fmt.Errorf("%w: usb sink", escpos.ErrClosed)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startTime := time.Now()
	n, err := us.outEndpt.Write(data)
	if err != nil {
		us.stats.ErrorCount++
		us.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("%w: write: %v", escpos.ErrIO, err)
	}
	if n != len(data) {
		us.stats.ErrorCount++
		return fmt.Errorf("%w: incomplete write: %d of %d bytes", escpos.ErrIO, n, len(data))
	}

	us.stats.recordWrite(len(data), time.Since(startTime))
	us.logger.Debug("USB write completed", zap.Int("bytes", len(data)))
	return nil
}

// Read receives status bytes from the bulk in endpoint.
func (us *USBSink) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	us.mutex.RLock()
	defer us.mutex.RUnlock()

	if !us.isOpen || us.inEndpt == nil {
		return nil, fmt.Errorf("%w: usb sink has no in endpoint", escpos.ErrClosed)
	}

	buffer := make([]byte, maxBytes)

	done := make(chan readResult, 1)
	go func() {
		n, err := us.inEndpt.Read(buffer)
		if err != nil {
			done <- readResult{err: fmt.Errorf("%w: read: %v", escpos.ErrIO, err)}
			return
		}
		data := make([]byte, n)
		copy(data, buffer[:n])
		done <- readResult{data: data}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			us.stats.ErrorCount++
			return nil, result.err
		}
		us.stats.recordRead(len(result.data))
		return result.data, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush is a no-op; bulk transfers complete before Write returns.
func (us *USBSink) Flush() error {
	us.mutex.RLock()
	defer us.mutex.RUnlock()
	if !us.isOpen {
		return fmt.Errorf("%w: device not open", escpos.ErrClosed)
	}
	return nil
}

// Type returns the transport type.
func (us *USBSink) Type() Type {
	return TypeUSB
}

// parseHexID parses a hex device ID like "0x04b8" or "04b8".
func parseHexID(s string) (gousb.ID, error) {
	s = strings.TrimPrefix(s, "0x")
	id, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}
