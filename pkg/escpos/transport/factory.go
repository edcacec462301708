// pkg/escpos/transport/factory.go
package transport

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"escpos-driver/pkg/escpos"
)

// Config selects and configures a transport. Only the section matching
// Type is read.
type Config struct {
	Type    Type          `mapstructure:"type" json:"type"`
	Network NetworkConfig `mapstructure:"network" json:"network"`
	Serial  SerialConfig  `mapstructure:"serial" json:"serial"`
	USB     USBConfig     `mapstructure:"usb" json:"usb"`
	Output  string        `mapstructure:"output" json:"output"`
}

// New creates a sink from the configuration, filling in the customary
// defaults for the selected transport.
func New(cfg *Config, logger *zap.Logger) (Sink, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case TypeNetwork:
		nc := cfg.Network
		if nc.Port == 0 {
			nc.Port = 9100
		}
		if nc.DialTimeout == 0 {
			nc.DialTimeout = 10 * time.Second
		}
		if nc.WriteTimeout == 0 {
			nc.WriteTimeout = 30 * time.Second
		}
		if nc.ReadTimeout == 0 {
			nc.ReadTimeout = 30 * time.Second
		}
		return NewNetworkSink(&nc, logger), nil

	case TypeSerial:
		sc := cfg.Serial
		if sc.BaudRate == 0 {
			sc.BaudRate = 9600
		}
		if sc.DataBits == 0 {
			sc.DataBits = 8
		}
		if sc.StopBits == 0 {
			sc.StopBits = 1
		}
		if sc.Parity == "" {
			sc.Parity = "none"
		}
		if sc.Timeout == 0 {
			sc.Timeout = 5 * time.Second
		}
		return NewSerialSink(&sc, logger), nil

	case TypeUSB:
		uc := cfg.USB
		if uc.Endpoint == 0 {
			uc.Endpoint = 1
		}
		if uc.Timeout == 0 {
			uc.Timeout = 5 * time.Second
		}
		return NewUSBSink(&uc, logger), nil

	case TypeWriter:
		return NewFileSink(cfg.Output, logger)

	default:
		return nil, fmt.Errorf("%w: transport type %q", escpos.ErrInvalidOption, cfg.Type)
	}
}

// Validate checks that the section matching the configured type carries
// its required fields.
func Validate(cfg *Config) error {
	switch cfg.Type {
	case TypeNetwork:
		if cfg.Network.Host == "" {
			return fmt.Errorf("%w: network transport requires a host", escpos.ErrInvalidOption)
		}
		if p := cfg.Network.Port; p < 0 || p > 65535 {
			return fmt.Errorf("%w: port %d", escpos.ErrInvalidOption, p)
		}
		return nil

	case TypeSerial:
		if cfg.Serial.Port == "" {
			return fmt.Errorf("%w: serial transport requires a port", escpos.ErrInvalidOption)
		}
		if r := cfg.Serial.BaudRate; r != 0 && !validBaudRate(r) {
			return fmt.Errorf("%w: baud rate %d", escpos.ErrInvalidOption, r)
		}
		return nil

	case TypeUSB:
		if cfg.USB.VendorID == "" || cfg.USB.ProductID == "" {
			return fmt.Errorf("%w: usb transport requires vendor_id and product_id", escpos.ErrInvalidOption)
		}
		if _, err := parseHexID(cfg.USB.VendorID); err != nil {
			return fmt.Errorf("%w: vendor id %q", escpos.ErrInvalidOption, cfg.USB.VendorID)
		}
		if _, err := parseHexID(cfg.USB.ProductID); err != nil {
			return fmt.Errorf("%w: product id %q", escpos.ErrInvalidOption, cfg.USB.ProductID)
		}
		return nil

	case TypeWriter:
		if cfg.Output == "" {
			return fmt.Errorf("%w: writer transport requires an output path", escpos.ErrInvalidOption)
		}
		return nil

	default:
		return fmt.Errorf("%w: transport type %q", escpos.ErrInvalidOption, cfg.Type)
	}
}

func validBaudRate(rate int) bool {
	switch rate {
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		return true
	}
	return false
}
