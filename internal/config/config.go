// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"escpos-driver/internal/logging"
	"escpos-driver/pkg/escpos/printer"
	"escpos-driver/pkg/escpos/transport"
)

// Config represents the escpos-print configuration.
type Config struct {
	Profile   printer.Profile  `mapstructure:"profile"`
	Transport transport.Config `mapstructure:"transport"`
	Logging   logging.Config   `mapstructure:"logging"`
	Job       JobConfig        `mapstructure:"job"`
}

// JobConfig controls print job behavior.
type JobConfig struct {
	Retries int `mapstructure:"retries"`
}

// Load reads configuration from an optional YAML file and the environment.
// path may be empty, in which case config.yaml is looked up in the working
// directory and /etc/escpos-print; a missing file falls back to the
// defaults. Environment variables use the ESCPOS_ prefix with underscores,
// e.g. ESCPOS_TRANSPORT_NETWORK_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/escpos-print")
	}

	v.SetEnvPrefix("ESCPOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file; defaults plus environment apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Profile defaults, the common 80mm class
	def := printer.DefaultProfile()
	v.SetDefault("profile.model", def.Model)
	v.SetDefault("profile.paper_width_mm", def.PaperWidthMM)
	v.SetDefault("profile.dots_per_line", def.DotsPerLine)
	v.SetDefault("profile.native_qr", def.NativeQR)
	v.SetDefault("profile.has_cutter", def.HasCutter)
	v.SetDefault("profile.has_drawer", def.HasDrawer)
	v.SetDefault("profile.page_code", int(def.PageCode))

	// Transport defaults
	v.SetDefault("transport.type", string(transport.TypeNetwork))
	v.SetDefault("transport.network.port", 9100)
	v.SetDefault("transport.network.keep_alive", true)
	v.SetDefault("transport.network.dial_timeout", "10s")
	v.SetDefault("transport.network.read_timeout", "30s")
	v.SetDefault("transport.network.write_timeout", "30s")
	v.SetDefault("transport.serial.baud_rate", 9600)
	v.SetDefault("transport.serial.data_bits", 8)
	v.SetDefault("transport.serial.stop_bits", 1)
	v.SetDefault("transport.serial.parity", "none")
	v.SetDefault("transport.serial.timeout", "5s")
	v.SetDefault("transport.usb.endpoint", 1)
	v.SetDefault("transport.usb.timeout", "5s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Job defaults
	v.SetDefault("job.retries", 1)
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.Profile.DotsPerLine < 1 {
		return fmt.Errorf("profile.dots_per_line must be positive")
	}
	if config.Job.Retries < 0 {
		return fmt.Errorf("job.retries must not be negative")
	}
	return transport.Validate(&config.Transport)
}
