// pkg/escpos/printer/profile.go
package printer

import "escpos-driver/pkg/escpos/pagecode"

// Profile describes the capabilities of the target printer. Features a
// profile lacks yield escpos.ErrUnsupported instead of sending commands the
// device would misprint.
type Profile struct {
	Model        string            `mapstructure:"model" json:"model"`
	PaperWidthMM int               `mapstructure:"paper_width_mm" json:"paper_width_mm"`
	DotsPerLine  int               `mapstructure:"dots_per_line" json:"dots_per_line"`
	NativeQR     bool              `mapstructure:"native_qr" json:"native_qr"`
	HasCutter    bool              `mapstructure:"has_cutter" json:"has_cutter"`
	HasDrawer    bool              `mapstructure:"has_drawer" json:"has_drawer"`
	PageCode     pagecode.PageCode `mapstructure:"page_code" json:"page_code"`
}

// DefaultProfile returns an 80mm full-featured profile, the common Epson
// TM-T20/T88 class.
func DefaultProfile() Profile {
	return Profile{
		Model:        "generic-80mm",
		PaperWidthMM: 80,
		DotsPerLine:  576,
		NativeQR:     true,
		HasCutter:    true,
		HasDrawer:    true,
		PageCode:     pagecode.PC437,
	}
}

// Profile58mm returns a reduced 58mm profile as found on portable printers:
// narrower paper, no cutter, no drawer port, QR rendered as raster.
func Profile58mm() Profile {
	return Profile{
		Model:        "generic-58mm",
		PaperWidthMM: 58,
		DotsPerLine:  384,
		NativeQR:     false,
		HasCutter:    false,
		HasDrawer:    false,
		PageCode:     pagecode.PC437,
	}
}
