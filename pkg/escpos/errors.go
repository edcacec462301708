// pkg/escpos/errors.go
package escpos

import "errors"

// Driver error taxonomy. Validation errors (ErrInvalidOption,
// ErrEncodingTooLarge) are deterministic and never retried; transport
// failures are wrapped I/O errors and may be retried with the same buffer.
var (
	// ErrInvalidOption reports malformed or out-of-range input: barcode data
	// violating the symbology charset or length, or a numeric parameter
	// outside the protocol's documented range.
	ErrInvalidOption = errors.New("escpos: invalid option")

	// ErrEncodingTooLarge reports QR data exceeding the capacity of the
	// maximum supported version at the requested error correction level.
	ErrEncodingTooLarge = errors.New("escpos: encoding too large")

	// ErrUnsupported reports a feature not available on the target printer
	// profile.
	ErrUnsupported = errors.New("escpos: unsupported feature")

	// ErrIO reports a transport failure while transmitting to the device.
	// The unsent buffer is retained so the write can be retried.
	ErrIO = errors.New("escpos: transport failure")

	// ErrClosed reports an operation attempted after Close.
	ErrClosed = errors.New("escpos: printer closed")
)
