// pkg/escpos/barcode/code128.go
package barcode

import (
	"fmt"

	"escpos-driver/pkg/escpos"
)

// Code set markers understood by GS k function 73. The payload must open
// with one of them, and '{' inside A/B data escapes as '{{'.
const codeSetEscape = '{'

func digitRun(data string, i int) int {
	n := 0
	for i+n < len(data) && data[i+n] >= '0' && data[i+n] <= '9' {
		n++
	}
	return n
}

// encodeCode128 validates data and returns the GS k payload with code set
// markers chosen to minimise the emitted byte count: code set C packs digit
// pairs into single bytes and is entered for digit runs long enough to repay
// the two-byte switch, code set A covers control characters, code set B the
// rest of the ASCII range.
func encodeCode128(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("%w: CODE128 data is empty", escpos.ErrInvalidOption)
	}
	for i := 0; i < len(data); i++ {
		if data[i] > 0x7F {
			return nil, fmt.Errorf("%w: CODE128 cannot encode byte 0x%02X", escpos.ErrInvalidOption, data[i])
		}
	}

	out := make([]byte, 0, len(data)+2)
	var cur byte // current code set, 0 before the first marker
	for i := 0; i < len(data); {
		run := digitRun(data, i)
		// A switch costs two bytes and each pair saves one, so code set C
		// pays off for runs of four at either end of the data and runs of
		// six elsewhere.
		atEdge := i == 0 || i+run == len(data)
		if run >= 6 || (run >= 4 && atEdge) {
			if run%2 != 0 {
				run--
			}
			if cur != 'C' {
				out = append(out, codeSetEscape, 'C')
				cur = 'C'
			}
			for ; run > 0; run -= 2 {
				out = append(out, (data[i]-'0')*10+(data[i+1]-'0'))
				i += 2
			}
			continue
		}

		c := data[i]
		want := byte('B')
		if c < 0x20 {
			want = 'A'
		} else if cur == 'A' && c < 0x60 {
			// Set A also covers 0x20..0x5F; avoid a pointless switch.
			want = 'A'
		}
		if cur != want {
			out = append(out, codeSetEscape, want)
			cur = want
		}
		if c == codeSetEscape {
			out = append(out, codeSetEscape, codeSetEscape)
		} else {
			out = append(out, c)
		}
		i++
	}
	return out, nil
}
