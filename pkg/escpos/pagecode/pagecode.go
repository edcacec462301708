// Package pagecode maps printer character code tables to their ESC t
// numbers and translates UTF-8 text into the selected single-byte table.
package pagecode

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"escpos-driver/pkg/escpos"
)

// PageCode identifies a character code table of the printer.
type PageCode int

const (
	PC437 PageCode = iota // USA, standard Europe
	PC850                 // multilingual
	PC852                 // Latin 2
	PC858                 // Euro
	PC860                 // Portuguese
	PC863                 // Canadian French
	PC865                 // Nordic
	PC866                 // Cyrillic 2
	ISO8859_2             // Latin 2
	ISO8859_7             // Greek
	ISO8859_15            // Latin 9
	WPC1252               // Windows Latin 1
)

// tableEntry ties a code table to its ESC t select number and the charmap
// that performs the UTF-8 translation.
type tableEntry struct {
	name   string
	number byte
	cmap   *charmap.Charmap
}

// Select numbers follow the Epson code table assignment.
var tables = map[PageCode]tableEntry{
	PC437:      {"PC437", 0, charmap.CodePage437},
	PC850:      {"PC850", 2, charmap.CodePage850},
	PC860:      {"PC860", 3, charmap.CodePage860},
	PC863:      {"PC863", 4, charmap.CodePage863},
	PC865:      {"PC865", 5, charmap.CodePage865},
	WPC1252:    {"WPC1252", 16, charmap.Windows1252},
	PC866:      {"PC866", 17, charmap.CodePage866},
	PC852:      {"PC852", 18, charmap.CodePage852},
	PC858:      {"PC858", 19, charmap.CodePage858},
	ISO8859_2:  {"ISO8859-2", 39, charmap.ISO8859_2},
	ISO8859_7:  {"ISO8859-7", 38, charmap.ISO8859_7},
	ISO8859_15: {"ISO8859-15", 40, charmap.ISO8859_15},
}

func (p PageCode) String() string {
	if e, ok := tables[p]; ok {
		return e.name
	}
	return fmt.Sprintf("PageCode(%d)", int(p))
}

// Number returns the ESC t select number for the code table.
func (p PageCode) Number() (byte, error) {
	e, ok := tables[p]
	if !ok {
		return 0, fmt.Errorf("%w: page code %d", escpos.ErrInvalidOption, int(p))
	}
	return e.number, nil
}

// Translate converts UTF-8 text to the single-byte encoding of the code
// table. Runes the table cannot represent are replaced with '?', matching
// what the printer would render for stray bytes.
func (p PageCode) Translate(text string) ([]byte, error) {
	e, ok := tables[p]
	if !ok {
		return nil, fmt.Errorf("%w: page code %d", escpos.ErrInvalidOption, int(p))
	}
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := e.cmap.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out, nil
}
