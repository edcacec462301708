// pkg/escpos/qrcode/matrix.go
package qrcode

// matrix is a square module grid under construction. modules holds the
// colour (true = dark), isFunc marks function modules excluded from data
// placement and masking.
type matrix struct {
	size    int
	modules []bool
	isFunc  []bool
}

func newMatrix(version int) *matrix {
	size := version*4 + 17
	m := &matrix{
		size:    size,
		modules: make([]bool, size*size),
		isFunc:  make([]bool, size*size),
	}
	m.drawFunctionPatterns(version)
	return m
}

func (m *matrix) set(x, y int, dark bool) {
	i := y*m.size + x
	m.modules[i] = dark
	m.isFunc[i] = true
}

// drawFunctionPatterns places the finder, separator, timing and alignment
// patterns, the version information and the dark module, and reserves the
// format information areas. Format bits themselves are drawn per mask
// candidate.
func (m *matrix) drawFunctionPatterns(version int) {
	siz := m.size

	// Timing patterns.
	for i := 0; i < siz; i++ {
		m.set(6, i, i%2 == 0)
		m.set(i, 6, i%2 == 0)
	}

	// Finder patterns with separators, clipped at the edges.
	m.drawFinder(3, 3)
	m.drawFinder(siz-4, 3)
	m.drawFinder(3, siz-4)

	// Alignment patterns, skipping the three finder corners.
	pos := alignPositions[version]
	n := len(pos)
	for i, cy := range pos {
		for j, cx := range pos {
			if (i == 0 && j == 0) || (i == 0 && j == n-1) || (i == n-1 && j == 0) {
				continue
			}
			m.drawAlignment(cx, cy)
		}
	}

	// Reserve the format areas; real bits are drawn when masking.
	m.drawFormat(0, 0)

	// Version information, versions 7 and up.
	if version >= 7 {
		bits := versionBits(version)
		for i := 0; i < 18; i++ {
			dark := bits>>i&1 != 0
			a := siz - 11 + i%3
			b := i / 3
			m.set(a, b, dark)
			m.set(b, a, dark)
		}
	}
}

func (m *matrix) drawFinder(cx, cy int) {
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || x >= m.size || y < 0 || y >= m.size {
				continue
			}
			dist := max(abs(dx), abs(dy))
			m.set(x, y, dist != 2 && dist != 4)
		}
	}
}

func (m *matrix) drawAlignment(cx, cy int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.set(cx+dx, cy+dy, max(abs(dx), abs(dy)) != 1)
		}
	}
}

// formatBits computes the 15 masked format bits for a level and mask.
func formatBits(level Level, mask int) int {
	data := levelIndicator[level]<<3 | mask
	rem := data
	for i := 0; i < 10; i++ {
		rem = rem<<1 ^ (rem>>9)*0x537
	}
	return (data<<10 | rem) ^ 0x5412
}

// versionBits computes the 18 version information bits.
func versionBits(version int) int {
	rem := version
	for i := 0; i < 12; i++ {
		rem = rem<<1 ^ (rem>>11)*0x1F25
	}
	return version<<12 | rem
}

// drawFormat draws both copies of the format information and the fixed dark
// module. bit i counts from the least significant end.
func (m *matrix) drawFormat(level Level, mask int) {
	bits := formatBits(level, mask)
	siz := m.size

	// Copy around the top-left finder.
	for i := 0; i <= 5; i++ {
		m.set(8, i, bits>>i&1 != 0)
	}
	m.set(8, 7, bits>>6&1 != 0)
	m.set(8, 8, bits>>7&1 != 0)
	m.set(7, 8, bits>>8&1 != 0)
	for i := 9; i < 15; i++ {
		m.set(14-i, 8, bits>>i&1 != 0)
	}

	// Split copy along the bottom-left and top-right finders.
	for i := 0; i < 8; i++ {
		m.set(siz-1-i, 8, bits>>i&1 != 0)
	}
	for i := 8; i < 15; i++ {
		m.set(8, siz-15+i, bits>>i&1 != 0)
	}
	m.set(8, siz-8, true) // dark module
}

// placeData writes the interleaved codeword bits into the free modules in
// the standard zig-zag order: column pairs right to left, alternating
// upward and downward, skipping the vertical timing column.
func (m *matrix) placeData(data []byte) {
	siz := m.size
	i := 0
	for right := siz - 1; right >= 1; right -= 2 {
		if right == 6 {
			right = 5
		}
		for vert := 0; vert < siz; vert++ {
			for j := 0; j < 2; j++ {
				x := right - j
				y := vert
				if (right+1)&2 == 0 {
					y = siz - 1 - vert // upward column
				}
				idx := y*siz + x
				if !m.isFunc[idx] && i < len(data)*8 {
					m.modules[idx] = data[i>>3]>>(7-i&7)&1 != 0
					i++
				}
			}
		}
	}
}

// maskPredicate reports whether the mask inverts the module at (x, y).
func maskPredicate(mask, x, y int) bool {
	switch mask {
	case 0:
		return (x+y)%2 == 0
	case 1:
		return y%2 == 0
	case 2:
		return x%3 == 0
	case 3:
		return (x+y)%3 == 0
	case 4:
		return (x/3+y/2)%2 == 0
	case 5:
		return x*y%2+x*y%3 == 0
	case 6:
		return (x*y%2+x*y%3)%2 == 0
	case 7:
		return ((x+y)%2+x*y%3)%2 == 0
	}
	return false
}

// applyMask XORs the mask pattern over the non-function modules.
// Applying the same mask twice restores the matrix.
func (m *matrix) applyMask(mask int) {
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			i := y*m.size + x
			if !m.isFunc[i] && maskPredicate(mask, x, y) {
				m.modules[i] = !m.modules[i]
			}
		}
	}
}

// Penalty weights from the four evaluation rules of the symbol spec.
const (
	penaltyN1 = 3  // same-colour run of 5, +1 per extra module
	penaltyN2 = 3  // per 2x2 same-colour block
	penaltyN3 = 40 // per finder-like 1:1:3:1:1 pattern
	penaltyN4 = 10 // per 5% deviation from 50% dark
)

// finder-like patterns over an 11-module window: dark 1:1:3:1:1 with four
// light modules on one side.
const (
	finderBefore = 0b00001011101
	finderAfter  = 0b10111010000
	windowMask   = 0b11111111111
)

func (m *matrix) at(x, y int) bool { return m.modules[y*m.size+x] }

// penalty scores the matrix with the four standard rules; the encoder keeps
// the mask with the lowest total.
func (m *matrix) penalty() int {
	siz := m.size
	total := 0
	dark := 0

	// Rows: runs, finder patterns, dark count.
	for y := 0; y < siz; y++ {
		run := 1
		window := 0
		for x := 0; x < siz; x++ {
			cur := m.at(x, y)
			if cur {
				dark++
			}
			window = (window<<1 | bit(cur)) & windowMask
			if x >= 10 && (window == finderBefore || window == finderAfter) {
				total += penaltyN3
			}
			if x > 0 {
				if cur == m.at(x-1, y) {
					run++
				} else {
					if run >= 5 {
						total += penaltyN1 + run - 5
					}
					run = 1
				}
			}
		}
		if run >= 5 {
			total += penaltyN1 + run - 5
		}
	}

	// Columns: runs and finder patterns.
	for x := 0; x < siz; x++ {
		run := 1
		window := 0
		for y := 0; y < siz; y++ {
			cur := m.at(x, y)
			window = (window<<1 | bit(cur)) & windowMask
			if y >= 10 && (window == finderBefore || window == finderAfter) {
				total += penaltyN3
			}
			if y > 0 {
				if cur == m.at(x, y-1) {
					run++
				} else {
					if run >= 5 {
						total += penaltyN1 + run - 5
					}
					run = 1
				}
			}
		}
		if run >= 5 {
			total += penaltyN1 + run - 5
		}
	}

	// 2x2 blocks.
	for y := 0; y < siz-1; y++ {
		for x := 0; x < siz-1; x++ {
			c := m.at(x, y)
			if c == m.at(x+1, y) && c == m.at(x, y+1) && c == m.at(x+1, y+1) {
				total += penaltyN2
			}
		}
	}

	// Dark module balance, 10 points per 5% step away from 50%.
	n := siz * siz
	k := (abs(dark*20-n*10)+n-1)/n - 1
	total += k * penaltyN4

	return total
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
