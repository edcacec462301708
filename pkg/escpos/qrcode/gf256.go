// pkg/escpos/qrcode/gf256.go
package qrcode

// GF(256) arithmetic over the QR polynomial x^8+x^4+x^3+x^2+1 (0x11D).
// Tables are generated once at init; generator 2.

var (
	gfExp [512]byte // doubled so gfMul can skip the mod
	gfLog [256]byte
)

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11D
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

// rsGenerator returns the Reed-Solomon generator polynomial of the given
// degree: the product of (x - α^0)(x - α^1)...(x - α^(degree-1)), highest
// term first with the implicit leading 1 omitted.
func rsGenerator(degree int) []byte {
	g := make([]byte, degree)
	g[degree-1] = 1
	root := byte(1)
	for i := 0; i < degree; i++ {
		for j := 0; j < degree; j++ {
			g[j] = gfMul(g[j], root)
			if j+1 < degree {
				g[j] ^= g[j+1]
			}
		}
		root = gfMul(root, 2)
	}
	return g
}

// rsEncode returns the degree error correction codewords for data, the
// remainder of data·x^degree divided by the generator polynomial.
func rsEncode(data []byte, degree int) []byte {
	gen := rsGenerator(degree)
	rem := make([]byte, degree)
	for _, d := range data {
		factor := d ^ rem[0]
		copy(rem, rem[1:])
		rem[degree-1] = 0
		for i, g := range gen {
			rem[i] ^= gfMul(g, factor)
		}
	}
	return rem
}
