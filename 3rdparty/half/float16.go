/*

 go-float16 - IEEE 754 binary16 half precision format
 Written in 2013 by h2so5 <mail@h2so5.net>

 To the extent possible under law, the author(s) have dedicated all copyright and
 related and neighboring rights to this software to the public domain worldwide.
 This software is distributed without any warranty.
 You should have received a copy of the CC0 Public Domain Dedication along with this software.
 If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

*/

// Package half is an IEEE 754 binary16 half precision format.
package half

import "math"

// A Float16 represents a 16-bit floating point number.
type Float16 uint16

const (
	MaxFloat16 Float16 = 0x7bff
	infFloat16 Float16 = 0x7c00
	nanFloat16 Float16 = 0x7e00
)

// NewFloat16 converts f rounding to nearest, ties to even. Finite values
// beyond the binary16 range saturate to the largest finite magnitude.
func NewFloat16(f float32) Float16 {
	i := math.Float32bits(f)
	sign := Float16((i >> 16) & 0x8000)
	exp := int32((i >> 23) & 0xff)
	frac := i & 0x7fffff

	if exp == 0xff {
		if frac != 0 {
			return sign | nanFloat16
		}
		return sign | infFloat16
	}

	exp16 := exp - 127 + 15
	if exp16 >= 0x1f {
		return sign | MaxFloat16
	}

	if exp16 <= 0 {
		// subnormal result, the implicit bit becomes explicit
		shift := uint32(14 - exp16)
		if shift > 24 {
			return sign
		}
		return sign | Float16(roundShift(frac|0x800000, shift))
	}

	h := uint32(exp16)<<10 | frac>>13
	rem := frac & 0x1fff
	if rem > 0x1000 || (rem == 0x1000 && h&1 == 1) {
		h++
	}
	if h >= uint32(infFloat16) {
		return sign | MaxFloat16
	}
	return sign | Float16(h)
}

func roundShift(m, shift uint32) uint32 {
	h := m >> shift
	rem := m & (1<<shift - 1)
	halfway := uint32(1) << (shift - 1)
	if rem > halfway || (rem == halfway && h&1 == 1) {
		h++
	}
	return h
}

// Float32 returns the float32 representation of f. The conversion is exact.
func (f Float16) Float32() float32 {
	sign := uint32(f&0x8000) << 16
	exp := uint32(f>>10) & 0x1f
	frac := uint32(f & 0x3ff)

	switch exp {
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		exp32 := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			exp32--
		}
		frac &= 0x3ff
		return math.Float32frombits(sign | exp32<<23 | frac<<13)
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | frac<<13)
	}
}

// Float16At decodes a little-endian half at b[0:2].
func Float16At(b []byte) float32 {
	return Float16(uint16(b[0]) | uint16(b[1])<<8).Float32()
}
