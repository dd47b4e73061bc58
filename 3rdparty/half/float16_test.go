/*

 go-float16 - IEEE 754 binary16 half precision format
 Written in 2013 by h2so5 <mail@h2so5.net>

 To the extent possible under law, the author(s) have dedicated all copyright and
 related and neighboring rights to this software to the public domain worldwide.
 This software is distributed without any warranty.
 You should have received a copy of the CC0 Public Domain Dedication along with this software.
 If not, see <http://creativecommons.org/publicdomain/zero/1.0/>.

*/

package half

import (
	"math"
	"testing"
)

func getFloatTable() map[Float16]float32 {
	table := map[Float16]float32{
		0x3c00: 1,
		0x4000: 2,
		0xc000: -2,
		0x7bfe: 65472,
		0x7bff: 65504,
		0xfbff: -65504,
		0x0000: 0,
		0x8000: float32(math.Copysign(0, -1)),
		0x7c00: float32(math.Inf(1)),
		0xfc00: float32(math.Inf(-1)),
		0x5b8f: 241.875,
		0x48c8: 9.5625,
		0x3555: 0.333251953125,
		0x0400: float32(math.Ldexp(1, -14)),
		0x0001: float32(math.Ldexp(1, -24)),
		0x8001: -float32(math.Ldexp(1, -24)),
		0x0200: float32(math.Ldexp(1, -15)),
		0x03ff: float32(math.Ldexp(1023, -24)),
	}
	return table
}

func TestFloat32(t *testing.T) {
	for k, v := range getFloatTable() {
		f := k.Float32()
		if f != v || math.Signbit(float64(f)) != math.Signbit(float64(v)) {
			t.Errorf("ToFloat32(%#04x) = %g, want %g.", uint16(k), f, v)
		}
	}
}

func TestNewFloat16(t *testing.T) {
	for k, v := range getFloatTable() {
		i := NewFloat16(v)
		if i != k {
			t.Errorf("FromFloat32(%g) = %#04x, want %#04x.", v, uint16(i), uint16(k))
		}
	}
}

func TestRoundTripAllFinite(t *testing.T) {
	for i := 0; i < 0x10000; i++ {
		h := Float16(i)
		if h&0x7c00 == 0x7c00 {
			continue
		}
		if back := NewFloat16(h.Float32()); back != h {
			t.Fatalf("round trip of %#04x gave %#04x", uint16(h), uint16(back))
		}
	}
}

func TestRoundingTiesToEven(t *testing.T) {
	table := []struct {
		in  float32
		out Float16
	}{
		{1 + float32(math.Ldexp(1, -11)), 0x3c00},     // tie, lower is even
		{1 + float32(math.Ldexp(3, -11)), 0x3c02},     // tie, upper is even
		{1 + float32(math.Ldexp(1, -11))*1.5, 0x3c01}, // above tie
		{1 + float32(math.Ldexp(1, -12)), 0x3c00},     // below tie
		{float32(math.Ldexp(1, -25)), 0x0000},         // subnormal tie to zero
		{float32(math.Ldexp(3, -25)), 0x0002},         // subnormal tie to even
		{float32(math.Ldexp(1, -26)), 0x0000},
		{float32(math.Ldexp(1, -130)), 0x0000},
		{float32(math.Ldexp(2047, -25)), 0x0400}, // rounds up into the normal range
	}
	for _, test := range table {
		if got := NewFloat16(test.in); got != test.out {
			t.Errorf("NewFloat16(%g) = %#04x, want %#04x", test.in, uint16(got), uint16(test.out))
		}
	}
}

func TestSaturation(t *testing.T) {
	table := []struct {
		in  float32
		out Float16
	}{
		{65520, 0x7bff},
		{1e6, 0x7bff},
		{-1e6, 0xfbff},
		{float32(math.MaxFloat32), 0x7bff},
		{65519, 0x7bff},
	}
	for _, test := range table {
		if got := NewFloat16(test.in); got != test.out {
			t.Errorf("NewFloat16(%g) = %#04x, want %#04x", test.in, uint16(got), uint16(test.out))
		}
	}
	if nan := NewFloat16(float32(math.NaN())); nan&0x7c00 != 0x7c00 || nan&0x3ff == 0 {
		t.Errorf("NaN converted to %#04x", uint16(nan))
	}
}

func TestFloat16At(t *testing.T) {
	if f := Float16At([]byte{0x00, 0x3c}); f != 1 {
		t.Errorf("Float16At = %g", f)
	}
}
