package mesh

import (
	"fmt"

	"github.com/mogaika/stingray_extractor/3rdparty/half"
	"github.com/mogaika/stingray_extractor/readat"
)

type ElementType uint32

const (
	ElementPosition ElementType = 0
	ElementColor    ElementType = 1
	ElementTexcoord ElementType = 4
	ElementUnknown5 ElementType = 5
	ElementUnknown6 ElementType = 6
	ElementNormal   ElementType = 7
)

func (t ElementType) String() string {
	switch t {
	case ElementPosition:
		return "position"
	case ElementColor:
		return "color"
	case ElementTexcoord:
		return "texcoord"
	case ElementNormal:
		return "normal"
	default:
		return fmt.Sprintf("type_%x", uint32(t))
	}
}

type ElementFormat uint32

const (
	FormatFloat    ElementFormat = 0x00
	FormatFloat2   ElementFormat = 0x01
	FormatFloat3   ElementFormat = 0x02
	FormatFloat4   ElementFormat = 0x03
	FormatUnknown4 ElementFormat = 0x04
	FormatLong4    ElementFormat = 0x14
	FormatByte4    ElementFormat = 0x18
	FormatUnknown9 ElementFormat = 0x19
	FormatUnknownA ElementFormat = 0x1A
	FormatHalf     ElementFormat = 0x1C
	FormatHalf2    ElementFormat = 0x1D
	FormatHalf3    ElementFormat = 0x1E
	FormatHalf4    ElementFormat = 0x1F
)

type formatInfo struct {
	name       string
	size       int
	components int
	half       bool
}

// half3 is stored in a 12 byte slot
var formats = map[ElementFormat]formatInfo{
	FormatFloat:    {"float", 4, 1, false},
	FormatFloat2:   {"float2", 8, 2, false},
	FormatFloat3:   {"float3", 12, 3, false},
	FormatFloat4:   {"float4", 16, 4, false},
	FormatUnknown4: {"unknown_04", 4, 0, false},
	FormatLong4:    {"long4", 16, 0, false},
	FormatByte4:    {"byte4", 4, 0, false},
	FormatUnknown9: {"unknown_19", 4, 0, false},
	FormatUnknownA: {"unknown_1a", 4, 0, false},
	FormatHalf:     {"half", 2, 1, true},
	FormatHalf2:    {"half2", 4, 2, true},
	FormatHalf3:    {"half3", 12, 3, true},
	FormatHalf4:    {"half4", 8, 4, true},
}

// Size is the byte width of the format inside a vertex.
func (f ElementFormat) Size() (int, bool) {
	info, ok := formats[f]
	return info.size, ok
}

// Components is the number of float values Read yields, 0 for opaque formats.
func (f ElementFormat) Components() int {
	return formats[f].components
}

func (f ElementFormat) String() string {
	if info, ok := formats[f]; ok {
		return info.name
	}
	return fmt.Sprintf("format_%02x", uint32(f))
}

// Read decodes the float components of one element. b must hold at least
// Size bytes. Opaque formats return nil.
func (f ElementFormat) Read(b []byte) []float32 {
	info, ok := formats[f]
	if !ok || info.components == 0 {
		return nil
	}
	r := readat.NewReader(b, 0)
	values := make([]float32, info.components)
	for i := range values {
		if info.half {
			values[i] = half.Float16At(r.SliceP(int64(i)*2, 2))
		} else {
			values[i] = r.ReadF32LE(int64(i) * 4)
		}
	}
	return values
}
