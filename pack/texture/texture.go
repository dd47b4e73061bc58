package texture

import (
	"bytes"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/readat"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	HeaderSize = 0xC0
	MipCount   = 15
	Section    = "texture"
)

var (
	magicDDS = []byte("DDS ")
	magicPNG = []byte("\x89PNG")
)

type Mip struct {
	Offset uint32
	Size   uint32
	Width  uint16
	Height uint16
}

type Header struct {
	Unk  [3]uint32
	Mips [MipCount]Mip
}

type Texture struct {
	*pack.Sections
	Header Header
	Format string
}

func parseHeader(b []byte) (h Header, err error) {
	defer readat.Recover(&err)
	r := readat.NewReader(b, 0)
	for i := range h.Unk {
		h.Unk[i] = r.ReadU32LE(int64(i) * 4)
	}
	for i := range h.Mips {
		m := r.SubReader(0xc + int64(i)*0xc)
		h.Mips[i] = Mip{
			Offset: m.ReadU32LE(0),
			Size:   m.ReadU32LE(4),
			Width:  m.ReadU16LE(8),
			Height: m.ReadU16LE(10),
		}
	}
	return h, nil
}

// sniff looks at the first bytes of the payload, which may start in any part.
func sniff(parts ...[]byte) string {
	var head []byte
	for _, p := range parts {
		head = append(head, p...)
		if len(head) >= 4 {
			break
		}
	}
	switch {
	case bytes.HasPrefix(head, magicDDS):
		return "dds"
	case bytes.HasPrefix(head, magicPNG):
		return "png"
	default:
		return "texture"
	}
}

func NewFromAsset(asset *archive.Asset) (pack.Converter, error) {
	if len(asset.Main) < HeaderSize {
		return nil, stingray.Corruptf("texture header needs 0x%x bytes, have 0x%x", HeaderSize, len(asset.Main))
	}
	h, err := parseHeader(asset.Main[:HeaderSize])
	if err != nil {
		return nil, err
	}

	payload := asset.Stream
	if len(payload) == 0 {
		payload = asset.GPU
	}
	tex := &Texture{
		Header: h,
		Format: sniff(asset.Main[HeaderSize:], payload),
	}
	tex.Sections = pack.NewSections().Add(Section, tex.Format, asset.Main[HeaderSize:], payload)
	return tex, nil
}

func (t *Texture) Marshal() (interface{}, error) {
	return t, nil
}

func Register(r *pack.Registry) {
	r.SetHandler(NewFromAsset, stingray.TypeTexture)
}
