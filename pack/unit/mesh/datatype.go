package mesh

import (
	_ "crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/mogaika/stingray_extractor/readat"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	DatatypeSize = 0x1C0
	MaxElements  = 16
	elementSize  = 0x14
)

type Element struct {
	Type   ElementType
	Format ElementFormat
	Layer  uint32
	Unk0   uint32
	Unk1   uint32
}

// Datatype is a vertex layout shared by many meshes, together with the
// vertex and index regions it occupies in the geometry blob.
type Datatype struct {
	Magic       uint32
	Unk0        uint32
	Elements    [MaxElements]Element
	NumElements uint32
	Unk1        uint32

	VertexMagic  uint32
	Unk2         [3]uint32
	VertexCount  uint32
	VertexStride uint32
	Unk3         [4]uint32

	IndexMagic   uint32
	Unk4         [3]uint32
	IndexCount   uint32
	Unk5         [5]uint32
	VertexOffset uint32
	VertexSize   uint32
	IndexOffset  uint32
	IndexSize    uint32
	Unk6         [4]uint32
}

// fields lists every field in file order, so decoding and encoding
// share one layout.
func (d *Datatype) fields() []*uint32 {
	f := []*uint32{&d.Magic, &d.Unk0}
	for i := range d.Elements {
		e := &d.Elements[i]
		f = append(f, (*uint32)(&e.Type), (*uint32)(&e.Format), &e.Layer, &e.Unk0, &e.Unk1)
	}
	f = append(f, &d.NumElements, &d.Unk1, &d.VertexMagic)
	for i := range d.Unk2 {
		f = append(f, &d.Unk2[i])
	}
	f = append(f, &d.VertexCount, &d.VertexStride)
	for i := range d.Unk3 {
		f = append(f, &d.Unk3[i])
	}
	f = append(f, &d.IndexMagic)
	for i := range d.Unk4 {
		f = append(f, &d.Unk4[i])
	}
	f = append(f, &d.IndexCount)
	for i := range d.Unk5 {
		f = append(f, &d.Unk5[i])
	}
	f = append(f, &d.VertexOffset, &d.VertexSize, &d.IndexOffset, &d.IndexSize)
	for i := range d.Unk6 {
		f = append(f, &d.Unk6[i])
	}
	return f
}

func ParseDatatype(b []byte) (d *Datatype, err error) {
	defer readat.Recover(&err)
	r := readat.NewReader(b, 0)
	d = &Datatype{}
	for i, f := range d.fields() {
		*f = r.ReadU32LE(int64(i) * 4)
	}
	return d, nil
}

func (d *Datatype) Bytes() []byte {
	b := make([]byte, DatatypeSize)
	for i, f := range d.fields() {
		binary.LittleEndian.PutUint32(b[i*4:], *f)
	}
	return b
}

// ActiveElements is the used prefix of Elements.
func (d *Datatype) ActiveElements() []Element {
	n := d.NumElements
	if n > MaxElements {
		n = MaxElements
	}
	return d.Elements[:n]
}

// IndexStride is the byte width of one index.
func (d *Datatype) IndexStride() (int, error) {
	if d.IndexCount == 0 {
		return 0, nil
	}
	stride := d.IndexSize / d.IndexCount
	switch stride {
	case 1, 2, 4, 8:
		return int(stride), nil
	}
	return 0, stingray.Corruptf("unsupported index width %d (%d bytes / %d indices)", stride, d.IndexSize, d.IndexCount)
}

// Unique is a copy with every count, offset and size zeroed, leaving only
// the layout.
func (d *Datatype) Unique() *Datatype {
	u := *d
	u.VertexCount = 0
	u.VertexStride = 0
	u.IndexCount = 0
	u.VertexOffset = 0
	u.VertexSize = 0
	u.IndexOffset = 0
	u.IndexSize = 0
	return &u
}

// Digest identifies the vertex layout regardless of where its data lives.
func (d *Datatype) Digest() digest.Digest {
	return digest.FromBytes(d.Unique().Bytes())
}

// SampleName names a layout sample file.
func (d *Datatype) SampleName() string {
	return fmt.Sprintf("%02d_%s.dt", d.NumElements, d.Digest().Encoded()[:16])
}

// Describe renders the element list, one element per line.
func (d *Datatype) Describe() string {
	var s string
	for i, e := range d.ActiveElements() {
		s += fmt.Sprintf("%2d: %-8v %-10v layer %d (%08x %08x)\n", i, e.Type, e.Format, e.Layer, e.Unk0, e.Unk1)
	}
	return s
}
