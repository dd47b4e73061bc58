package mesh

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/stingray_extractor/readat"
	"github.com/mogaika/stingray_extractor/stingray"
)

const rawHeaderSize = 4 * 8

// WriteRaw stores the datatype, mesh record and the geometry bytes of one
// mesh so it can be decoded later without its archive. The file starts
// with four little-endian u64 offsets: datatype, mesh, vertices, indices.
func (g *Geometry) WriteRaw(w io.Writer) error {
	dt := g.Datatype.Bytes()
	offsets := [4]uint64{rawHeaderSize}
	offsets[1] = offsets[0] + uint64(len(dt))
	offsets[2] = offsets[1] + uint64(len(g.Mesh.Raw))
	offsets[3] = offsets[2] + uint64(len(g.Vertices))

	if err := binary.Write(w, binary.LittleEndian, offsets); err != nil {
		return err
	}
	for _, part := range [][]byte{dt, g.Mesh.Raw, g.Vertices, g.Indices} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

func (g *Geometry) RawBytes() []byte {
	var buf bytes.Buffer
	g.WriteRaw(&buf)
	return buf.Bytes()
}

// DecodeRaw reads back a WriteRaw dump.
func DecodeRaw(b []byte) (g *Geometry, err error) {
	defer readat.Recover(&err)
	r := readat.NewReader(b, 0)

	var offsets [5]int64
	for i := 0; i < 4; i++ {
		offsets[i] = int64(r.ReadU64LE(int64(i) * 8))
	}
	offsets[4] = r.Len()
	for i := 0; i < 4; i++ {
		if offsets[i] < rawHeaderSize || offsets[i] > offsets[i+1] {
			return nil, stingray.Corruptf("raw mesh dump: part %d at 0x%x out of order", i, offsets[i])
		}
	}
	part := func(i int) []byte {
		return r.SliceP(offsets[i], offsets[i+1]-offsets[i])
	}

	dt, err := ParseDatatype(part(0))
	if err != nil {
		return nil, errors.Wrapf(err, "raw mesh dump datatype")
	}
	m, err := ParseMesh(part(1))
	if err != nil {
		return nil, errors.Wrapf(err, "raw mesh dump mesh")
	}

	g = &Geometry{
		Datatype: dt,
		Mesh:     m,
		Vertices: part(2),
		Indices:  part(3),
	}
	if g.IndexStride, err = dt.IndexStride(); err != nil {
		return nil, err
	}
	if dt.VertexStride != 0 && len(g.Vertices)%int(dt.VertexStride) != 0 {
		return nil, stingray.Corruptf("raw mesh dump: %d vertex bytes with stride %d", len(g.Vertices), dt.VertexStride)
	}
	if g.IndexStride != 0 && len(g.Indices)%g.IndexStride != 0 {
		return nil, stingray.Corruptf("raw mesh dump: %d index bytes with width %d", len(g.Indices), g.IndexStride)
	}
	return g, nil
}
