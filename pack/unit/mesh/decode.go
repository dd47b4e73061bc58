package mesh

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/stingray_extractor/stingray"
)

// Geometry is one mesh with its vertex and index bytes cut out of the
// geometry blob.
type Geometry struct {
	Datatype    *Datatype
	Mesh        *Mesh
	Vertices    []byte
	Indices     []byte
	IndexStride int
}

// region returns blob[start+first*stride : +count*stride], which must lie
// inside both the declared region and the blob.
func region(blob []byte, start, size, first, count, stride uint32, what string) ([]byte, error) {
	ptr := uint64(start) + uint64(first)*uint64(stride)
	end := ptr + uint64(count)*uint64(stride)
	limit := uint64(start) + uint64(size)
	if end > limit {
		return nil, stingray.Corruptf("%s range 0x%x-0x%x exceeds declared region 0x%x-0x%x", what, ptr, end, start, limit)
	}
	if end > uint64(len(blob)) {
		return nil, stingray.Corruptf("%s range 0x%x-0x%x exceeds geometry of 0x%x bytes", what, ptr, end, len(blob))
	}
	return blob[ptr:end:end], nil
}

func NewGeometry(dt *Datatype, m *Mesh, blob []byte) (*Geometry, error) {
	g := &Geometry{Datatype: dt, Mesh: m}
	md := m.ModelData

	var err error
	g.Vertices, err = region(blob, dt.VertexOffset, dt.VertexSize, md.VerticesOffset, md.VerticesCount, dt.VertexStride, "vertex")
	if err != nil {
		return nil, err
	}

	if g.IndexStride, err = dt.IndexStride(); err != nil {
		return nil, err
	}
	if g.IndexStride == 0 {
		if md.IndicesCount != 0 {
			return nil, stingray.Corruptf("mesh uses %d indices of a datatype without indices", md.IndicesCount)
		}
		return g, nil
	}
	g.Indices, err = region(blob, dt.IndexOffset, dt.IndexSize, md.IndicesOffset, md.IndicesCount, uint32(g.IndexStride), "index")
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Geometry) VertexCount() int {
	if g.Datatype.VertexStride == 0 {
		return 0
	}
	return len(g.Vertices) / int(g.Datatype.VertexStride)
}

func (g *Geometry) Vertex(i int) []byte {
	stride := int(g.Datatype.VertexStride)
	return g.Vertices[i*stride : (i+1)*stride]
}

func (g *Geometry) IndexCount() int {
	if g.IndexStride == 0 {
		return 0
	}
	return len(g.Indices) / g.IndexStride
}

func (g *Geometry) Index(i int) uint64 {
	b := g.Indices[i*g.IndexStride:]
	switch g.IndexStride {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

// walkElements walks the elements of one vertex. fn gets the element bytes,
// or nil when the element format is unknown, after which the walk stops.
func (g *Geometry) walkElements(vertex []byte, fn func(e Element, b []byte) bool) {
	off := 0
	for _, e := range g.Datatype.ActiveElements() {
		size, ok := e.Format.Size()
		if !ok || off+size > len(vertex) {
			fn(e, nil)
			return
		}
		if !fn(e, vertex[off:off+size]) {
			return
		}
		off += size
	}
}

// Decoded is the portable part of a geometry. Attributes that are not
// present on every vertex are left nil.
type Decoded struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

func (g *Geometry) Decode() *Decoded {
	count := g.VertexCount()
	d := &Decoded{}
	positions := make([]mgl32.Vec3, 0, count)
	normals := make([]mgl32.Vec3, 0, count)
	uvs := make([]mgl32.Vec2, 0, count)

	for i := 0; i < count; i++ {
		var pos, norm, uv bool
		g.walkElements(g.Vertex(i), func(e Element, b []byte) bool {
			if b == nil {
				return false
			}
			v := e.Format.Read(b)
			switch {
			case e.Type == ElementPosition && !pos && (len(v) == 2 || len(v) == 3):
				p := mgl32.Vec3{v[0], v[1], 0}
				if len(v) == 3 {
					p[2] = v[2]
				}
				positions = append(positions, p)
				pos = true
			case e.Type == ElementNormal && !norm && e.Layer == 0 && len(v) >= 3:
				normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
				norm = true
			case e.Type == ElementTexcoord && !uv && e.Layer == 0 && len(v) >= 2:
				uvs = append(uvs, mgl32.Vec2{v[0], v[1]})
				uv = true
			}
			return true
		})
	}

	if len(positions) == count {
		d.Positions = positions
	}
	if len(normals) == count {
		d.Normals = normals
	}
	if len(uvs) == count {
		d.UVs = uvs
	}

	triangles := g.IndexCount() / 3 * 3
	d.Indices = make([]uint32, 0, triangles)
	for i := 0; i+3 <= triangles; i += 3 {
		a, b, c := g.Index(i), g.Index(i+1), g.Index(i+2)
		if a >= uint64(count) || b >= uint64(count) || c >= uint64(count) {
			continue
		}
		d.Indices = append(d.Indices, uint32(a), uint32(b), uint32(c))
	}
	return d
}
