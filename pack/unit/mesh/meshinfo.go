package mesh

import (
	"github.com/pkg/errors"

	"github.com/mogaika/stingray_extractor/readat"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	infoDatatypesOffset = 0x5C
	infoMeshesOffset    = 0x64
	infoMaterialsOffset = 0x70

	meshDatatypeIndex   = 0x3C
	meshMaterialCount   = 0x78
	meshModelDataOffset = 0x7C
	meshMaterials       = 0x80

	modelDataSize = 0x10
)

// ModelData selects the part of the datatype regions one mesh uses.
// Offsets are in vertices and indices, not bytes.
type ModelData struct {
	VerticesOffset uint32
	VerticesCount  uint32
	IndicesOffset  uint32
	IndicesCount   uint32
}

type Mesh struct {
	DatatypeIndex   uint32
	Materials       []uint32
	ModelDataOffset uint32
	ModelData       ModelData
	// Raw covers the record from its start to the end of its model data.
	Raw []byte `json:"-"`
}

type Material struct {
	Key      stingray.ThinHash
	Resource stingray.Hash
}

type Info struct {
	DatatypesOffset uint32
	MeshesOffset    uint32
	MaterialsOffset uint32

	Datatypes    []*Datatype
	DatatypeCRCs []uint32
	Meshes       []*Mesh
	MeshCRCs     []uint32
	Materials    []Material
}

func ParseMesh(b []byte) (m *Mesh, err error) {
	defer readat.Recover(&err)
	r := readat.NewReader(b, 0)

	m = &Mesh{
		DatatypeIndex:   r.ReadU32LE(meshDatatypeIndex),
		ModelDataOffset: r.ReadU32LE(meshModelDataOffset),
	}
	count := r.ReadU32LE(meshMaterialCount)
	m.Materials = r.ReadU32sLE(meshMaterials, int(count))

	md := r.SubReader(int64(m.ModelDataOffset))
	m.ModelData = ModelData{
		VerticesOffset: md.ReadU32LE(0),
		VerticesCount:  md.ReadU32LE(4),
		IndicesOffset:  md.ReadU32LE(8),
		IndicesCount:   md.ReadU32LE(12),
	}

	end := int64(meshMaterials) + int64(count)*4
	if mdEnd := int64(m.ModelDataOffset) + modelDataSize; mdEnd > end {
		end = mdEnd
	}
	m.Raw = r.SliceP(0, end)
	return m, nil
}

// readList reads count, count offsets and count crcs at off.
func readList(r *readat.Reader, off int64) (offsets, crcs []uint32) {
	count := r.ReadU32LE(off)
	offsets = r.ReadU32sLE(off+4, int(count))
	crcs = r.ReadU32sLE(off+4+int64(count)*4, int(count))
	return offsets, crcs
}

// ParseInfo decodes the mesh description stored in the main data of a unit.
func ParseInfo(b []byte) (info *Info, err error) {
	defer readat.Recover(&err)
	r := readat.NewReader(b, 0)

	info = &Info{
		DatatypesOffset: r.ReadU32LE(infoDatatypesOffset),
		MeshesOffset:    r.ReadU32LE(infoMeshesOffset),
		MaterialsOffset: r.ReadU32LE(infoMaterialsOffset),
	}

	if info.DatatypesOffset != 0 {
		list := int64(info.DatatypesOffset)
		offsets, crcs := readList(r, list)
		info.DatatypeCRCs = crcs
		info.Datatypes = make([]*Datatype, len(offsets))
		for i, off := range offsets {
			dt, err := ParseDatatype(r.SliceP(list+int64(off), DatatypeSize))
			if err != nil {
				return nil, errors.Wrapf(err, "datatype %d", i)
			}
			info.Datatypes[i] = dt
		}
	}

	if info.MeshesOffset != 0 {
		list := int64(info.MeshesOffset)
		offsets, crcs := readList(r, list)
		info.MeshCRCs = crcs
		info.Meshes = make([]*Mesh, len(offsets))
		for i, off := range offsets {
			start := list + 4 + int64(off)
			m, err := ParseMesh(r.SliceP(start, r.Len()-start))
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d", i)
			}
			info.Meshes[i] = m
		}
	}

	if info.MaterialsOffset != 0 {
		list := int64(info.MaterialsOffset)
		count := r.ReadU32LE(list)
		keys := r.ReadU32sLE(list+4, int(count))
		info.Materials = make([]Material, count)
		for i := range info.Materials {
			info.Materials[i] = Material{
				Key:      stingray.ThinHash(keys[i]),
				Resource: stingray.Hash(r.ReadU64LE(list + 4 + int64(count)*4 + int64(i)*8)),
			}
		}
	}

	return info, nil
}

func (info *Info) Material(key stingray.ThinHash) (stingray.Hash, bool) {
	for _, m := range info.Materials {
		if m.Key == key {
			return m.Resource, true
		}
	}
	return 0, false
}

func (info *Info) Datatype(m *Mesh) (*Datatype, error) {
	if int(m.DatatypeIndex) >= len(info.Datatypes) {
		return nil, stingray.Corruptf("datatype index %d of %d", m.DatatypeIndex, len(info.Datatypes))
	}
	return info.Datatypes[m.DatatypeIndex], nil
}

// Geometry locates mesh i inside the geometry blob.
func (info *Info) Geometry(i int, gpu []byte) (*Geometry, error) {
	if i < 0 || i >= len(info.Meshes) {
		return nil, stingray.NotFoundf("mesh %d of %d", i, len(info.Meshes))
	}
	m := info.Meshes[i]
	dt, err := info.Datatype(m)
	if err != nil {
		return nil, err
	}
	return NewGeometry(dt, m, gpu)
}

// UniqueDatatypes keeps the first datatype of every distinct layout, in
// list order.
func (info *Info) UniqueDatatypes() []*Datatype {
	seen := make(map[string]bool)
	var result []*Datatype
	for _, dt := range info.Datatypes {
		d := dt.Digest().String()
		if !seen[d] {
			seen[d] = true
			result = append(result, dt)
		}
	}
	return result
}
