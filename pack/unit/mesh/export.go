package mesh

import (
	"bytes"
	"fmt"

	"github.com/mogaika/stingray_extractor/stingray"
)

type Options struct {
	Obj  bool
	GLTF bool
	Raw  bool
}

func (o Options) Any() bool {
	return o.Obj || o.GLTF || o.Raw
}

type Exported struct {
	Index int
	Name  string
	Obj   []byte
	Raw   []byte
}

type Export struct {
	Meshes  []Exported
	GLB     []byte
	Skipped int
}

// MeshName is the file name stem of mesh i.
func MeshName(i int) string {
	return fmt.Sprintf("%08d", i)
}

// MaterialNames resolves the material slots of m through the material list
// of info. name formats the resource of a slot, nil prints hashes.
func (info *Info) MaterialNames(m *Mesh, name func(stingray.Hash) string) []string {
	names := make([]string, len(m.Materials))
	for i, key := range m.Materials {
		res, ok := info.Material(stingray.ThinHash(key))
		switch {
		case !ok:
			names[i] = stingray.ThinHash(key).String()
		case name != nil:
			names[i] = name(res)
		default:
			names[i] = res.String()
		}
	}
	return names
}

// ExportAll decodes every mesh of info against the geometry blob. Meshes
// whose ranges do not fit are logged and skipped.
func ExportAll(info *Info, gpu []byte, opts Options, materialName func(stingray.Hash) string) (*Export, error) {
	result := &Export{}
	var objects []GLTFObject

	for i := range info.Meshes {
		name := MeshName(i)
		g, err := info.Geometry(i, gpu)
		if err != nil {
			log.WithError(err).Warnf("Skipping mesh %s", name)
			result.Skipped++
			continue
		}

		exp := Exported{Index: i, Name: name}
		if opts.Obj {
			var buf bytes.Buffer
			if err := g.ExportObj(&buf, name, info.MaterialNames(g.Mesh, materialName)); err != nil {
				return nil, err
			}
			exp.Obj = buf.Bytes()
		}
		if opts.Raw {
			exp.Raw = g.RawBytes()
		}
		result.Meshes = append(result.Meshes, exp)
		objects = append(objects, GLTFObject{Name: name, Geometry: g})
	}

	if opts.GLTF && len(objects) != 0 {
		var buf bytes.Buffer
		if err := WriteGLB(&buf, ExportGLTF(objects)); err != nil {
			return nil, err
		}
		result.GLB = buf.Bytes()
	}
	return result, nil
}
