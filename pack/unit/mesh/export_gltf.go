package mesh

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type GLTFObject struct {
	Name     string
	Geometry *Geometry
}

// ExportGLTF builds one document with a node per object. Objects without
// decodable positions are left out.
func ExportGLTF(objects []GLTFObject) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "default",
		DoubleSided: true,
	})

	for _, object := range objects {
		d := object.Geometry.Decode()
		if len(d.Positions) == 0 || len(d.Indices) == 0 {
			log.Debugf("%s has nothing to export to glTF", object.Name)
			continue
		}

		attributes := make(map[string]uint32)
		{
			positions := make([][3]float32, len(d.Positions))
			for i, p := range d.Positions {
				positions[i] = p
			}
			attributes["POSITION"] = modeler.WritePosition(doc, positions)
		}
		if d.Normals != nil {
			normals := make([][3]float32, len(d.Normals))
			for i, normal := range d.Normals {
				if normal.Len() > 0.5 {
					normal = normal.Normalize()
				}
				normals[i] = normal
			}
			attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
		}
		if d.UVs != nil {
			uvs := make([][2]float32, len(d.UVs))
			for i, uv := range d.UVs {
				uvs[i] = uv
			}
			attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
		}
		indicesAccessor := modeler.WriteIndices(doc, d.Indices)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: object.Name,
			Primitives: []*gltf.Primitive{
				{
					Indices:    gltf.Index(indicesAccessor),
					Attributes: attributes,
					Material:   gltf.Index(0),
				},
			},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: object.Name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
	}
	return doc
}

func WriteGLB(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
