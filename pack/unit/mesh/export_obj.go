package mesh

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mogaika/stingray_extractor/utils"
)

// ExportObj writes the geometry as one Wavefront OBJ object. Element
// combinations without an OBJ equivalent are kept as commented hex dumps.
func (g *Geometry) ExportObj(_w io.Writer, name string, materials []string) error {
	bw := bufio.NewWriter(_w)
	w := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	w("o %s", name)
	w("g %s", name)
	w("s 0")
	for _, m := range materials {
		w("# material %s", m)
	}

	elementError := func(prefix string, e Element, b []byte) {
		w("# ERROR: %s %08x, %08x, %08x, %08x, %08x is unknown: %s",
			prefix, uint32(e.Type), uint32(e.Format), e.Layer, e.Unk0, e.Unk1, utils.HexDump(b))
	}
	layered := func(e Element, line string) {
		if e.Layer != 0 {
			w("# %s", line)
		} else {
			w("%s", line)
		}
	}
	f := func(v float32) string {
		return fmt.Sprintf("%#16.8g", v)
	}

	for i := 0; i < g.VertexCount(); i++ {
		w("# %d", i)
		vertex := g.Vertex(i)
		off := 0
		for _, e := range g.Datatype.ActiveElements() {
			size, ok := e.Format.Size()
			if !ok {
				w("# ERROR: format %08x of element type %08x is unknown, rest of vertex: %s",
					uint32(e.Format), uint32(e.Type), utils.HexDump(vertex[off:]))
				break
			}
			if off+size > len(vertex) {
				w("# ERROR: element %v %v at %d overflows vertex stride %d, rest of vertex: %s",
					e.Type, e.Format, off, len(vertex), utils.HexDump(vertex[off:]))
				break
			}
			b := vertex[off : off+size]
			off += size

			v := e.Format.Read(b)
			switch e.Type {
			case ElementPosition:
				switch len(v) {
				case 2:
					w("v %s %s %s", f(v[0]), f(v[1]), f(0))
				case 3:
					w("v %s %s %s", f(v[0]), f(v[1]), f(v[2]))
				default:
					elementError("type+format", e, b)
				}
			case ElementTexcoord:
				switch len(v) {
				case 2:
					layered(e, fmt.Sprintf("vt %s %s", f(v[0]), f(v[1])))
				case 3:
					layered(e, fmt.Sprintf("vt %s %s %s", f(v[0]), f(v[1]), f(v[2])))
				default:
					elementError("type+format", e, b)
				}
			case ElementNormal:
				switch len(v) {
				case 3, 4:
					layered(e, fmt.Sprintf("vn %s %s %s", f(v[0]), f(v[1]), f(v[2])))
				default:
					elementError("type+format", e, b)
				}
			case ElementColor:
				switch len(v) {
				case 3:
					w("# vc %s %s %s", f(v[0]), f(v[1]), f(v[2]))
				case 4:
					w("# vc %s %s %s %s", f(v[0]), f(v[1]), f(v[2]), f(v[3]))
				default:
					elementError("type+format", e, b)
				}
			default:
				elementError("type", e, b)
			}
		}
	}

	count := g.IndexCount()
	triangles := count / 3
	for i := 0; i < triangles; i++ {
		a, b, c := g.Index(i*3)+1, g.Index(i*3+1)+1, g.Index(i*3+2)+1
		w("# %d", i)
		w("f %d/%d/%d %d/%d/%d %d/%d/%d", a, a, a, b, b, b, c, c, c)
	}
	if rest := count % 3; rest != 0 {
		w("# WARNING: %d trailing indices dropped", rest)
	}

	return bw.Flush()
}
