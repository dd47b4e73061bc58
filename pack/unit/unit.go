package unit

import (
	"github.com/sirupsen/logrus"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/pack/unit/mesh"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	UnitSection = "unit"
	GPUSection  = "gpu_resources"
	GLBSection  = "glb"
)

var log = logrus.WithField("module", "unit")

type Options struct {
	Meshes mesh.Options
	// MaterialName renders material resource ids in OBJ comments.
	MaterialName func(stingray.Hash) string
}

type Unit struct {
	*pack.Sections `json:"-"`
	Info           *mesh.Info `json:",omitempty"`
	Decoded        int
	Skipped        int
}

func ObjSection(i int) string { return mesh.MeshName(i) + ".obj" }
func RawSection(i int) string { return mesh.MeshName(i) + ".raw" }

func (u *Unit) Marshal() (interface{}, error) {
	return u, nil
}

// New exports main as the unit and gpu verbatim. With mesh decoding on,
// main is read as mesh info and gpu as geometry; a failure there only
// drops the decoded sections.
func New(asset *archive.Asset, opts Options) (*Unit, error) {
	u := &Unit{Sections: pack.NewSections()}
	u.Add(UnitSection, "unit", asset.Main)
	if len(asset.GPU) != 0 {
		u.Add(GPUSection, "gpu_resources", asset.GPU)
	}

	if !opts.Meshes.Any() || len(asset.GPU) == 0 {
		return u, nil
	}

	l := log.WithField("id", asset.Id())
	info, err := mesh.ParseInfo(asset.Main)
	if err != nil {
		l.WithError(err).Warn("Mesh info not decoded")
		return u, nil
	}
	u.Info = info

	exp, err := mesh.ExportAll(info, asset.GPU, opts.Meshes, opts.MaterialName)
	if err != nil {
		l.WithError(err).Warn("Meshes not exported")
		return u, nil
	}
	u.Skipped = exp.Skipped
	u.Decoded = len(exp.Meshes)
	for _, m := range exp.Meshes {
		if m.Obj != nil {
			u.Add(ObjSection(m.Index), ObjSection(m.Index), m.Obj)
		}
		if m.Raw != nil {
			u.Add(RawSection(m.Index), RawSection(m.Index), m.Raw)
		}
	}
	if exp.GLB != nil {
		u.Add(GLBSection, "glb", exp.GLB)
	}
	return u, nil
}

func Register(r *pack.Registry, opts Options) {
	r.SetHandler(func(asset *archive.Asset) (pack.Converter, error) {
		return New(asset, opts)
	}, stingray.TypeUnit)
}
