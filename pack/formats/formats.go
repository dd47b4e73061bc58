// Package formats builds the converter registry from the list of supported
// content formats.
package formats

import (
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/pack/bik"
	"github.com/mogaika/stingray_extractor/pack/texture"
	"github.com/mogaika/stingray_extractor/pack/unit"
	"github.com/mogaika/stingray_extractor/pack/wwise"
)

type Options struct {
	Unit unit.Options
}

func NewRegistry(opts Options) *pack.Registry {
	r := pack.NewRegistry()
	texture.Register(r)
	bik.Register(r)
	wwise.Register(r)
	unit.Register(r, opts.Unit)
	return r
}
