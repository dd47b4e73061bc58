package pack

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/stingray"
)

var log = logrus.WithField("module", "pack")

// Output describes one named section of a converted asset. An empty Suffix
// means the asset type name is used as the file extension.
type Output struct {
	Size   int64  `json:"size"`
	Suffix string `json:"suffix"`
}

type Converter interface {
	Outputs() map[string]Output
	// WriteSection streams the bytes of one section.
	WriteSection(name string, w io.Writer) error
	// Extract writes one section into a newly created file at path.
	Extract(name string, path string) error
}

// Marshaler is implemented by converters that can describe their asset for
// the browser.
type Marshaler interface {
	Marshal() (interface{}, error)
}

type Factory func(asset *archive.Asset) (Converter, error)

// Registry maps content type hashes to converter factories. It is built
// once at startup and read-only afterwards.
type Registry struct {
	handlers map[stingray.Hash]Factory
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[stingray.Hash]Factory)}
}

func (r *Registry) SetHandler(f Factory, types ...stingray.Hash) {
	for _, t := range types {
		r.handlers[t] = f
	}
}

func (r *Registry) Handler(t stingray.Hash) (Factory, bool) {
	f, ok := r.handlers[t]
	return f, ok
}

func (r *Registry) Types() []stingray.Hash {
	types := make([]stingray.Hash, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// CallHandler runs the factory registered for the asset type.
func (r *Registry) CallHandler(asset *archive.Asset) (Converter, error) {
	f, ok := r.handlers[asset.Type()]
	if !ok {
		return nil, stingray.NotFoundf("[pack] Cannot find handler for '%v'", asset.Type())
	}
	c, err := f(asset)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Handler error for %v.%v", asset.Id(), asset.Type())
	}
	return c, nil
}

// Find never fails: assets without a handler, or whose handler fails, are
// exported raw.
func (r *Registry) Find(asset *archive.Asset) Converter {
	c, err := r.CallHandler(asset)
	if err == nil {
		return c
	}
	if stingray.Classify(err) == stingray.KindNotFound {
		log.Debug(err)
	} else {
		log.WithError(err).WithField("id", asset.Id()).WithField("type", asset.Type()).
			Error("Converter failed, exporting raw")
	}
	return NewRaw(asset)
}

// SortedNames returns section names in a stable order.
func SortedNames(c Converter) []string {
	outputs := c.Outputs()
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractFile creates path and streams the section into it. A failed write
// leaves no file behind.
func ExtractFile(c Converter, name string, path string) error {
	if _, ok := c.Outputs()[name]; !ok {
		return stingray.NotFoundf("section %q", name)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create output")
	}
	if err := c.WriteSection(name, f); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "Failed to write section %q", name)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "Failed to close %q", path)
	}
	return nil
}
