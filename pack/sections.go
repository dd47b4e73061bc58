package pack

import (
	"io"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/stingray"
)

const RawSection = "raw"

type section struct {
	suffix string
	parts  [][]byte
}

func (s *section) size() int64 {
	var n int64
	for _, p := range s.parts {
		n += int64(len(p))
	}
	return n
}

// Sections is a Converter whose every section is a concatenation of byte
// ranges borrowed from the asset or built in memory.
type Sections struct {
	sections map[string]*section
	order    []string
}

func NewSections() *Sections {
	return &Sections{sections: make(map[string]*section)}
}

// Add declares a section. Empty parts are skipped. Adding a name twice
// replaces the earlier section.
func (s *Sections) Add(name string, suffix string, parts ...[]byte) *Sections {
	sec := &section{suffix: suffix}
	for _, p := range parts {
		if len(p) != 0 {
			sec.parts = append(sec.parts, p)
		}
	}
	if _, ok := s.sections[name]; !ok {
		s.order = append(s.order, name)
	}
	s.sections[name] = sec
	return s
}

func (s *Sections) Remove(name string) {
	if _, ok := s.sections[name]; !ok {
		return
	}
	delete(s.sections, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Sections) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Sections) Outputs() map[string]Output {
	outputs := make(map[string]Output, len(s.sections))
	for name, sec := range s.sections {
		outputs[name] = Output{Size: sec.size(), Suffix: sec.suffix}
	}
	return outputs
}

func (s *Sections) WriteSection(name string, w io.Writer) error {
	sec, ok := s.sections[name]
	if !ok {
		return stingray.NotFoundf("section %q", name)
	}
	for _, p := range sec.parts {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sections) Extract(name string, path string) error {
	return ExtractFile(s, name, path)
}

// NewRaw exports main, stream and gpu concatenated under the type extension.
func NewRaw(asset *archive.Asset) *Sections {
	return NewSections().Add(RawSection, "", asset.Main, asset.Stream, asset.GPU)
}
