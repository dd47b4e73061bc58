package hashdb

import (
	"github.com/sirupsen/logrus"

	"github.com/mogaika/stingray_extractor/stingray"
)

var log = logrus.WithField("module", "hashdb")

// Stack consults its tables most-recently-pushed first.
type Stack struct {
	tables []*Table
}

func (s *Stack) Push(t *Table) {
	s.tables = append(s.tables, t)
}

// LoadFiles pushes every dictionary that loads. Failures are logged and
// skipped, the number of loaded tables is returned.
func (s *Stack) LoadFiles(paths ...string) int {
	loaded := 0
	for _, path := range paths {
		t, err := LoadFile(path)
		if err != nil {
			log.WithError(err).Errorf("Skipping dictionary %q", path)
			continue
		}
		log.Debugf("Loaded %d hashes from %q", t.Len(), path)
		s.Push(t)
		loaded++
	}
	return loaded
}

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tables)
}

func (s *Stack) Lookup(h stingray.Hash) (string, bool) {
	if s == nil {
		return "", false
	}
	for i := len(s.tables) - 1; i >= 0; i-- {
		if str, ok := s.tables[i].Lookup(h); ok {
			return str, true
		}
	}
	return "", false
}

func (s *Stack) LookupThin(h stingray.ThinHash) (string, bool) {
	if s == nil {
		return "", false
	}
	for i := len(s.tables) - 1; i >= 0; i-- {
		if str, ok := s.tables[i].LookupThin(h); ok {
			return str, true
		}
	}
	return "", false
}
