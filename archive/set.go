package archive

import (
	"bytes"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mogaika/stingray_extractor/stingray"
	"github.com/mogaika/stingray_extractor/utils"
)

var log = logrus.WithField("module", "archive")

type Key struct {
	Id   stingray.Hash
	Type stingray.Hash
}

func (k Key) String() string {
	return k.Id.String() + "." + k.Type.String()
}

type ref struct {
	archive int
	entry   int
}

type SetOptions struct {
	// VerifyDuplicates byte-compares every later duplicate against the kept
	// entry and logs mismatches. The first entry is kept either way.
	VerifyDuplicates bool
}

// Set merges the file tables of many archives. For every (id, type) key the
// first added archive wins. A Set is read-only once built.
type Set struct {
	opts     SetOptions
	archives []*Archive
	index    map[Key]ref
	keys     []Key

	duplicates int
	mismatches int
}

func NewSet(opts SetOptions) *Set {
	return &Set{
		opts:  opts,
		index: make(map[Key]ref),
	}
}

// Open adds every path that opens as an archive. Failures are logged and the
// path is skipped. The number of opened archives is returned.
func (s *Set) Open(paths []string) int {
	opened := 0
	for _, path := range paths {
		a, err := Open(path)
		if err != nil {
			log.WithError(err).WithField("archive", path).Errorf("Failed to open archive (%v)", stingray.Classify(err))
			continue
		}
		utils.LogDump(a.Header)
		s.Add(a)
		opened++
	}
	return opened
}

// Add takes ownership of a and indexes its files.
func (s *Set) Add(a *Archive) {
	archiveIdx := len(s.archives)
	s.archives = append(s.archives, a)

	for i, f := range a.files {
		key := Key{Id: f.Id, Type: f.Type}
		if kept, ok := s.index[key]; ok {
			s.duplicates++
			if s.opts.VerifyDuplicates {
				s.verifyDuplicate(key, kept, ref{archive: archiveIdx, entry: i})
			}
			continue
		}
		s.index[key] = ref{archive: archiveIdx, entry: i}
		s.keys = append(s.keys, key)
	}
	log.Debugf("Indexed %q: %d files, %d distinct assets total", a.Name, len(a.files), len(s.keys))
}

func (s *Set) verifyDuplicate(key Key, kept, dup ref) {
	keptArchive, dupArchive := s.archives[kept.archive], s.archives[dup.archive]
	l := log.WithField("asset", key.String()).WithField("archive", dupArchive.Name)

	keptAsset, err := keptArchive.Resolve(kept.entry)
	if err != nil {
		l.WithError(err).Warn("Cannot verify duplicate, kept entry does not resolve")
		return
	}
	dupAsset, err := dupArchive.Resolve(dup.entry)
	if err != nil {
		l.WithError(err).Warn("Cannot verify duplicate, entry does not resolve")
		return
	}
	if !bytes.Equal(keptAsset.Main, dupAsset.Main) ||
		!bytes.Equal(keptAsset.Stream, dupAsset.Stream) ||
		!bytes.Equal(keptAsset.GPU, dupAsset.GPU) {
		s.mismatches++
		l.Warnf("Duplicate differs from the copy kept from %q", keptArchive.Name)
	}
}

// Len is the number of distinct (id, type) keys.
func (s *Set) Len() int { return len(s.keys) }

func (s *Set) Duplicates() int { return s.duplicates }

func (s *Set) Mismatches() int { return s.mismatches }

func (s *Set) Archives() []*Archive { return s.archives }

// Keys returns the distinct keys in the order they were first seen.
func (s *Set) Keys() []Key {
	return append([]Key(nil), s.keys...)
}

// SortedKeys orders keys by type then id.
func (s *Set) SortedKeys() []Key {
	keys := s.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Id < keys[j].Id
	})
	return keys
}

func (s *Set) Lookup(key Key) (*Asset, error) {
	r, ok := s.index[key]
	if !ok {
		return nil, stingray.NotFoundf("asset %v", key)
	}
	return s.archives[r.archive].Resolve(r.entry)
}

// Each resolves every distinct asset in first-seen order. Resolve errors are
// passed to fn with a nil asset. A non-nil return of fn stops the walk.
func (s *Set) Each(fn func(Key, *Asset, error) error) error {
	for _, key := range s.keys {
		a, err := s.Lookup(key)
		if err := fn(key, a, err); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) Close() error {
	var first error
	for _, a := range s.archives {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.archives = nil
	s.index = make(map[Key]ref)
	s.keys = nil
	return first
}
