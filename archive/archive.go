package archive

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mogaika/stingray_extractor/readat"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	Magic = 0x110000F0

	HeaderSize    = 0x48
	TypeEntrySize = 0x20
	FileEntrySize = 0x50

	StreamSuffix = ".stream"
	GPUSuffix    = ".gpu_resources"
	GPUSuffixAlt = ".gpu"
)

type Header struct {
	Magic          uint32
	TypeCount      uint32
	FileCount      uint32
	Unk0           [7]uint32
	GPUAlignedSize uint32
	Unk1           [7]uint32
}

type TypeEntry struct {
	Unk0  [2]uint32
	Type  stingray.Hash
	Count uint32
	Unk1  [3]uint32
}

type FileEntry struct {
	Id           stingray.Hash
	Type         stingray.Hash
	MainOffset   uint32
	Unk0         uint32
	StreamOffset uint32
	Unk1         uint32
	GPUOffset    uint32
	Unk2         [5]uint32
	MainSize     uint32
	StreamSize   uint32
	GPUSize      uint32
	Unk3         [2]uint32
	Index        uint32
}

// Asset is a file entry with its byte ranges resolved. The slices borrow
// the archive's extents and are only valid until the archive is closed.
type Asset struct {
	Archive *Archive
	Entry   int
	File    FileEntry
	Main    []byte
	Stream  []byte
	GPU     []byte
}

func (a *Asset) Id() stingray.Hash   { return a.File.Id }
func (a *Asset) Type() stingray.Hash { return a.File.Type }

// Size is the total byte count over all extents.
func (a *Asset) Size() int64 {
	return int64(len(a.Main)) + int64(len(a.Stream)) + int64(len(a.GPU))
}

type Archive struct {
	Name   string
	Header Header

	main   *Extent
	stream *Extent
	gpu    *Extent

	types []TypeEntry
	files []FileEntry
}

func readHeader(r *readat.Reader) (h Header) {
	h.Magic = r.ReadU32LE(0)
	h.TypeCount = r.ReadU32LE(4)
	h.FileCount = r.ReadU32LE(8)
	for i := range h.Unk0 {
		h.Unk0[i] = r.ReadU32LE(0xc + int64(i)*4)
	}
	h.GPUAlignedSize = r.ReadU32LE(0x28)
	for i := range h.Unk1 {
		h.Unk1[i] = r.ReadU32LE(0x2c + int64(i)*4)
	}
	return h
}

func readTypeEntry(r *readat.Reader) (t TypeEntry) {
	t.Unk0[0] = r.ReadU32LE(0)
	t.Unk0[1] = r.ReadU32LE(4)
	t.Type = stingray.Hash(r.ReadU64LE(8))
	t.Count = r.ReadU32LE(0x10)
	for i := range t.Unk1 {
		t.Unk1[i] = r.ReadU32LE(0x14 + int64(i)*4)
	}
	return t
}

func readFileEntry(r *readat.Reader) (f FileEntry) {
	f.Id = stingray.Hash(r.ReadU64LE(0))
	f.Type = stingray.Hash(r.ReadU64LE(8))
	f.MainOffset = r.ReadU32LE(0x10)
	f.Unk0 = r.ReadU32LE(0x14)
	f.StreamOffset = r.ReadU32LE(0x18)
	f.Unk1 = r.ReadU32LE(0x1c)
	f.GPUOffset = r.ReadU32LE(0x20)
	for i := range f.Unk2 {
		f.Unk2[i] = r.ReadU32LE(0x24 + int64(i)*4)
	}
	f.MainSize = r.ReadU32LE(0x38)
	f.StreamSize = r.ReadU32LE(0x3c)
	f.GPUSize = r.ReadU32LE(0x40)
	f.Unk3[0] = r.ReadU32LE(0x44)
	f.Unk3[1] = r.ReadU32LE(0x48)
	f.Index = r.ReadU32LE(0x4c)
	return f
}

// New parses the index of main. stream and gpu may be nil.
// The archive takes ownership of the extents, also on failure.
func New(name string, main, stream, gpu *Extent) (_ *Archive, err error) {
	a := &Archive{Name: name, main: main, stream: stream, gpu: gpu}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	if main == nil {
		return nil, errors.Errorf("Archive %q has no main extent", name)
	}

	r := readat.NewReader(main.Bytes(), 0)
	if r.Len() < HeaderSize {
		return nil, stingray.Corruptf("archive %q: header truncated (%d bytes)", name, r.Len())
	}

	defer readat.Recover(&err)

	a.Header = readHeader(r)
	if a.Header.Magic != Magic {
		return nil, stingray.Corruptf("archive %q: invalid magic 0x%08x", name, a.Header.Magic)
	}

	tablesEnd := int64(HeaderSize) + int64(a.Header.TypeCount)*TypeEntrySize + int64(a.Header.FileCount)*FileEntrySize
	if tablesEnd > r.Len() {
		return nil, stingray.Corruptf("archive %q: %d types and %d files do not fit into %d bytes",
			name, a.Header.TypeCount, a.Header.FileCount, r.Len())
	}

	a.types = make([]TypeEntry, a.Header.TypeCount)
	for i := range a.types {
		a.types[i] = readTypeEntry(r.SubReader(HeaderSize + int64(i)*TypeEntrySize))
	}
	filesStart := int64(HeaderSize) + int64(len(a.types))*TypeEntrySize
	a.files = make([]FileEntry, a.Header.FileCount)
	for i := range a.files {
		a.files[i] = readFileEntry(r.SubReader(filesStart + int64(i)*FileEntrySize))
	}
	return a, nil
}

// Open maps <path> and its optional <path>.stream and <path>.gpu_resources
// (or <path>.gpu) siblings.
func Open(path string) (*Archive, error) {
	main, err := OpenExtent(path)
	if err != nil {
		return nil, err
	}

	stream, err := openSibling(path + StreamSuffix)
	if err != nil {
		main.Close()
		return nil, err
	}

	gpu, err := openSibling(path + GPUSuffix)
	if err == nil && gpu == nil {
		gpu, err = openSibling(path + GPUSuffixAlt)
	}
	if err != nil {
		main.Close()
		stream.Close()
		return nil, err
	}

	return New(filepath.Base(path), main, stream, gpu)
}

// openSibling returns nil without error when the file does not exist.
func openSibling(path string) (*Extent, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return OpenExtent(path)
}

func (a *Archive) Close() error {
	var first error
	for _, e := range []*Extent{a.main, a.stream, a.gpu} {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *Archive) HasStream() bool { return a.stream != nil }
func (a *Archive) HasGPU() bool    { return a.gpu != nil }

func (a *Archive) TypeCount() int         { return len(a.types) }
func (a *Archive) TypeAt(i int) TypeEntry { return a.types[i] }
func (a *Archive) FileCount() int         { return len(a.files) }
func (a *Archive) FileAt(i int) FileEntry { return a.files[i] }
func (a *Archive) Types() []TypeEntry     { return a.types }
func (a *Archive) Files() []FileEntry     { return a.files }
func (a *Archive) MainExtent() *Extent    { return a.main }
func (a *Archive) StreamExtent() *Extent  { return a.stream }
func (a *Archive) GPUExtent() *Extent     { return a.gpu }

// DataOffset is where the per-file data blob of the main extent starts.
func (a *Archive) DataOffset() int64 {
	return HeaderSize + int64(len(a.types))*TypeEntrySize + int64(len(a.files))*FileEntrySize
}

func extentRange(e *Extent, offset, size uint32) ([]byte, error) {
	if e == nil || size == 0 {
		return nil, nil
	}
	return readat.NewReader(e.Bytes(), 0).Slice(int64(offset), int64(size))
}

// Resolve bounds-checks entry i against all three extents. Absent extents
// and zero sizes resolve to nil ranges.
func (a *Archive) Resolve(i int) (*Asset, error) {
	if i < 0 || i >= len(a.files) {
		return nil, stingray.NotFoundf("archive %q: file index %d of %d", a.Name, i, len(a.files))
	}
	f := a.files[i]
	asset := &Asset{Archive: a, Entry: i, File: f}

	var err error
	if asset.Main, err = extentRange(a.main, f.MainOffset, f.MainSize); err != nil {
		return nil, errors.Wrapf(err, "archive %q: %v.%v main", a.Name, f.Id, f.Type)
	}
	if asset.Stream, err = extentRange(a.stream, f.StreamOffset, f.StreamSize); err != nil {
		return nil, errors.Wrapf(err, "archive %q: %v.%v stream", a.Name, f.Id, f.Type)
	}
	if asset.GPU, err = extentRange(a.gpu, f.GPUOffset, f.GPUSize); err != nil {
		return nil, errors.Wrapf(err, "archive %q: %v.%v gpu", a.Name, f.Id, f.Type)
	}
	return asset, nil
}

// VerifyLayout checks that the main data of every file follows the previous
// one back to back, in table order, starting at DataOffset.
func (a *Archive) VerifyLayout() []error {
	var errs []error
	expected := a.DataOffset()
	for i, f := range a.files {
		if f.MainSize == 0 {
			continue
		}
		if int64(f.MainOffset) != expected {
			errs = append(errs, stingray.Corruptf("archive %q: file %d (%v.%v) data at 0x%x, expected 0x%x",
				a.Name, i, f.Id, f.Type, f.MainOffset, expected))
		}
		expected = int64(f.MainOffset) + int64(f.MainSize)
	}
	if expected > a.main.Len() {
		errs = append(errs, stingray.Corruptf("archive %q: data ends at 0x%x past the main extent (0x%x)",
			a.Name, expected, a.main.Len()))
	}
	return errs
}
