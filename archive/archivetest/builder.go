// Package archivetest builds archives in memory for tests.
package archivetest

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/stingray"
)

type File struct {
	Id     stingray.Hash
	Type   stingray.Hash
	Main   []byte
	Stream []byte
	GPU    []byte
}

type Builder struct {
	Files []File
	// Force sibling extents even when no file has data there.
	WithStream bool
	WithGPU    bool
}

func (b *Builder) Add(f File) *Builder {
	b.Files = append(b.Files, f)
	return b
}

func (b *Builder) types() []archive.TypeEntry {
	var types []archive.TypeEntry
	pos := make(map[stingray.Hash]int)
	for _, f := range b.Files {
		i, ok := pos[f.Type]
		if !ok {
			i = len(types)
			pos[f.Type] = i
			types = append(types, archive.TypeEntry{Type: f.Type})
		}
		types[i].Count++
	}
	return types
}

// FileEntryOffset is the position of file entry i in the main extent.
func (b *Builder) FileEntryOffset(i int) int {
	return archive.HeaderSize + len(b.types())*archive.TypeEntrySize + i*archive.FileEntrySize
}

// Build lays main data back to back after the tables and concatenates stream
// and gpu data. Missing extents are returned as nil.
func (b *Builder) Build() (main, stream, gpu []byte) {
	types := b.types()
	dataOffset := archive.HeaderSize + len(types)*archive.TypeEntrySize + len(b.Files)*archive.FileEntrySize

	main = make([]byte, dataOffset)
	le := binary.LittleEndian
	le.PutUint32(main[0:], archive.Magic)
	le.PutUint32(main[4:], uint32(len(types)))
	le.PutUint32(main[8:], uint32(len(b.Files)))

	for i, t := range types {
		off := archive.HeaderSize + i*archive.TypeEntrySize
		le.PutUint64(main[off+8:], uint64(t.Type))
		le.PutUint32(main[off+0x10:], t.Count)
	}

	hasStream, hasGPU := b.WithStream, b.WithGPU
	for i, f := range b.Files {
		off := b.FileEntryOffset(i)
		le.PutUint64(main[off:], uint64(f.Id))
		le.PutUint64(main[off+8:], uint64(f.Type))
		le.PutUint32(main[off+0x10:], uint32(len(main)))
		le.PutUint32(main[off+0x18:], uint32(len(stream)))
		le.PutUint32(main[off+0x20:], uint32(len(gpu)))
		le.PutUint32(main[off+0x38:], uint32(len(f.Main)))
		le.PutUint32(main[off+0x3c:], uint32(len(f.Stream)))
		le.PutUint32(main[off+0x40:], uint32(len(f.GPU)))
		le.PutUint32(main[off+0x4c:], uint32(i))

		main = append(main, f.Main...)
		stream = append(stream, f.Stream...)
		gpu = append(gpu, f.GPU...)
		hasStream = hasStream || len(f.Stream) != 0
		hasGPU = hasGPU || len(f.GPU) != 0
	}
	le.PutUint32(main[0x28:], uint32(len(gpu)))

	if !hasStream {
		stream = nil
	} else if stream == nil {
		stream = []byte{}
	}
	if !hasGPU {
		gpu = nil
	} else if gpu == nil {
		gpu = []byte{}
	}
	return main, stream, gpu
}

func extent(name string, data []byte) *archive.Extent {
	if data == nil {
		return nil
	}
	return archive.NewExtentFromBytes(name, data)
}

// Archive parses the built archive from memory.
func (b *Builder) Archive(name string) (*archive.Archive, error) {
	main, stream, gpu := b.Build()
	return archive.New(name, extent(name, main), extent(name+archive.StreamSuffix, stream), extent(name+archive.GPUSuffix, gpu))
}

// WriteFiles stores the archive as dir/name with its sibling files and
// returns the main path.
func (b *Builder) WriteFiles(dir, name string) (string, error) {
	main, stream, gpu := b.Build()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, main, 0644); err != nil {
		return "", err
	}
	if stream != nil {
		if err := os.WriteFile(path+archive.StreamSuffix, stream, 0644); err != nil {
			return "", err
		}
	}
	if gpu != nil {
		if err := os.WriteFile(path+archive.GPUSuffix, gpu, 0644); err != nil {
			return "", err
		}
	}
	return path, nil
}
