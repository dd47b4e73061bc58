package archive

import (
	"os"

	"github.com/pkg/errors"
)

// Extent is a read-only view over one whole physical file.
type Extent struct {
	path  string
	data  []byte
	unmap func() error
}

func OpenExtent(path string) (*Extent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open extent")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to stat extent")
	}
	if st.IsDir() {
		return nil, errors.Errorf("Extent %q is a directory", path)
	}

	e := &Extent{path: path}
	if st.Size() == 0 {
		return e, nil
	}
	if int64(int(st.Size())) != st.Size() {
		return nil, errors.Errorf("Extent %q is too large to map: %d bytes", path, st.Size())
	}

	e.data, e.unmap, err = mapFile(f, int(st.Size()))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to map extent %q", path)
	}
	return e, nil
}

// NewExtentFromBytes wraps an in-memory buffer. Close is a no-op.
func NewExtentFromBytes(name string, data []byte) *Extent {
	return &Extent{path: name, data: data}
}

func (e *Extent) Path() string { return e.path }

func (e *Extent) Bytes() []byte {
	if e == nil {
		return nil
	}
	return e.data
}

func (e *Extent) Len() int64 {
	if e == nil {
		return 0
	}
	return int64(len(e.data))
}

func (e *Extent) Close() error {
	if e == nil || e.unmap == nil {
		return nil
	}
	unmap := e.unmap
	e.unmap = nil
	e.data = nil
	return unmap()
}
