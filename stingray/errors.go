package stingray

import (
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrCorrupt marks structural violations of an input: bad magic,
	// out-of-bounds ranges, truncated records, unsupported widths.
	ErrCorrupt = errors.New("corrupt input")
	// ErrNotFound marks lookups of things that do not exist.
	ErrNotFound = errors.New("not found")
)

type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindCorrupt
	KindNotFound
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindCorrupt:
		return "corrupt"
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io"
	default:
		return "other"
	}
}

func Corruptf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrCorrupt, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// Classify reports which class of failure err belongs to.
func Classify(err error) ErrorKind {
	var pathErr *os.PathError
	var linkErr *os.LinkError
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrCorrupt):
		return KindCorrupt
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &pathErr), errors.As(err, &linkErr):
		return KindIO
	default:
		return KindOther
	}
}
