package hashdb

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/mogaika/stingray_extractor/config"
	"github.com/mogaika/stingray_extractor/stingray"
)

const maxLineLength = 1 << 20

// Table is a hash <-> string dictionary. It is filled once by Load and read
// concurrently afterwards.
type Table struct {
	Name     string
	byHash   map[stingray.Hash]string
	byThin   map[stingray.ThinHash]string
	byString map[string]stingray.Hash
}

func NewTable(name string) *Table {
	return &Table{
		Name:     name,
		byHash:   make(map[stingray.Hash]string),
		byThin:   make(map[stingray.ThinHash]string),
		byString: make(map[string]stingray.Hash),
	}
}

// Add hashes s and records both directions. The first string seen for a
// hash is the one returned by lookups.
func (t *Table) Add(s string) stingray.Hash {
	h := stingray.HashString(s)
	if _, ok := t.byHash[h]; !ok {
		t.byHash[h] = s
	}
	if _, ok := t.byThin[h.Thin()]; !ok {
		t.byThin[h.Thin()] = s
	}
	t.byString[s] = h
	return h
}

// cleanLine strips a trailing // comment and surrounding whitespace.
func cleanLine(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Load reads one candidate string per line. Text is decoded with
// config.TextDecoder.
func (t *Table) Load(r io.Reader) error {
	sc := bufio.NewScanner(transform.NewReader(r, config.TextDecoder()))
	sc.Buffer(make([]byte, 64*1024), maxLineLength)
	for sc.Scan() {
		if line := cleanLine(sc.Text()); line != "" {
			t.Add(line)
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "Failed to read dictionary %q", t.Name)
	}
	return nil
}

func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open dictionary")
	}
	defer f.Close()

	t := NewTable(path)
	if err := t.Load(f); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Lookup(h stingray.Hash) (string, bool) {
	s, ok := t.byHash[h]
	return s, ok
}

func (t *Table) LookupThin(h stingray.ThinHash) (string, bool) {
	s, ok := t.byThin[h]
	return s, ok
}

func (t *Table) Hash(s string) (stingray.Hash, bool) {
	h, ok := t.byString[s]
	return h, ok
}

func (t *Table) Len() int {
	return len(t.byHash)
}
