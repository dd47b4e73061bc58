package archive

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Discover expands directories into the archive main files they contain,
// which are the files without an extension. Plain file arguments are kept
// as given. The result is sorted and free of duplicates.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to discover archives")
		}
		if !st.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && filepath.Ext(d.Name()) == "" {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to walk %q", p)
		}
	}

	sort.Strings(result)
	return result, nil
}
