package extract

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/pack"
)

var log = logrus.WithField("module", "extract")

type Options struct {
	Output string
	// Filter is matched against the output path relative to Output.
	Filter *regexp.Regexp
	DryRun bool
	// Rename moves outputs exported under a hex name to their translated
	// name instead of exporting again.
	Rename  bool
	Force   bool
	Workers int
	// Progress is called after every asset.
	Progress func(done, total int)
}

type Driver struct {
	opts     Options
	set      *archive.Set
	registry *pack.Registry
	names    *hashdb.Translator

	locks keyedMutex
	stats counters
}

func New(set *archive.Set, registry *pack.Registry, names *hashdb.Translator, opts Options) *Driver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Driver{
		opts:     opts,
		set:      set,
		registry: registry,
		names:    names,
	}
}

func (d *Driver) Stats() Stats {
	return d.stats.snapshot()
}

// Run extracts every asset of the set. Asset failures are counted and
// logged; only cancellation of ctx ends the run early.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	keys := d.set.SortedKeys()
	total := len(keys)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	for _, key := range keys {
		if gctx.Err() != nil {
			break
		}
		key := key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d.ExtractAsset(key)
			if d.opts.Progress != nil {
				d.opts.Progress(int(d.stats.assets.Load()), total)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return d.stats.snapshot(), err
}

// ExtractAsset exports all sections of one asset.
func (d *Driver) ExtractAsset(key archive.Key) {
	d.stats.assets.Add(1)
	l := log.WithField("id", d.names.Describe(key.Id)).WithField("type", d.names.TypeName(key.Type))

	asset, err := d.set.Lookup(key)
	if err != nil {
		l.WithError(err).Error("Failed to resolve asset")
		d.stats.fail(err)
		return
	}
	l = l.WithField("archive", asset.Archive.Name)

	conv := d.registry.Find(asset)
	outputs := conv.Outputs()
	for _, name := range pack.SortedNames(conv) {
		if err := d.extractSection(asset, conv, name, outputs[name]); err != nil {
			l.WithError(err).WithField("section", name).Error("Failed to extract")
			d.stats.fail(err)
		}
	}
}

// OutputName is the path of a section relative to the output directory.
// Untranslated names use the id in hex.
func (d *Driver) OutputName(asset *archive.Asset, out pack.Output) string {
	return d.relativeName(d.names.Name(asset.Id()), asset, out)
}

func (d *Driver) hexName(asset *archive.Asset, out pack.Output) string {
	return d.relativeName(asset.Id().String(), asset, out)
}

func (d *Driver) relativeName(name string, asset *archive.Asset, out pack.Output) string {
	ext := out.Suffix
	if ext == "" {
		ext = d.names.TypeName(asset.Type())
	}
	rel := filepath.Clean(filepath.FromSlash(name + "." + ext))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = asset.Id().String() + "." + filepath.Base(filepath.FromSlash(ext))
	}
	return rel
}

func (d *Driver) extractSection(asset *archive.Asset, conv pack.Converter, section string, out pack.Output) error {
	rel := d.OutputName(asset, out)
	if d.opts.Filter != nil && !d.opts.Filter.MatchString(filepath.ToSlash(rel)) {
		d.stats.filtered.Add(1)
		return nil
	}
	path := filepath.Join(d.opts.Output, rel)
	l := log.WithField("path", path)

	unlock := d.locks.Lock(path)
	defer unlock()

	if !d.opts.Force {
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() && st.Size() == out.Size {
			l.Debug("Up to date")
			d.stats.upToDate.Add(1)
			return nil
		}
	}

	if d.opts.Rename {
		if _, translated := d.names.LookupName(asset.Id()); translated {
			hexPath := filepath.Join(d.opts.Output, d.hexName(asset, out))
			if hexPath != path {
				if st, err := os.Stat(hexPath); err == nil && st.Mode().IsRegular() {
					if d.opts.DryRun {
						l.Infof("[dry-run] Would rename %q", hexPath)
					} else {
						if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
							return errors.Wrapf(err, "Failed to create directory")
						}
						if err := os.Rename(hexPath, path); err != nil {
							return errors.Wrapf(err, "Failed to rename %q", hexPath)
						}
						l.Debugf("Renamed from %q", hexPath)
					}
					d.stats.renamed.Add(1)
					return nil
				}
			}
		}
	}

	if d.opts.DryRun {
		l.Infof("[dry-run] Would export %d bytes", out.Size)
		d.stats.exported.Add(1)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "Failed to create directory")
	}
	if err := conv.Extract(section, path); err != nil {
		return err
	}
	l.Debugf("Exported %d bytes", out.Size)
	d.stats.exported.Add(1)
	return nil
}
