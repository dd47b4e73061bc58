package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/config"
	"github.com/mogaika/stingray_extractor/extract"
	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/pack/formats"
	"github.com/mogaika/stingray_extractor/pack/unit"
	"github.com/mogaika/stingray_extractor/pack/unit/mesh"
	"github.com/mogaika/stingray_extractor/status"
)

type extractFlags struct {
	output  string
	filter  string
	dryRun  bool
	rename  bool
	force   bool
	workers int
	verify  bool
	obj     bool
	gltf    bool
	raw     bool
}

func (ef *extractFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&ef.output, "output", "o", "out", "Output directory")
	f.StringVar(&ef.filter, "filter", "", "Only write outputs whose relative path matches this regexp")
	f.BoolVar(&ef.dryRun, "dry-run", false, "Report decisions without writing anything")
	f.BoolVar(&ef.rename, "rename", false, "Rename outputs exported under a hex name once a name is known")
	f.BoolVar(&ef.force, "force", false, "Export even if the output is up to date")
	f.IntVar(&ef.workers, "workers", 1, "Parallel extraction workers")
	f.BoolVar(&ef.verify, "verify", false, "Byte-compare duplicate assets across archives")
	f.BoolVar(&ef.obj, "obj", false, "Decode unit meshes to OBJ")
	f.BoolVar(&ef.gltf, "gltf", false, "Decode unit meshes to a binary glTF scene")
	f.BoolVar(&ef.raw, "raw", false, "Write raw mesh dumps")
}

// apply overrides c with the flags set on the command line.
func (ef *extractFlags) apply(cmd *cobra.Command, c *config.Config) {
	if changed(cmd, "output") {
		c.Output = ef.output
	}
	if changed(cmd, "filter") {
		c.Filter = ef.filter
	}
	if changed(cmd, "dry-run") {
		c.DryRun = ef.dryRun
	}
	if changed(cmd, "rename") {
		c.Rename = ef.rename
	}
	if changed(cmd, "force") {
		c.Force = ef.force
	}
	if changed(cmd, "workers") {
		c.Workers = ef.workers
	}
	if changed(cmd, "verify") {
		c.VerifyDuplicates = ef.verify
	}
	if changed(cmd, "obj") {
		c.Meshes.Obj = ef.obj
	}
	if changed(cmd, "gltf") {
		c.Meshes.GLTF = ef.gltf
	}
	if changed(cmd, "raw") {
		c.Meshes.Raw = ef.raw
	}
}

func extractOptions(c *config.Config) (extract.Options, error) {
	opts := extract.Options{
		Output:  c.Output,
		DryRun:  c.DryRun,
		Rename:  c.Rename,
		Force:   c.Force,
		Workers: c.Workers,
		Progress: func(done, total int) {
			status.Progress(float32(done)/float32(total), "Extracted %d of %d assets", done, total)
		},
	}
	if c.Filter != "" {
		re, err := regexp.Compile(c.Filter)
		if err != nil {
			return opts, errors.Wrapf(err, "Invalid filter")
		}
		opts.Filter = re
	}
	return opts, nil
}

func newRegistry(c *config.Config, names *hashdb.Translator) *pack.Registry {
	return formats.NewRegistry(formats.Options{
		Unit: unit.Options{
			Meshes: mesh.Options{
				Obj:  c.Meshes.Obj,
				GLTF: c.Meshes.GLTF,
				Raw:  c.Meshes.Raw,
			},
			MaterialName: names.Name,
		},
	})
}

// openSet discovers and opens archives. It fails only when none opens.
func openSet(c *config.Config, paths []string) (*archive.Set, error) {
	paths, err := archive.Discover(paths)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("No archives found")
	}

	set := archive.NewSet(archive.SetOptions{VerifyDuplicates: c.VerifyDuplicates})
	opened := set.Open(paths)
	if opened == 0 {
		return nil, errors.Errorf("None of %d archives could be opened", len(paths))
	}
	log.Infof("Opened %d of %d archives: %d assets, %d duplicates", opened, len(paths), set.Len(), set.Duplicates())
	return set, nil
}

func newExtractCmd() *cobra.Command {
	var ef extractFlags
	cmd := &cobra.Command{
		Use:   "extract <archive or directory>...",
		Short: "Export every asset of the given archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ef.apply(cmd, c)
			if err := c.Validate(); err != nil {
				return err
			}
			opts, err := extractOptions(c)
			if err != nil {
				return err
			}

			set, err := openSet(c, args)
			if err != nil {
				return err
			}
			defer set.Close()

			names := loadTranslator(c)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			stats, err := extract.New(set, newRegistry(c, names), names, opts).Run(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), stats)
			if set.Mismatches() != 0 {
				log.Warnf("%d duplicate assets differ between archives", set.Mismatches())
			}
			return err
		},
	}
	ef.register(cmd)
	return cmd
}
