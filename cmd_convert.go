package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/pack/unit/mesh"
	"github.com/mogaika/stingray_extractor/stingray"
)

const (
	MeshInfoExt = ".meshinfo"
	MeshExt     = ".mesh"
	RawExt      = ".raw"
)

type converter struct {
	names *hashdb.Translator
	gltf  bool
	// samples holds the datatype sample names written during this run.
	samples map[string]bool
}

// writeSample stores one datatype layout per digest into dir.
func (c *converter) writeSample(dir string, dt *mesh.Datatype) error {
	name := filepath.Join(dir, dt.SampleName())
	if c.samples[name] {
		return nil
	}
	c.samples[name] = true
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(name, dt.Unique().Bytes(), 0644)
}

func writeObj(path string, g *mesh.Geometry, name string, materials []string) error {
	var buf bytes.Buffer
	if err := g.ExportObj(&buf, name, materials); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// convertPair decodes <base>.meshinfo with <base>.mesh into <base>/NNNNNNNN.obj.
func (c *converter) convertPair(base string) error {
	infoData, err := os.ReadFile(base + MeshInfoExt)
	if err != nil {
		return err
	}
	gpu, err := os.ReadFile(base + MeshExt)
	if err != nil {
		return err
	}
	info, err := mesh.ParseInfo(infoData)
	if err != nil {
		return errors.Wrapf(err, "Failed to parse %q", base+MeshInfoExt)
	}

	samples := filepath.Join(filepath.Dir(base), "datatypes")
	for _, dt := range info.UniqueDatatypes() {
		log.Debugf("%s: datatype %s\n%s", base, dt.SampleName(), dt.Describe())
		if err := c.writeSample(samples, dt); err != nil {
			return err
		}
	}

	exp, err := mesh.ExportAll(info, gpu, mesh.Options{Obj: true, GLTF: c.gltf}, c.names.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return err
	}
	for _, m := range exp.Meshes {
		if err := os.WriteFile(filepath.Join(base, m.Name+".obj"), m.Obj, 0644); err != nil {
			return err
		}
	}
	if exp.GLB != nil {
		if err := os.WriteFile(base+".glb", exp.GLB, 0644); err != nil {
			return err
		}
	}
	log.Infof("%s: %d meshes converted, %d skipped", base, len(exp.Meshes), exp.Skipped)
	return nil
}

// convertRaw decodes a raw mesh dump into an .obj next to it.
func (c *converter) convertRaw(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	g, err := mesh.DecodeRaw(data)
	if err != nil {
		return errors.Wrapf(err, "Failed to decode %q", path)
	}

	base := strings.TrimSuffix(path, RawExt)
	if err := c.writeSample(filepath.Join(filepath.Dir(filepath.Dir(path)), "datatypes"), g.Datatype); err != nil {
		return err
	}
	materials := make([]string, len(g.Mesh.Materials))
	for i, key := range g.Mesh.Materials {
		materials[i] = c.names.ThinName(stingray.ThinHash(key))
	}
	return writeObj(base+".obj", g, filepath.Base(base), materials)
}

func newConvertCmd() *cobra.Command {
	var raw, gltf bool
	cmd := &cobra.Command{
		Use:   "convert <base>...",
		Short: "Decode standalone <base>.meshinfo + <base>.mesh pairs (or raw mesh dumps) to OBJ",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c := &converter{names: loadTranslator(cfg), gltf: gltf, samples: make(map[string]bool)}

			failed := 0
			for _, arg := range args {
				if raw {
					err = c.convertRaw(arg)
				} else {
					err = c.convertPair(strings.TrimSuffix(arg, MeshInfoExt))
				}
				if err != nil {
					log.WithError(err).Errorf("Failed to convert %q", arg)
					failed++
				}
			}
			if failed == len(args) {
				return errors.Errorf("Nothing converted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Arguments are raw mesh dumps")
	cmd.Flags().BoolVar(&gltf, "gltf", false, "Also write <base>.glb")
	return cmd
}
