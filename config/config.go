package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Dictionaries struct {
	Names   []string `yaml:"names"`
	Types   []string `yaml:"types"`
	Strings []string `yaml:"strings"`
}

type Meshes struct {
	Obj  bool `yaml:"obj"`
	GLTF bool `yaml:"gltf"`
	Raw  bool `yaml:"raw"`
}

type Config struct {
	Output             string       `yaml:"output"`
	Dictionaries       Dictionaries `yaml:"dictionaries"`
	DictionaryEncoding string       `yaml:"dictionary_encoding"`
	Filter             string       `yaml:"filter"`
	DryRun             bool         `yaml:"dry_run"`
	Rename             bool         `yaml:"rename"`
	Force              bool         `yaml:"force"`
	Workers            int          `yaml:"workers"`
	VerifyDuplicates   bool         `yaml:"verify_duplicates"`
	Meshes             Meshes       `yaml:"meshes"`
	LogLevel           string       `yaml:"log_level"`
	Listen             string       `yaml:"listen"`
}

func Default() *Config {
	return &Config{
		Output:   "out",
		Workers:  1,
		LogLevel: "info",
		Listen:   ":8000",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Invalid config %q", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}
