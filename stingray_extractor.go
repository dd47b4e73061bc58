package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mogaika/stingray_extractor/config"
	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/status"
)

var log = logrus.WithField("module", "main")

// globals are the persistent flags of the root command.
type globals struct {
	configPath string
	verbose    bool
	quiet      bool
	names      []string
	types      []string
	strings    []string
	encoding   string
}

var g globals

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stingray_extractor",
		Short:         "Extract and convert assets of Stingray engine archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "YAML config file")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging")
	f.BoolVarP(&g.quiet, "quiet", "q", false, "Only warnings and errors")
	f.StringArrayVar(&g.names, "names", nil, "Name dictionary file (repeatable, later files win)")
	f.StringArrayVar(&g.types, "types", nil, "Type name dictionary file (repeatable)")
	f.StringArrayVar(&g.strings, "strings", nil, "Generic string dictionary file (repeatable)")
	f.StringVar(&g.encoding, "encoding", config.UTF8, "Text encoding of dictionary files: "+strings.Join(config.ListEncodings(), ", "))

	root.AddCommand(newExtractCmd())
	root.AddCommand(newHashCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newServeCmd())
	return root
}

// loadConfig reads --config over the defaults, then applies every flag that
// was set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if g.configPath != "" {
		var err error
		if c, err = config.Load(g.configPath); err != nil {
			return nil, err
		}
	}

	if changed(cmd, "names") {
		c.Dictionaries.Names = g.names
	}
	if changed(cmd, "types") {
		c.Dictionaries.Types = g.types
	}
	if changed(cmd, "strings") {
		c.Dictionaries.Strings = g.strings
	}
	if changed(cmd, "encoding") || c.DictionaryEncoding == "" {
		c.DictionaryEncoding = g.encoding
	}
	switch {
	case g.verbose:
		c.LogLevel = "debug"
	case g.quiet:
		c.LogLevel = "warn"
	}

	if err := setupLogging(c.LogLevel); err != nil {
		return nil, err
	}
	if err := config.SetEncoding(c.DictionaryEncoding); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "Invalid log level")
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func loadTranslator(c *config.Config) *hashdb.Translator {
	t := hashdb.NewTranslator(c.Dictionaries)
	log.Infof("Loaded dictionaries: %d names, %d types, %d strings",
		t.Names.Len(), t.Types.Len(), t.Strings.Len())
	return t
}

func main() {
	logrus.AddHook(status.Hook{})
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
