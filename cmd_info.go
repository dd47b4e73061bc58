package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/utils"
)

func printArchive(out io.Writer, a *archive.Archive, names *hashdb.Translator, dump bool) {
	fmt.Fprintf(out, "archive %s: %d types, %d files, stream %v, gpu %v\n",
		a.Name, a.TypeCount(), a.FileCount(), a.HasStream(), a.HasGPU())
	if dump {
		fmt.Fprint(out, utils.SDump(a.Header))
	}

	for _, t := range a.Types() {
		fmt.Fprintf(out, "  type %v %-20s %6d files\n", t.Type, names.TypeName(t.Type), t.Count)
	}
	for i, f := range a.Files() {
		fmt.Fprintf(out, "  %5d %v.%v main %08x+%-8x stream %08x+%-8x gpu %08x+%-8x %s.%s\n",
			i, f.Id, f.Type,
			f.MainOffset, f.MainSize, f.StreamOffset, f.StreamSize, f.GPUOffset, f.GPUSize,
			names.Name(f.Id), names.TypeName(f.Type))
		if dump {
			fmt.Fprint(out, utils.SDump(f))
		}
	}
}

func newInfoCmd() *cobra.Command {
	var dump, verify bool
	cmd := &cobra.Command{
		Use:   "info <archive>...",
		Short: "Print the header, type table and file table of archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			names := loadTranslator(c)
			out := cmd.OutOrStdout()

			failed, violations := 0, 0
			for _, path := range args {
				a, err := archive.Open(path)
				if err != nil {
					log.WithError(err).Errorf("Failed to open archive %q", path)
					failed++
					continue
				}
				printArchive(out, a, names, dump)
				if verify {
					for _, err := range a.VerifyLayout() {
						fmt.Fprintf(out, "  layout: %v\n", err)
						violations++
					}
				}
				a.Close()
			}

			if failed == len(args) {
				return errors.Errorf("No archive could be opened")
			}
			if violations != 0 {
				return errors.Errorf("%d layout violations", violations)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump header and file entries")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check that file data is laid out back to back")
	return cmd
}
