package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mogaika/stingray_extractor/stingray"
)

func newHashCmd() *cobra.Command {
	var thin, types bool
	cmd := &cobra.Command{
		Use:   "hash <string>...",
		Short: "Print the 64-bit hash of each argument",
		RunE: func(cmd *cobra.Command, args []string) error {
			if types {
				args = append(stingray.KnownTypeNames(), args...)
			}
			if len(args) == 0 {
				return errors.Errorf("Nothing to hash")
			}
			out := cmd.OutOrStdout()
			for _, s := range args {
				h := stingray.HashString(s)
				if thin {
					fmt.Fprintf(out, "%016x %v %s\n", uint64(h), h.Thin(), s)
				} else {
					fmt.Fprintf(out, "%016x %s\n", uint64(h), s)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&types, "types", false, "Also hash every stock resource type name")
	cmd.Flags().BoolVar(&thin, "thin", false, "Also print the 32-bit thin hash")
	return cmd
}
