package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mogaika/stingray_extractor/config"
	"github.com/mogaika/stingray_extractor/web"
)

func serve(c *config.Config, paths []string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	opts, err := extractOptions(c)
	if err != nil {
		return err
	}
	set, err := openSet(c, paths)
	if err != nil {
		return err
	}
	defer set.Close()

	names := loadTranslator(c)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return web.NewServer(ctx, set, newRegistry(c, names), names, opts).Start(c.Listen)
}

func newServeCmd() *cobra.Command {
	var listen string
	var ef extractFlags
	cmd := &cobra.Command{
		Use:   "serve <archive or directory>...",
		Short: "Browse archives over HTTP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ef.apply(cmd, c)
			if changed(cmd, "listen") {
				c.Listen = listen
			}
			return serve(c, args)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "i", ":8000", "Address of server")
	ef.register(cmd)
	return cmd
}
