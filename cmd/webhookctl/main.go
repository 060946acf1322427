// Command webhookctl inspects and archives stored provider callbacks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	if err := rootCmd().ExecuteContext(zctx.Base(ctx, lg)); err != nil {
		lg.Error("webhookctl failed", zap.Error(err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts storeOptions

	cmd := &cobra.Command{
		Use:           "webhookctl",
		Short:         "Inspect and archive stored payment callbacks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "file", "Webhook store backend: file or postgres")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "webhooks", "Directory of the file store")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")

	cmd.AddCommand(listCmd(&opts))
	cmd.AddCommand(archiveCmd(&opts))
	cmd.AddCommand(inspectCmd())

	return cmd
}
