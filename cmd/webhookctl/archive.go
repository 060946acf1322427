package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
	"github.com/xenking/tapsilat-checkout/internal/storage/archive"
)

func archiveCmd(opts *storeOptions) *cobra.Command {
	var (
		out    string
		before time.Duration
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Bundle stored callbacks into a gzip compressed JSON lines file",
		Long: `Writes every stored callback older than --before into one archive,
oldest first. With --remove the archived callbacks are deleted from the
store once the archive is safely on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lg := zctx.From(ctx)

			store, release, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			entries, err := store.List(ctx)
			if err != nil {
				return err
			}
			entries = olderThan(entries, time.Now().Add(-before))
			if len(entries) == 0 {
				lg.Info("Nothing to archive")
				return nil
			}

			if out == "" {
				out = "webhooks-" + time.Now().UTC().Format("20060102T150405Z") + archive.Extension
			}
			if !strings.HasSuffix(out, archive.Extension) {
				out += archive.Extension
			}

			n, err := writeArchive(cmd, out, entries)
			if err != nil {
				return err
			}
			lg.Info("Archive written", zap.String("path", out), zap.Int("entries", n))

			if !remove {
				return nil
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Filename
			}
			if err := store.Remove(ctx, names...); err != nil {
				return errors.Wrap(err, "remove archived callbacks")
			}
			lg.Info("Archived callbacks removed", zap.Int("entries", len(names)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Archive path (default webhooks-<timestamp>.jsonl.gz)")
	cmd.Flags().DurationVar(&before, "before", 0, "Only archive callbacks received at least this long ago")
	cmd.Flags().BoolVar(&remove, "remove", false, "Delete archived callbacks from the store")

	return cmd
}

// olderThan keeps entries received before cutoff, oldest first.
func olderThan(entries []webhook.Entry, cutoff time.Time) []webhook.Entry {
	out := make([]webhook.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ReceivedAt.Before(cutoff) {
			out = append(out, entries[i])
		}
	}
	return out
}

// writeArchive writes to a temporary file next to path and renames it into
// place, so a partial archive never carries the final name.
func writeArchive(cmd *cobra.Command, path string, entries []webhook.Entry) (int, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".archive-*")
	if err != nil {
		return 0, errors.Wrap(err, "create archive")
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	n, err := archive.Write(cmd.Context(), f, entries)
	if err != nil {
		_ = f.Close()
		return 0, errors.Wrap(err, "write archive")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return 0, errors.Wrap(err, "sync archive")
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "close archive")
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, errors.Wrap(err, "rename archive")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", path, n)
	return n, nil
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Summarize an archive by callback type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open archive")
			}
			defer func() { _ = f.Close() }()

			entries, err := archive.Read(cmd.Context(), f)
			if err != nil {
				return err
			}

			counts := map[webhook.Type]int{}
			for _, e := range entries {
				counts[e.Type]++
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "entries: %d\n", len(entries))
			if len(entries) > 0 {
				fmt.Fprintf(w, "first:   %s\n", entries[0].ReceivedAt.Format(time.RFC3339))
				fmt.Fprintf(w, "last:    %s\n", entries[len(entries)-1].ReceivedAt.Format(time.RFC3339))
			}
			for _, t := range []webhook.Type{webhook.TypeSuccess, webhook.TypeFail, webhook.TypeRefund, webhook.TypeCancel} {
				fmt.Fprintf(w, "%-8s %d\n", t+":", counts[t])
			}
			return nil
		},
	}
}
