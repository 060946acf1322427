package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

func listCmd(opts *storeOptions) *cobra.Command {
	var (
		typ    string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored callbacks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, release, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			entries, err := store.List(ctx)
			if err != nil {
				return err
			}
			if typ != "" {
				t, err := webhook.ParseType(typ)
				if err != nil {
					return err
				}
				entries = filterType(entries, t)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RECEIVED\tTYPE\tFILENAME\tBYTES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ReceivedAt.Format(time.RFC3339), e.Type, e.Filename, len(e.Raw))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only list callbacks of this type (success, fail, refund, cancel)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries, 0 for all")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func filterType(entries []webhook.Entry, t webhook.Type) []webhook.Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
