package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wavebench/internal/payload"
	"wavebench/internal/paths"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one payload's channels, metadata, and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				encoded, err := payload.Encode(p)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}

			summary := summarize(p)
			fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "samples: %d\n", summary.Samples)
			fmt.Fprintf(cmd.OutOrStdout(), "channels: %s\n", channelList(summary))

			if uid, err := paths.Resolve(p, "meta.__uid__"); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "uid: %v\n", uid)
			}

			history := payload.History(p)
			if len(history) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "history:")
				for _, entry := range history {
					record, ok := entry.(payload.Map)
					if !ok {
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %v at %v\n", record["op_name"], record["timestamp"])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Dump the payload as JSON")
	return cmd
}
