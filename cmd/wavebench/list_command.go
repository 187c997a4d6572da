package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List payloads in the workspace catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			type listRow struct {
				ID       string   `json:"id"`
				UID      string   `json:"uid"`
				Channels []string `json:"channels"`
				Samples  int      `json:"samples"`
				SavedAt  string   `json:"saved_at"`
			}
			rows := make([]listRow, 0, len(entries))
			for _, entry := range entries {
				row := listRow{
					ID:      entry.ID,
					UID:     entry.UID,
					SavedAt: entry.CreatedAt.Format(time.RFC3339),
				}
				if p, err := store.Load(cmd.Context(), entry.ID); err == nil {
					summary := summarize(p)
					row.Channels = summary.Channels
					row.Samples = summary.Samples
				}
				rows = append(rows, row)
			}

			if jsonOut {
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty")
				return nil
			}

			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					row.ID,
					row.UID,
					channelList(payloadSummary{Channels: row.Channels}),
					fmt.Sprintf("%d", row.Samples),
					row.SavedAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "UID", "CHANNELS", "SAMPLES", "SAVED"},
				tableRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove payloads from the workspace catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			return nil
		},
	}
}
