package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"wavebench/internal/importer"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import waveform files into the workspace catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := importer.LoadFiles(args)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(imported))
			for id := range imported {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			type importedRow struct {
				ID       string   `json:"id"`
				UID      string   `json:"uid"`
				Channels []string `json:"channels"`
				Samples  int      `json:"samples"`
			}
			rows := make([]importedRow, 0, len(ids))
			for _, id := range ids {
				entry, err := store.Save(cmd.Context(), id, imported[id])
				if err != nil {
					return err
				}
				summary := summarize(imported[id])
				rows = append(rows, importedRow{
					ID:       entry.ID,
					UID:      entry.UID,
					Channels: summary.Channels,
					Samples:  summary.Samples,
				})
			}

			if jsonOut {
				return writeJSON(cmd, rows)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					row.ID,
					row.UID,
					channelList(payloadSummary{Channels: row.Channels}),
					fmt.Sprintf("%d", row.Samples),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "UID", "CHANNELS", "SAMPLES"},
				tableRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
