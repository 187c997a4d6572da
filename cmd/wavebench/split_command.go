package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"wavebench/internal/transform"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var (
		sourcePath  string
		mode        string
		targetPath  string
		keyTemplate string
		copyPolicy  string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "split <id>",
		Short: "Split one payload into single-entry children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			spec := transform.NewSplitSpec(sourcePath, transform.SplitMode(mode))
			spec.ChildTargetPath = targetPath
			if keyTemplate != "" {
				spec.ChildKeyTemplate = keyTemplate
			}
			if copyPolicy != "" {
				spec.Copy = transform.CopyPolicy(copyPolicy)
			}

			children, err := transform.Split(p, spec)
			if err != nil {
				return err
			}

			childIDs := make([]string, 0, len(children))
			for childID := range children {
				childIDs = append(childIDs, childID)
			}
			sort.Strings(childIDs)

			type childRow struct {
				ID  string `json:"id"`
				UID string `json:"uid"`
			}
			rows := make([]childRow, 0, len(childIDs))
			for _, childID := range childIDs {
				entry, err := store.Save(cmd.Context(), childID, children[childID])
				if err != nil {
					return err
				}
				rows = append(rows, childRow{ID: entry.ID, UID: entry.UID})
			}
			logger.Info("payload split", "input", args[0], "children", len(rows))

			if jsonOut {
				return writeJSON(cmd, rows)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{row.ID, row.UID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"CHILD", "UID"},
				tableRows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "path", "data.channels", "Path of the container to partition")
	cmd.Flags().StringVar(&mode, "mode", "dict_keys", "Container kind at the path (dict_keys, list_items)")
	cmd.Flags().StringVar(&targetPath, "target", "", "Where each child receives its entry (default: same as --path)")
	cmd.Flags().StringVar(&keyTemplate, "key-template", "", "Child key template; {key} and {pid} expand")
	cmd.Flags().StringVar(&copyPolicy, "copy", "", "Copy policy for child payloads (shallow, deep)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
