package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wavebench/internal/payload"
	"wavebench/internal/transform"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var (
		outID       string
		targetPath  string
		collision   string
		template    string
		anyTimebase bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "merge --out <id> <id>...",
		Short: "Merge payloads into one union payload",
		Args:  cobra.MinimumNArgs(2),
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

			inputs := make([]payload.Map, 0, len(args))
			for _, id := range args {
				p, err := store.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				inputs = append(inputs, p)
			}

			spec := transform.NewMergeSpec(targetPath, transform.MergeDictUnion)
			if collision != "" {
				spec.Collision = transform.CollisionPolicy(collision)
			}
			if template != "" {
				spec.CollisionTemplate = template
			}
			if anyTimebase {
				spec.RequireSameTimebase = false
			}

			merged, err := transform.Merge(inputs, spec)
			if err != nil {
				return err
			}

			entry, err := store.Save(cmd.Context(), outID, merged)
			if err != nil {
				return err
			}
			logger.Info("payloads merged", "inputs", len(inputs), "output", outID)

			if jsonOut {
				return writeJSON(cmd, entry)
			}
			summary := summarize(merged)
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d payloads into %s (uid %s)\n", len(inputs), entry.ID, entry.UID)
			fmt.Fprintf(cmd.OutOrStdout(), "channels: %s\n", channelList(summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outID, "out", "o", "", "Catalog id for the merged payload")
	cmd.Flags().StringVar(&targetPath, "target", "data.channels", "Path of the mapping merged across payloads")
	cmd.Flags().StringVar(&collision, "collision", "", "Duplicate key policy (error, attach_id, overwrite, suffix_counter)")
	cmd.Flags().StringVar(&template, "collision-template", "", "Rename template for attach_id; {key} and {uid} expand")
	cmd.Flags().BoolVar(&anyTimebase, "any-timebase", false, "Skip the shared-timebase gate")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a summary")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
