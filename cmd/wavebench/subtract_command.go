package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wavebench/internal/subtract"
)

func newSubtractCommand(ctx *commandContext) *cobra.Command {
	var (
		backgroundID  string
		matchMode     string
		missingPolicy string
		bgScale       float64
		expScale      float64
		timeAlign     string
		noOriginal    bool
		noHistory     bool
		jsonOut       bool
	)

	cmd := &cobra.Command{
		Use:   "subtract --background <id> <experiment-id>...",
		Short: "Subtract a background payload from experiment payloads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			params := subtractParamsFromConfig(cfg)
			if cmd.Flags().Changed("match-mode") {
				params.MatchMode = subtract.MatchMode(matchMode)
			}
			if cmd.Flags().Changed("missing-channel-policy") {
				params.MissingChannelPolicy = subtract.MissingChannelPolicy(missingPolicy)
			}
			if cmd.Flags().Changed("bg-scale") {
				params.BgScale = bgScale
			}
			if cmd.Flags().Changed("exp-scale") {
				params.ExpScale = expScale
			}
			if cmd.Flags().Changed("time-align") {
				params.TimeAlign = subtract.TimeAlign(timeAlign)
			}
			if noOriginal {
				params.StoreOriginal = false
			}
			if noHistory {
				params.RecordHistory = false
			}
			if err := params.Validate(); err != nil {
				return err
			}

			bg, err := store.Load(cmd.Context(), backgroundID)
			if err != nil {
				return fmt.Errorf("load background %s: %w", backgroundID, err)
			}

			type resultRow struct {
				Input  string `json:"input"`
				Output string `json:"output"`
				UID    string `json:"uid"`
			}
			rows := make([]resultRow, 0, len(args))
			for _, id := range args {
				exp, err := store.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				result, err := subtract.One(exp, bg, params)
				if err != nil {
					return fmt.Errorf("subtract %s: %w", id, err)
				}
				outID := id + "_bgsub"
				entry, err := store.Save(cmd.Context(), outID, result)
				if err != nil {
					return err
				}
				logger.Info("background subtracted", "input", id, "output", outID)
				rows = append(rows, resultRow{Input: id, Output: entry.ID, UID: entry.UID})
			}

			if jsonOut {
				return writeJSON(cmd, rows)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{row.Input, row.Output, row.UID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"INPUT", "OUTPUT", "UID"},
				tableRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&backgroundID, "background", "b", "", "Catalog id of the background payload")
	cmd.Flags().StringVar(&matchMode, "match-mode", "", "Channel matching mode (by_key, by_index)")
	cmd.Flags().StringVar(&missingPolicy, "missing-channel-policy", "", "Unmatched channel policy (skip, error)")
	cmd.Flags().Float64Var(&bgScale, "bg-scale", 1.0, "Scale applied to background samples")
	cmd.Flags().Float64Var(&expScale, "exp-scale", 1.0, "Scale applied to experiment samples")
	cmd.Flags().StringVar(&timeAlign, "time-align", "", "Timebase alignment (require_equal, interp_bg_to_exp)")
	cmd.Flags().BoolVar(&noOriginal, "no-store-original", false, "Do not snapshot original channels on the result")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not append a history entry to the result")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	_ = cmd.MarkFlagRequired("background")
	return cmd
}
