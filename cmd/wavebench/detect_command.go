package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wavebench/internal/paths"
	"wavebench/internal/payload"
	"wavebench/internal/peaks"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var (
		channels       []string
		polarity       string
		noiseMethod    string
		pretrigger     string
		thresholdSigma float64
		minDistance    int
		minWidth       int
		maxPeaks       int
		saturation     float64
		jsonOut        bool
	)

	cmd := &cobra.Command{
		Use:   "detect <id>...",
		Short: "Detect candidate peaks in payload channels",
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

			params := detectParamsFromConfig(cfg)
			if len(channels) > 0 {
				params.ChannelKeys = channels
			}
			if cmd.Flags().Changed("polarity") {
				params.Polarity = peaks.Polarity(polarity)
			}
			if cmd.Flags().Changed("noise-method") {
				params.NoiseMethod = peaks.NoiseMethod(noiseMethod)
			}
			if cmd.Flags().Changed("pretrigger") {
				timeRange, err := parseTimeRange(pretrigger)
				if err != nil {
					return err
				}
				params.PretriggerTimeRange = &timeRange
			}
			if cmd.Flags().Changed("threshold-sigma") {
				params.ThresholdSigma = thresholdSigma
			}
			if cmd.Flags().Changed("min-distance") {
				params.MinDistanceSamples = minDistance
			}
			if cmd.Flags().Changed("min-width") {
				params.MinWidthSamples = minWidth
			}
			if cmd.Flags().Changed("max-peaks") {
				params.MaxPeaksPerChannel = maxPeaks
			}
			if cmd.Flags().Changed("saturation") {
				params.RejectSaturated = true
				params.SaturationLevel = &saturation
			}
			if err := params.Validate(); err != nil {
				return err
			}

			var rows []detectRow
			for _, id := range args {
				p, err := store.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				result, err := peaks.Detect(p, params)
				if err != nil {
					return fmt.Errorf("detect %s: %w", id, err)
				}
				outID := id + "_peaks"
				if _, err := store.Save(cmd.Context(), outID, result); err != nil {
					return err
				}
				logger.Info("peaks detected", "input", id, "output", outID)
				rows = append(rows, detectRows(id, result)...)
			}

			if jsonOut {
				return writeJSON(cmd, rows)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					row.Payload,
					row.Channel,
					strconv.Itoa(row.Peaks),
					row.MaxAmp,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"PAYLOAD", "CHANNEL", "PEAKS", "MAX AMP"},
				tableRows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&channels, "channels", nil, "Restrict detection to these channel keys")
	cmd.Flags().StringVar(&polarity, "polarity", "", "Pulse polarity handling (preserve, invert, auto, normalized)")
	cmd.Flags().StringVar(&noiseMethod, "noise-method", "", "Noise estimator (mad, rms, std_pretrigger)")
	cmd.Flags().StringVar(&pretrigger, "pretrigger", "", "Pretrigger time window as lo,hi")
	cmd.Flags().Float64Var(&thresholdSigma, "threshold-sigma", 5.0, "Detection threshold in noise sigmas")
	cmd.Flags().IntVar(&minDistance, "min-distance", 20, "Dead time between peaks in samples")
	cmd.Flags().IntVar(&minWidth, "min-width", 1, "Minimum region width in samples")
	cmd.Flags().IntVar(&maxPeaks, "max-peaks", 0, "Cap on peaks per channel (0 = uncapped)")
	cmd.Flags().Float64Var(&saturation, "saturation", 0, "Reject peaks at or above this absolute level")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func parseTimeRange(s string) (peaks.TimeRange, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return peaks.TimeRange{}, fmt.Errorf("invalid time range %q: want lo,hi", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return peaks.TimeRange{}, fmt.Errorf("invalid time range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return peaks.TimeRange{}, fmt.Errorf("invalid time range %q: %w", s, err)
	}
	return peaks.TimeRange{Lo: lo, Hi: hi}, nil
}

type detectRow struct {
	Payload string `json:"payload"`
	Channel string `json:"channel"`
	Peaks   int    `json:"peaks"`
	MaxAmp  string `json:"max_amp"`
}

// detectRows flattens the per-channel candidate records into table rows.
func detectRows(id string, result payload.Map) []detectRow {
	byChannel, err := paths.Resolve(result, "events.candidate_peaks.by_channel")
	if err != nil {
		return nil
	}
	channels, ok := byChannel.(payload.Map)
	if !ok {
		return nil
	}

	rows := make([]detectRow, 0, len(channels))
	for _, key := range channels.SortedKeys() {
		row := detectRow{Payload: id, Channel: key, MaxAmp: "-"}
		if record, ok := channels[key].(payload.Map); ok {
			if amps, ok := payload.Numeric(record["amp"]); ok {
				row.Peaks = len(amps)
				if len(amps) > 0 {
					maxAmp := amps[0]
					for _, a := range amps[1:] {
						if a > maxAmp {
							maxAmp = a
						}
					}
					row.MaxAmp = formatFloat(maxAmp)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
