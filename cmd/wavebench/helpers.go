package main

import (
	"fmt"
	"strings"

	"wavebench/internal/config"
	"wavebench/internal/paths"
	"wavebench/internal/payload"
	"wavebench/internal/peaks"
	"wavebench/internal/subtract"
)

// payloadSummary captures the table row for one payload.
type payloadSummary struct {
	Channels []string `json:"channels"`
	Samples  int      `json:"samples"`
}

func summarize(p payload.Map) payloadSummary {
	summary := payloadSummary{}
	if timeValue, err := paths.Resolve(p, "data.time"); err == nil {
		if arr, ok := payload.Numeric(timeValue); ok {
			summary.Samples = len(arr)
		}
	}
	if chValue, err := paths.Resolve(p, "data.channels"); err == nil {
		if channels, ok := chValue.(payload.Map); ok {
			summary.Channels = channels.SortedKeys()
		}
	}
	return summary
}

func channelList(summary payloadSummary) string {
	if len(summary.Channels) == 0 {
		return "-"
	}
	return strings.Join(summary.Channels, ",")
}

// subtractParamsFromConfig seeds operator params from the config defaults.
func subtractParamsFromConfig(cfg *config.Config) subtract.Params {
	params := subtract.DefaultParams()
	params.MatchMode = subtract.MatchMode(cfg.Subtract.MatchMode)
	params.MissingChannelPolicy = subtract.MissingChannelPolicy(cfg.Subtract.MissingChannelPolicy)
	params.BgScale = cfg.Subtract.BgScale
	params.ExpScale = cfg.Subtract.ExpScale
	params.TimeAlign = subtract.TimeAlign(cfg.Subtract.TimeAlign)
	params.StoreOriginal = cfg.Subtract.StoreOriginal
	params.RecordHistory = cfg.Subtract.RecordHistory
	return params
}

// detectParamsFromConfig seeds operator params from the config defaults.
func detectParamsFromConfig(cfg *config.Config) peaks.Params {
	params := peaks.DefaultParams()
	params.Polarity = peaks.Polarity(cfg.Detect.Polarity)
	params.NoiseMethod = peaks.NoiseMethod(cfg.Detect.NoiseMethod)
	params.ThresholdSigma = cfg.Detect.ThresholdSigma
	params.MinDistanceSamples = cfg.Detect.MinDistanceSamples
	params.MinWidthSamples = cfg.Detect.MinWidthSamples
	params.StoreRegions = cfg.Detect.StoreRegions
	params.StoreSNR = cfg.Detect.StoreSNR
	return params
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
