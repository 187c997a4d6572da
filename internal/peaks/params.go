// Package peaks implements the candidate peak detection operator:
// per-channel noise estimation, thresholding, contiguous-region extraction,
// dead-time deduplication, and annotation of the payload with discovered
// candidates. Inputs are never mutated.
package peaks

import (
	"fmt"

	"wavebench/internal/payload"
)

// Polarity selects the transform applied to a channel before detection.
type Polarity string

const (
	// PolarityPreserve leaves samples untouched.
	PolarityPreserve Polarity = "preserve"
	// PolarityInvert negates every sample.
	PolarityInvert Polarity = "invert"
	// PolarityAuto estimates the pulse sign from the trace's skew and
	// flips negative-going channels.
	PolarityAuto Polarity = "auto"
	// PolarityNormalized currently behaves like PolarityPreserve; the name
	// reserves an intended future normalization step.
	PolarityNormalized Polarity = "normalized"
)

// NoiseMethod selects the per-channel noise estimator.
type NoiseMethod string

const (
	// NoiseMAD is 1.4826 times the median absolute deviation from the
	// median, a robust sigma estimator.
	NoiseMAD NoiseMethod = "mad"
	// NoiseRMS is the root-mean-square deviation from the mean over the
	// whole trace.
	NoiseRMS NoiseMethod = "rms"
	// NoiseStdPretrigger is the standard deviation restricted to samples
	// whose time falls inside PretriggerTimeRange (inclusive bounds).
	NoiseStdPretrigger NoiseMethod = "std_pretrigger"
)

// TimeRange is an inclusive [Lo, Hi] time window.
type TimeRange struct {
	Lo float64
	Hi float64
}

// Params configures one detection call.
type Params struct {
	TimePath            string
	ChannelsPath        string
	ChannelKeys         []string
	Polarity            Polarity
	NoiseMethod         NoiseMethod
	PretriggerTimeRange *TimeRange
	ThresholdSigma      float64
	MinDistanceSamples  int
	MinWidthSamples     int
	MaxPeaksPerChannel  int
	RejectSaturated     bool
	SaturationLevel     *float64
	StoreRegions        bool
	StoreSNR            bool
}

// DefaultParams returns the documented defaults: all channels, normalized
// polarity, MAD noise, 5 sigma threshold, 20-sample dead time, regions and
// SNR stored. MaxPeaksPerChannel zero means uncapped.
func DefaultParams() Params {
	return Params{
		TimePath:           "data.time",
		ChannelsPath:       "data.channels",
		Polarity:           PolarityNormalized,
		NoiseMethod:        NoiseMAD,
		ThresholdSigma:     5.0,
		MinDistanceSamples: 20,
		MinWidthSamples:    1,
		StoreRegions:       true,
		StoreSNR:           true,
	}
}

// Validate rejects invalid enumerated values before any data is touched.
func (p Params) Validate() error {
	switch p.Polarity {
	case PolarityPreserve, PolarityInvert, PolarityAuto, PolarityNormalized:
	default:
		return fmt.Errorf("unknown polarity: %q", p.Polarity)
	}
	switch p.NoiseMethod {
	case NoiseMAD, NoiseRMS:
	case NoiseStdPretrigger:
		if p.PretriggerTimeRange == nil {
			return fmt.Errorf("pretrigger_time_range must be set for std_pretrigger noise estimation")
		}
	default:
		return fmt.Errorf("unsupported noise estimation method: %q", p.NoiseMethod)
	}
	return nil
}

// value snapshots the params for the events record and history entry.
func (p Params) value() payload.Map {
	out := payload.Map{
		"time_path":            payload.String(p.TimePath),
		"channels_path":        payload.String(p.ChannelsPath),
		"polarity":             payload.String(p.Polarity),
		"noise_method":         payload.String(p.NoiseMethod),
		"threshold_sigma":      payload.Number(p.ThresholdSigma),
		"min_distance_samples": payload.Number(float64(p.MinDistanceSamples)),
		"min_width_samples":    payload.Number(float64(p.MinWidthSamples)),
		"reject_saturated":     payload.Bool(p.RejectSaturated),
		"store_regions":        payload.Bool(p.StoreRegions),
		"store_snr":            payload.Bool(p.StoreSNR),
	}
	if len(p.ChannelKeys) > 0 {
		out["channel_keys"] = payload.Strings(p.ChannelKeys)
	}
	if p.PretriggerTimeRange != nil {
		out["pretrigger_time_range"] = payload.Array{p.PretriggerTimeRange.Lo, p.PretriggerTimeRange.Hi}
	}
	if p.MaxPeaksPerChannel > 0 {
		out["max_peaks_per_channel"] = payload.Number(float64(p.MaxPeaksPerChannel))
	}
	if p.SaturationLevel != nil {
		out["saturation_level"] = payload.Number(*p.SaturationLevel)
	}
	return out
}
