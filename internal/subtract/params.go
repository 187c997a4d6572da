// Package subtract implements the background subtraction operator: align a
// background payload's timebase to an experiment payload, scale and
// subtract matched channels, and record provenance on a fresh output
// payload. Inputs are never mutated.
package subtract

import (
	"fmt"

	"wavebench/internal/payload"
)

// MatchMode selects how experiment channels find their background partner.
type MatchMode string

const (
	// MatchByKey pairs channels sharing the same name.
	MatchByKey MatchMode = "by_key"
	// MatchByIndex pairs channels by position in the background mapping's
	// iteration order, independent of name.
	MatchByIndex MatchMode = "by_index"
)

// MissingChannelPolicy selects what happens to an experiment channel with
// no background partner.
type MissingChannelPolicy string

const (
	// MissingSkip passes the channel through untouched and records it in
	// the skipped list.
	MissingSkip MissingChannelPolicy = "skip"
	// MissingError fails the whole call.
	MissingError MissingChannelPolicy = "error"
)

// TimeAlign selects the timebase alignment policy.
type TimeAlign string

const (
	// AlignRequireEqual demands equal-length, numerically close time axes.
	AlignRequireEqual TimeAlign = "require_equal"
	// AlignInterpBgToExp linearly interpolates background samples onto the
	// experiment time grid, clamping outside the background range.
	AlignInterpBgToExp TimeAlign = "interp_bg_to_exp"
)

// Params configures one background subtraction call.
type Params struct {
	TimePath             string
	ChannelsPath         string
	MatchMode            MatchMode
	MissingChannelPolicy MissingChannelPolicy
	BgScale              float64
	ExpScale             float64
	TimeAlign            TimeAlign
	InterpKind           string
	ResultChannelPrefix  string
	StoreOriginal        bool
	OutputField          string
	RecordHistory        bool
}

// DefaultParams returns the documented defaults: by-key matching, skip
// policy, unit scales, require_equal alignment, snapshot and history on.
func DefaultParams() Params {
	return Params{
		TimePath:             "data.time",
		ChannelsPath:         "data.channels",
		MatchMode:            MatchByKey,
		MissingChannelPolicy: MissingSkip,
		BgScale:              1.0,
		ExpScale:             1.0,
		TimeAlign:            AlignRequireEqual,
		InterpKind:           "linear",
		StoreOriginal:        true,
		OutputField:          "data.channels",
		RecordHistory:        true,
	}
}

// Validate rejects invalid enumerated values before any data is touched.
func (p Params) Validate() error {
	switch p.MatchMode {
	case MatchByKey, MatchByIndex:
	default:
		return fmt.Errorf("unknown match_mode: %q", p.MatchMode)
	}
	switch p.MissingChannelPolicy {
	case MissingSkip, MissingError:
	default:
		return fmt.Errorf("unknown missing_channel_policy: %q", p.MissingChannelPolicy)
	}
	switch p.TimeAlign {
	case AlignRequireEqual, AlignInterpBgToExp:
	default:
		return fmt.Errorf("unknown time_align: %q", p.TimeAlign)
	}
	if p.InterpKind != "" && p.InterpKind != "linear" {
		return fmt.Errorf("unknown interp_kind: %q", p.InterpKind)
	}
	return nil
}

// value snapshots the params for a history entry.
func (p Params) value() payload.Map {
	return payload.Map{
		"time_path":              payload.String(p.TimePath),
		"channels_path":          payload.String(p.ChannelsPath),
		"match_mode":             payload.String(p.MatchMode),
		"missing_channel_policy": payload.String(p.MissingChannelPolicy),
		"bg_scale":               payload.Number(p.BgScale),
		"exp_scale":              payload.Number(p.ExpScale),
		"time_align":             payload.String(p.TimeAlign),
		"interp_kind":            payload.String(p.InterpKind),
		"result_channel_prefix":  payload.String(p.ResultChannelPrefix),
		"store_original":         payload.Bool(p.StoreOriginal),
		"output_field":           payload.String(p.OutputField),
		"record_history":         payload.Bool(p.RecordHistory),
	}
}
