package peaks

import (
	"fmt"
	"math"
	"sort"

	"wavebench/internal/identity"
	"wavebench/internal/paths"
	"wavebench/internal/payload"
	"wavebench/internal/transform"
)

const opName = "detect_candidate_peaks"

// Detect runs candidate peak detection over the selected channels of a
// payload and returns a fresh payload annotated under
// events.candidate_peaks. The input is never mutated, and a history entry
// is always appended.
func Detect(p payload.Map, params Params) (payload.Map, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	timeValue, err := paths.Resolve(p, params.TimePath)
	if err != nil {
		return nil, transform.Specf("time path resolution failed: %v", err)
	}
	t, ok := payload.Numeric(timeValue)
	if !ok {
		return nil, fmt.Errorf("expected numeric sequence at %s, got %s", params.TimePath, payload.TypeName(timeValue))
	}

	channelsValue, err := paths.Resolve(p, params.ChannelsPath)
	if err != nil {
		return nil, transform.Specf("channels path resolution failed: %v", err)
	}
	channels, ok := channelsValue.(payload.Map)
	if !ok {
		return nil, fmt.Errorf("expected mapping of channels at %s, got %s", params.ChannelsPath, payload.TypeName(channelsValue))
	}

	keys := params.ChannelKeys
	if len(keys) == 0 {
		keys = channels.SortedKeys()
	}

	byChannel := payload.Map{}
	for _, key := range keys {
		raw, present := channels[key]
		if !present {
			continue
		}
		yRaw, ok := payload.Numeric(raw)
		if !ok {
			return nil, fmt.Errorf("channel %q is not a numeric sequence", key)
		}
		if len(yRaw) != len(t) {
			return nil, fmt.Errorf("channel %q length %d does not match time length %d", key, len(yRaw), len(t))
		}

		record := detectChannel(yRaw, t, params)
		byChannel[key] = record
	}

	result := p.Clone()
	events, ok := payload.EnsureMap(result, payload.EventsKey)
	if !ok {
		return nil, fmt.Errorf("events is not a mapping on the payload")
	}
	events["candidate_peaks"] = payload.Map{
		"by_channel": byChannel,
		"params":     params.value(),
	}

	meta, ok := payload.EnsureMap(result, payload.MetaKey)
	if !ok {
		return nil, fmt.Errorf("meta is not a mapping on the payload")
	}
	outUID := ensureUID(result, meta)

	payload.AppendHistory(result, payload.Map{
		"op_name":    payload.String(opName),
		"params":     params.value(),
		"timestamp":  payload.String(payload.Timestamp()),
		"output_uid": payload.String(outUID),
	})

	return result, nil
}

func detectChannel(yRaw, t []float64, params Params) payload.Map {
	y := yRaw
	switch params.Polarity {
	case PolarityInvert:
		y = scaled(yRaw, -1)
	case PolarityAuto:
		if sign := estimatePolarity(yRaw); sign < 0 {
			y = scaled(yRaw, -1)
		}
	case PolarityPreserve, PolarityNormalized:
		// normalized is preserve today; the distinct name is reserved.
	}

	noise := estimateNoise(y, t, params.NoiseMethod, params.PretriggerTimeRange)
	threshold := math.Inf(1)
	if noise > 0 && !math.IsNaN(noise) {
		threshold = params.ThresholdSigma * noise
	}

	mask := make([]bool, len(y))
	for i, v := range y {
		mask[i] = v > threshold
	}

	var candidates []peak
	for _, reg := range findRegions(mask) {
		if reg.end-reg.start < params.MinWidthSamples {
			continue
		}
		// First-occurring maximum wins ties.
		iPeak := reg.start
		for i := reg.start + 1; i < reg.end; i++ {
			if y[i] > y[iPeak] {
				iPeak = i
			}
		}
		amp := y[iPeak]
		snr := math.Inf(1)
		if noise > 0 {
			snr = amp / noise
		}
		candidates = append(candidates, peak{
			index:       iPeak,
			time:        t[iPeak],
			amp:         amp,
			snr:         snr,
			regionStart: reg.start,
			regionEnd:   reg.end,
		})
	}

	found := applyDeadTime(candidates, params.MinDistanceSamples)

	if params.RejectSaturated && params.SaturationLevel != nil {
		kept := found[:0]
		for _, pk := range found {
			if pk.amp < *params.SaturationLevel {
				kept = append(kept, pk)
			}
		}
		found = kept
	}

	if params.MaxPeaksPerChannel > 0 && len(found) > params.MaxPeaksPerChannel {
		sort.SliceStable(found, func(i, j int) bool { return found[i].amp > found[j].amp })
		found = found[:params.MaxPeaksPerChannel]
		sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })
	}

	indexes := make(payload.Array, len(found))
	times := make(payload.Array, len(found))
	amps := make(payload.Array, len(found))
	for i, pk := range found {
		indexes[i] = float64(pk.index)
		times[i] = pk.time
		amps[i] = pk.amp
	}

	record := payload.Map{
		"i":         indexes,
		"t":         times,
		"amp":       amps,
		"noise":     payload.Number(noise),
		"threshold": payload.Number(threshold),
	}
	if params.StoreSNR {
		snrs := make(payload.Array, len(found))
		for i, pk := range found {
			snrs[i] = pk.snr
		}
		record["snr"] = snrs
	}
	if params.StoreRegions {
		starts := make(payload.Array, len(found))
		ends := make(payload.Array, len(found))
		for i, pk := range found {
			starts[i] = float64(pk.regionStart)
			ends[i] = float64(pk.regionEnd)
		}
		record["region_start"] = starts
		record["region_end"] = ends
	}
	return record
}

func scaled(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = factor * v
	}
	return out
}

func ensureUID(p payload.Map, meta payload.Map) string {
	if existing, ok := meta[payload.UIDKey]; ok && existing != nil {
		return identity.Stringify(existing)
	}
	uid := identity.Compute(p, identity.OperatorDefault())
	meta[payload.UIDKey] = payload.String(uid)
	return uid
}
