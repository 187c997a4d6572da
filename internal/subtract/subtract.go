package subtract

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"wavebench/internal/identity"
	"wavebench/internal/paths"
	"wavebench/internal/payload"
)

// timebase closeness tolerance for AlignRequireEqual.
const timeEqualTol = 1e-8

const opName = "background_subtract"

// One subtracts a background payload from an experiment payload and returns
// a fresh result payload. Neither input is mutated.
func One(exp, bg payload.Map, params Params) (payload.Map, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tExp, chExp, err := resolveWaveform(exp, params, "experiment")
	if err != nil {
		return nil, err
	}
	tBg, chBg, err := resolveWaveform(bg, params, "background")
	if err != nil {
		return nil, err
	}

	if params.TimeAlign == AlignRequireEqual {
		if len(tExp) != len(tBg) || !floats.EqualApprox(tExp, tBg, timeEqualTol) {
			return nil, fmt.Errorf("timebases do not match between experiment and background payloads")
		}
	}

	bgUID := payloadUID(bg)

	bgKeys := chBg.SortedKeys()
	resultChannels := payload.Map{}
	var skipped []string

	for idx, expKey := range chExp.SortedKeys() {
		matchKey := ""
		switch params.MatchMode {
		case MatchByKey:
			matchKey = expKey
		case MatchByIndex:
			if idx < len(bgKeys) {
				matchKey = bgKeys[idx]
			}
		}

		outKey := params.ResultChannelPrefix + expKey

		bgValue, matched := chBg[matchKey]
		if matchKey == "" || !matched {
			if params.MissingChannelPolicy == MissingError {
				return nil, fmt.Errorf("missing background channel for experiment channel %q", expKey)
			}
			skipped = append(skipped, expKey)
			resultChannels[outKey] = payload.Clone(chExp[expKey])
			continue
		}

		expValues, ok := payload.Numeric(chExp[expKey])
		if !ok {
			return nil, fmt.Errorf("experiment channel %q is not a numeric sequence", expKey)
		}
		bgValues, ok := payload.Numeric(bgValue)
		if !ok {
			return nil, fmt.Errorf("background channel %q is not a numeric sequence", matchKey)
		}

		if params.TimeAlign == AlignInterpBgToExp {
			bgValues, err = interpLinear(tExp, tBg, bgValues)
			if err != nil {
				return nil, fmt.Errorf("interpolate background channel %q: %w", matchKey, err)
			}
		}
		if len(bgValues) != len(expValues) {
			return nil, fmt.Errorf("channel %q length mismatch: experiment %d, background %d",
				expKey, len(expValues), len(bgValues))
		}

		out := make(payload.Array, len(expValues))
		copy(out, expValues)
		floats.Scale(params.ExpScale, out)
		floats.AddScaled(out, -params.BgScale, bgValues)
		resultChannels[outKey] = out
	}

	outputTokens, err := paths.Parse(params.OutputField)
	if err != nil {
		return nil, err
	}

	result := exp.Clone()
	if err := paths.SetInPlace(result, outputTokens, resultChannels); err != nil {
		return nil, err
	}

	if params.StoreOriginal {
		snapshot := payload.Map{
			"time":     payload.Clone(payload.Array(tExp)),
			"channels": chExp.Clone(),
		}
		if err := paths.SetInPlace(result, []string{payload.MetaKey, "__original__"}, snapshot); err != nil {
			return nil, err
		}
	}

	meta, ok := payload.EnsureMap(result, payload.MetaKey)
	if !ok {
		return nil, fmt.Errorf("meta is not a mapping on the experiment payload")
	}
	outUID := ensureUID(result, meta)
	meta["__background__"] = payload.Map{
		"uid":              payload.String(bgUID),
		"source":           payload.Clone(metaField(bg, "source")),
		"channels_skipped": payload.Strings(skipped),
	}

	if params.RecordHistory {
		payload.AppendHistory(result, payload.Map{
			"op_name":        payload.String(opName),
			"params":         params.value(),
			"background_uid": payload.String(bgUID),
			"timestamp":      payload.String(payload.Timestamp()),
			"output_uid":     payload.String(outUID),
		})
	}

	return result, nil
}

// Many applies One across experiment payloads against one fixed background,
// order-preserving; the first failure propagates.
func Many(exps []payload.Map, bg payload.Map, params Params) ([]payload.Map, error) {
	out := make([]payload.Map, 0, len(exps))
	for _, exp := range exps {
		result, err := One(exp, bg, params)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

func resolveWaveform(p payload.Map, params Params, which string) ([]float64, payload.Map, error) {
	timeValue, err := paths.Resolve(p, params.TimePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s payload missing required data: %w", which, err)
	}
	timeArr, ok := payload.Numeric(timeValue)
	if !ok {
		return nil, nil, fmt.Errorf("%s payload: expected numeric sequence at %s, got %s",
			which, params.TimePath, payload.TypeName(timeValue))
	}

	channelsValue, err := paths.Resolve(p, params.ChannelsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s payload missing required data: %w", which, err)
	}
	channels, ok := channelsValue.(payload.Map)
	if !ok {
		return nil, nil, fmt.Errorf("%s payload: expected mapping at %s, got %s",
			which, params.ChannelsPath, payload.TypeName(channelsValue))
	}
	return timeArr, channels, nil
}

// payloadUID returns the payload's recorded uid or computes one from the
// importer-supplied provenance fields.
func payloadUID(p payload.Map) string {
	if uid, ok := metaField(p, payload.UIDKey).(payload.String); ok && uid != "" {
		return string(uid)
	}
	return identity.Compute(p, identity.OperatorDefault())
}

// ensureUID writes meta.__uid__ when absent and returns the output uid.
func ensureUID(p payload.Map, meta payload.Map) string {
	if existing, ok := meta[payload.UIDKey]; ok && existing != nil {
		return identity.Stringify(existing)
	}
	uid := identity.Compute(p, identity.OperatorDefault())
	meta[payload.UIDKey] = payload.String(uid)
	return uid
}

func metaField(p payload.Map, key string) payload.Value {
	meta, ok := p[payload.MetaKey].(payload.Map)
	if !ok {
		return nil
	}
	return meta[key]
}
