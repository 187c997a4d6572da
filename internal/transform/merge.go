package transform

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"wavebench/internal/identity"
	"wavebench/internal/paths"
	"wavebench/internal/payload"
)

// Merge fuses the target mappings of an ordered, non-empty sequence of
// payloads into one payload. The base is a deep copy of the first input;
// every payload (including the first) contributes its target entries in
// sorted key order under the configured collision policy. A provenance list
// of {uid, original_key, final_key} records every placement in call order
// and is written at spec.SourceMapPath.
func Merge(inputs []payload.Map, spec MergeSpec) (payload.Map, error) {
	if len(inputs) == 0 {
		return nil, errorf("no payloads provided for merge")
	}
	spec = spec.withDefaults()
	switch spec.Mode {
	case MergeDictUnion:
	case MergeStack, MergeConcat:
		return nil, Specf("merge mode %q is reserved and not implemented", spec.Mode)
	default:
		return nil, Specf("unsupported merge mode: %q", spec.Mode)
	}

	targetTokens, err := paths.Parse(spec.TargetPath)
	if err != nil {
		return nil, err
	}
	sourceMapTokens, err := paths.Parse(spec.SourceMapPath)
	if err != nil {
		return nil, err
	}

	idSpec := identity.Default()
	if spec.IDSpec != nil {
		idSpec = *spec.IDSpec
	}

	base := inputs[0].Clone()
	baseTarget, err := paths.ResolveTokens(base, targetTokens)
	if err != nil {
		return nil, err
	}
	if _, ok := baseTarget.(payload.Map); !ok {
		return nil, errorf("expected mapping at %s, found %s", spec.TargetPath, payload.TypeName(baseTarget))
	}

	var timeRef payload.Value
	if spec.RequireSameTimebase {
		timeRef, err = paths.Resolve(base, spec.TimePath)
		if err != nil {
			return nil, err
		}
	}

	merged := payload.Map{}
	provenance := payload.List{}

	for _, in := range inputs {
		uid := identity.Compute(in, idSpec)

		source, err := paths.ResolveTokens(in, targetTokens)
		if err != nil {
			return nil, err
		}
		sourceMap, ok := source.(payload.Map)
		if !ok {
			return nil, errorf("expected mapping at %s, found %s", spec.TargetPath, payload.TypeName(source))
		}

		if spec.RequireSameTimebase {
			current, err := paths.Resolve(in, spec.TimePath)
			if err != nil {
				return nil, err
			}
			if !sameTimebase(timeRef, current) {
				return nil, errorf("timebase mismatch across payloads")
			}
		}

		for _, key := range sourceMap.SortedKeys() {
			finalKey, err := resolveCollision(spec, key, uid, merged)
			if err != nil {
				return nil, err
			}
			merged[finalKey] = sourceMap[key]
			provenance = append(provenance, payload.Map{
				"uid":          payload.String(uid),
				"original_key": payload.String(key),
				"final_key":    payload.String(finalKey),
			})
		}
	}

	out, err := paths.Set(base, targetTokens, merged)
	if err != nil {
		return nil, err
	}
	out, err = paths.Set(out, sourceMapTokens, provenance)
	if err != nil {
		return nil, err
	}
	return out.(payload.Map), nil
}

func resolveCollision(spec MergeSpec, key, uid string, existing payload.Map) (string, error) {
	_, taken := existing[key]
	switch spec.Collision {
	case CollisionFail:
		if taken {
			return "", collisionErr(key, uid, "collision on key %q for uid %q", key, uid)
		}
		return key, nil
	case CollisionAttachID:
		// The template is applied to every entry, not only colliding ones,
		// so the merged mapping uniformly carries source attribution.
		renamed := strings.NewReplacer("{key}", key, "{uid}", uid).Replace(spec.CollisionTemplate)
		if _, stillTaken := existing[renamed]; stillTaken {
			return "", collisionErr(key, uid, "collision persists after renaming key %q for uid %q", key, uid)
		}
		return renamed, nil
	case CollisionOverwrite:
		return key, nil
	case CollisionSuffixCounter:
		candidate := key
		for counter := 1; ; counter++ {
			if _, stillTaken := existing[candidate]; !stillTaken {
				return candidate, nil
			}
			candidate = fmt.Sprintf("%s%s%d", key, spec.SuffixSeparator, counter)
		}
	default:
		return "", Specf("unknown collision policy: %q", spec.Collision)
	}
}

// sameTimebase is the exact elementwise equality gate: numeric sequences
// compare sample-for-sample, anything else structurally.
func sameTimebase(ref, current payload.Value) bool {
	refArr, refNumeric := payload.Numeric(ref)
	curArr, curNumeric := payload.Numeric(current)
	if refNumeric && curNumeric {
		return len(refArr) == len(curArr) && floats.Equal(refArr, curArr)
	}
	return payload.Equal(ref, current)
}
