package transform

import (
	"fmt"
	"strings"

	"wavebench/internal/identity"
	"wavebench/internal/paths"
	"wavebench/internal/payload"
)

// Split partitions one payload into a child payload per item of the
// container at spec.SourcePath. Each child is a copy of the parent (per the
// copy policy) whose target path is overwritten with a single-entry mapping
// holding that item. Child ids are {baseID}{joiner}{itemKey}, de-duplicated
// within the call by a _{n} counter, and written at spec.AttachIDPath.
func Split(p payload.Map, spec SplitSpec) (map[string]payload.Map, error) {
	spec = spec.withDefaults()
	if spec.Mode != SplitDictKeys && spec.Mode != SplitListItems {
		return nil, Specf("unsupported split mode: %q", spec.Mode)
	}

	idSpec := identity.Default()
	if spec.IDSpec != nil {
		idSpec = *spec.IDSpec
	}
	baseID := identity.Compute(p, idSpec)

	source, err := paths.Resolve(p, spec.SourcePath)
	if err != nil {
		return nil, err
	}

	targetTokens, err := paths.Parse(spec.ChildTargetPath)
	if err != nil {
		return nil, err
	}
	attachTokens, err := paths.Parse(spec.AttachIDPath)
	if err != nil {
		return nil, err
	}

	var items []splitItem
	switch spec.Mode {
	case SplitDictKeys:
		sourceMap, ok := source.(payload.Map)
		if !ok {
			return nil, errorf("expected mapping at %s, found %s", spec.SourcePath, payload.TypeName(source))
		}
		for _, key := range sourceMap.SortedKeys() {
			items = append(items, splitItem{key: key, value: sourceMap[key]})
		}
	case SplitListItems:
		sourceList, ok := source.(payload.List)
		if !ok {
			return nil, errorf("expected list at %s, found %s", spec.SourcePath, payload.TypeName(source))
		}
		for i, value := range sourceList {
			items = append(items, splitItem{key: fmt.Sprintf("%d", i), value: value})
		}
	}

	outputs := make(map[string]payload.Map, len(items))
	seen := make(map[string]int)

	for _, item := range items {
		child, err := copyPayload(p, spec.Copy)
		if err != nil {
			return nil, err
		}

		childKey := expandChildKey(spec.ChildKeyTemplate, item.key, baseID)
		container := payload.Map{childKey: item.value}

		childValue, err := paths.Set(child, targetTokens, container)
		if err != nil {
			return nil, err
		}

		childIDBase := baseID + idSpec.Joiner + item.key
		count := seen[childIDBase]
		childID := childIDBase
		if count > 0 {
			childID = fmt.Sprintf("%s_%d", childIDBase, count)
		}
		seen[childIDBase] = count + 1

		childValue, err = paths.Set(childValue, attachTokens, payload.String(childID))
		if err != nil {
			return nil, err
		}

		outputs[childID] = childValue.(payload.Map)
	}

	return outputs, nil
}

type splitItem struct {
	key   string
	value payload.Value
}

func copyPayload(p payload.Map, policy CopyPolicy) (payload.Map, error) {
	switch policy {
	case CopyDeep:
		return p.Clone(), nil
	case CopyShallow:
		return p.ShallowClone(), nil
	default:
		return nil, Specf("unknown copy policy: %q", policy)
	}
}

func expandChildKey(template, key, baseID string) string {
	return strings.NewReplacer("{key}", key, "{pid}", baseID).Replace(template)
}
