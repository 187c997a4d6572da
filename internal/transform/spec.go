package transform

import "wavebench/internal/identity"

// SplitMode selects what Split iterates at the source path.
type SplitMode string

const (
	// SplitDictKeys iterates the key/value pairs of a mapping.
	SplitDictKeys SplitMode = "dict_keys"
	// SplitListItems iterates the index/value pairs of a list.
	SplitListItems SplitMode = "list_items"
)

// CopyPolicy selects how Split copies the parent payload into each child.
type CopyPolicy string

const (
	// CopyShallow copies only the top level; children share nested
	// containers with the parent until the target path is overwritten.
	CopyShallow CopyPolicy = "shallow"
	// CopyDeep copies the full tree.
	CopyDeep CopyPolicy = "deep"
)

// SplitSpec configures Split. Pure configuration, no runtime state.
type SplitSpec struct {
	// SourcePath addresses the container to partition.
	SourcePath string
	// Mode declares the container type at SourcePath.
	Mode SplitMode
	// ChildTargetPath is where each child receives its single-entry
	// container. Empty means SourcePath.
	ChildTargetPath string
	// IDSpec computes the parent's base identifier. Nil means the default
	// spec over meta.__uid__/file/shot/scope.
	IDSpec *identity.Spec
	// ChildKeyTemplate formats the generated child key; {key} expands to
	// the item's own key or index and {pid} to the parent base identifier.
	// Empty means "{key}".
	ChildKeyTemplate string
	// AttachIDPath is where the final child id is written inside each
	// child. Empty means "meta.__uid__".
	AttachIDPath string
	// Copy is the copy policy for child payloads. Empty means shallow.
	Copy CopyPolicy
}

// NewSplitSpec returns a SplitSpec for sourcePath/mode with the documented
// defaults filled in.
func NewSplitSpec(sourcePath string, mode SplitMode) SplitSpec {
	return SplitSpec{
		SourcePath:       sourcePath,
		Mode:             mode,
		ChildKeyTemplate: "{key}",
		AttachIDPath:     "meta.__uid__",
		Copy:             CopyShallow,
	}
}

func (s SplitSpec) withDefaults() SplitSpec {
	if s.ChildTargetPath == "" {
		s.ChildTargetPath = s.SourcePath
	}
	if s.ChildKeyTemplate == "" {
		s.ChildKeyTemplate = "{key}"
	}
	if s.AttachIDPath == "" {
		s.AttachIDPath = "meta.__uid__"
	}
	if s.Copy == "" {
		s.Copy = CopyShallow
	}
	return s
}

// MergeMode selects how Merge folds target entries together.
type MergeMode string

const (
	// MergeDictUnion places every entry into one union mapping, resolving
	// duplicate keys per the collision policy.
	MergeDictUnion MergeMode = "dict_union"
	// MergeStack is reserved for future numeric-array stacking.
	MergeStack MergeMode = "stack"
	// MergeConcat is reserved for future numeric-array concatenation.
	MergeConcat MergeMode = "concat"
)

// CollisionPolicy selects how Merge resolves duplicate keys.
type CollisionPolicy string

const (
	// CollisionFail rejects any duplicate key.
	CollisionFail CollisionPolicy = "error"
	// CollisionAttachID renames duplicates via the collision template;
	// a collision after renaming still fails.
	CollisionAttachID CollisionPolicy = "attach_id"
	// CollisionOverwrite keeps the original key, later values replacing
	// earlier ones.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionSuffixCounter appends a separator and counter until free.
	CollisionSuffixCounter CollisionPolicy = "suffix_counter"
)

// MergeSpec configures Merge. Pure configuration, no runtime state.
type MergeSpec struct {
	// TargetPath addresses the mapping merged across payloads.
	TargetPath string
	// Mode is the fold mode; only MergeDictUnion is implemented.
	Mode MergeMode
	// IDSpec computes each payload's identifier for provenance and
	// collision renaming. Nil means the default spec.
	IDSpec *identity.Spec
	// Collision is the duplicate-key policy.
	Collision CollisionPolicy
	// CollisionTemplate formats renamed keys for CollisionAttachID;
	// {key} and {uid} expand.
	CollisionTemplate string
	// RequireSameTimebase gates the merge on every payload's TimePath
	// value being elementwise equal to the first payload's.
	RequireSameTimebase bool
	// TimePath addresses the time axis checked by the timebase gate.
	TimePath string
	// SourceMapPath is where the provenance list is written.
	SourceMapPath string
	// SuffixSeparator joins key and counter for CollisionSuffixCounter.
	SuffixSeparator string
}

// NewMergeSpec returns a MergeSpec for targetPath/mode with the documented
// defaults: attach_id collisions, "{key}@{uid}" template, timebase gate on.
func NewMergeSpec(targetPath string, mode MergeMode) MergeSpec {
	return MergeSpec{
		TargetPath:          targetPath,
		Mode:                mode,
		Collision:           CollisionAttachID,
		CollisionTemplate:   "{key}@{uid}",
		RequireSameTimebase: true,
		TimePath:            "data.time",
		SourceMapPath:       "meta.__sources__",
		SuffixSeparator:     "_",
	}
}

func (s MergeSpec) withDefaults() MergeSpec {
	if s.Collision == "" {
		s.Collision = CollisionAttachID
	}
	if s.CollisionTemplate == "" {
		s.CollisionTemplate = "{key}@{uid}"
	}
	if s.TimePath == "" {
		s.TimePath = "data.time"
	}
	if s.SourceMapPath == "" {
		s.SourceMapPath = "meta.__sources__"
	}
	if s.SuffixSeparator == "" {
		s.SuffixSeparator = "_"
	}
	return s
}
