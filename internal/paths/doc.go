// Package paths parses dotted/bracketed path strings and resolves or sets
// values inside payload trees. Paths look like "data.channels" or
// "data.channels['A']"; traversal descends through mappings only, never
// through lists. Set is copy-on-write: it returns a new root that shares
// every subtree the path did not touch.
package paths
