// Package host defines the boundary between rangeui and the mutable tree it
// renders into.
//
// The library never manipulates a host tree directly. Element and text node
// creation, attribute writes, event wiring and positional edits all go through
// Host and Anchor. An Anchor is a contiguous, possibly empty, run of siblings
// under one parent. It is the unit of mounting and patching: replacing the
// content of an anchor leaves every other anchor in the document where it was.
//
// pkg/memhost provides an in-memory implementation used by tests, the CLI and
// the preview server.
package host
