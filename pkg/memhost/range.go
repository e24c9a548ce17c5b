package memhost

import (
	"fmt"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
)

// Range is a live run of siblings [start, end) under container.
type Range struct {
	doc       *Document
	container *Node
	start     int
	end       int
}

var _ host.Anchor = (*Range)(nil)

// Container returns the parent node the range lives in.
func (r *Range) Container() *Node { return r.container }

// Bounds returns the current start and end offsets.
func (r *Range) Bounds() (start, end int) { return r.start, r.end }

// Collapsed reports whether the range is empty.
func (r *Range) Collapsed() bool { return r.start == r.end }

// Clear implements host.Anchor.
func (r *Range) Clear() error {
	for r.end > r.start {
		r.doc.remove(r.container.children[r.end-1])
	}
	return nil
}

// Replace implements host.Anchor.
//
// The new node goes in before the old content is removed, so an empty
// neighbouring range at either edge keeps its side of the new node.
func (r *Range) Replace(n host.Node) error {
	node, err := r.doc.node(n)
	if err != nil {
		return err
	}
	if node.parent == r.container {
		if i := node.index(); i >= r.start && i < r.end {
			// Already inside: drop everything else around it.
			for r.end-1 > i {
				r.doc.remove(r.container.children[r.end-1])
			}
			for r.start < i {
				r.doc.remove(r.container.children[r.start])
				i--
			}
			return nil
		}
	}
	at := r.start
	if err := r.doc.insert(r.container, at, node); err != nil {
		return err
	}
	// insert may have shifted the range when node left the same container.
	at = node.index()
	r.start = at
	if r.end <= at {
		r.end = at + 1
	}
	for r.end > at+1 {
		r.doc.remove(r.container.children[r.end-1])
	}
	return nil
}

// After implements host.Anchor.
func (r *Range) After() (host.Anchor, error) {
	if r.end > len(r.container.children) {
		return nil, errors.New("E202").WithDetail(fmt.Sprintf("range end %d past %d children", r.end, len(r.container.children)))
	}
	return r.doc.track(&Range{doc: r.doc, container: r.container, start: r.end, end: r.end}), nil
}

// Nodes implements host.Anchor.
func (r *Range) Nodes() []host.Node {
	out := make([]host.Node, 0, r.end-r.start)
	for _, c := range r.container.children[r.start:r.end] {
		out = append(out, c)
	}
	return out
}

// String returns a debug representation of the range.
func (r *Range) String() string {
	return fmt.Sprintf("Range(<%s#%d> [%d, %d))", r.container.tag, r.container.id, r.start, r.end)
}
