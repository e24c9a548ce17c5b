package host

// Node is an opaque handle on a host tree node.
type Node any

// Event is delivered to listeners registered through AddEventListener.
type Event struct {
	// Type is the lowercased event name, e.g. "click".
	Type string

	// Target is the node the event was dispatched on.
	Target Node

	// Value carries event payload such as an input's value.
	Value string
}

// Listener handles a host event.
type Listener func(Event)

// Host creates host nodes and positions anchors within a host tree.
type Host interface {
	// CreateElement returns a new detached element node.
	CreateElement(tag string) (Node, error)

	// CreateText returns a new detached text node.
	CreateText(content string) (Node, error)

	// SetAttribute sets or replaces a named attribute on an element.
	SetAttribute(el Node, name, value string) error

	// AddEventListener registers l for the named event on el.
	AddEventListener(el Node, event string, l Listener) error

	// Range returns an anchor spanning parent's children [start, end).
	Range(parent Node, start, end int) (Anchor, error)

	// ChildCount returns the number of children of parent.
	ChildCount(parent Node) int
}

// Anchor is a live handle on a contiguous region of the host tree.
//
// Anchors track edits made elsewhere in the document: inserting or removing
// siblings before an anchor shifts it so it keeps denoting the same nodes.
type Anchor interface {
	// Clear removes every node in the region, leaving it empty.
	Clear() error

	// Replace clears the region and inserts n in its place. Afterwards the
	// anchor spans exactly n.
	Replace(n Node) error

	// After returns a new empty anchor positioned immediately after this
	// anchor's region.
	After() (Anchor, error)

	// Nodes returns the nodes currently in the region, in order.
	Nodes() []Node
}
