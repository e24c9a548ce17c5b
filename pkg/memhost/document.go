package memhost

import (
	"fmt"
	"sync"
	"weak"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
)

// Document is an in-memory host tree. It implements host.Host.
//
// A Document is not safe for concurrent mutation; callers that share one
// across goroutines must serialize access. Subscribing and reading the
// journal are safe at any time.
type Document struct {
	body   *Node
	nextID int

	// ranges holds every live range created against this document. Entries
	// whose range has been collected are pruned on the next update.
	ranges []weak.Pointer[Range]

	mu          sync.Mutex
	journal     []Mutation
	count       int
	subscribers map[int]func(Mutation)
	nextSub     int
}

var _ host.Host = (*Document)(nil)

// NewDocument creates an empty document with a body element as its root.
func NewDocument() *Document {
	d := &Document{subscribers: make(map[int]func(Mutation))}
	d.body = d.newNode(ElementNode)
	d.body.tag = "body"
	return d
}

// Body returns the document's root element.
func (d *Document) Body() *Node { return d.body }

func (d *Document) newNode(typ NodeType) *Node {
	d.nextID++
	return &Node{id: d.nextID, typ: typ, doc: d}
}

// CreateElement implements host.Host.
func (d *Document) CreateElement(tag string) (host.Node, error) {
	if tag == "" {
		return nil, errors.New("E201").WithDetail("empty tag name")
	}
	n := d.newNode(ElementNode)
	n.tag = tag
	return n, nil
}

// CreateText implements host.Host.
func (d *Document) CreateText(content string) (host.Node, error) {
	n := d.newNode(TextNode)
	n.text = content
	return n, nil
}

// SetAttribute implements host.Host.
func (d *Document) SetAttribute(el host.Node, name, value string) error {
	n, err := d.element(el)
	if err != nil {
		return err
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	if _, ok := n.attrs[name]; !ok {
		n.attrNames = append(n.attrNames, name)
	}
	n.attrs[name] = value
	d.record(Mutation{Op: OpSetAttr, Target: n.id, Name: name, Value: value})
	return nil
}

// AddEventListener implements host.Host.
func (d *Document) AddEventListener(el host.Node, event string, l host.Listener) error {
	n, err := d.element(el)
	if err != nil {
		return err
	}
	if l == nil {
		return errors.New("E201").WithDetail(fmt.Sprintf("nil listener for %q", event))
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]host.Listener)
	}
	n.listeners[event] = append(n.listeners[event], l)
	d.record(Mutation{Op: OpListen, Target: n.id, Name: event})
	return nil
}

// Range implements host.Host.
func (d *Document) Range(parent host.Node, start, end int) (host.Anchor, error) {
	r, err := d.NewRange(parent, start, end)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewRange is Range with a concrete result type.
func (d *Document) NewRange(parent host.Node, start, end int) (*Range, error) {
	p, err := d.element(parent)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > end || end > len(p.children) {
		return nil, errors.New("E202").WithDetail(
			fmt.Sprintf("range [%d, %d) over %d children of <%s>", start, end, len(p.children), p.tag))
	}
	return d.track(&Range{doc: d, container: p, start: start, end: end}), nil
}

// ChildCount implements host.Host.
func (d *Document) ChildCount(parent host.Node) int {
	p, err := d.node(parent)
	if err != nil {
		return 0
	}
	return len(p.children)
}

// NodeByID finds a node connected under the body by its identifier.
func (d *Document) NodeByID(id int) (*Node, bool) {
	var found *Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if n.id == id {
			found = n
			return true
		}
		for _, c := range n.children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.body)
	return found, found != nil
}

// Dispatch delivers an event to target's listeners and then bubbles it to each
// ancestor. It returns the number of listeners invoked.
func (d *Document) Dispatch(target *Node, event, value string) (int, error) {
	if target == nil || target.doc != d {
		return 0, errors.New("E203")
	}
	ev := host.Event{Type: event, Target: target, Value: value}
	invoked := 0
	for n := target; n != nil; n = n.parent {
		// Copy so listeners registered during dispatch wait for the next event.
		ls := append([]host.Listener(nil), n.listeners[event]...)
		for _, l := range ls {
			l(ev)
			invoked++
		}
	}
	return invoked, nil
}

func (d *Document) node(v host.Node) (*Node, error) {
	n, ok := v.(*Node)
	if !ok || n == nil || n.doc != d {
		return nil, errors.New("E203").WithDetail(fmt.Sprintf("got %T", v))
	}
	return n, nil
}

func (d *Document) element(v host.Node) (*Node, error) {
	n, err := d.node(v)
	if err != nil {
		return nil, err
	}
	if n.typ != ElementNode {
		return nil, errors.New("E204")
	}
	return n, nil
}

// insert places child at index i of parent, detaching it from any previous
// parent first, and updates live ranges.
func (d *Document) insert(parent *Node, i int, child *Node) error {
	if parent.typ != ElementNode {
		return errors.New("E204")
	}
	if child.contains(parent) {
		return errors.New("E201").WithDetail("cannot insert a node into its own subtree")
	}
	if child.parent != nil {
		if child.parent == parent && child.index() < i {
			i--
		}
		d.remove(child)
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[i+1:], parent.children[i:])
	parent.children[i] = child
	child.parent = parent

	d.eachRange(func(r *Range) {
		if r.container != parent {
			return
		}
		if r.start > i {
			r.start++
		}
		if r.end > i {
			r.end++
		}
	})
	d.record(Mutation{Op: OpInsert, Target: child.id, Parent: parent.id, Index: i})
	return nil
}

// remove detaches child from its parent and updates live ranges.
func (d *Document) remove(child *Node) {
	parent := child.parent
	if parent == nil {
		return
	}
	i := child.index()
	parent.children = append(parent.children[:i], parent.children[i+1:]...)
	child.parent = nil

	d.eachRange(func(r *Range) {
		switch {
		case child.contains(r.container):
			r.container, r.start, r.end = parent, i, i
		case r.container == parent:
			if r.start > i {
				r.start--
			}
			if r.end > i {
				r.end--
			}
		}
	})
	d.record(Mutation{Op: OpRemove, Target: child.id, Parent: parent.id, Index: i})
}

func (d *Document) track(r *Range) *Range {
	d.ranges = append(d.ranges, weak.Make(r))
	return r
}

// eachRange calls fn for every live range and drops collected entries.
func (d *Document) eachRange(fn func(r *Range)) {
	live := d.ranges[:0]
	for _, wp := range d.ranges {
		r := wp.Value()
		if r == nil {
			continue
		}
		fn(r)
		live = append(live, wp)
	}
	clear(d.ranges[len(live):])
	d.ranges = live
}
