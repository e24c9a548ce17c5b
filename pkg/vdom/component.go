package vdom

import (
	"context"
	"reflect"
	"strings"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
)

// Component is a user-defined node. Implementations embed Base and define
// Render:
//
//	type Counter struct{ vdom.Base }
//
//	func (c *Counter) Render() (vdom.Node, error) { ... }
type Component interface {
	Node

	// Render describes the component's output. The Base implementation fails
	// with E101.
	Render() (Node, error)

	// SetAttribute records a prop passed by the parent.
	SetAttribute(name string, value any)

	// AppendChild records a child passed by the parent. Children are opaque
	// payload: Render decides whether and where to use them.
	AppendChild(child Node)

	base() *Base
}

// Constructor creates a fresh component instance. Build accepts it, or any
// func() *T where *T implements Component, as a node type.
type Constructor func() Component

// Base carries the state shared by every component. Embed it by value.
type Base struct {
	self     Component
	rt       *Runtime
	props    Props
	children []Node
	state    any
	anchor   host.Anchor
	last     Node

	// slot is the parent element's resolved-children entry holding this
	// component's output; owner is the component whose Render returned this
	// one directly. Both are rewritten when the component updates on its own.
	slot  *Node
	owner *Base
}

func (b *Base) base() *Base { return b }

// Kind implements Node.
func (b *Base) Kind() Kind { return KindComponent }

// Anchor implements Node. A component mounted by its parent's element shares
// the anchor of its rendered root.
func (b *Base) Anchor() host.Anchor {
	if b.anchor != nil {
		return b.anchor
	}
	if b.last != nil {
		return b.last.Anchor()
	}
	return nil
}

// Render implements Component. Types embedding Base must provide their own.
func (b *Base) Render() (Node, error) {
	return nil, errors.New("E101").
		WithSuggestion("Define a Render() (vdom.Node, error) method on the component type")
}

// SetAttribute implements Component.
func (b *Base) SetAttribute(name string, value any) {
	if b.props == nil {
		b.props = make(Props)
	}
	b.props[name] = value
}

// AppendChild implements Component.
func (b *Base) AppendChild(child Node) {
	b.children = append(b.children, child)
}

// Props returns the props passed by the parent.
func (b *Base) Props() Props { return b.props }

// Prop returns a single prop, or nil.
func (b *Base) Prop(name string) any { return b.props[name] }

// Children returns the children passed by the parent.
func (b *Base) Children() []Node { return b.children }

// State returns the current state.
func (b *Base) State() any { return b.state }

// Resolved returns the tree produced by the component's last render.
func (b *Base) Resolved() Node { return b.last }

// Mounted reports whether the component's output is in a host tree.
func (b *Base) Mounted() bool {
	return b.last != nil && b.Anchor() != nil
}

// SetState merges partial into the component state and renders again.
//
// When the current state is nil or not a map[string]any, partial replaces it.
// Otherwise partial is merged key by key: nested maps merge recursively,
// everything else is overwritten. Slices are leaves.
//
// The re-render is synchronous. A call made while a render pass is already
// running is queued and applied once that pass completes. On a component that
// has not been mounted yet only the state changes.
func (b *Base) SetState(partial any) error {
	return b.setState(context.Background(), partial)
}

func (b *Base) setState(ctx context.Context, partial any) error {
	if b.rt != nil && b.rt.busy {
		b.rt.enqueue(b, partial)
		return nil
	}
	b.state = mergeState(b.state, partial)
	if b.rt == nil || b.self == nil || b.last == nil {
		return nil
	}
	b.rt.observer.StateUpdated()
	return b.rt.update(ctx, b.self, triggerSetState)
}

// publish records next as the component's output everywhere the previous
// output was referenced.
func (b *Base) publish(next Node) {
	b.last = next
	if b.slot != nil {
		*b.slot = next
	}
	if b.owner != nil {
		b.owner.publish(next)
	}
}

// mergeState returns old with partial merged in.
func mergeState(old, partial any) any {
	m, ok := old.(map[string]any)
	if !ok || m == nil {
		return partial
	}
	mergeInto(m, partial)
	return m
}

// mergeInto merges src's keys into dst. A src that is not a mapping
// contributes no keys.
func mergeInto(dst map[string]any, src any) {
	sm, ok := src.(map[string]any)
	if !ok {
		return
	}
	for k, v := range sm {
		if cur, ok := dst[k].(map[string]any); ok && cur != nil {
			mergeInto(cur, v)
			continue
		}
		dst[k] = v
	}
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	Base
	render func(self *FuncComponent) (Node, error)
}

// Render implements Component.
func (f *FuncComponent) Render() (Node, error) {
	return f.render(f)
}

// Func creates a component type from a render function. The function receives
// the instance so it can read props, children and state.
func Func(render func(self *FuncComponent) (Node, error)) Constructor {
	return func() Component {
		return &FuncComponent{render: render}
	}
}

// componentName returns a short type name for error paths.
func componentName(c Component) string {
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "component"
	}
	return t.Name()
}

// componentPath joins names outermost first.
func componentPath(names []string) string {
	return strings.Join(names, " > ")
}
