package vdom

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
)

// resolve expands components until only elements and text remain.
//
// Nodes that already carry resolution or mount state from an earlier pass,
// or that occur a second time in the tree being resolved, are copied first.
// A node built once and placed in several slots therefore never shares an
// anchor between them.
func (rt *Runtime) resolve(n Node, path []string) (Node, error) {
	defer rt.beginResolve()()

	switch v := n.(type) {
	case *Element:
		e := v
		if e.resolved != nil || e.anchor != nil || rt.claim(v) {
			e = e.fresh()
		}
		if err := rt.resolveChildren(e, path); err != nil {
			return nil, err
		}
		return e, nil

	case *Text:
		if v.anchor != nil || rt.claim(v) {
			return NewText(v.content), nil
		}
		return v, nil

	case Component:
		b := v.base()
		b.self = v
		b.rt = rt
		path = append(path, componentName(v))

		out, err := v.Render()
		if err != nil {
			var ce *errors.Error
			if stderrors.As(err, &ce) && ce.Component == "" {
				ce.WithComponent(componentPath(path))
			}
			return nil, err
		}
		if isNil(out) {
			return nil, errors.New("E102").WithComponent(componentPath(path))
		}
		if inner, ok := out.(Component); ok {
			inner.base().owner = b
		}
		res, err := rt.resolve(out, path)
		if err != nil {
			return nil, err
		}
		b.last = res
		return res, nil
	}
	return nil, errors.New("E103").WithComponent(componentPath(path))
}

func (rt *Runtime) resolveChildren(e *Element, path []string) error {
	defer rt.beginResolve()()
	rt.claim(e)

	// Full capacity up front: components keep pointers into this slice.
	resolved := make([]Node, 0, len(e.children))
	for _, c := range e.children {
		r, err := rt.resolve(c, path)
		if err != nil {
			return err
		}
		resolved = append(resolved, r)
		if comp, ok := c.(Component); ok {
			comp.base().slot = &resolved[len(resolved)-1]
		}
	}
	e.resolved = resolved
	return nil
}

// beginResolve opens the set of nodes seen by the outermost resolution in
// progress and returns the function that closes it.
func (rt *Runtime) beginResolve() (end func()) {
	if rt.seen != nil {
		return func() {}
	}
	rt.seen = make(map[Node]struct{})
	return func() { rt.seen = nil }
}

// claim marks n as placed in the tree being resolved and reports whether it
// already was.
func (rt *Runtime) claim(n Node) bool {
	if _, ok := rt.seen[n]; ok {
		return true
	}
	rt.seen[n] = struct{}{}
	return false
}

// mount renders n into a, replacing a's current content.
func (rt *Runtime) mount(n Node, a host.Anchor) error {
	if a == nil {
		return errors.New("E104").WithDetail("mount without an anchor")
	}
	if c, ok := n.(Component); ok {
		b := c.base()
		b.self = c
		b.rt = rt
	}
	return n.mountAt(rt, a)
}

func (b *Base) mountAt(rt *Runtime, a host.Anchor) error {
	b.anchor = a
	res, err := rt.resolve(b.self, nil)
	if err != nil {
		return err
	}
	return res.mountAt(rt, a)
}

func (e *Element) mountAt(rt *Runtime, a host.Anchor) error {
	if e.resolved == nil {
		if err := rt.resolveChildren(e, nil); err != nil {
			return err
		}
	}

	dom, err := rt.host.CreateElement(e.tag)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(e.props))
	for name := range e.props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := rt.applyAttribute(dom, name, e.props[name]); err != nil {
			return err
		}
	}

	for _, child := range e.resolved {
		end := rt.host.ChildCount(dom)
		ca, err := rt.host.Range(dom, end, end)
		if err != nil {
			return err
		}
		if err := child.mountAt(rt, ca); err != nil {
			return err
		}
	}

	if err := a.Replace(dom); err != nil {
		return err
	}
	e.anchor = a
	e.dom = dom
	rt.observer.NodeMounted(KindElement)
	rt.logger.Debug("mounted element", "tag", e.tag, "children", len(e.resolved))
	return nil
}

func (t *Text) mountAt(rt *Runtime, a host.Anchor) error {
	dom, err := rt.host.CreateText(t.content)
	if err != nil {
		return err
	}
	if err := a.Replace(dom); err != nil {
		return err
	}
	t.anchor = a
	t.dom = dom
	rt.observer.NodeMounted(KindText)
	return nil
}

// applyAttribute maps one prop onto a host element.
//
// on<Event> with a function value registers a listener for the lowercased
// event name; className maps to class; nil values are skipped; everything
// else is written as a string attribute of the same name.
func (rt *Runtime) applyAttribute(dom host.Node, name string, value any) error {
	if value == nil {
		return nil
	}
	if len(name) > 2 && strings.HasPrefix(name, "on") {
		if l, ok := asListener(value); ok {
			return rt.host.AddEventListener(dom, strings.ToLower(name[2:]), l)
		}
	}
	if name == "className" {
		name = "class"
	}
	return rt.host.SetAttribute(dom, name, propToString(value))
}

// asListener adapts the handler shapes accepted in props.
func asListener(v any) (host.Listener, bool) {
	switch h := v.(type) {
	case host.Listener:
		return h, h != nil
	case func(host.Event):
		return h, h != nil
	case func():
		if h == nil {
			return nil, false
		}
		return func(host.Event) { h() }, true
	}
	return nil, false
}
