package vdom

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
)

// reconcile patches the host tree mounted for old so it shows next.
func (rt *Runtime) reconcile(old, next Node) error {
	if !sameNode(old, next) {
		a := old.Anchor()
		if a == nil {
			return errors.New("E104").WithDetail("reconciling against a node that was never mounted")
		}
		rt.observer.NodeReplaced(next.Kind())
		rt.logger.Debug("replacing node", "old", old.Kind(), "new", next.Kind())
		return rt.mount(next, a)
	}

	switch n := next.(type) {
	case *Text:
		o := old.(*Text)
		n.anchor, n.dom = o.anchor, o.dom
		rt.observer.NodePatched(KindText)
		return nil
	case *Element:
		o := old.(*Element)
		n.anchor, n.dom = o.anchor, o.dom
		rt.observer.NodePatched(KindElement)
		return rt.reconcileChildren(o, n)
	}
	return nil
}

// reconcileChildren aligns children by index. Children past the end of the
// old list are mounted one after another behind the old last child.
func (rt *Runtime) reconcileChildren(old, next *Element) error {
	oldChildren, newChildren := old.resolved, next.resolved
	if len(newChildren) == 0 {
		if rt.pruneStale {
			return rt.prune(oldChildren)
		}
		return nil
	}

	var tail host.Anchor
	if len(oldChildren) > 0 {
		tail = oldChildren[len(oldChildren)-1].Anchor()
	}
	for i, child := range newChildren {
		if i < len(oldChildren) {
			if err := rt.reconcile(oldChildren[i], child); err != nil {
				return err
			}
			continue
		}

		var a host.Anchor
		var err error
		if tail != nil {
			a, err = tail.After()
		} else {
			end := rt.host.ChildCount(next.dom)
			a, err = rt.host.Range(next.dom, end, end)
		}
		if err != nil {
			return err
		}
		if err := rt.mount(child, a); err != nil {
			return err
		}
		rt.observer.ChildAppended()
		tail = a
	}

	if rt.pruneStale && len(oldChildren) > len(newChildren) {
		return rt.prune(oldChildren[len(newChildren):])
	}
	return nil
}

func (rt *Runtime) prune(stale []Node) error {
	for _, c := range stale {
		if a := c.Anchor(); a != nil {
			if err := a.Clear(); err != nil {
				return err
			}
		}
	}
	return nil
}

// sameNode reports whether next can take over old's place in the host tree.
//
// Every prop of next must equal old's prop of the same name, where a missing
// prop reads as nil, and old may not have more props than next. A prop that
// old has and next lacks therefore goes unnoticed when next has an extra
// nil-valued prop in its place.
//
// Function props never compare equal, so an element carrying an event handler
// is rebuilt by every reconcile, together with its subtree, even when the next
// tree is otherwise identical.
func sameNode(old, next Node) bool {
	if old.Kind() != next.Kind() {
		return false
	}
	switch n := next.(type) {
	case *Text:
		return old.(*Text).content == n.content
	case *Element:
		o := old.(*Element)
		if o.tag != n.tag {
			return false
		}
		for name, v := range n.props {
			if !propsEqual(o.props[name], v) {
				return false
			}
		}
		return len(o.props) <= len(n.props)
	}
	return false
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	// Functions never compare equal, so nodes carrying handlers are rebuilt.
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to its host attribute form.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
