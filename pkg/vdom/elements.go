package vdom

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/vango-dev/rangeui/internal/errors"
)

var componentType = reflect.TypeOf((*Component)(nil)).Elem()

// container is what Build fills in: elements and components.
type container interface {
	Node
	SetAttribute(name string, value any)
	AppendChild(child Node)
}

// Build creates one node.
//
// typ is either a tag name, producing an *Element, or a component type: a
// Constructor, a func() Component, or any func() *T where *T implements
// Component. Each attribute is applied once through the node's SetAttribute,
// in key order.
//
// Children are flattened depth first: strings become Text nodes, slices and
// arrays are spliced in place, nil values are dropped, nodes are appended as
// they are, and any other value becomes a Text node holding its string form.
//
// Build never touches a host tree. An unsupported typ is a programming error
// and panics with E103.
func Build(typ any, attrs Props, children ...any) Node {
	n := instantiate(typ)
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.SetAttribute(k, attrs[k])
	}
	appendChildren(n, children)
	return n
}

// Of builds a component of type T.
func Of[T any, P interface {
	*T
	Component
}](attrs Props, children ...any) Node {
	return Build(Constructor(func() Component { return P(new(T)) }), attrs, children...)
}

func instantiate(typ any) container {
	switch t := typ.(type) {
	case string:
		return NewElement(t)
	case Constructor:
		return bind(t())
	case func() Component:
		return bind(t())
	}

	rv := reflect.ValueOf(typ)
	if rv.Kind() == reflect.Func && !rv.IsNil() {
		ft := rv.Type()
		if ft.NumIn() == 0 && ft.NumOut() == 1 && ft.Out(0).Implements(componentType) {
			out := rv.Call(nil)[0]
			if c, ok := out.Interface().(Component); ok && !isNil(c) {
				return bind(c)
			}
		}
	}
	panic(errors.New("E103").WithDetail(fmt.Sprintf("Build got %T; want a tag name or a component constructor", typ)))
}

// bind points the component's Base at its outer value.
func bind(c Component) Component {
	if isNil(c) {
		panic(errors.New("E103").WithDetail("component constructor returned nil"))
	}
	c.base().self = c
	return c
}

func appendChildren(parent container, children []any) {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case string:
			parent.AppendChild(NewText(v))
		case []byte:
			parent.AppendChild(NewText(string(v)))
		case Node:
			if !isNil(v) {
				parent.AppendChild(v)
			}
		case []any:
			appendChildren(parent, v)
		case []Node:
			for _, c := range v {
				if !isNil(c) {
					parent.AppendChild(c)
				}
			}
		default:
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array:
				items := make([]any, rv.Len())
				for i := range items {
					items[i] = rv.Index(i).Interface()
				}
				appendChildren(parent, items)
			case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface:
				if rv.IsNil() {
					continue
				}
				parent.AppendChild(NewText(propToString(v)))
			default:
				parent.AppendChild(NewText(propToString(v)))
			}
		}
	}
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
