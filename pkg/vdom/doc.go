// Package vdom is the rangeui reconciliation engine.
//
// Components describe their output as a tree of nodes. Mounting a component
// resolves it, by calling Render recursively, into a tree of Element and Text
// nodes: the virtual DOM. That tree is mounted into an anchor of a host tree.
// When a component's state changes it renders again, and the fresh tree is
// reconciled against the one that was mounted last so that only incompatible
// subtrees are rebuilt.
//
// # Core Types
//
// Node is the closed set of tree nodes: *Element, *Text and user components
// embedding Base. Props holds attributes and event handlers.
//
//	type Greeting struct{ vdom.Base }
//
//	func (g *Greeting) Render() (vdom.Node, error) {
//	    return vdom.Build("p", vdom.Props{"className": "greeting"},
//	        "Hello, ", g.Prop("name"),
//	    ), nil
//	}
//
//	rt := vdom.New(doc)
//	err := rt.Render(ctx, vdom.Of[Greeting](vdom.Props{"name": "Ada"}), doc.Body())
//
// # Reconciliation
//
// Two nodes are compatible when they have the same kind, the same tag or text
// content, and the new node's props are all equal to the old node's. A
// compatible node takes over the old node's anchor and its children are
// reconciled by position; an incompatible node is mounted over the old one
// wholesale. There is no keyed reordering.
//
// # Known limitations
//
// A prop present on the old node but missing (or nil) on the new one is not
// detected when the new node keeps the same number of props. A render that
// yields no children leaves the old children mounted, as does a render that
// yields fewer children, unless WithPruneStaleChildren is set.
package vdom
