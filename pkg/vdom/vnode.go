package vdom

import "github.com/vango-dev/rangeui/pkg/host"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComponent             // User component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Props holds attributes and event handlers.
type Props map[string]any

// Node is a virtual tree node. The set of implementations is closed: *Element,
// *Text, and components embedding Base.
type Node interface {
	// Kind returns the node's discriminator. It never changes.
	Kind() Kind

	// Anchor returns the host region the node is mounted in, or nil.
	Anchor() host.Anchor

	mountAt(rt *Runtime, a host.Anchor) error
}

// Element is a virtual host element.
type Element struct {
	tag      string
	props    Props
	children []Node

	resolved []Node
	anchor   host.Anchor
	dom      host.Node
}

// NewElement creates an element with no props and no children.
func NewElement(tag string) *Element {
	return &Element{tag: tag, props: make(Props)}
}

// Kind implements Node.
func (e *Element) Kind() Kind { return KindElement }

// Anchor implements Node.
func (e *Element) Anchor() host.Anchor { return e.anchor }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Props returns the element's props. The map must not be modified.
func (e *Element) Props() Props { return e.props }

// Children returns the logical children as built.
func (e *Element) Children() []Node { return e.children }

// ResolvedChildren returns the children as resolved by the last render pass.
func (e *Element) ResolvedChildren() []Node { return e.resolved }

// HostNode returns the host element this node is mounted as, or nil.
func (e *Element) HostNode() host.Node { return e.dom }

// SetAttribute records a prop. It is meant for tree construction; props are
// fixed once the element has been built.
func (e *Element) SetAttribute(name string, value any) {
	e.props[name] = value
}

// AppendChild appends a logical child.
func (e *Element) AppendChild(child Node) {
	e.children = append(e.children, child)
}

// fresh returns an unresolved, unmounted copy sharing props and children.
func (e *Element) fresh() *Element {
	return &Element{tag: e.tag, props: e.props, children: e.children}
}

// Text is a virtual host text node.
type Text struct {
	content string
	anchor  host.Anchor
	dom     host.Node
}

// NewText creates a text node.
func NewText(content string) *Text {
	return &Text{content: content}
}

// Kind implements Node.
func (t *Text) Kind() Kind { return KindText }

// Anchor implements Node.
func (t *Text) Anchor() host.Anchor { return t.anchor }

// Content returns the text.
func (t *Text) Content() string { return t.content }

// HostNode returns the host text node this node is mounted as, or nil.
func (t *Text) HostNode() host.Node { return t.dom }
