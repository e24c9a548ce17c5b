// Package demo holds the sample application rendered by the rangeui CLI and
// preview server.
package demo

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/rangeui/pkg/host"
	"github.com/vango-dev/rangeui/pkg/memhost"
	"github.com/vango-dev/rangeui/pkg/vdom"
)

// Actions addressable through data-action attributes.
const (
	ActionIncrement = "increment"
	ActionAdd       = "add"
)

// Page renders a heading followed by whatever children it was given.
type Page struct{ vdom.Base }

// Render implements vdom.Component.
func (p *Page) Render() (vdom.Node, error) {
	title, _ := p.Prop("title").(string)
	if title == "" {
		title = "my component"
	}
	return vdom.Build("div", vdom.Props{"id": p.Prop("id"), "className": p.Prop("class")},
		vdom.Build("h1", nil, title),
		p.Children(),
	), nil
}

// Counter counts clicks on its button.
type Counter struct{ vdom.Base }

// Count returns the current count.
func (c *Counter) Count() int {
	st, _ := c.State().(map[string]any)
	n, _ := st["count"].(int)
	return n
}

// Render implements vdom.Component.
func (c *Counter) Render() (vdom.Node, error) {
	return vdom.Build("div", vdom.Attrs(vdom.Class("counter")),
		vdom.Build("button", vdom.Attrs(
			vdom.Data("action", ActionIncrement),
			vdom.OnClick(func(host.Event) {
				if err := c.Increment(); err != nil {
					slog.Warn("counter increment failed", "count", c.Count(), "error", err)
				}
			}),
		), "+"),
		vdom.Build("span", nil, vdom.Textf("count: %d", c.Count())),
	), nil
}

// Increment adds one to the count.
func (c *Counter) Increment() error {
	return c.SetState(map[string]any{"count": c.Count() + 1})
}

// List shows a growing list of items.
type List struct{ vdom.Base }

// Items returns the current items.
func (l *List) Items() []string {
	st, _ := l.State().(map[string]any)
	items, _ := st["items"].([]string)
	return items
}

// Render implements vdom.Component.
func (l *List) Render() (vdom.Node, error) {
	return vdom.Build("div", vdom.Attrs(vdom.Class("list")),
		vdom.Build("button", vdom.Attrs(
			vdom.Data("action", ActionAdd),
			vdom.OnClick(func(host.Event) {
				if err := l.Add(fmt.Sprintf("item %d", len(l.Items())+1)); err != nil {
					slog.Warn("list add failed", "items", len(l.Items()), "error", err)
				}
			}),
		), "add"),
		vdom.Build("ul", nil, vdom.Range(l.Items(), func(item string, _ int) vdom.Node {
			return vdom.Build("li", nil, item)
		})),
	), nil
}

// Add appends an item.
func (l *List) Add(item string) error {
	items := append(append([]string{}, l.Items()...), item)
	return l.SetState(map[string]any{"items": items})
}

// App builds the demo tree: a Page wrapping some static blocks, a Counter and
// a List.
func App() vdom.Node {
	return vdom.Of[Page](vdom.Props{"id": "a", "class": "c"},
		vdom.Build("div", nil, "abc"),
		vdom.Build("div", nil, "i"),
		vdom.Build("div", nil),
		vdom.Build("div", nil),
		vdom.Of[Counter](nil),
		vdom.Of[List](nil),
	)
}

// FindAction returns the first node under root whose data-action is action.
func FindAction(root *memhost.Node, action string) (*memhost.Node, bool) {
	if v, ok := root.Attr("data-action"); ok && v == action {
		return root, true
	}
	for _, c := range root.Children() {
		if n, ok := FindAction(c, action); ok {
			return n, true
		}
	}
	return nil, false
}

// Click dispatches a click on the node carrying action.
func Click(doc *memhost.Document, action string) error {
	n, ok := FindAction(doc.Body(), action)
	if !ok {
		return fmt.Errorf("no element with data-action %q", action)
	}
	_, err := doc.Dispatch(n, "click", "")
	return err
}
