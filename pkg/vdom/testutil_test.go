package vdom

import (
	"context"
	"testing"
	"time"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
	"github.com/vango-dev/rangeui/pkg/memhost"
)

// listView renders a div holding its children, or state["items"] once set.
type listView struct {
	Base
	renders int
}

func (l *listView) Render() (Node, error) {
	l.renders++
	if st, ok := l.State().(map[string]any); ok {
		if items, ok := st["items"].([]string); ok {
			return Build("div", nil, items), nil
		}
	}
	return Build("div", nil, l.Children()), nil
}

// counter renders a button that increments state["n"] on click.
type counter struct{ Base }

func (c *counter) count() int {
	if st, ok := c.State().(map[string]any); ok {
		n, _ := st["n"].(int)
		return n
	}
	return 0
}

func (c *counter) Render() (Node, error) {
	return Build("button", Props{
		"className": "counter",
		"onClick": func(host.Event) {
			_ = c.SetState(map[string]any{"n": c.count() + 1})
		},
	}, Textf("count %d", c.count())), nil
}

// bare forgets to define Render.
type bare struct{ Base }

// nilRender returns no node.
type nilRender struct{ Base }

func (nilRender) Render() (Node, error) { return nil, nil }

type countingObserver struct {
	mounted  map[Kind]int
	replaced map[Kind]int
	patched  map[Kind]int
	appended int
	passes   []string
	states   int
	queued   int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		mounted:  make(map[Kind]int),
		replaced: make(map[Kind]int),
		patched:  make(map[Kind]int),
	}
}

func (o *countingObserver) NodeMounted(k Kind)  { o.mounted[k]++ }
func (o *countingObserver) NodeReplaced(k Kind) { o.replaced[k]++ }
func (o *countingObserver) NodePatched(k Kind)  { o.patched[k]++ }
func (o *countingObserver) ChildAppended()      { o.appended++ }
func (o *countingObserver) StateUpdated()       { o.states++ }
func (o *countingObserver) UpdateQueued()       { o.queued++ }
func (o *countingObserver) PassCompleted(trigger string, _ time.Duration, _ error) {
	o.passes = append(o.passes, trigger)
}

func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *memhost.Document) {
	t.Helper()
	doc := memhost.NewDocument()
	return New(doc, opts...), doc
}

func mustRender(t *testing.T, rt *Runtime, doc *memhost.Document, root Node) {
	t.Helper()
	if err := rt.Render(context.Background(), root, doc.Body()); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

// mountTree resolves and mounts n directly into the document body.
func mountTree(t *testing.T, rt *Runtime, doc *memhost.Document, n Node) Node {
	t.Helper()
	res, err := rt.resolve(n, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	a, err := doc.Range(doc.Body(), 0, doc.Body().ChildCount())
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if err := rt.mount(res, a); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return res
}

func resolveTree(t *testing.T, rt *Runtime, n Node) Node {
	t.Helper()
	res, err := rt.resolve(n, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return res
}

func hostTexts(n *memhost.Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.TextContent())
	}
	return out
}

func isCode(err error, code string) bool {
	return errors.Code(err) == code
}
