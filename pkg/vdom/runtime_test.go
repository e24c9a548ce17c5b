package vdom

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/rangeui/pkg/host"
	"github.com/vango-dev/rangeui/pkg/memhost"
)

func TestRenderReplacesContainerContent(t *testing.T) {
	rt, doc := newTestRuntime(t)
	if err := doc.ParseHTML(doc.Body(), strings.NewReader("<p>old</p>text")); err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	mustRender(t, rt, doc, Build("main", nil, "new"))

	if got := memhost.InnerHTML(doc.Body()); got != "<main>new</main>" {
		t.Errorf("body = %s", got)
	}
}

func TestRenderPackageFunction(t *testing.T) {
	doc := memhost.NewDocument()
	rt, err := Render(context.Background(), doc, Build("p", nil, "hi"), doc.Body())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rt.Host() != host.Host(doc) {
		t.Error("runtime should render into the given host")
	}
	if got := memhost.InnerHTML(doc.Body()); got != "<p>hi</p>" {
		t.Errorf("body = %s", got)
	}
}

func TestRenderNilRoot(t *testing.T) {
	rt, doc := newTestRuntime(t)
	var root *Element
	if err := rt.Render(context.Background(), root, doc.Body()); !isCode(err, "E102") {
		t.Errorf("err = %v, want E102", err)
	}
}

func TestRenderIntoTextNodeFails(t *testing.T) {
	rt, doc := newTestRuntime(t)
	txt, _ := doc.CreateText("x")
	if err := rt.Render(context.Background(), NewText("a"), txt); !isCode(err, "E204") {
		t.Errorf("err = %v, want E204", err)
	}
}

func TestRenderSameTreeTwice(t *testing.T) {
	rt, doc := newTestRuntime(t)
	tree := Build("div", nil, "a", Build("b", nil, "c"))
	mustRender(t, rt, doc, tree)

	other := memhost.NewDocument()
	rt2 := New(other)
	mustRender(t, rt2, other, tree)

	if memhost.InnerHTML(doc.Body()) != memhost.InnerHTML(other.Body()) {
		t.Error("both documents should show the tree")
	}
	if doc.Body().ChildCount() != 1 {
		t.Error("second render must not disturb the first host tree")
	}
}

func TestApplyAttributes(t *testing.T) {
	var events []string
	rt, doc := newTestRuntime(t)
	mustRender(t, rt, doc, Build("input", Props{
		"className": "field",
		"title":     nil,
		"value":     42,
		"onclick":   "alert(1)",
		"onInput":   func(e host.Event) { events = append(events, "input:"+e.Value) },
		"onKeyDown": host.Listener(func(host.Event) { events = append(events, "keydown") }),
		"onFocus":   func() { events = append(events, "focus") },
	}))

	in := doc.Body().Children()[0]
	if diff := cmp.Diff([]string{"class", "onclick", "value"}, in.AttrNames()); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	if v, _ := in.Attr("value"); v != "42" {
		t.Errorf("value = %q", v)
	}
	for _, ev := range []string{"input", "keydown", "focus"} {
		if in.ListenerCount(ev) != 1 {
			t.Errorf("%s listeners = %d, want 1", ev, in.ListenerCount(ev))
		}
		if _, err := doc.Dispatch(in, ev, "v"); err != nil {
			t.Fatalf("Dispatch(%s): %v", ev, err)
		}
	}
	if diff := cmp.Diff([]string{"input:v", "keydown", "focus"}, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate(t *testing.T) {
	rt, doc := newTestRuntime(t)
	lv := Of[listView](nil, "a", "b").(*listView)
	mustRender(t, rt, doc, lv)
	doc.ResetMutations()

	if err := rt.Update(context.Background(), lv); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if lv.renders != 2 {
		t.Errorf("renders = %d, want 2", lv.renders)
	}
	if n := doc.MutationCount(); n != 0 {
		t.Errorf("MutationCount = %d, want 0", n)
	}
}

func TestUpdateUnmounted(t *testing.T) {
	rt, _ := newTestRuntime(t)
	if err := rt.Update(context.Background(), &listView{}); !isCode(err, "E105") {
		t.Errorf("err = %v, want E105", err)
	}
}

// stepper sets state from its own Render until it reaches limit.
type stepper struct {
	Base
	limit   int
	renders int
}

func (s *stepper) n() int {
	st, _ := s.State().(map[string]any)
	n, _ := st["n"].(int)
	return n
}

func (s *stepper) Render() (Node, error) {
	s.renders++
	if s.limit < 0 || s.n() < s.limit {
		if err := s.SetState(map[string]any{"n": s.n() + 1}); err != nil {
			return nil, err
		}
	}
	return Textf("n %d", s.n()), nil
}

func TestSetStateDuringRenderIsQueued(t *testing.T) {
	obs := newCountingObserver()
	rt, doc := newTestRuntime(t, WithObserver(obs))
	s := &stepper{limit: 3}
	mustRender(t, rt, doc, Build(func() *stepper { return s }, nil))

	if got := memhost.InnerHTML(doc.Body()); got != "n 3" {
		t.Errorf("body = %q, want %q", got, "n 3")
	}
	if s.renders != 4 {
		t.Errorf("renders = %d, want 4", s.renders)
	}
	if obs.queued != 3 {
		t.Errorf("queued = %d, want 3", obs.queued)
	}
	want := []string{triggerRender, triggerSetState, triggerSetState, triggerSetState}
	if diff := cmp.Diff(want, obs.passes); diff != "" {
		t.Errorf("passes mismatch (-want +got):\n%s", diff)
	}
}

func TestSetStateLoopIsBounded(t *testing.T) {
	rt, doc := newTestRuntime(t)
	s := &stepper{limit: -1}
	err := rt.Render(context.Background(), Build(func() *stepper { return s }, nil), doc.Body())
	if !isCode(err, "E106") {
		t.Fatalf("err = %v, want E106", err)
	}
	if s.renders != maxDrainedUpdates+1 {
		t.Errorf("renders = %d, want %d", s.renders, maxDrainedUpdates+1)
	}
	if len(rt.queue) != 0 {
		t.Error("queue should be dropped")
	}
}

func TestUpdateDuringRenderIsQueued(t *testing.T) {
	obs := newCountingObserver()
	rt, doc := newTestRuntime(t, WithObserver(obs))
	lv := Of[listView](nil, "a").(*listView)
	mustRender(t, rt, doc, lv)

	seen := -1
	poker := Func(func(*FuncComponent) (Node, error) {
		if err := rt.Update(context.Background(), lv); err != nil {
			return nil, err
		}
		seen = lv.renders
		return NewText("t"), nil
	})
	aside, err := doc.CreateElement("aside")
	if err != nil {
		t.Fatalf("CreateElement: %v", err)
	}
	if err := rt.Render(context.Background(), Build(poker, nil), aside); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if seen != 1 {
		t.Errorf("renders during pass = %d, want 1", seen)
	}
	if lv.renders != 2 {
		t.Errorf("renders after pass = %d, want 2", lv.renders)
	}
	if obs.queued != 1 {
		t.Errorf("queued = %d, want 1", obs.queued)
	}
}

func TestObserverCounts(t *testing.T) {
	obs := newCountingObserver()
	rt, doc := newTestRuntime(t, WithObserver(obs))
	mustRender(t, rt, doc, Build("div", nil, "a", Build("span", nil, "b")))

	if obs.mounted[KindElement] != 2 || obs.mounted[KindText] != 2 {
		t.Errorf("mounted = %v", obs.mounted)
	}
	if diff := cmp.Diff([]string{triggerRender}, obs.passes); diff != "" {
		t.Errorf("passes mismatch (-want +got):\n%s", diff)
	}
}

type requestKey struct{}

type recordingTracer struct {
	noop.Tracer
	spans    []string
	requests []any
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.spans = append(r.spans, name)
	r.requests = append(r.requests, ctx.Value(requestKey{}))
	return r.Tracer.Start(ctx, name, opts...)
}

func TestTracerSpansPerPass(t *testing.T) {
	tr := &recordingTracer{}
	rt, doc := newTestRuntime(t, WithTracer(tr))
	lv := Of[listView](nil, "a").(*listView)
	mustRender(t, rt, doc, lv)
	if err := lv.SetState(map[string]any{"items": []string{"b"}}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := rt.Update(context.Background(), lv); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := []string{"rangeui.render", "rangeui.setState", "rangeui.update"}
	if diff := cmp.Diff(want, tr.spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestQueuedPassesKeepCallerContext(t *testing.T) {
	tr := &recordingTracer{}
	rt, doc := newTestRuntime(t, WithTracer(tr))
	s := &stepper{limit: 2}
	ctx := context.WithValue(context.Background(), requestKey{}, "req-1")
	if err := rt.Render(ctx, Build(func() *stepper { return s }, nil), doc.Body()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if diff := cmp.Diff([]string{"rangeui.render", "rangeui.setState", "rangeui.setState"}, tr.spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"req-1", "req-1", "req-1"}, tr.requests); diff != "" {
		t.Errorf("context values mismatch (-want +got):\n%s", diff)
	}
}

// toggle renders a button that flips its state; rendering the flipped state
// fails.
type toggle struct {
	Base
	listenerErr error
}

func (g *toggle) Render() (Node, error) {
	if g.State() == true {
		return nil, nil
	}
	return Build("button", Props{
		"onClick": func(host.Event) { g.listenerErr = g.SetState(true) },
	}, "flip"), nil
}

func TestListenerPassFailureIsReported(t *testing.T) {
	var buf bytes.Buffer
	var reported []error
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
	rt, doc := newTestRuntime(t,
		WithLogger(logger),
		WithErrorHandler(func(err error) { reported = append(reported, err) }),
	)
	g := &toggle{}
	mustRender(t, rt, doc, Build(func() *toggle { return g }, nil))
	button := doc.Body().Children()[0]

	if _, err := doc.Dispatch(button, "click", ""); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(reported) != 1 || !isCode(reported[0], "E102") {
		t.Fatalf("reported = %v, want one E102", reported)
	}
	if !isCode(g.listenerErr, "E102") {
		t.Errorf("listener err = %v, want E102", g.listenerErr)
	}
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "render pass failed") {
		t.Errorf("log output missing failed pass record:\n%s", out)
	}
	if !button.Connected() {
		t.Error("failed pass should leave the mounted tree in place")
	}
}

func TestOnErrorAddsHandler(t *testing.T) {
	var first, second int
	rt, doc := newTestRuntime(t, WithErrorHandler(func(error) { first++ }))
	rt.OnError(func(error) { second++ })
	rt.OnError(nil)

	if err := rt.Render(context.Background(), Build(func() *bare { return &bare{} }, nil), doc.Body()); !isCode(err, "E101") {
		t.Fatalf("err = %v, want E101", err)
	}
	if first != 1 || second != 1 {
		t.Errorf("handler calls = %d, %d; want 1, 1", first, second)
	}
}

func TestLoggerReceivesPassRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt, doc := newTestRuntime(t, WithLogger(logger))
	mustRender(t, rt, doc, Build("p", nil))

	out := buf.String()
	for _, want := range []string{"mounted element", "render pass complete", "trigger=render"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNilOptionsKeepDefaults(t *testing.T) {
	rt := New(memhost.NewDocument(), WithLogger(nil), WithTracer(nil), WithObserver(nil))
	if rt.logger == nil || rt.tracer == nil || rt.observer == nil {
		t.Error("nil options should keep defaults")
	}
}
