package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rangeui/internal/demo"
	"github.com/vango-dev/rangeui/pkg/host"
	"github.com/vango-dev/rangeui/pkg/memhost"
	"github.com/vango-dev/rangeui/pkg/metrics"
	"github.com/vango-dev/rangeui/pkg/vdom"
	"github.com/vango-dev/rangeui/pkg/wire"
)

type fixture struct {
	server *Server
	doc    *memhost.Document
	http   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc := memhost.NewDocument()
	reg := prometheus.NewRegistry()
	rt := vdom.New(doc, vdom.WithObserver(metrics.New(metrics.WithRegistry(reg))))
	s := New(doc, rt, WithMetrics(reg, "/metrics"), WithTitle("demo <preview>"))
	require.NoError(t, s.Mount(context.Background(), demo.App()))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return &fixture{server: s, doc: doc, http: ts}
}

func (f *fixture) get(t *testing.T, path string) (int, string) {
	t.Helper()
	res, err := http.Get(f.http.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func (f *fixture) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	res, err := http.Post(f.http.URL+path, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func (f *fixture) actionID(t *testing.T, action string) int {
	t.Helper()
	n, ok := demo.FindAction(f.doc.Body(), action)
	require.True(t, ok, "no %s button", action)
	return n.ID()
}

func TestPage(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>demo &lt;preview&gt;</title>")
	assert.Contains(t, body, `<h1 data-rid="`)
	assert.Contains(t, body, "new WebSocket")
}

func TestTree(t *testing.T) {
	f := newFixture(t)

	_, body := f.get(t, "/tree")
	assert.Contains(t, body, "<span>count: 0</span>")
	assert.NotContains(t, body, "data-rid")

	_, annotated := f.get(t, "/tree?ids=1")
	assert.Contains(t, annotated, fmt.Sprintf(`data-rid="%d"`, f.actionID(t, demo.ActionIncrement)))
}

func TestEventDispatch(t *testing.T) {
	f := newFixture(t)

	status, out := f.post(t, fmt.Sprintf("/events/%d/click", f.actionID(t, demo.ActionIncrement)), "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, out["listeners"])
	assert.NotEmpty(t, out["mutations"])

	_, body := f.get(t, "/tree")
	assert.Contains(t, body, "<span>count: 1</span>")

	_, _ = f.post(t, fmt.Sprintf("/events/%d/click", f.actionID(t, demo.ActionAdd)), "")
	_, body = f.get(t, "/tree")
	assert.Contains(t, body, "<li>item 1</li>")
}

func TestEventErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"non-numeric id", "/events/abc/click", http.StatusBadRequest},
		{"unknown id", "/events/999999/click", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := f.post(t, tt.path, "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "E501", out["code"])
		})
	}

	res, err := http.Get(f.http.URL + "/events/1/click")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestWebSocketReceivesMutations(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.server.Hub().ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	status, _ := f.post(t, fmt.Sprintf("/events/%d/click", f.actionID(t, demo.ActionIncrement)), "")
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageMutations, msg.Type)
	assert.NotEmpty(t, msg.Mutations)

	ops := make(map[memhost.MutationOp]bool)
	for _, m := range msg.Mutations {
		ops[m.Op] = true
	}
	assert.True(t, ops[memhost.OpInsert], "expected an insert in %+v", msg.Mutations)
	assert.True(t, ops[memhost.OpRemove], "expected a remove in %+v", msg.Mutations)
}

func TestWebSocketBinaryFrames(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws?format=" + FormatBinary
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.server.Hub().ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	f.doc.ResetMutations()
	status, _ := f.post(t, fmt.Sprintf("/events/%d/click", f.actionID(t, demo.ActionAdd)), "")
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	typ, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)

	batch, err := wire.DecodeMutations(frame)
	require.NoError(t, err)
	assert.Equal(t, f.doc.Mutations(), batch)
}

// flipper renders a button whose click moves it into a state it cannot
// render.
type flipper struct {
	vdom.Base
}

func (f *flipper) Render() (vdom.Node, error) {
	if f.State() == true {
		return nil, nil
	}
	return vdom.Build("button", vdom.Props{
		"onClick": func(host.Event) { _ = f.SetState(true) },
	}, "flip"), nil
}

func TestListenerFailureReachesClients(t *testing.T) {
	doc := memhost.NewDocument()
	rt := vdom.New(doc)
	s := New(doc, rt)
	require.NoError(t, s.Mount(context.Background(), vdom.Build(func() *flipper { return &flipper{} }, nil)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	f := &fixture{server: s, doc: doc, http: ts}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	button := doc.Body().Children()[0]
	status, out := f.post(t, fmt.Sprintf("/events/%d/click", button.ID()), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "E102", out["code"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "E102")

	// The next request starts clean.
	status, _ = f.post(t, "/events/999999/click", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.True(t, button.Connected())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `rangeui_passes_total{status="success",trigger="render"} 1`)
	assert.Contains(t, body, "rangeui_nodes_mounted_total")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	doc := memhost.NewDocument()
	s := New(doc, vdom.New(doc))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
