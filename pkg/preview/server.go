package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/memhost"
	"github.com/vango-dev/rangeui/pkg/vdom"
)

const tracerName = "github.com/vango-dev/rangeui/pkg/preview"

// maxEventBody bounds the event value read from a request body.
const maxEventBody = 64 << 10

// Server serves one document.
type Server struct {
	doc    *memhost.Document
	rt     *vdom.Runtime
	hub    *Hub
	logger *slog.Logger
	tracer trace.Tracer

	gatherer    prometheus.Gatherer
	metricsPath string
	title       string

	// mu serializes everything that touches doc or rt.
	mu      sync.Mutex
	pending []memhost.Mutation

	// failed is the first render pass failure since the last flush.
	failed error

	unsubscribe func()
	router      chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics exposes g at path.
func WithMetrics(g prometheus.Gatherer, path string) Option {
	return func(s *Server) {
		s.gatherer = g
		if path != "" {
			s.metricsPath = path
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// New creates a Server for doc, which rt must render into.
func New(doc *memhost.Document, rt *vdom.Runtime, opts ...Option) *Server {
	s := &Server{
		doc:         doc,
		rt:          rt,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
		metricsPath: "/metrics",
		title:       "rangeui preview",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.logger)
	s.unsubscribe = doc.Subscribe(s.collect)
	rt.OnError(s.passFailed)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(tracing(s.tracer))

	r.Get("/", s.handlePage)
	r.Get("/tree", s.handleTree)
	r.Post("/events/{node}/{event}", s.handleEvent)
	r.Get("/ws", s.hub.HandleWebSocket)
	if s.gatherer != nil {
		r.Method(http.MethodGet, s.metricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Mount renders root into the document body and broadcasts the changes.
func (s *Server) Mount(ctx context.Context, root vdom.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.rt.Render(ctx, root, s.doc.Body())
	s.flush(err)
	return err
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close detaches from the document and disconnects all clients.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

// collect receives every mutation of the document. It runs with s.mu held by
// whichever request caused the change.
func (s *Server) collect(m memhost.Mutation) {
	s.pending = append(s.pending, m)
}

// passFailed records a failed render pass. Like collect it runs with s.mu
// held by the request that caused the pass.
func (s *Server) passFailed(err error) {
	if s.failed == nil {
		s.failed = err
	}
}

// flush broadcasts the pending batch, or err if the pass failed. s.mu must be
// held.
func (s *Server) flush(err error) {
	s.failed = nil
	batch := s.pending
	s.pending = nil
	s.hub.NotifyMutations(batch)
	if err != nil {
		s.hub.NotifyError(err.Error())
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body := memhost.AnnotatedHTML(s.doc.Body())
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageTemplate, html.EscapeString(s.title), body, clientScript)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var body string
	if r.URL.Query().Get("ids") != "" {
		body = memhost.AnnotatedHTML(s.doc.Body())
	} else {
		body = memhost.InnerHTML(s.doc.Body())
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, body)
}

// EventResult is the response to an event dispatch.
type EventResult struct {
	Listeners int                `json:"listeners"`
	Mutations []memhost.Mutation `json:"mutations"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "node"))
	if err != nil {
		writeError(w, http.StatusBadRequest, rerrors.New("E501").WithDetail("node id must be an integer"))
		return
	}
	event := chi.URLParam(r, "event")
	value, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, rerrors.New("E501").Wrap(err))
		return
	}

	s.mu.Lock()
	node, ok := s.doc.NodeByID(id)
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, rerrors.New("E501").WithDetail(fmt.Sprintf("no connected node with id %d", id)))
		return
	}
	n, err := s.doc.Dispatch(node, event, string(value))
	if err == nil {
		// Listeners cannot return errors; failed passes arrive through passFailed.
		err = s.failed
	}
	batch := append([]memhost.Mutation(nil), s.pending...)
	s.flush(err)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("event dispatch failed", "node", id, "event", event, "error", err)
		writeError(w, http.StatusInternalServerError, rerrors.FromError(err, "E501"))
		return
	}
	s.logger.Debug("event dispatched", "node", id, "event", event, "listeners", n, "mutations", len(batch))
	writeJSON(w, http.StatusOK, EventResult{Listeners: n, Mutations: batch})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"code":  rerrors.Code(err),
		"error": err.Error(),
	})
}
