package vdom

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/host"
)

const tracerName = "github.com/vango-dev/rangeui/pkg/vdom"

// Render pass triggers, reported to observers and spans.
const (
	triggerRender   = "render"
	triggerSetState = "setState"
	triggerUpdate   = "update"
)

// maxDrainedUpdates bounds how many queued updates one pass may drain, so a
// component that sets state from every render cannot loop forever.
const maxDrainedUpdates = 1000

// Runtime mounts and reconciles trees against one host.
//
// A Runtime is single-threaded: all render passes, including those started by
// event listeners, must run on one goroutine at a time.
type Runtime struct {
	host       host.Host
	logger     *slog.Logger
	tracer     trace.Tracer
	observer   Observer
	pruneStale bool

	onError []ErrorHandler

	busy     bool
	draining bool
	queue    []queuedUpdate

	// seen holds the nodes placed by the resolution in progress.
	seen map[Node]struct{}
}

// ErrorHandler is told about every failed render pass, including passes
// started from event listeners where no caller sees the returned error.
type ErrorHandler func(err error)

type queuedUpdate struct {
	b       *Base
	partial any

	// rerender marks an Update call on c: render again without touching
	// state.
	rerender bool
	c        Component
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithTracer sets the tracer used for render pass spans. The default comes
// from the global otel TracerProvider.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Runtime) {
		if t != nil {
			rt.tracer = t
		}
	}
}

// WithObserver sets an observer for render work.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithErrorHandler registers h for failed render passes.
func WithErrorHandler(h ErrorHandler) Option {
	return func(rt *Runtime) {
		if h != nil {
			rt.onError = append(rt.onError, h)
		}
	}
}

// WithPruneStaleChildren makes reconciliation remove old children that have
// no counterpart in the new render. Without it they stay mounted.
func WithPruneStaleChildren() Option {
	return func(rt *Runtime) {
		rt.pruneStale = true
	}
}

// New creates a Runtime rendering into h.
func New(h host.Host, opts ...Option) *Runtime {
	rt := &Runtime{
		host:     h,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// OnError registers h for failed render passes after construction.
func (rt *Runtime) OnError(h ErrorHandler) {
	if h != nil {
		rt.onError = append(rt.onError, h)
	}
}

// Host returns the host the runtime renders into.
func (rt *Runtime) Host() host.Host { return rt.host }

// Render replaces everything in container with root.
func (rt *Runtime) Render(ctx context.Context, root Node, container host.Node) error {
	if isNil(root) {
		return errors.New("E102").WithDetail("Render called with a nil root")
	}
	return rt.pass(ctx, triggerRender, func(ctx context.Context) error {
		a, err := rt.host.Range(container, 0, rt.host.ChildCount(container))
		if err != nil {
			return err
		}
		if err := a.Clear(); err != nil {
			return err
		}
		return rt.mount(root, a)
	})
}

// Render creates a Runtime over h and renders root into container.
func Render(ctx context.Context, h host.Host, root Node, container host.Node, opts ...Option) (*Runtime, error) {
	rt := New(h, opts...)
	return rt, rt.Render(ctx, root, container)
}

// Update renders c again and reconciles the result without changing state.
func (rt *Runtime) Update(ctx context.Context, c Component) error {
	if rt.busy {
		rt.queue = append(rt.queue, queuedUpdate{b: c.base(), rerender: true, c: c})
		rt.observer.UpdateQueued()
		return nil
	}
	return rt.update(ctx, c, triggerUpdate)
}

// update runs one re-render-and-reconcile pass for c.
func (rt *Runtime) update(ctx context.Context, c Component, trigger string) error {
	b := c.base()
	if b.last == nil {
		return errors.New("E105").WithComponent(componentName(c))
	}
	return rt.pass(ctx, trigger, func(ctx context.Context) error {
		old := b.last
		next, err := rt.resolve(c, nil)
		if err != nil {
			// Keep the mounted tree as the baseline.
			b.last = old
			return err
		}
		if err := rt.reconcile(old, next); err != nil {
			return err
		}
		b.publish(next)
		return nil
	})
}

// pass runs fn as one render pass and then drains updates queued during it.
func (rt *Runtime) pass(ctx context.Context, trigger string, fn func(ctx context.Context) error) error {
	ctx, span := rt.tracer.Start(ctx, "rangeui."+trigger,
		trace.WithAttributes(attribute.String("rangeui.trigger", trigger)))
	defer span.End()

	start := time.Now()
	rt.busy = true
	err := fn(ctx)
	rt.busy = false
	elapsed := time.Since(start)

	rt.observer.PassCompleted(trigger, elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if n := len(rt.queue); n > 0 {
			rt.logger.Warn("dropping queued updates after failed pass", "count", n, "error", err)
			rt.queue = nil
		}
		rt.failed(trigger, err)
		return err
	}
	rt.logger.Debug("render pass complete", "trigger", trigger, "duration", elapsed)
	return rt.drain(ctx)
}

// failed logs err and hands it to the error handlers.
func (rt *Runtime) failed(trigger string, err error) {
	rt.logger.Error("render pass failed", "trigger", trigger, "error", err)
	for _, h := range rt.onError {
		h(err)
	}
}

func (rt *Runtime) enqueue(b *Base, partial any) {
	rt.queue = append(rt.queue, queuedUpdate{b: b, partial: partial})
	rt.observer.UpdateQueued()
	rt.logger.Debug("update queued during render pass", "pending", len(rt.queue))
}

// drain applies queued updates in order under the context of the pass that
// queued them. Only the outermost pass drains; passes started from here
// append to the same queue.
func (rt *Runtime) drain(ctx context.Context) error {
	if rt.draining {
		return nil
	}
	rt.draining = true
	defer func() { rt.draining = false }()

	for n := 0; len(rt.queue) > 0; n++ {
		if n >= maxDrainedUpdates {
			rt.queue = nil
			err := errors.New("E106")
			rt.failed("drain", err)
			return err
		}
		u := rt.queue[0]
		rt.queue = rt.queue[1:]

		var err error
		if u.rerender {
			err = rt.update(ctx, u.c, triggerUpdate)
		} else {
			err = u.b.setState(ctx, u.partial)
		}
		if err != nil {
			rt.queue = nil
			return err
		}
	}
	return nil
}
