package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/observability"
)

// RequestIDHeader carries the per-trigger request id on outgoing requests.
const RequestIDHeader = "X-Request-ID"

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a single request, mirroring an HTTP request configuration.
type Options struct {
	Method string      // defaults to GET
	Header http.Header // merged over the controller's default headers
	Body   []byte      // sent as-is; nil means no body
}

// controllerConfig holds configuration during controller construction.
type controllerConfig struct {
	doer   Doer
	header http.Header
	logger *log.Logger
}

// Option configures a [Controller].
type Option func(*controllerConfig)

// WithDoer sets the transport used for requests.
//
// Default: [http.DefaultClient]
func WithDoer(d Doer) Option {
	return func(c *controllerConfig) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithHeader adds a default header sent with every request.
// Per-request headers in [Options] override it.
func WithHeader(key, value string) Option {
	return func(c *controllerConfig) {
		c.header.Set(key, value)
	}
}

// WithLogger sets the logger for debug output about discarded and failed
// requests.
//
// Default: a logger that discards all output
func WithLogger(l *log.Logger) Option {
	return func(c *controllerConfig) {
		c.logger = l
	}
}

// Controller mediates one logical request at a time and publishes its outcome
// as a [State].
//
// Controller is safe for concurrent use. Listeners registered with
// [Controller.Subscribe] are invoked while an internal publish lock is held and
// must not call [Controller.Trigger] synchronously.
type Controller[T any] struct {
	doer   Doer
	header http.Header
	logger *log.Logger

	pubMu sync.Mutex // serializes mutate-and-notify

	mu        sync.Mutex
	state     State[T]
	seq       uint64
	cancelled bool
	listeners map[uint64]func(State[T])
	nextSub   uint64

	inflight sync.WaitGroup
}

// ticket identifies one Trigger call.
type ticket struct {
	seq   uint64
	id    string
	start time.Time
}

// New creates an idle controller. Each consumer session owns its own instance.
func New[T any](opts ...Option) *Controller[T] {
	cfg := &controllerConfig{
		doer:   http.DefaultClient,
		header: http.Header{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	return &Controller[T]{
		doer:      cfg.doer,
		header:    cfg.header,
		logger:    cfg.logger,
		listeners: make(map[uint64]func(State[T])),
	}
}

// State returns a snapshot of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called with every published state, in publish
// order. The returned function removes the subscription.
func (c *Controller[T]) Subscribe(fn func(State[T])) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Trigger starts a new request cycle for target.
//
// The Loading state is published before Trigger returns; the request itself
// runs in a separate goroutine and its outcome is observed through [Controller.State]
// or a subscription. Any earlier request still in flight is superseded: its
// completion is never published. Cancelling ctx aborts the transfer.
func (c *Controller[T]) Trigger(ctx context.Context, target string, opts Options) {
	t := c.startLoading()
	c.inflight.Add(1)

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	observability.Fetch().OnTrigger(ctx, t.id, method, target)

	go func() {
		defer c.inflight.Done()
		c.run(ctx, t, method, target, opts)
	}()
}

// startLoading supersedes any request in flight and publishes Loading.
func (c *Controller[T]) startLoading() ticket {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	c.seq++
	t := ticket{seq: c.seq, id: uuid.NewString(), start: time.Now()}
	c.cancelled = false
	c.state = State[T]{Phase: PhaseLoading}
	snap, subs := c.state, c.listenersLocked()
	c.mu.Unlock()

	notify(subs, snap)
	return t
}

// StopObserving suppresses publication from every request currently in
// flight. It is idempotent and leaves already published state untouched. The
// next [Controller.Trigger] clears it.
func (c *Controller[T]) StopObserving() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
}

// Wait blocks until every request goroutine started so far has finished.
func (c *Controller[T]) Wait() {
	c.inflight.Wait()
}

func (c *Controller[T]) run(ctx context.Context, t ticket, method, target string, opts Options) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(ctx, t, panicError(r))
		}
	}()

	req, err := c.newRequest(ctx, t, method, target, opts)
	if err != nil {
		c.fail(ctx, t, transportError(err))
		return
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		c.fail(ctx, t, transportError(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if reason := c.discardReason(t); reason != "" {
			c.discard(ctx, t, reason)
			return
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			c.fail(ctx, t, transportError(err))
			return
		}
		c.fail(ctx, t, statusError(resp, raw))
		return
	}

	var data T
	if err := decodeBody(resp.Body, &data); err != nil {
		c.fail(ctx, t, decodeError(err))
		return
	}
	c.publish(ctx, t, State[T]{Phase: PhaseSuccess, Data: data})
}

func (c *Controller[T]) newRequest(ctx context.Context, t ticket, method, target string, opts Options) (*http.Request, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, t.id)
	for k, v := range c.header {
		req.Header[k] = v
	}
	for k, v := range opts.Header {
		req.Header[k] = v
	}
	return req, nil
}

func (c *Controller[T]) fail(ctx context.Context, t ticket, e *errors.Error) {
	c.logger.Debug("Request failed", "id", t.id, "code", e.Code, "err", e.Message)
	c.publish(ctx, t, State[T]{Phase: PhaseFailure, Err: e})
}

// publish replaces the state with s unless t is no longer observed.
func (c *Controller[T]) publish(ctx context.Context, t ticket, s State[T]) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	if reason := c.discardReasonLocked(t); reason != "" {
		c.mu.Unlock()
		c.discard(ctx, t, reason)
		return
	}
	c.state = s
	subs := c.listenersLocked()
	c.mu.Unlock()

	notify(subs, s)
	observability.Fetch().OnPublish(ctx, t.id, s.Phase.String(), time.Since(t.start))
}

func (c *Controller[T]) discard(ctx context.Context, t ticket, reason string) {
	c.logger.Debug("Discarded completion", "id", t.id, "reason", reason)
	observability.Fetch().OnDiscard(ctx, t.id, reason)
}

func (c *Controller[T]) discardReason(t ticket) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discardReasonLocked(t)
}

func (c *Controller[T]) discardReasonLocked(t ticket) string {
	switch {
	case c.cancelled:
		return "stopped observing"
	case t.seq != c.seq:
		return "superseded"
	}
	return ""
}

func (c *Controller[T]) listenersLocked() []func(State[T]) {
	ids := slices.Sorted(maps.Keys(c.listeners))
	subs := make([]func(State[T]), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.listeners[id])
	}
	return subs
}

// decodeBody decodes exactly one JSON value from r into v.
func decodeBody(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = stderrors.New("unexpected data after JSON value")
		}
		return err
	}
	return nil
}

func notify[T any](subs []func(State[T]), s State[T]) {
	for _, fn := range subs {
		fn(s)
	}
}
