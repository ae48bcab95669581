// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	instrumentationName = "github.com/luxfi/mcwebapi"

	// outgoingQueueSize bounds frames waiting for the writer goroutine.
	outgoingQueueSize = 256

	retryInitialInterval = 100 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
)

// State is the lifecycle state of a Conn.
type State int32

const (
	// StateDisconnected is the initial and final state.
	StateDisconnected State = iota
	// StateConnecting means the transport is being opened.
	StateConnecting
	// StateAuthenticating means the auth key was sent and a reply is awaited.
	StateAuthenticating
	// StateConnected means calls may be sent.
	StateConnected
	// StateClosing means the session is being torn down.
	StateClosing
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateConnected:
		return "Connected"
	case StateClosing:
		return "Closing"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Conn is one authenticated connection to a game server. Any number of
// goroutines may call Send concurrently; a single reader goroutine resolves
// responses and a single writer goroutine owns outgoing frames.
type Conn struct {
	cfg     Config
	opts    options
	logger  *slog.Logger
	tracer  trace.Tracer
	limiter *rate.Limiter

	nextID  atomic.Uint64
	pending *correlator

	mu            sync.RWMutex
	state         State
	authenticated bool
	sess          *session
	connectCancel context.CancelFunc
	connecting    chan struct{}
}

// session is the state of one live transport.
type session struct {
	id        uuid.UUID
	transport Transport
	logger    *slog.Logger
	outgoing  chan outbound
	ctx       context.Context
	cancel    context.CancelFunc
	writeDone chan struct{}
	finished  chan struct{}
	once      sync.Once
}

type outbound struct {
	id   uint64
	data []byte
}

var _ Caller = (*Conn)(nil)

// NewConn creates a disconnected Conn. A zero Timeout or Transport falls
// back to the package defaults.
func NewConn(cfg Config, opts ...Option) *Conn {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Transport == "" {
		cfg.Transport = DefaultTransport
	}

	c := &Conn{
		cfg:     cfg,
		pending: newCorrelator(cfg.MaxPending),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.opts.codec == nil {
		c.opts.codec = defaultCodec
	}
	if c.opts.logger == nil {
		c.opts.logger = slog.New(slog.DiscardHandler)
	}
	if c.opts.tracerProvider == nil {
		c.opts.tracerProvider = otel.GetTracerProvider()
	}
	c.logger = c.opts.logger.With("component", "mcwebapi")
	c.tracer = c.opts.tracerProvider.Tracer(instrumentationName)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	c.pending.onSettle = c.logSettled
	return c
}

// Config returns the configuration the Conn was built with.
func (c *Conn) Config() Config {
	return c.cfg
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the Conn is in StateConnected.
func (c *Conn) IsConnected() bool {
	return c.State() == StateConnected
}

// IsAuthenticated reports whether the server accepted the auth key for the
// current session.
func (c *Conn) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated && c.state == StateConnected
}

// Pending returns the number of in-flight requests.
func (c *Conn) Pending() int {
	return c.pending.len()
}

// setState transitions to a new state (caller must hold lock).
func (c *Conn) setState(next State) {
	prev := c.state
	c.state = next
	c.logger.Debug("state transition", "from", prev.String(), "to", next.String())
}

// Connect opens the transport, authenticates and starts the receive loop.
// It is only valid from StateDisconnected. Failed attempts leave the Conn
// disconnected and usable for another Connect.
func (c *Conn) Connect(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return newError(CodeConnection, "invalid config", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return newError(CodeInvalidState, fmt.Sprintf("cannot connect from state %s", state), nil)
	}
	c.setState(StateConnecting)
	connecting := make(chan struct{})
	c.connecting = connecting
	c.connectCancel = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.connecting = nil
		c.connectCancel = nil
		c.mu.Unlock()
		close(connecting)
	}()

	c.logger.Info("connecting", "config", c.cfg)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.MaxInterval = retryMaxInterval

	sess, err := backoff.Retry(ctx, func() (*session, error) {
		return c.open(ctx)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.cfg.ConnectRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("connect attempt failed", "error", err, "retry_in", wait)
		}),
	)
	if err == nil && ctx.Err() != nil {
		sess.transport.Close()
		err = ctx.Err()
	}
	if err != nil {
		c.mu.Lock()
		c.setState(StateDisconnected)
		c.mu.Unlock()

		var e *Error
		if !errors.As(err, &e) {
			err = newError(CodeConnection, "connect aborted", err)
		}
		c.logger.Warn("connect failed", "error", err)
		return err
	}

	c.mu.Lock()
	c.sess = sess
	c.authenticated = true
	c.setState(StateConnected)
	c.mu.Unlock()

	go c.readLoop(sess)
	go c.writeLoop(sess)

	sess.logger.Info("connected")
	return nil
}

// open performs one dial + handshake attempt.
func (c *Conn) open(ctx context.Context) (*session, error) {
	c.mu.Lock()
	c.setState(StateConnecting)
	c.mu.Unlock()

	dial := c.opts.dial
	if dial == nil {
		var ok bool
		if dial, ok = lookupTransport(c.cfg.Transport); !ok {
			return nil, backoff.Permanent(newError(CodeConnection,
				fmt.Sprintf("unknown transport %q", c.cfg.Transport), nil))
		}
	}

	hsCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	t, err := dial(hsCtx, c.cfg, &c.opts)
	if err != nil {
		return nil, newError(CodeConnection, "open transport", err)
	}

	c.mu.Lock()
	c.setState(StateAuthenticating)
	c.mu.Unlock()

	if err := c.authenticate(hsCtx, t); err != nil {
		t.Close()
		return nil, err
	}

	sessCtx, sessCancel := context.WithCancel(context.Background())
	id := uuid.New()
	return &session{
		id:        id,
		transport: t,
		logger:    c.logger.With("session_id", id.String()),
		outgoing:  make(chan outbound, outgoingQueueSize),
		ctx:       sessCtx,
		cancel:    sessCancel,
		writeDone: make(chan struct{}),
		finished:  make(chan struct{}),
	}, nil
}

// authenticate sends the auth key and waits for the server's verdict.
func (c *Conn) authenticate(ctx context.Context, t Transport) error {
	frame, err := encodeAuth(c.opts.codec, c.cfg.AuthKey)
	if err != nil {
		return backoff.Permanent(newError(CodeAuthentication, "encode auth frame", err))
	}
	if err := t.Send(ctx, frame); err != nil {
		return newError(CodeAuthentication, "send auth key", err)
	}

	raw, err := t.Recv(ctx)
	if err != nil {
		return newError(CodeAuthentication, "await handshake reply", err)
	}
	reply, err := decodeAuth(c.opts.codec, raw)
	if err != nil {
		return newError(CodeAuthentication, "invalid handshake reply", err)
	}
	if !reply.Success {
		msg := reply.Message
		if msg == "" {
			msg = "auth key rejected"
		}
		return backoff.Permanent(newError(CodeAuthentication, msg, nil))
	}
	return nil
}

// Disconnect tears down the session, rejecting every pending request with
// ErrConnection before returning. It is safe to call repeatedly and from
// any state; calling it while Connect is in progress aborts the attempt.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	if c.connecting != nil {
		cancel, connecting := c.connectCancel, c.connecting
		c.mu.Unlock()
		cancel()
		<-connecting
		c.mu.Lock()
	}

	sess := c.sess
	if c.state == StateDisconnected || sess == nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.shutdown(sess, errConnectionClose)
	return nil
}

// Close is an alias for Disconnect so a Conn can be used as an io.Closer.
func (c *Conn) Close() error {
	return c.Disconnect()
}

// shutdown runs the Closing -> Disconnected transition for sess exactly
// once; concurrent callers wait until it completed. The Conn is already
// Disconnected when pending requests are rejected, so continuations may
// call Disconnect or Connect.
func (c *Conn) shutdown(sess *session, cause error) {
	sess.once.Do(func() {
		c.mu.Lock()
		c.setState(StateClosing)
		c.mu.Unlock()

		sess.cancel()
		if err := sess.transport.Close(); err != nil {
			sess.logger.Debug("transport close", "error", err)
		}
		<-sess.writeDone

		orphans := c.pending.detachAll()

		c.mu.Lock()
		c.sess = nil
		c.authenticated = false
		c.setState(StateDisconnected)
		c.mu.Unlock()

		c.pending.rejectEntries(orphans, cause)
		sess.logger.Info("disconnected", "rejected", len(orphans), "cause", cause)
		close(sess.finished)
	})
	<-sess.finished
}

// Send allocates the next request id, registers the call and queues its
// frame for the writer. The outcome is delivered through the returned
// promise. Outside StateConnected it fails immediately with
// ErrNotConnected, and a ctx that is already done fails with ErrCanceled
// without anything being sent.
//
// Send does not wait for the network, only for room in the outgoing
// queue: when the transport stalls and the queue is full, Send blocks
// until the writer drains it, ctx ends or the session closes.
func (c *Conn) Send(ctx context.Context, module, method string, args []any, opts ...CallOption) (*Promise, error) {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}
	timeout := c.cfg.Timeout
	if co.hasTimeout {
		timeout = co.timeout
	}
	if args == nil {
		args = []any{}
	}

	if err := c.checkSendable(ctx, module, method); err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newError(CodeCanceled, "rate limit wait", err)
		}
	}

	req := Request{
		ID:     c.nextID.Add(1),
		Module: module,
		Method: method,
		Args:   args,
	}
	data, err := EncodeRequest(c.opts.codec, req)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, module+"."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "mcwebapi"),
			attribute.String("rpc.service", module),
			attribute.String("rpc.method", method),
			attribute.Int64("mcwebapi.request_id", int64(req.ID)),
		),
	)

	promise := newPromise()
	promise.onSettle(func() {
		if promise.err != nil {
			span.RecordError(promise.err)
			span.SetStatus(otelcodes.Error, promise.err.Error())
		}
		span.End()
	})

	c.mu.RLock()
	if err := c.checkSendableLocked(ctx, module, method); err != nil {
		c.mu.RUnlock()
		promise.reject(err)
		return nil, err
	}
	sess := c.sess
	err = c.pending.register(req, promise, timeout)
	c.mu.RUnlock()
	if err != nil {
		promise.reject(err)
		return nil, err
	}

	if ctx.Done() != nil {
		id := req.ID
		stop := context.AfterFunc(ctx, func() {
			c.pending.cancel(id, canceledError(ctx, module, method, id))
		})
		c.pending.attachCancel(id, stop)
	}

	// A done ctx wins over a free queue slot.
	if ctx.Err() != nil {
		c.pending.cancel(req.ID, canceledError(ctx, module, method, req.ID))
		return promise, nil
	}
	select {
	case sess.outgoing <- outbound{id: req.ID, data: data}:
	case <-sess.ctx.Done():
		c.pending.cancel(req.ID, errConnectionClose)
	case <-ctx.Done():
		c.pending.cancel(req.ID, canceledError(ctx, module, method, req.ID))
		return promise, nil
	}

	if c.opts.onSend != nil {
		c.opts.onSend(req)
	}
	return promise, nil
}

func (c *Conn) checkSendable(ctx context.Context, module, method string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checkSendableLocked(ctx, module, method)
}

// checkSendableLocked must be called with c.mu held.
func (c *Conn) checkSendableLocked(ctx context.Context, module, method string) error {
	if c.state != StateConnected {
		return newError(CodeNotConnected, fmt.Sprintf("%s.%s called in state %s", module, method, c.state), nil)
	}
	if ctx.Err() != nil {
		return newError(CodeCanceled, fmt.Sprintf("%s.%s not sent", module, method), context.Cause(ctx))
	}
	return nil
}

func canceledError(ctx context.Context, module, method string, id uint64) error {
	return newError(CodeCanceled, fmt.Sprintf("%s.%s (id %d)", module, method, id), context.Cause(ctx))
}

func (c *Conn) writeLoop(sess *session) {
	defer close(sess.writeDone)
	for {
		select {
		case <-sess.ctx.Done():
			return
		case out := <-sess.outgoing:
			// Canceled or expired while queued.
			if !c.pending.has(out.id) {
				continue
			}
			ctx, cancel := context.WithTimeout(sess.ctx, c.cfg.Timeout)
			err := sess.transport.Send(ctx, out.data)
			cancel()
			if err != nil {
				if sess.ctx.Err() != nil {
					return
				}
				sess.logger.Error("write failed", "request_id", out.id, "error", err)
				// shutdown waits for this loop to exit and rejects out.id
				// with the rest, so no continuation runs on this goroutine.
				go c.shutdown(sess, newError(CodeConnection, "write request", err))
				return
			}
		}
	}
}

// readLoop is the only place responses are resolved.
func (c *Conn) readLoop(sess *session) {
	for {
		frame, err := sess.transport.Recv(sess.ctx)
		if err != nil {
			if sess.ctx.Err() == nil {
				sess.logger.Warn("connection lost", "error", err)
			}
			c.shutdown(sess, newError(CodeConnection, "connection lost", err))
			return
		}
		c.dispatch(sess, frame)
	}
}

func (c *Conn) dispatch(sess *session, frame []byte) {
	resp, err := DecodeResponse(c.opts.codec, frame)
	if err != nil {
		c.anomaly(sess, err)
		return
	}
	if c.opts.onReceive != nil {
		c.opts.onReceive(*resp)
	}
	if !c.pending.resolve(resp) {
		c.anomaly(sess, newError(CodeProtocol, fmt.Sprintf("unmatched response id %d", resp.ID), nil))
	}
}

func (c *Conn) anomaly(sess *session, err error) {
	sess.logger.Warn("protocol anomaly", "error", err)
	if c.opts.onAnomaly != nil {
		c.opts.onAnomaly(err)
	}
}

func (c *Conn) logSettled(p *pendingRequest, err error) {
	c.logger.Debug("request settled",
		"request_id", p.req.ID,
		"module", p.req.Module,
		"method", p.req.Method,
		"elapsed", time.Since(p.created),
		"error", err,
	)
}
