// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Caller is what module facades need from a connection. Facades never reach
// into the correlator or the transport.
type Caller interface {
	// Send dispatches module.method(args...) and returns its promise
	// without waiting for the network.
	Send(ctx context.Context, module, method string, args []any, opts ...CallOption) (*Promise, error)

	// IsConnected reports whether calls can currently be sent.
	IsConnected() bool

	// IsAuthenticated reports whether the handshake has been accepted.
	IsAuthenticated() bool
}

// Transport is a bidirectional frame stream to the game server.
type Transport interface {
	io.Closer
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context) ([]byte, error)
}

// Option configures a Conn
type Option func(*options)

type options struct {
	codec          Codec
	logger         *slog.Logger
	header         http.Header
	tracerProvider trace.TracerProvider
	onSend         func(Request)
	onReceive      func(Response)
	onAnomaly      func(error)
	dial           dialFunc
}

// WithCodec sets a custom codec
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHeader adds HTTP headers to the WebSocket upgrade request.
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithTracerProvider sets the provider used to trace calls. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithOnSend registers a hook invoked for every request handed to the transport.
func WithOnSend(fn func(Request)) Option {
	return func(o *options) { o.onSend = fn }
}

// WithOnReceive registers a hook invoked for every well-formed response.
func WithOnReceive(fn func(Response)) Option {
	return func(o *options) { o.onReceive = fn }
}

// WithAnomalyHandler registers a hook for malformed or unmatched frames.
// Anomalies are always logged; they never close the connection.
func WithAnomalyHandler(fn func(error)) Option {
	return func(o *options) { o.onAnomaly = fn }
}

// withDialer replaces transport dialing; used by tests.
func withDialer(fn dialFunc) Option {
	return func(o *options) { o.dial = fn }
}

// CallOption configures a single Send.
type CallOption func(*callOptions)

type callOptions struct {
	timeout    time.Duration
	hasTimeout bool
}

// WithTimeout overrides the connection's default timeout for one call.
// A timeout <= 0 disables expiry for that call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = d
		o.hasTimeout = true
	}
}
