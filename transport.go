// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Transport types
const (
	TransportWebSocket = "ws"  // WebSocket text frames, default
	TransportTCP       = "tcp" // Length-prefixed frames over a raw socket
)

// DefaultTransport is the default transport type (WebSocket)
const DefaultTransport = TransportWebSocket

// MessageSizeLimit caps a single inbound frame (64MB).
const MessageSizeLimit = 64 * 1024 * 1024

// ErrTransportClosed is returned by a transport after Close.
var ErrTransportClosed = errors.New("transport closed")

type dialFunc func(ctx context.Context, cfg Config, o *options) (Transport, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]dialFunc{
		TransportWebSocket: dialWebSocket,
		TransportTCP:       dialTCP,
	}
)

// RegisterTransport makes a transport available under name for Config.Transport.
func RegisterTransport(name string, dial func(ctx context.Context, cfg Config) (Transport, error)) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = func(ctx context.Context, cfg Config, _ *options) (Transport, error) {
		return dial(ctx, cfg)
	}
}

// AvailableTransports returns list of available transport types
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport is available
func HasTransport(name string) bool {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	_, ok := transports[name]
	return ok
}

func lookupTransport(name string) (dialFunc, bool) {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	dial, ok := transports[name]
	return dial, ok
}

// deadline returns the context deadline, or the zero time for none.
func deadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Time{}
}
