// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mcwebapi is a client for game servers exposing the web API plugin.
//
// A connection authenticates once with a shared key, then multiplexes any
// number of concurrent calls over a single socket. Each call is a JSON
// envelope {"id","module","method","args"}; the server answers with
// {"id","result"} or {"id","error"} in any order, and responses are matched
// back to their callers by id.
//
// # Usage
//
//	api, err := mcwebapi.Open(ctx, mcwebapi.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer api.Close()
//
//	// Typed facade
//	health, err := api.Player.GetHealth(ctx, "Steve")
//
//	// Any method, without client support
//	p := api.Module("player").Invoke(ctx, "getHealth", "Steve")
//	health, err = mcwebapi.Await[float64](ctx, p)
//
// Calls never block on the network. Invoke returns a *Promise which can be
// waited on (Wait, WaitContext, Decode), selected on (Done) or chained
// (Then). Every promise settles exactly once: with the server's result, a
// remote error (ErrRemote), a timeout (ErrTimeout), cancellation of the
// caller's context (ErrCanceled) or loss of the connection (ErrConnection).
//
// # Transport Selection
//
// WebSocket is the default transport. Set Config.Transport to select another:
//
//	ws   # WebSocket text frames (default)
//	tcp  # [4-byte length][payload] frames over a raw socket
//
// Additional transports can be added with RegisterTransport.
//
// # Architecture
//
//   - codec.go: envelope encoding and validation
//   - promise.go: single-assignment call results
//   - correlator.go: pending requests, ids and timeouts
//   - conn.go: connection state machine, reader and writer goroutines
//   - module.go: dynamic method dispatch
//   - transport.go: transport registry
//   - player.go, level.go, ...: typed facades for the built-in modules
package mcwebapi
