// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import "context"

// NamedArg is an argument passed by name. The wire format is positional, so
// named arguments travel after the positional ones in the order supplied.
type NamedArg struct {
	Name  string
	Value any
}

// Named builds a NamedArg.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// Module routes arbitrary method calls to one server-side module. New
// server methods are reachable through Invoke without client changes;
// whether the method exists is only known once the response arrives.
type Module struct {
	name   string
	caller Caller
}

// NewModule binds name to caller.
func NewModule(name string, caller Caller) *Module {
	return &Module{name: name, caller: caller}
}

// Name returns the module name used on the wire.
func (m *Module) Name() string {
	return m.name
}

// Invoke calls method with args. NamedArg values are moved after the
// positional arguments. If the call cannot be sent (for example while
// disconnected) the returned promise is already rejected.
func (m *Module) Invoke(ctx context.Context, method string, args ...any) *Promise {
	return m.InvokeWith(ctx, method, args, nil)
}

// InvokeWith is Invoke with per-call options.
func (m *Module) InvokeWith(ctx context.Context, method string, args []any, opts []CallOption) *Promise {
	p, err := m.caller.Send(ctx, m.name, method, flattenArgs(args), opts...)
	if err != nil {
		return Rejected(err)
	}
	return p
}

// call invokes method and decodes the result into out; out may be nil.
func (m *Module) call(ctx context.Context, out any, method string, args ...any) error {
	return m.Invoke(ctx, method, args...).Decode(ctx, out)
}

func flattenArgs(args []any) []any {
	flat := make([]any, 0, len(args))
	var named []any
	for _, arg := range args {
		if n, ok := arg.(NamedArg); ok {
			named = append(named, n.Value)
			continue
		}
		flat = append(flat, arg)
	}
	return append(flat, named...)
}

// IsConnected reports whether the underlying connection can send calls.
func (m *Module) IsConnected() bool {
	return m.caller.IsConnected()
}

// IsAuthenticated reports whether the underlying connection is authenticated.
func (m *Module) IsAuthenticated() bool {
	return m.caller.IsAuthenticated()
}
