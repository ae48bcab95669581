// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/rpc/v2/json2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is a machine-readable client error code.
type Code string

const (
	// CodeConnection means the transport could not be opened or dropped mid-session.
	CodeConnection Code = "CONNECTION"
	// CodeAuthentication means the handshake was rejected or timed out.
	CodeAuthentication Code = "AUTHENTICATION"
	// CodeNotConnected means a call was attempted outside the Connected state.
	CodeNotConnected Code = "NOT_CONNECTED"
	// CodeTimeout means a request deadline elapsed with no matching response.
	CodeTimeout Code = "TIMEOUT"
	// CodeRemote means the server answered with an error envelope.
	CodeRemote Code = "REMOTE"
	// CodeProtocol marks a malformed or unmatched inbound frame.
	CodeProtocol Code = "PROTOCOL"
	// CodeInvalidState means a lifecycle operation was called from the wrong state.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeTooManyPending means the pending-request limit was reached.
	CodeTooManyPending Code = "TOO_MANY_PENDING"
	// CodeCanceled means the caller's context ended before a response arrived.
	CodeCanceled Code = "CANCELED"
)

// GRPCCode maps client codes onto the canonical gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeConnection:
		return codes.Unavailable
	case CodeAuthentication:
		return codes.Unauthenticated
	case CodeNotConnected, CodeInvalidState:
		return codes.FailedPrecondition
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeProtocol:
		return codes.DataLoss
	case CodeTooManyPending:
		return codes.ResourceExhausted
	case CodeCanceled:
		return codes.Canceled
	case CodeRemote:
		return codes.Unknown
	default:
		return codes.Internal
	}
}

// Error is the error type returned by every client operation.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable description
	Cause   error  // Wrapped underlying error

	// Remote holds the server-provided error for CodeRemote.
	Remote *json2.Error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mcwebapi: %s: %v", e.Message, e.Cause)
	}
	return "mcwebapi: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// GRPCStatus lets status.Code and status.Convert classify client errors.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code.GRPCCode(), e.Error())
}

// Sentinels for errors.Is. Matching is by Code only.
var (
	ErrConnection      = &Error{Code: CodeConnection, Message: "connection error"}
	ErrAuthentication  = &Error{Code: CodeAuthentication, Message: "authentication failed"}
	ErrNotConnected    = &Error{Code: CodeNotConnected, Message: "not connected"}
	ErrTimeout         = &Error{Code: CodeTimeout, Message: "request timed out"}
	ErrRemote          = &Error{Code: CodeRemote, Message: "remote error"}
	ErrProtocol        = &Error{Code: CodeProtocol, Message: "protocol anomaly"}
	ErrInvalidState    = &Error{Code: CodeInvalidState, Message: "invalid connection state"}
	ErrTooManyPending  = &Error{Code: CodeTooManyPending, Message: "too many pending requests"}
	ErrCanceled        = &Error{Code: CodeCanceled, Message: "request canceled"}
	errConnectionClose = &Error{Code: CodeConnection, Message: "connection closed"}
)

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// remoteError converts the raw "error" member of a response envelope.
// Strings become E_SERVER errors; objects are decoded as JSON-RPC errors
// so that code, message and data survive intact.
func remoteError(raw json.RawMessage) *Error {
	remote := &json2.Error{Code: json2.E_SERVER}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		remote.Message = msg
	} else if err := json.Unmarshal(raw, remote); err != nil || remote.Message == "" {
		remote.Message = string(raw)
	}
	return &Error{Code: CodeRemote, Message: remote.Message, Remote: remote}
}
