// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/rpc/v2/json2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("call: %w", newError(CodeTimeout, "player.getHealth (id 1)", nil))
	if !errors.Is(err, ErrTimeout) {
		t.Error("wrapped timeout does not match ErrTimeout")
	}
	if errors.Is(err, ErrRemote) {
		t.Error("timeout matches ErrRemote")
	}

	cause := errors.New("dial tcp: refused")
	err = newError(CodeConnection, "open transport", cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if got, want := err.Error(), "mcwebapi: open transport: dial tcp: refused"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGRPCStatus(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeConnection, codes.Unavailable},
		{CodeAuthentication, codes.Unauthenticated},
		{CodeNotConnected, codes.FailedPrecondition},
		{CodeInvalidState, codes.FailedPrecondition},
		{CodeTimeout, codes.DeadlineExceeded},
		{CodeRemote, codes.Unknown},
		{CodeProtocol, codes.DataLoss},
		{CodeTooManyPending, codes.ResourceExhausted},
		{CodeCanceled, codes.Canceled},
		{Code("SOMETHING_ELSE"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", newError(tt.code, "x", nil))
			if got := status.Code(err); got != tt.want {
				t.Errorf("status.Code = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRemoteError(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *json2.Error
	}{
		{
			name: "string",
			raw:  `"Unknown method: run"`,
			want: &json2.Error{Code: json2.E_SERVER, Message: "Unknown method: run"},
		},
		{
			name: "object",
			raw:  `{"code":-32602,"message":"bad args","data":{"arg":0}}`,
			want: &json2.Error{Code: json2.E_BAD_PARAMS, Message: "bad args", Data: map[string]any{"arg": float64(0)}},
		},
		{
			name: "object without message",
			raw:  `{"code":7}`,
			want: &json2.Error{Code: 7, Message: `{"code":7}`},
		},
		{
			name: "number",
			raw:  `42`,
			want: &json2.Error{Code: json2.E_SERVER, Message: "42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := remoteError(json.RawMessage(tt.raw))
			if err.Code != CodeRemote {
				t.Errorf("code = %s", err.Code)
			}
			if err.Message != tt.want.Message {
				t.Errorf("message = %q, want %q", err.Message, tt.want.Message)
			}
			if diff := cmp.Diff(tt.want, err.Remote); diff != "" {
				t.Errorf("remote mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
