// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "no args",
			req:  Request{ID: 1, Module: "player", Method: "getHealth"},
			want: `{"id":1,"module":"player","method":"getHealth","args":[]}`,
		},
		{
			name: "mixed args",
			req:  Request{ID: 7, Module: "level", Method: "setBlock", Args: []any{"minecraft:overworld", 1, 64, -3, "stone"}},
			want: `{"id":7,"module":"level","method":"setBlock","args":["minecraft:overworld",1,64,-3,"stone"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRequest(nil, tt.req)
			if err != nil {
				t.Fatalf("EncodeRequest: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  *Response
	}{
		{
			name:  "result",
			frame: `{"id":1,"result":20.0}`,
			want:  &Response{ID: 1, Result: json.RawMessage(`20.0`)},
		},
		{
			name:  "null result is a success",
			frame: `{"id":3,"result":null}`,
			want:  &Response{ID: 3, Result: json.RawMessage(`null`)},
		},
		{
			name:  "string error",
			frame: `{"id":2,"error":"Unknown method: run"}`,
			want:  &Response{ID: 2, Error: json.RawMessage(`"Unknown method: run"`)},
		},
		{
			name:  "null error alongside result",
			frame: `{"id":4,"result":{"ok":true},"error":null}`,
			want:  &Response{ID: 4, Result: json.RawMessage(`{"ok":true}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse(nil, []byte(tt.frame))
			if err != nil {
				t.Fatalf("DecodeResponse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeResponseRejectsMalformed(t *testing.T) {
	frames := map[string]string{
		"not json":     `not json`,
		"array":        `[1,2]`,
		"null":         `null`,
		"missing id":   `{"result":1}`,
		"string id":    `{"id":"1","result":1}`,
		"negative id":  `{"id":-1,"result":1}`,
		"both members": `{"id":1,"result":1,"error":"boom"}`,
		"neither":      `{"id":1}`,
	}

	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeResponse(nil, []byte(frame))
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("got %v, want ErrProtocol", err)
			}
		})
	}
}

func TestAuthFrames(t *testing.T) {
	frame, err := encodeAuth(defaultCodec, "secret")
	if err != nil {
		t.Fatalf("encodeAuth: %v", err)
	}
	if got, want := string(frame), `{"type":"auth","key":"secret"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	reply, err := decodeAuth(defaultCodec, []byte(`{"type":"auth","success":false,"message":"invalid auth key"}`))
	if err != nil {
		t.Fatalf("decodeAuth: %v", err)
	}
	if diff := cmp.Diff(&authReply{Type: "auth", Message: "invalid auth key"}, reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}

	if _, err := decodeAuth(defaultCodec, []byte(`{"id":1,"result":1}`)); err == nil {
		t.Error("decodeAuth accepted a response envelope")
	}
}
