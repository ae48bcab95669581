// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Codec encodes/decodes envelopes
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec is a JSON-based codec
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}

// Request is an outgoing call envelope.
type Request struct {
	ID     uint64 `json:"id"`
	Module string `json:"module"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Response is an inbound envelope. Exactly one of Result and Error is set;
// a JSON null result is kept as the literal "null".
type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// Failed reports whether the response carries an error.
func (r *Response) Failed() bool {
	return r.Error != nil
}

// authRequest is the first frame sent after the transport opens.
type authRequest struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// authReply is the server's answer to authRequest.
type authReply struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

const authFrameType = "auth"

// EncodeRequest serializes req into a single frame.
func EncodeRequest(codec Codec, req Request) ([]byte, error) {
	if codec == nil {
		codec = defaultCodec
	}
	if req.Args == nil {
		req.Args = []any{}
	}
	data, err := codec.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("encode request %d: %w", req.ID, err)
	}
	return data, nil
}

// DecodeResponse parses one inbound frame. Anything that is not an object
// with an id and exactly one of result/error fails with ErrProtocol.
func DecodeResponse(codec Codec, frame []byte) (*Response, error) {
	if codec == nil {
		codec = defaultCodec
	}

	var fields map[string]json.RawMessage
	if err := codec.Decode(frame, &fields); err != nil {
		return nil, newError(CodeProtocol, "malformed frame", err)
	}
	if fields == nil {
		return nil, newError(CodeProtocol, "frame is not an object", nil)
	}

	rawID, ok := fields["id"]
	if !ok {
		return nil, newError(CodeProtocol, "frame has no id", nil)
	}
	var id uint64
	if err := codec.Decode(rawID, &id); err != nil {
		return nil, newError(CodeProtocol, fmt.Sprintf("invalid id %s", rawID), err)
	}

	result, hasResult := fields["result"]
	errField, hasError := fields["error"]
	if hasError && bytes.Equal(bytes.TrimSpace(errField), []byte("null")) {
		hasError = false
	}
	switch {
	case hasResult && hasError:
		return nil, newError(CodeProtocol, fmt.Sprintf("frame %d has both result and error", id), nil)
	case !hasResult && !hasError:
		return nil, newError(CodeProtocol, fmt.Sprintf("frame %d has neither result nor error", id), nil)
	}

	resp := &Response{ID: id}
	if hasError {
		resp.Error = bytes.Clone(errField)
	} else {
		resp.Result = bytes.Clone(result)
	}
	return resp, nil
}

func encodeAuth(codec Codec, key string) ([]byte, error) {
	return codec.Encode(authRequest{Type: authFrameType, Key: key})
}

func decodeAuth(codec Codec, frame []byte) (*authReply, error) {
	var reply authReply
	if err := codec.Decode(frame, &reply); err != nil {
		return nil, fmt.Errorf("decode auth reply: %w", err)
	}
	if reply.Type != authFrameType {
		return nil, fmt.Errorf("unexpected frame type %q during handshake", reply.Type)
	}
	return &reply, nil
}
