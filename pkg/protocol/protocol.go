// Package protocol defines the wire envelopes exchanged over stdin/stdout.
//
// Requests arrive one JSON object per line and name either a protocol-level
// request (getServerInfo) or a tool invocation (executeTool). Every request
// produces exactly one response envelope, success or error.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Request types understood by the server.
const (
	TypeGetServerInfo = "getServerInfo"
	TypeExecuteTool   = "executeTool"
)

// Response types emitted by the server.
const (
	TypeResponse = "response"
	TypeError    = "error"
)

// Request represents a single incoming request envelope.
type Request struct {
	Type   string          `json:"type"`
	ID     interface{}     `json:"id,omitempty"`
	Tool   string          `json:"tool,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ParamsMap decodes the request parameters into a generic map. A missing
// params field yields an empty map rather than an error.
func (r *Request) ParamsMap() (map[string]interface{}, error) {
	if len(r.Params) == 0 {
		return map[string]interface{}{}, nil
	}
	var params map[string]interface{}
	if err := json.Unmarshal(r.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return params, nil
}

// Response represents a single outgoing response envelope.
type Response struct {
	Type   string      `json:"type"`
	ID     interface{} `json:"id,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewResponse creates a success envelope for the given request ID.
func NewResponse(id interface{}, result interface{}) *Response {
	return &Response{
		Type:   TypeResponse,
		ID:     id,
		Result: result,
	}
}

// NewError creates an error envelope for the given request ID. The message
// is the sole payload; no partial result is ever attached.
func NewError(id interface{}, message string) *Response {
	return &Response{
		Type:  TypeError,
		ID:    id,
		Error: message,
	}
}
