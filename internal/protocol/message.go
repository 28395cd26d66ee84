package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	// MaxMessageSize is the largest envelope either side will read
	MaxMessageSize = 1 << 20
)

// Op names a protocol operation.
type Op string

const (
	OpLoadConfig              Op = "loadConfig"
	OpComputeChordProgression Op = "computeChordProgression"
)

// Valid reports whether the op is one the protocol defines.
func (o Op) Valid() bool {
	switch o {
	case OpLoadConfig, OpComputeChordProgression:
		return true
	}
	return false
}

// Request is sent by clients.
type Request struct {
	ID     string          `json:"id"`
	Op     Op              `json:"op"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Response is sent by the server, one per request.
type Response struct {
	ID       string `json:"id"`
	Op       Op     `json:"op"`
	Accepted bool   `json:"accepted,omitempty"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Err converts an error envelope into a *RemoteError, or returns nil.
func (r *Response) Err() error {
	if r.Error == "" {
		return nil
	}
	return &RemoteError{Op: r.Op, Message: r.Error}
}

// GenerateRequestID returns a fresh request identifier.
func GenerateRequestID() string {
	return uuid.NewString()
}

// NewLoadConfigRequest builds a loadConfig request carrying the raw
// configuration object.
func NewLoadConfigRequest(config json.RawMessage) *Request {
	return &Request{
		ID:     GenerateRequestID(),
		Op:     OpLoadConfig,
		Config: config,
	}
}

// NewComputeRequest builds a computeChordProgression request.
func NewComputeRequest() *Request {
	return &Request{
		ID: GenerateRequestID(),
		Op: OpComputeChordProgression,
	}
}

// AcceptedResponse answers a loadConfig request.
func AcceptedResponse(req *Request, accepted bool) *Response {
	return &Response{ID: req.ID, Op: req.Op, Accepted: accepted}
}

// ResultResponse answers a computeChordProgression request.
func ResultResponse(req *Request, result string) *Response {
	return &Response{ID: req.ID, Op: req.Op, Result: result}
}

// ErrorResponse reports a failure for req. A nil req yields an envelope
// without ID, used when the request itself could not be read.
func ErrorResponse(req *Request, err error) *Response {
	resp := &Response{Error: err.Error()}
	if req != nil {
		resp.ID = req.ID
		resp.Op = req.Op
	}
	return resp
}

// Encode serialises an envelope for a text frame.
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// ParseRequest decodes and validates a request envelope.
func ParseRequest(data []byte) (*Request, error) {
	if len(data) > MaxMessageSize {
		return nil, &MessageError{Reason: fmt.Sprintf("message too large: %d bytes (max %d)", len(data), MaxMessageSize)}
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &MessageError{Reason: "malformed request", Err: err}
	}
	if req.ID == "" {
		return &req, &MessageError{Reason: "request has no id"}
	}
	if !req.Op.Valid() {
		return &req, &MessageError{Reason: fmt.Sprintf("unknown op %q", req.Op), Err: ErrUnknownOp}
	}
	if req.Op == OpLoadConfig {
		trimmed := bytes.TrimSpace(req.Config)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return &req, &MessageError{Reason: "loadConfig request has no config"}
		}
	}
	return &req, nil
}

// ParseResponse decodes a response envelope.
func ParseResponse(data []byte) (*Response, error) {
	if len(data) > MaxMessageSize {
		return nil, &MessageError{Reason: fmt.Sprintf("message too large: %d bytes (max %d)", len(data), MaxMessageSize)}
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &MessageError{Reason: "malformed response", Err: err}
	}
	if resp.Op != "" && !resp.Op.Valid() {
		return nil, &MessageError{Reason: fmt.Sprintf("unknown op %q", resp.Op), Err: ErrUnknownOp}
	}
	return &resp, nil
}
