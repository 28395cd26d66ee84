package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is wrapped by errors for envelopes naming an undefined op.
var ErrUnknownOp = errors.New("unknown operation")

// MessageError reports an envelope that could not be decoded or is invalid.
type MessageError struct {
	Reason string
	Err    error
}

func (e *MessageError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, ErrUnknownOp) {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

// RemoteError is a failure reported by the engine server.
type RemoteError struct {
	Op      Op
	Message string
}

func (e *RemoteError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("remote engine error: %s", e.Message)
	}
	return fmt.Sprintf("remote engine error during %s: %s", e.Op, e.Message)
}
