package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/barnabasJ/ash-ai/internal/host"
)

// Error codes of the three-tier taxonomy.
const (
	CodeInvalidParams  int64 = jsonrpc.CodeInvalidParams
	CodeMethodNotFound int64 = jsonrpc.CodeMethodNotFound
	CodeExecutionError int64 = -32000
)

// ErrLookupUnavailable means no tool set can be resolved at all, as opposed
// to a tool missing from a resolved set.
var ErrLookupUnavailable = errors.New("tool lookup unavailable")

// NotFoundError reports a tool name missing from the active tool set.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Tool '%s' not found", e.Name)
}

// LoadError reports that the active tool set could not be resolved.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load tools: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PanicError is a panic recovered while invoking a callable.
type PanicError struct {
	Tool  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Tool, e.Value)
}

// Envelope is the protocol-level error a failed call is reported as.
type Envelope struct {
	Code    int64
	Message string
	Data    any
}

func (e *Envelope) Error() string {
	return e.Message
}

// Wire converts the envelope to the go-sdk JSON-RPC error type.
func (e *Envelope) Wire() *jsonrpc.Error {
	wire := &jsonrpc.Error{Code: e.Code, Message: e.Message}
	if e.Data != nil {
		if data, err := json.Marshal(e.Data); err == nil {
			wire.Data = data
		}
	}
	return wire
}

// Classify maps a failure reason onto the error taxonomy.
func Classify(reason error) *Envelope {
	var (
		notFound *NotFoundError
		load     *LoadError
		invalid  *host.InvalidError
		envelope *Envelope
	)
	switch {
	case reason == nil:
		return &Envelope{Code: CodeExecutionError, Message: "Tool execution failed: unknown error"}
	case errors.As(reason, &envelope):
		return envelope
	case errors.Is(reason, ErrLookupUnavailable):
		return &Envelope{Code: CodeMethodNotFound, Message: "Tool lookup unavailable"}
	case errors.As(reason, &notFound):
		return &Envelope{Code: CodeInvalidParams, Message: notFound.Error()}
	case errors.As(reason, &load):
		return &Envelope{Code: CodeInvalidParams, Message: load.Error()}
	case errors.As(reason, &invalid):
		return &Envelope{
			Code:    CodeInvalidParams,
			Message: invalid.Error(),
			Data:    map[string]any{"errors": invalid.Errors},
		}
	default:
		return &Envelope{Code: CodeExecutionError, Message: "Tool execution failed: " + reason.Error()}
	}
}
