package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/barnabasJ/ash-ai/internal/types"
)

// Call is a single invocation handed to an Invoker. Arguments are always
// string-keyed and never nil.
type Call struct {
	Tool      ToolDefinition
	Arguments map[string]any
	Context   types.ExecutionContext
}

// Input returns the nested "input" object of the call's arguments, or an
// empty map when the tool takes no parameters.
func (c Call) Input() map[string]any {
	if input, ok := c.Arguments["input"].(map[string]any); ok {
		return input
	}
	return map[string]any{}
}

// Invoker runs the callable behind a tool definition.
type Invoker interface {
	Invoke(ctx context.Context, call Call) Result
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, call Call) Result

// Invoke calls f(ctx, call).
func (f InvokerFunc) Invoke(ctx context.Context, call Call) Result {
	return f(ctx, call)
}

// ResultKind tags the three shapes a callable may return.
type ResultKind int

const (
	// ResultText is a payload already serialized as a string.
	ResultText ResultKind = iota
	// ResultFailure is an explicit failure reason.
	ResultFailure
	// ResultValue is any other value; the dispatcher serializes it.
	ResultValue
)

// Result is the tagged return value of an Invoker.
type Result struct {
	Kind   ResultKind
	Text   string
	Value  any
	Reason error
}

// Ok returns a successful result carrying a serialized payload.
func Ok(payload string) Result {
	return Result{Kind: ResultText, Text: payload}
}

// Fail returns a failed result. A nil reason is replaced with a generic one
// so that a failure never carries a nil error.
func Fail(reason error) Result {
	if reason == nil {
		reason = fmt.Errorf("action failed without a reason")
	}
	return Result{Kind: ResultFailure, Reason: reason}
}

// Value returns a successful result carrying an unserialized value.
func Value(v any) Result {
	return Result{Kind: ResultValue, Value: v}
}

// Field error codes understood by the dispatcher's classifier.
const (
	CodeRequired   = "required"
	CodeInvalid    = "invalid"
	CodeBadRequest = "bad_request"
)

// FieldError is a single caller-attributable problem with an argument.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InvalidError reports that a call was rejected because of its arguments.
type InvalidError struct {
	Errors []FieldError
}

// Invalid builds an InvalidError from field errors.
func Invalid(errs ...FieldError) *InvalidError {
	return &InvalidError{Errors: errs}
}

func (e *InvalidError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid arguments"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "invalid arguments: " + strings.Join(parts, "; ")
}
