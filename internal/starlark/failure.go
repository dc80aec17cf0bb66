package starlark

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
)

// FieldFailure attributes a failure to one input field.
type FieldFailure struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Failure is the value returned by the error and invalid builtins. A script
// whose result is a Failure reports that failure instead of a value.
type Failure struct {
	Message string         `json:"message"`
	Fields  []FieldFailure `json:"fields,omitempty"`
}

var _ starlark.Value = (*Failure)(nil)

// String implements starlark.Value
func (f *Failure) String() string {
	if len(f.Fields) == 0 {
		return fmt.Sprintf("<failure %q>", f.Message)
	}
	parts := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		parts[i] = fmt.Sprintf("%s: %s", field.Field, field.Message)
	}
	return fmt.Sprintf("<invalid %s>", strings.Join(parts, "; "))
}

// Type implements starlark.Value
func (f *Failure) Type() string { return "failure" }

// Freeze implements starlark.Value
func (f *Failure) Freeze() {}

// Truth implements starlark.Value
func (f *Failure) Truth() starlark.Bool { return starlark.False }

// Hash implements starlark.Value
func (f *Failure) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: failure")
}

// Invalid reports whether the failure is attributed to input fields.
func (f *Failure) Invalid() bool { return len(f.Fields) > 0 }

// errorBuiltin implements error(message).
func errorBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "message", &message); err != nil {
		return nil, err
	}
	return &Failure{Message: message}, nil
}

// invalidBuiltin implements invalid(field, message, code="invalid").
func invalidBuiltin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var field, message string
	code := "invalid"
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "field", &field, "message", &message, "code?", &code); err != nil {
		return nil, err
	}
	return &Failure{
		Message: fmt.Sprintf("%s: %s", field, message),
		Fields:  []FieldFailure{{Field: field, Code: code, Message: message}},
	}, nil
}
