// Package starlark runs the Starlark scripts behind scripted actions.
package starlark

import (
	"fmt"

	starjson "go.starlark.net/lib/json"
	starmath "go.starlark.net/lib/math"
	startime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Bindings are the globals an action script sees.
type Bindings struct {
	Input            map[string]any
	Arguments        map[string]any
	ActionParameters map[string]any
	Actor            any
	Tenant           string
	Context          map[string]any
	// Store is exposed as the store global when set.
	Store *StoreNamespace
	// Name labels the thread in errors and logs.
	Name string
}

// Result represents the result of executing Starlark code
type Result struct {
	Result  any      `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
	Logs    []string `json:"logs,omitempty"`
}

var fileOptions = &syntax.FileOptions{
	Set:               true,
	While:             true,
	TopLevelControl:   true,
	GlobalReassign:    true,
	LoadBindsGlobally: true,
	Recursion:         true,
}

// Execute runs code with the given bindings. A single expression is
// evaluated directly; a program returns its result global, or None.
// Script errors are reported in Result.Error; the returned error is only
// set when the bindings cannot be converted.
func Execute(code string, bindings Bindings) (*Result, error) {
	predeclared, err := bindings.predeclared()
	if err != nil {
		return nil, fmt.Errorf("failed to convert bindings: %w", err)
	}

	name := bindings.Name
	if name == "" {
		name = "action"
	}
	out := &Result{}
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			out.Logs = append(out.Logs, msg)
		},
	}

	var result starlark.Value
	if _, parseErr := fileOptions.ParseExpr("<"+name+">", code, 0); parseErr == nil {
		result, err = starlark.EvalOptions(fileOptions, thread, "<"+name+">", code, predeclared)
		if err != nil {
			out.Error = fmt.Sprintf("Evaluation error: %s", errorText(err))
			return out, nil
		}
	} else {
		globals, execErr := starlark.ExecFileOptions(fileOptions, thread, "<"+name+">", code, predeclared)
		if execErr != nil {
			out.Error = fmt.Sprintf("Execution error: %s", errorText(execErr))
			return out, nil
		}
		result = starlark.None
		if v, ok := globals["result"]; ok {
			result = v
		}
	}

	if failure, ok := result.(*Failure); ok {
		out.Failure = failure
		return out, nil
	}

	goResult, err := StarlarkToGoValue(result)
	if err != nil {
		out.Error = fmt.Sprintf("Result conversion error: %v", err)
		return out, nil
	}
	out.Result = goResult
	return out, nil
}

func (b Bindings) predeclared() (starlark.StringDict, error) {
	predeclared := starlark.StringDict{
		"error":   starlark.NewBuiltin("error", errorBuiltin),
		"invalid": starlark.NewBuiltin("invalid", invalidBuiltin),
		"json":    starjson.Module,
		"math":    starmath.Module,
		"time":    startime.Module,
	}

	values := map[string]any{
		"input":             orEmpty(b.Input),
		"arguments":         orEmpty(b.Arguments),
		"action_parameters": orEmpty(b.ActionParameters),
		"actor":             b.Actor,
		"context":           orEmpty(b.Context),
	}
	for name, v := range values {
		starVal, err := GoToStarlarkValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		predeclared[name] = starVal
	}

	predeclared["tenant"] = starlark.None
	if b.Tenant != "" {
		predeclared["tenant"] = starlark.String(b.Tenant)
	}
	if b.Store != nil {
		predeclared["store"] = b.Store
	}
	return predeclared, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func errorText(err error) string {
	if evalErr, ok := err.(*starlark.EvalError); ok {
		return evalErr.Msg
	}
	return err.Error()
}
