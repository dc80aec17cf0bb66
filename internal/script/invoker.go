package script

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/starlark"
)

// Invoker runs scripted actions against a MemoryStore.
type Invoker struct {
	store *MemoryStore
	quiet bool
}

var _ host.Invoker = (*Invoker)(nil)

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithQuietMode drops script print output instead of logging it.
func WithQuietMode() InvokerOption {
	return func(i *Invoker) {
		i.quiet = true
	}
}

// NewInvoker returns an Invoker whose scripts read and write store.
func NewInvoker(store *MemoryStore, opts ...InvokerOption) *Invoker {
	i := &Invoker{store: store}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke implements host.Invoker. String results are passed through as the
// payload; read actions returning a list are shaped by the call's query
// arguments.
func (i *Invoker) Invoke(_ context.Context, call host.Call) host.Result {
	resource, ok := call.Tool.Resource.(*Resource)
	if !ok {
		return host.Fail(fmt.Errorf("resource %T is not a scripted resource", call.Tool.Resource))
	}
	code, ok := resource.Script(call.Tool.Action.Name)
	if !ok {
		return host.Fail(fmt.Errorf("action %s.%s has no script", resource.Name(), call.Tool.Action.Name))
	}

	var query Query
	if call.Tool.Action.IsQuery() {
		var err error
		if query, err = ParseQuery(call.Arguments); err != nil {
			return host.Fail(err)
		}
	}

	actionParameters, _ := call.Arguments["action_parameters"].(map[string]any)
	result, err := starlark.Execute(code, starlark.Bindings{
		Input:            call.Input(),
		Arguments:        call.Arguments,
		ActionParameters: actionParameters,
		Actor:            call.Context.Actor,
		Tenant:           call.Context.Tenant,
		Context:          call.Context.Context,
		Store:            starlark.NewStoreNamespace(resource.Name(), i.store.Scope(resource.Name(), call.Context.Tenant)),
		Name:             call.Tool.Name,
	})
	if err != nil {
		return host.Fail(err)
	}
	if !i.quiet {
		for _, line := range result.Logs {
			log.Printf("[script %s] %s", call.Tool.Name, line)
		}
	}

	switch {
	case result.Error != "":
		return host.Fail(errors.New(result.Error))
	case result.Failure != nil:
		return host.Fail(failureError(result.Failure))
	}

	if s, ok := result.Result.(string); ok {
		return host.Ok(s)
	}
	if records, ok := result.Result.([]any); ok && call.Tool.Action.IsQuery() {
		shaped, err := query.Apply(records)
		if err != nil {
			return host.Fail(err)
		}
		return host.Value(shaped)
	}
	return host.Value(result.Result)
}

func failureError(f *starlark.Failure) error {
	if !f.Invalid() {
		return errors.New(f.Message)
	}
	errs := make([]host.FieldError, len(f.Fields))
	for i, field := range f.Fields {
		errs[i] = host.FieldError{Field: field.Field, Code: field.Code, Message: field.Message}
	}
	return host.Invalid(errs...)
}
