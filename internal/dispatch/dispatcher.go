// Package dispatch resolves tool calls against the active tool set, runs the
// host callable, and classifies failures into protocol error envelopes.
//
// A call moves through Resolving, then Invoking, and ends Succeeded or
// Failed. There are no retries, timeouts or cancellation at this layer: once
// invoking starts, the callable runs to completion.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/barnabasJ/ash-ai/internal/discovery"
	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/types"
	"github.com/barnabasJ/ash-ai/internal/validation"
)

// Outcome is the result of one call: a text payload or a failure reason.
type Outcome struct {
	payload string
	reason  error
}

// Success returns a successful outcome.
func Success(payload string) Outcome {
	return Outcome{payload: payload}
}

// Failure returns a failed outcome.
func Failure(reason error) Outcome {
	if reason == nil {
		reason = fmt.Errorf("unknown failure")
	}
	return Outcome{reason: reason}
}

// Succeeded reports whether the call succeeded.
func (o Outcome) Succeeded() bool { return o.reason == nil }

// Payload returns the success payload.
func (o Outcome) Payload() string { return o.payload }

// Reason returns the failure reason, or nil on success.
func (o Outcome) Reason() error { return o.reason }

// Envelope classifies a failed outcome. It returns nil on success.
func (o Outcome) Envelope() *Envelope {
	if o.reason == nil {
		return nil
	}
	return Classify(o.reason)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithValidation validates arguments against each tool's input schema
// before invoking it.
func WithValidation(v *validation.Validator) Option {
	return func(d *Dispatcher) {
		d.validator = v
	}
}

// WithQuietMode disables per-call logging.
func WithQuietMode() Option {
	return func(d *Dispatcher) {
		d.quiet = true
	}
}

// Dispatcher runs tool calls for one configuration. It holds no mutable
// state across calls and is safe for concurrent use.
type Dispatcher struct {
	source    discovery.Source
	invoker   host.Invoker
	validator *validation.Validator
	quiet     bool
}

// New returns a Dispatcher resolving tools from source and running them
// with invoker. A nil source makes every call fail with MethodNotFound.
func New(source discovery.Source, invoker host.Invoker, opts ...Option) *Dispatcher {
	d := &Dispatcher{source: source, invoker: invoker}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tools returns the active tool set.
func (d *Dispatcher) Tools() ([]discovery.Tool, error) {
	if d.source == nil {
		return nil, ErrLookupUnavailable
	}
	return d.source.Tools()
}

// Call resolves name, invokes its callable with arguments and ec, and
// returns the outcome. It never panics.
func (d *Dispatcher) Call(ctx context.Context, name string, arguments any, ec types.ExecutionContext) Outcome {
	start := time.Now()
	outcome := d.call(ctx, name, arguments, ec.Normalize())
	if !d.quiet {
		if env := outcome.Envelope(); env != nil {
			log.Printf("tool %s failed in %s: code=%d %s", name, time.Since(start), env.Code, env.Message)
		} else {
			log.Printf("tool %s succeeded in %s", name, time.Since(start))
		}
	}
	return outcome
}

func (d *Dispatcher) call(ctx context.Context, name string, arguments any, ec types.ExecutionContext) Outcome {
	// Resolving
	if d.source == nil {
		return Failure(ErrLookupUnavailable)
	}
	tools, err := d.source.Tools()
	if err != nil {
		return Failure(&LoadError{Err: err})
	}
	tool, ok := discovery.Find(tools, name)
	if !ok {
		return Failure(&NotFoundError{Name: name})
	}

	// Invoking
	args, err := normalizeArguments(arguments)
	if err != nil {
		return Failure(err)
	}
	if d.validator != nil {
		if err := d.validator.Validate(tool.InputSchema, args); err != nil {
			return Failure(err)
		}
	}
	if d.invoker == nil {
		return Failure(fmt.Errorf("no invoker configured for tool %s", name))
	}

	result := d.invoke(ctx, host.Call{Tool: tool.Definition, Arguments: args, Context: ec})
	switch result.Kind {
	case host.ResultText:
		return Success(result.Text)
	case host.ResultFailure:
		return Failure(result.Reason)
	default:
		return Success(serializePayload(result.Value))
	}
}

func (d *Dispatcher) invoke(ctx context.Context, call host.Call) (result host.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = host.Fail(&PanicError{Tool: call.Tool.Name, Value: r})
		}
	}()
	return d.invoker.Invoke(ctx, call)
}

// Handle runs a call for the go-sdk tool handler: successes become a single
// text content item, failures a JSON-RPC error.
func (d *Dispatcher) Handle(ctx context.Context, name string, arguments any, ec types.ExecutionContext) (*mcp.CallToolResult, error) {
	outcome := d.Call(ctx, name, arguments, ec)
	if !outcome.Succeeded() {
		return nil, outcome.Envelope().Wire()
	}
	return TextResult(outcome.Payload()), nil
}

// TextResult wraps payload in a single text content item.
func TextResult(payload string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: payload},
		},
	}
}
