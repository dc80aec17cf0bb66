// Package discovery turns the tool definitions exposed by host domains into
// compiled tool descriptors, narrowed by an optional allow-list.
package discovery

import (
	"fmt"
	"sync"

	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/schema"
	"github.com/barnabasJ/ash-ai/internal/types"
)

// Tool is a compiled descriptor together with the definition it came from.
type Tool struct {
	types.ToolDescriptor
	Definition host.ToolDefinition
}

// Discover enumerates every tool definition of domains, in domain order then
// declaration order, keeps those named in allow, and compiles each survivor.
//
// A nil allow keeps every tool. A non-nil allow keeps only members; names
// that match nothing are ignored.
func Discover(domains []host.Domain, allow []string) ([]Tool, error) {
	var allowed map[string]struct{}
	if allow != nil {
		allowed = make(map[string]struct{}, len(allow))
		for _, name := range allow {
			allowed[name] = struct{}{}
		}
	}

	tools := []Tool{}
	for _, domain := range domains {
		for _, def := range domain.Tools() {
			if allowed != nil {
				if _, ok := allowed[def.Name]; !ok {
					continue
				}
			}
			inputSchema, err := schema.Compile(def.Resource, def.Action, def.ActionParameters)
			if err != nil {
				return nil, fmt.Errorf("tool %s in domain %s: %w", def.Name, domain.Name(), err)
			}
			tools = append(tools, Tool{
				ToolDescriptor: types.ToolDescriptor{
					Name:        def.Name,
					Description: schema.Describe(def),
					InputSchema: inputSchema,
				},
				Definition: def,
			})
		}
	}
	return tools, nil
}

// Source resolves the active tool set for one configuration.
type Source interface {
	Tools() ([]Tool, error)
}

// Catalog is a Source that runs discovery on every call.
type Catalog struct {
	Domains []host.Domain
	Allow   []string
}

// Tools implements Source.
func (c Catalog) Tools() ([]Tool, error) {
	return Discover(c.Domains, c.Allow)
}

// CachedSource remembers the first successful result of its underlying
// source. Failures are not cached, so a later call retries discovery.
type CachedSource struct {
	src   Source
	mu    sync.Mutex
	tools []Tool
	ready bool
}

// NewCachedSource wraps src.
func NewCachedSource(src Source) *CachedSource {
	return &CachedSource{src: src}
}

// Tools implements Source.
func (c *CachedSource) Tools() ([]Tool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return c.tools, nil
	}
	tools, err := c.src.Tools()
	if err != nil {
		return nil, err
	}
	c.tools = tools
	c.ready = true
	return tools, nil
}

// Find returns the tool named name, matching case-sensitively.
func Find(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Descriptors strips definitions from tools.
func Descriptors(tools []Tool) []types.ToolDescriptor {
	out := make([]types.ToolDescriptor, len(tools))
	for i, t := range tools {
		out[i] = t.ToolDescriptor
	}
	return out
}
