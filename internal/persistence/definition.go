package persistence

import "github.com/barnabasJ/ash-ai/internal/host"

// DomainDefinition is a domain as stored on disk: its resources and the
// tools exposing their actions.
type DomainDefinition struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	Resources   []ResourceDefinition `yaml:"resources"`
	Tools       []ToolDefinition     `yaml:"tools"`
}

// ResourceDefinition is a resource with its attributes and scripted
// actions.
type ResourceDefinition struct {
	Name       string             `yaml:"name"`
	Attributes []host.Attribute   `yaml:"attributes,omitempty"`
	Actions    []ActionDefinition `yaml:"actions,omitempty"`
}

// ActionDefinition is an action whose behavior is a Starlark script.
type ActionDefinition struct {
	host.Action `yaml:",inline"`
	Script      string `yaml:"script,omitempty"`
}

// ToolDefinition exposes one resource action as a tool.
type ToolDefinition struct {
	Name             string   `yaml:"name"`
	Resource         string   `yaml:"resource"`
	Action           string   `yaml:"action"`
	Description      string   `yaml:"description,omitempty"`
	ActionParameters []string `yaml:"action_parameters,omitempty"`
}
