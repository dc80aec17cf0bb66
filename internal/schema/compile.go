// Package schema compiles host action metadata into MCP tool input schemas.
//
// Every compiled schema has one of exactly two top-level shapes: an object
// whose only (required) property is "input", or an object with no business
// properties at all. Query actions additionally get the optional query
// shaping properties and other actions may get "action_parameters"; none of
// those are ever required.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/barnabasJ/ash-ai/internal/host"
)

// ResultTypes are the result modes a paginated read action can be asked for.
var ResultTypes = []string{"run_query", "count", "exists"}

// Compile builds the input schema for calling action on resource.
// extraParameters are the names of additional action parameters declared on
// the tool definition.
func Compile(resource host.Resource, action host.Action, extraParameters []string) (*jsonschema.Schema, error) {
	inputProps, err := inputProperties(resource, action)
	if err != nil {
		return nil, fmt.Errorf("compile %s.%s: %w", resource.Name(), action.Name, err)
	}

	properties := make(map[string]*jsonschema.Schema)
	required := []string{}
	if len(inputProps) > 0 {
		properties["input"] = &jsonschema.Schema{
			Type:                 "object",
			Properties:           inputProps,
			AdditionalProperties: falseSchema(),
		}
		required = append(required, "input")
	}

	switch {
	case action.IsQuery():
		addQueryProperties(properties, action.Paginated)
	case len(extraParameters) > 0:
		properties["action_parameters"] = &jsonschema.Schema{
			Type:        "object",
			Description: "Parameters passed to the action outside of its input",
		}
	}

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: falseSchema(),
	}, nil
}

// Document renders a compiled schema as the JSON object sent to clients.
// Unlike the schema's own encoding, top-level "properties" and "required"
// are always present, as {} and [] when empty.
func Document(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if _, ok := doc["properties"]; !ok {
		doc["properties"] = map[string]any{}
	}
	if _, ok := doc["required"]; !ok {
		doc["required"] = []any{}
	}
	return doc, nil
}

// inputProperties collects the business parameters nested under "input".
func inputProperties(resource host.Resource, action host.Action) (map[string]*jsonschema.Schema, error) {
	props := make(map[string]*jsonschema.Schema)

	if action.IsMutation() {
		for _, attr := range resource.Attributes() {
			if !attr.Writable || !action.Accepts(attr.Name) {
				continue
			}
			s, err := TypeSchema(attr.Type)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", attr.Name, err)
			}
			s.Description = attr.Description
			props[attr.Name] = s
		}
	}

	for _, arg := range action.Arguments {
		if !arg.Public {
			continue
		}
		s, err := TypeSchema(arg.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		s.Description = arg.Description
		props[arg.Name] = s
	}

	return props, nil
}

func addQueryProperties(properties map[string]*jsonschema.Schema, paginated bool) {
	properties["filter"] = &jsonschema.Schema{
		Type:        "object",
		Description: "Filter to apply to the results",
	}
	properties["sort"] = &jsonschema.Schema{
		Type:        "array",
		Description: "Sort order for the results",
		Items: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"field":     {Type: "string", Description: "The field to sort by"},
				"direction": {Type: "string", Enum: []any{"asc", "desc"}},
			},
			Required: []string{"field"},
		},
	}
	properties["limit"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "Maximum number of records to return",
	}
	properties["offset"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "Number of records to skip",
	}
	if paginated {
		modes := make([]any, len(ResultTypes))
		for i, m := range ResultTypes {
			modes[i] = m
		}
		properties["result_type"] = &jsonschema.Schema{
			Type:        "string",
			Description: "Shape of the result",
			Enum:        modes,
		}
	}
}

// Describe returns the tool description for a definition: its own
// description, else the action's, else a generated one.
func Describe(def host.ToolDefinition) string {
	if def.Description != "" {
		return def.Description
	}
	if def.Action.Description != "" {
		return def.Action.Description
	}
	return fmt.Sprintf("Calls the %s action on the %s resource", def.Action.Name, def.Resource.Name())
}
