package types

import "github.com/google/jsonschema-go/jsonschema"

// ToolDescriptor is the externally visible description of one tool.
type ToolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}
