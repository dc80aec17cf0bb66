package schema

import (
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/barnabasJ/ash-ai/internal/host"
)

// ErrUnsupportedType is returned when a host type has no schema mapping.
var ErrUnsupportedType = errors.New("unsupported attribute type")

// TypeSchema converts a host type into its JSON Schema representation.
func TypeSchema(t host.Type) (*jsonschema.Schema, error) {
	switch t.Kind {
	case host.KindString:
		return &jsonschema.Schema{Type: "string"}, nil
	case host.KindInteger:
		return &jsonschema.Schema{Type: "integer"}, nil
	case host.KindNumber:
		return &jsonschema.Schema{Type: "number"}, nil
	case host.KindBoolean:
		return &jsonschema.Schema{Type: "boolean"}, nil
	case host.KindUUID:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}, nil
	case host.KindDate:
		return &jsonschema.Schema{Type: "string", Format: "date"}, nil
	case host.KindDateTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}, nil
	case host.KindEnum:
		if len(t.Values) == 0 {
			return nil, fmt.Errorf("%w: enum without values", ErrUnsupportedType)
		}
		values := make([]any, len(t.Values))
		for i, v := range t.Values {
			values[i] = v
		}
		return &jsonschema.Schema{Type: "string", Enum: values}, nil
	case host.KindArray:
		if t.Items == nil {
			return &jsonschema.Schema{Type: "array"}, nil
		}
		items, err := TypeSchema(*t.Items)
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		return &jsonschema.Schema{Type: "array", Items: items}, nil
	case host.KindMap:
		return mapSchema(t.Fields)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t.Kind)
	}
}

func mapSchema(fields []host.Field) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Type: "object"}
	if len(fields) == 0 {
		return s, nil
	}
	s.Properties = make(map[string]*jsonschema.Schema, len(fields))
	for _, f := range fields {
		fs, err := TypeSchema(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fs.Description = f.Description
		s.Properties[f.Name] = fs
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	s.AdditionalProperties = falseSchema()
	return s, nil
}

// falseSchema is the schema that rejects every value; it marshals as false.
func falseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}
