package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/barnabasJ/ash-ai/internal/host"
)

// Validator checks tool arguments against compiled input schemas.
// Compiled validators are cached per schema pointer; schemas are immutable
// once compiled, so the cache never needs invalidation.
type Validator struct {
	cache sync.Map // *jsonschema.Schema -> *gojsonschema.Schema
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks args against s. Argument problems are reported as a
// *host.InvalidError with one FieldError per violation; any other error
// means the schema itself could not be used.
func (v *Validator) Validate(s *jsonschema.Schema, args map[string]any) error {
	if s == nil {
		return nil
	}

	compiled, err := v.compiled(s)
	if err != nil {
		return err
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("failed to validate arguments: %w", err)
	}
	if result.Valid() {
		return nil
	}

	fieldErrors := make([]host.FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		fieldErrors = append(fieldErrors, toFieldError(re))
	}
	return host.Invalid(fieldErrors...)
}

func (v *Validator) compiled(s *jsonschema.Schema) (*gojsonschema.Schema, error) {
	if cached, ok := v.cache.Load(s); ok {
		return cached.(*gojsonschema.Schema), nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s))
	if err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	actual, _ := v.cache.LoadOrStore(s, compiled)
	return actual.(*gojsonschema.Schema), nil
}

func toFieldError(re gojsonschema.ResultError) host.FieldError {
	field := re.Field()
	if field == gojsonschema.STRING_CONTEXT_ROOT {
		field = ""
	}

	code := host.CodeInvalid
	if re.Type() == "required" {
		code = host.CodeRequired
		if property, ok := re.Details()["property"].(string); ok {
			field = joinField(field, property)
		}
	}

	return host.FieldError{
		Field:   field,
		Code:    code,
		Message: re.Description(),
	}
}

func joinField(parent, child string) string {
	if parent == "" {
		return child
	}
	return strings.Join([]string{parent, child}, ".")
}
