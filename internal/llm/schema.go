package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Schema describes the JSON shape a structured response must have. Build one
// with SchemaFor; the zero value is not usable.
type Schema struct {
	Name        string
	Description string
	JSON        *jsonschema.Schema

	newValue func() any
}

// SchemaFor reflects T into a JSON Schema. Field descriptions come from
// `jsonschema_description` tags; validation rules come from `validate` tags and
// are checked after decoding.
func SchemaFor[T any](name, description string) *Schema {
	r := jsonschema.Reflector{
		Anonymous:                 true,
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var zero T
	js := r.Reflect(zero)
	js.Version = ""
	return &Schema{
		Name:        name,
		Description: description,
		JSON:        js,
		newValue:    func() any { return new(T) },
	}
}

// Decode parses raw model output into a new *T and validates it.
func (s *Schema) Decode(raw string) (any, error) {
	if s == nil || s.newValue == nil {
		return nil, fmt.Errorf("%w: schema not initialized", ErrStructuredOutput)
	}
	body := stripFences(raw)
	v := s.newValue()
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %w", ErrStructuredOutput, s.Name, err)
	}
	if reflect.ValueOf(v).Elem().Kind() == reflect.Struct {
		if err := validate.Struct(v); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStructuredOutput, s.Name, err)
		}
	}
	return v, nil
}

// stripFences removes a surrounding Markdown code fence, which some
// OpenAI-compatible models add even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
