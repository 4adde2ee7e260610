package llm

// SchemaType is a JSON value type in a declared output schema
type SchemaType string

const (
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
	TypeString SchemaType = "string"
)

// Schema declares the fields, types and required-ness of a structured response.
// Property order is kept so prompts and provider schemas are stable.
type Schema struct {
	Type       SchemaType
	Properties []Property
	Items      *Schema
	Required   []string
}

// Property is one named field of an object schema
type Property struct {
	Name   string
	Schema *Schema
}

// String returns a string schema
func String() *Schema { return &Schema{Type: TypeString} }

// StringArray returns an array-of-string schema
func StringArray() *Schema { return &Schema{Type: TypeArray, Items: String()} }

// Object builds an object schema from properties
func Object(required []string, props ...Property) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// Prop is shorthand for a Property
func Prop(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

// ToJSONSchema renders the schema as a JSON Schema document
func (s *Schema) ToJSONSchema() map[string]any {
	out := map[string]any{"type": string(s.Type)}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.ToJSONSchema()
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
		out["additionalProperties"] = false
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.ToJSONSchema()
		}
	}
	return out
}

// StrictRequired lists every property. Strict JSON-schema modes
// require all fields to be listed even when the model may leave them empty.
func (s *Schema) StrictRequired() []string {
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}
