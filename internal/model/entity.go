package model

// FieldType enumerates the value types a schema field may declare.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldEnum    FieldType = "enum"
	FieldArray   FieldType = "array"
	FieldDate    FieldType = "date"
)

// FieldSpec describes a single field of an entity schema.
type FieldSpec struct {
	Name          string    `json:"name" yaml:"name"`
	Type          FieldType `json:"type" yaml:"type"`
	Required      bool      `json:"required" yaml:"required"`
	Default       any       `json:"default,omitempty" yaml:"default"`
	AllowedValues []string  `json:"allowed_values,omitempty" yaml:"allowed"`
}

// Allows reports whether v is a member of the field's allowed values.
// Always true for non-enum fields.
func (f *FieldSpec) Allows(v string) bool {
	if f.Type != FieldEnum || len(f.AllowedValues) == 0 {
		return true
	}
	for _, a := range f.AllowedValues {
		if a == v {
			return true
		}
	}
	return false
}

// EntitySchema is the ordered field definition for one record kind.
// Schemas are built once at startup and never mutated afterward, so they
// are safe for unlimited concurrent reads.
type EntitySchema struct {
	Type   string
	Fields []FieldSpec

	byName   map[string]*FieldSpec
	required []*FieldSpec
}

// NewEntitySchema creates an EntitySchema with indexed field lookups.
func NewEntitySchema(entityType string, fields []FieldSpec) *EntitySchema {
	s := &EntitySchema{
		Type:   entityType,
		Fields: fields,
		byName: make(map[string]*FieldSpec, len(fields)),
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		s.byName[f.Name] = f
		if f.Required {
			s.required = append(s.required, f)
		}
	}
	return s
}

// Field returns the spec for the given field name, or nil if not declared.
func (s *EntitySchema) Field(name string) *FieldSpec {
	return s.byName[name]
}

// Required returns all required field specs in declaration order.
func (s *EntitySchema) Required() []*FieldSpec {
	return s.required
}
