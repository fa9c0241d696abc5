// Package schema holds the static entity schema registry. Every field
// definition used by the prompt composer and the normalizer is resolved
// through this package; no other component carries schema knowledge.
package schema

import (
	_ "embed"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/prodmap/assist/internal/model"
)

//go:embed schemas.yaml
var schemasYAML []byte

// Registry is an indexed, immutable collection of entity schemas. Built once
// at startup; safe for unlimited concurrent reads.
type Registry struct {
	byType map[string]*model.EntitySchema
	types  []string
}

// Load parses the embedded schema definitions and returns a Registry.
func Load() (*Registry, error) {
	var raw map[string][]model.FieldSpec
	if err := yaml.Unmarshal(schemasYAML, &raw); err != nil {
		return nil, eris.Wrap(err, "schema: parse definitions")
	}

	r := &Registry{byType: make(map[string]*model.EntitySchema, len(raw))}
	for entityType, fields := range raw {
		if len(fields) == 0 {
			return nil, eris.Errorf("schema: %s declares no fields", entityType)
		}
		for _, f := range fields {
			if err := checkField(entityType, f); err != nil {
				return nil, err
			}
		}
		r.byType[entityType] = model.NewEntitySchema(entityType, fields)
		r.types = append(r.types, entityType)
	}
	sort.Strings(r.types)

	return r, nil
}

// checkField rejects definitions the normalizer could not safely default.
func checkField(entityType string, f model.FieldSpec) error {
	if f.Name == "" {
		return eris.Errorf("schema: %s has a field with no name", entityType)
	}
	switch f.Type {
	case model.FieldString, model.FieldNumber, model.FieldBoolean,
		model.FieldEnum, model.FieldArray, model.FieldDate:
	default:
		return eris.Errorf("schema: %s.%s has unknown type %q", entityType, f.Name, f.Type)
	}
	if f.Type == model.FieldEnum && len(f.AllowedValues) == 0 {
		return eris.Errorf("schema: %s.%s is enum but lists no allowed values", entityType, f.Name)
	}
	if f.Type == model.FieldEnum && f.Default != nil {
		def, ok := f.Default.(string)
		if !ok {
			return eris.Errorf("schema: %s.%s enum default is not a string", entityType, f.Name)
		}
		spec := f
		if !spec.Allows(def) {
			return eris.Errorf("schema: %s.%s default %q not in allowed values", entityType, f.Name, def)
		}
	}
	return nil
}

// Get returns the schema for the given entity type.
func (r *Registry) Get(entityType string) (*model.EntitySchema, bool) {
	s, ok := r.byType[entityType]
	return s, ok
}

// Types returns all registered entity types in sorted order.
func (r *Registry) Types() []string {
	return r.types
}
