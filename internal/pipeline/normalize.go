package pipeline

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prodmap/assist/internal/model"
)

// Normalize turns an untrusted candidate record into a schema-valid draft.
// Every required field is present in the result; every enum value is a
// member of its allowed set. Normalization never fails: fields that cannot
// be coerced to a sane value are defaulted (required) or dropped (optional)
// with a log line, not an error.
func Normalize(sch *model.EntitySchema, data map[string]any, confidence any, defaultConfidence float64) model.EntityDraft {
	out := make(map[string]any, len(sch.Fields))

	for i := range sch.Fields {
		f := &sch.Fields[i]
		v, present := data[f.Name]
		if present && !isEmpty(v) {
			coerced, ok := coerceValue(f, v)
			if ok {
				out[f.Name] = coerced
				continue
			}
			zap.L().Warn("normalize: dropping uncoercible field value",
				zap.String("entity_type", sch.Type),
				zap.String("field", f.Name),
				zap.String("want", string(f.Type)),
			)
		}
		if f.Required {
			out[f.Name] = fieldDefault(f)
		}
	}

	// Unknown keys from the model are discarded, never passed through.
	for k := range data {
		if k == "confidence" {
			continue
		}
		if sch.Field(k) == nil {
			zap.L().Warn("normalize: dropping field not in schema",
				zap.String("entity_type", sch.Type),
				zap.String("field", k),
			)
		}
	}

	return model.EntityDraft{
		ID:         uuid.NewString(),
		EntityType: sch.Type,
		Data:       out,
		Confidence: clampConfidence(confidence, defaultConfidence),
		Action:     model.ActionCreate,
	}
}

// coerceValue validates and lightly repairs a candidate value for a field.
// Enum members outside the allowed set are rejected here so the caller
// substitutes the schema default: an invalid enum value never reaches the
// caller.
func coerceValue(f *model.FieldSpec, v any) (any, bool) {
	switch f.Type {
	case model.FieldString, model.FieldDate:
		s, ok := v.(string)
		return s, ok
	case model.FieldEnum:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if !f.Allows(s) {
			return nil, false
		}
		return s, true
	case model.FieldNumber:
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return parsed, true
			}
			return nil, false
		default:
			return nil, false
		}
	case model.FieldBoolean:
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return parsed, true
			}
			return nil, false
		default:
			return nil, false
		}
	case model.FieldArray:
		switch arr := v.(type) {
		case []any:
			return arr, true
		case string:
			// A bare string for an array field becomes a single element.
			return []any{arr}, true
		default:
			return nil, false
		}
	default:
		return nil, false
	}
}

// fieldDefault returns the schema default for a field, or a type-appropriate
// zero value when none is declared. A required field always has some safe
// filler.
func fieldDefault(f *model.FieldSpec) any {
	if f.Default != nil {
		if f.Type == model.FieldArray {
			// YAML defaults decode as []any already; guard other shapes.
			if arr, ok := f.Default.([]any); ok {
				return arr
			}
			return []any{}
		}
		if f.Type == model.FieldNumber {
			if coerced, ok := coerceValue(f, f.Default); ok {
				return coerced
			}
		}
		return f.Default
	}
	switch f.Type {
	case model.FieldNumber:
		return float64(0)
	case model.FieldBoolean:
		return false
	case model.FieldArray:
		return []any{}
	case model.FieldEnum:
		if len(f.AllowedValues) > 0 {
			return f.AllowedValues[0]
		}
		return ""
	default:
		return ""
	}
}

// clampConfidence applies the confidence policy: use the model's value when
// numeric, clamped into [0, 1]; otherwise fall back to the configured
// default. Nothing beyond this clamp/default rule is ever derived.
func clampConfidence(v any, def float64) float64 {
	f, ok := toFloat64(v)
	if !ok {
		return def
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// toFloat64 attempts to convert an any value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

// isEmpty reports whether a candidate value carries no usable content.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
