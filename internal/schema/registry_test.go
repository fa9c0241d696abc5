package schema

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodmap/assist/internal/model"
)

func TestLoad(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	types := reg.Types()
	assert.True(t, sort.StringsAreSorted(types))
	for _, want := range []string{"task", "feature", "strategy", "problem", "cost", "workstream", "stakeholder", "metric"} {
		assert.Contains(t, types, want)
	}
}

func TestLoad_TaskSchema(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	sch, ok := reg.Get("task")
	require.True(t, ok)
	assert.Equal(t, "task", sch.Type)

	title := sch.Field("title")
	require.NotNil(t, title)
	assert.Equal(t, model.FieldString, title.Type)
	assert.True(t, title.Required)

	status := sch.Field("status")
	require.NotNil(t, status)
	assert.Equal(t, model.FieldEnum, status.Type)
	assert.Equal(t, "todo", status.Default)
	assert.True(t, status.Allows("in_progress"))
	assert.False(t, status.Allows("shipped"))

	assignees := sch.Field("assignee_ids")
	require.NotNil(t, assignees)
	assert.Equal(t, model.FieldArray, assignees.Type)
	assert.True(t, assignees.Required)
}

func TestLoad_AllEnumsHaveValidDefaults(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	for _, typ := range reg.Types() {
		sch, ok := reg.Get(typ)
		require.True(t, ok)
		for i := range sch.Fields {
			f := &sch.Fields[i]
			if f.Type != model.FieldEnum {
				continue
			}
			assert.NotEmpty(t, f.AllowedValues, "%s.%s", typ, f.Name)
			if def, ok := f.Default.(string); ok {
				assert.True(t, f.Allows(def), "%s.%s default %q", typ, f.Name, def)
			}
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	_, ok := reg.Get("spaceship")
	assert.False(t, ok)
}

func TestCheckField_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		field model.FieldSpec
	}{
		{"no name", model.FieldSpec{Type: model.FieldString}},
		{"unknown type", model.FieldSpec{Name: "x", Type: "blob"}},
		{"enum without allowed values", model.FieldSpec{Name: "x", Type: model.FieldEnum}},
		{"enum default outside allowed", model.FieldSpec{Name: "x", Type: model.FieldEnum, Default: "c", AllowedValues: []string{"a", "b"}}},
		{"enum default not a string", model.FieldSpec{Name: "x", Type: model.FieldEnum, Default: 7, AllowedValues: []string{"a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, checkField("test", tt.field))
		})
	}
}
