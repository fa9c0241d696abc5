package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prodmap/assist/pkg/anthropic"
)

func init() {
	// Replace global logger with a no-op to keep test output clean.
	zap.ReplaceGlobals(zap.NewNop())
}

func TestExtractObject_PlainJSON(t *testing.T) {
	obj, ok := ExtractObject(`{"title": "Redesign login", "priority": "high"}`)
	require.True(t, ok)
	assert.Equal(t, "Redesign login", obj["title"])
	assert.Equal(t, "high", obj["priority"])
}

func TestExtractObject_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"title\": \"Fenced\"}\n```"
	obj, ok := ExtractObject(raw)
	require.True(t, ok)
	assert.Equal(t, "Fenced", obj["title"])
}

func TestExtractObject_BareFences(t *testing.T) {
	raw := "```\n{\"title\": \"Bare\"}\n```"
	obj, ok := ExtractObject(raw)
	require.True(t, ok)
	assert.Equal(t, "Bare", obj["title"])
}

func TestExtractObject_ProseWrapped(t *testing.T) {
	raw := `Sure! Here is the record you asked for: {"title": "Embedded"} Let me know if you need more.`
	obj, ok := ExtractObject(raw)
	require.True(t, ok)
	assert.Equal(t, "Embedded", obj["title"])
}

func TestExtractObject_Garbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"prose only", "I could not produce structured output for that request."},
		{"unbalanced brace", `{"title": "broken`},
		{"array not object", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := ExtractObject(tt.raw)
			assert.False(t, ok)
			assert.Nil(t, obj)
		})
	}
}

func TestExtractObject_Idempotent(t *testing.T) {
	obj, ok := ExtractObject(`Noise before {"a": 1, "b": {"c": "x}y"}} noise after`)
	require.True(t, ok)

	again, err := json.Marshal(obj)
	require.NoError(t, err)
	obj2, ok := ExtractObject(string(again))
	require.True(t, ok)
	assert.Equal(t, obj, obj2)
}

func TestParseChatReply_Valid(t *testing.T) {
	raw := `{"entities": [{"type": "task", "data": {"title": "Ship it"}, "confidence": 0.9}], "message": "One task."}`
	reply := ParseChatReply(raw)

	require.Len(t, reply.Entities, 1)
	assert.Equal(t, "task", reply.Entities[0].Type)
	assert.Equal(t, "Ship it", reply.Entities[0].Data["title"])
	assert.Equal(t, "One task.", reply.Message)
}

func TestParseChatReply_FallbackOnGarbage(t *testing.T) {
	reply := ParseChatReply("I'm sorry, I can't structure that.")

	assert.Empty(t, reply.Entities)
	assert.Equal(t, chatParseFallback, reply.Message)
}

func TestParseFormReply_Valid(t *testing.T) {
	data, recovered := ParseFormReply(`{"title": "New task", "priority": "high"}`)
	assert.True(t, recovered)
	assert.Equal(t, "New task", data["title"])
}

func TestParseFormReply_WrapsRawText(t *testing.T) {
	raw := "The user seems to want a login page redesign, high priority."
	data, recovered := ParseFormReply(raw)

	assert.False(t, recovered)
	assert.Equal(t, raw, data["description"])
}

func TestExtractText(t *testing.T) {
	resp := &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: "first"},
			{Type: "text", Text: ""},
			{Type: "text", Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", extractText(resp))
	assert.Equal(t, "", extractText(nil))
}
