package pipeline

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/prodmap/assist/pkg/anthropic"
)

// chatParseFallback is the user-visible message when the model's reply for
// the multi-entity flow cannot be parsed.
const chatParseFallback = "I couldn't turn that reply into structured records. Please try rephrasing your request."

// chatReply is the documented response shape for the multi-entity flow.
type chatReply struct {
	Entities []entityCandidate `json:"entities"`
	Message  string            `json:"message"`
}

// entityCandidate is one unvalidated record proposed by the model. Every
// field is untrusted until it passes through Normalize.
type entityCandidate struct {
	Type       string         `json:"type"`
	Data       map[string]any `json:"data"`
	Confidence any            `json:"confidence"`
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// ExtractObject recovers a single JSON object from arbitrary model text.
// Returns false when no parseable object span exists. Never panics or
// errors: malformed model output is an expected condition, not an
// exceptional one.
func ExtractObject(raw string) (map[string]any, bool) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ParseChatReply parses the model's reply for the multi-entity flow,
// substituting the documented fallback shape on any parse failure.
func ParseChatReply(raw string) chatReply {
	cleaned := cleanJSON(raw)
	var reply chatReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		zap.L().Warn("parse: chat reply is not valid JSON, using fallback",
			zap.Int("raw_len", len(raw)),
			zap.Error(err),
		)
		return chatReply{Entities: nil, Message: chatParseFallback}
	}
	return reply
}

// ParseFormReply parses the model's reply for the single-form flow. When no
// JSON object can be recovered, it wraps the raw text as a free-text field
// and reports recovered=false; returning something usable beats total
// failure.
func ParseFormReply(raw string) (data map[string]any, recovered bool) {
	if obj, ok := ExtractObject(raw); ok {
		return obj, true
	}
	zap.L().Warn("parse: form reply is not valid JSON, wrapping raw text",
		zap.Int("raw_len", len(raw)),
	)
	return map[string]any{"description": raw}, false
}
