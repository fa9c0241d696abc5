package model

// Action is the disposition inferred for an extracted entity draft.
type Action string

const (
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDiscard Action = "discard"
)

// ConversationTurn is one prior message in the user's conversation with the
// assistant. Treated as read-only context by the pipeline.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// EntityDraft is a normalized, schema-valid candidate record produced by one
// extraction call. Drafts are never loaded from storage; ownership passes to
// the caller once returned.
type EntityDraft struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	Data       map[string]any `json:"data"`
	Confidence float64        `json:"confidence"`
	Action     Action         `json:"action"`
}

// ExtractionResponse is the terminal output of the multi-entity pipeline.
type ExtractionResponse struct {
	Entities []EntityDraft `json:"entities"`
	Message  string        `json:"message"`
}

// TokenUsage accumulates model token consumption across calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another usage into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
