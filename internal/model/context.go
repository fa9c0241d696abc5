package model

// ContextItem is a lightweight projection of an existing domain object used
// for prompt grounding. Never persisted or mutated by the pipeline.
type ContextItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Status string `json:"status,omitempty"`
}

// ContextBundle maps a context category ("strategies", "tasks", ...) to a
// bounded, ordered list of items shown to the model.
type ContextBundle map[string][]ContextItem

// Total returns the item count across all categories.
func (b ContextBundle) Total() int {
	n := 0
	for _, items := range b {
		n += len(items)
	}
	return n
}
