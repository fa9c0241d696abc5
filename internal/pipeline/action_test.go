package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prodmap/assist/internal/model"
)

func TestInferAction(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Action
	}{
		{"add", "Add a task to redesign the login page, high priority", model.ActionCreate},
		{"create", "create a new strategy for Q4", model.ActionCreate},
		{"update", "Update the checkout feature's priority to urgent", model.ActionEdit},
		{"rename", "rename the onboarding workstream", model.ActionEdit},
		{"discard", "Discard the vendor cost for the retired analytics suite", model.ActionDiscard},
		{"remove", "please remove that stakeholder", model.ActionDiscard},
		{"discard beats edit", "discard the change I asked you to make", model.ActionDiscard},
		{"edit beats create", "update the task and add more detail", model.ActionEdit},
		{"no cue defaults to create", "the login page is slow for mobile users", model.ActionCreate},
		{"substring is not a cue", "we dropped the ball on additive changes", model.ActionCreate},
		{"punctuation trimmed", "Delete it. Now!", model.ActionDiscard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferAction(tt.text))
		})
	}
}
