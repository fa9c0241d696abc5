package pipeline

import (
	"strings"

	"github.com/prodmap/assist/internal/model"
)

// Lexical cue lists for action inference, checked in priority order:
// discard beats edit beats create. Matching is whole-word on the lowercased
// request text.
var (
	discardCues = []string{"discard", "cancel", "ignore", "forget", "remove", "delete", "drop"}
	editCues    = []string{"edit", "update", "change", "modify", "rename", "adjust", "revise", "move"}
	createCues  = []string{"add", "create", "make", "build", "new", "plan", "track", "log"}
)

// InferAction scans the user's original request for lexical cues and maps
// them to a draft action. Defaults to create when no cue is found.
func InferAction(text string) model.Action {
	words := tokenize(text)

	if containsAny(words, discardCues) {
		return model.ActionDiscard
	}
	if containsAny(words, editCues) {
		return model.ActionEdit
	}
	if containsAny(words, createCues) {
		return model.ActionCreate
	}
	return model.ActionCreate
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, "?.,!;:'\"()[]{}")
		if w != "" {
			words[w] = true
		}
	}
	return words
}

func containsAny(words map[string]bool, cues []string) bool {
	for _, cue := range cues {
		if words[cue] {
			return true
		}
	}
	return false
}
