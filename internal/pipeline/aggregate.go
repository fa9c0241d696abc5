package pipeline

import (
	"fmt"

	"github.com/prodmap/assist/internal/model"
)

// noEntitiesMessage is the deterministic summary used when the pipeline
// produced no drafts and the model supplied no message of its own.
const noEntitiesMessage = "No entities could be extracted from the request."

// Aggregate assembles the final response from normalized drafts and the
// model's summary, substituting a deterministic message when the model
// provided none.
func Aggregate(drafts []model.EntityDraft, message string) model.ExtractionResponse {
	if drafts == nil {
		drafts = []model.EntityDraft{}
	}
	if message == "" {
		if len(drafts) == 0 {
			message = noEntitiesMessage
		} else {
			message = fmt.Sprintf("Extracted %d draft record(s). Review before applying.", len(drafts))
		}
	}
	return model.ExtractionResponse{
		Entities: drafts,
		Message:  message,
	}
}
