package pipeline

import (
	"github.com/prodmap/assist/internal/model"
	"github.com/prodmap/assist/pkg/product"
)

// categoryOrder fixes the render and selection order of context categories.
// All iteration over bundles goes through this slice so prompt output stays
// deterministic.
var categoryOrder = []string{
	"strategies",
	"problems",
	"features",
	"tasks",
	"workstreams",
	"stakeholders",
	"metrics",
}

// sectionCategories maps a workflow section to the categories worth showing
// the model in that phase.
var sectionCategories = map[string][]string{
	"strategy":       {"strategies", "features", "metrics"},
	"discovery":      {"problems", "stakeholders", "features"},
	"prioritization": {"features", "problems", "strategies"},
	"execution":      {"tasks", "features", "workstreams"},
	"stakeholders":   {"stakeholders", "workstreams"},
	"metrics":        {"metrics", "strategies"},
}

// formSections maps a target form type to its natural workflow section,
// used when the caller supplies a form type but no section.
var formSections = map[string]string{
	"task":        "execution",
	"workstream":  "execution",
	"feature":     "prioritization",
	"strategy":    "strategy",
	"problem":     "discovery",
	"stakeholder": "stakeholders",
	"metric":      "metrics",
}

// defaultCategories is used when neither section nor form type narrows the
// category set.
var defaultCategories = []string{"strategies", "problems", "features", "tasks"}

// categoryCaps bounds how many items of each category enter the bundle.
var categoryCaps = map[string]int{
	"strategies":   10,
	"problems":     15,
	"features":     20,
	"tasks":        15,
	"workstreams":  10,
	"stakeholders": 10,
	"metrics":      10,
}

const defaultCategoryCap = 10

// terminalStatuses marks items that are finished and therefore least useful
// as grounding; they are truncated first.
var terminalStatuses = map[string]bool{
	"done":      true,
	"released":  true,
	"resolved":  true,
	"completed": true,
	"retired":   true,
}

// SelectContext picks a bounded, relevant slice of the product snapshot for
// prompt grounding. The bundle's total item count never exceeds ceiling no
// matter how large the snapshot is. A nil snapshot yields an empty bundle.
func SelectContext(snap *product.ContextResponse, formType, section string, ceiling int) model.ContextBundle {
	bundle := model.ContextBundle{}
	if snap == nil {
		return bundle
	}
	if ceiling <= 0 {
		ceiling = 60
	}

	remaining := ceiling
	for _, cat := range chooseCategories(formType, section) {
		if remaining <= 0 {
			break
		}
		items := activeFirst(snapshotCategory(snap, cat))

		cap := categoryCaps[cat]
		if cap == 0 {
			cap = defaultCategoryCap
		}
		if cap > remaining {
			cap = remaining
		}
		if len(items) > cap {
			items = items[:cap]
		}
		if len(items) == 0 {
			continue
		}

		converted := make([]model.ContextItem, len(items))
		for i, it := range items {
			converted[i] = model.ContextItem{
				ID:     it.ID,
				Title:  it.Name,
				Detail: it.Description,
				Status: it.Status,
			}
		}
		bundle[cat] = converted
		remaining -= len(converted)
	}

	return bundle
}

// chooseCategories resolves the category list from section, falling back to
// the form type's natural section, then to the default set.
func chooseCategories(formType, section string) []string {
	if cats, ok := sectionCategories[section]; ok {
		return cats
	}
	if sec, ok := formSections[formType]; ok {
		return sectionCategories[sec]
	}
	return defaultCategories
}

func snapshotCategory(snap *product.ContextResponse, cat string) []product.Item {
	switch cat {
	case "strategies":
		return snap.Strategies
	case "problems":
		return snap.Problems
	case "features":
		return snap.Features
	case "tasks":
		return snap.Tasks
	case "workstreams":
		return snap.Workstreams
	case "stakeholders":
		return snap.Stakeholders
	case "metrics":
		return snap.Metrics
	default:
		return nil
	}
}

// activeFirst stably partitions items so in-flight work precedes finished
// work; within each half the snapshot order is preserved.
func activeFirst(items []product.Item) []product.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]product.Item, 0, len(items))
	for _, it := range items {
		if !terminalStatuses[it.Status] {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if terminalStatuses[it.Status] {
			out = append(out, it)
		}
	}
	return out
}
