package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/prodmap/assist/internal/model"
	"github.com/prodmap/assist/internal/schema"
)

// personas maps a workflow section to the persona paragraph opening the
// prompt. Immutable lookup table; composition performs no branching logic
// beyond these lookups and no randomness.
var personas = map[string]string{
	"strategy":       "You are a seasoned product strategist. You help teams turn loose ideas into crisp strategies, objectives, and bets.",
	"discovery":      "You are a product discovery researcher. You surface user problems, pain points, and the people affected by them.",
	"prioritization": "You are a pragmatic product manager focused on prioritization. You weigh impact against effort and keep backlogs honest.",
	"execution":      "You are a delivery-focused product operations lead. You break work into concrete tasks and workstreams with clear owners.",
	"stakeholders":   "You are a stakeholder-management coach. You map the people around a product and how much influence they carry.",
	"metrics":        "You are a product analyst. You define measurable outcomes and keep metrics tied to strategy.",
}

const defaultPersona = "You are an experienced product manager. You turn free-form notes into clean, structured product records."

// personaFor resolves the persona by section, then by the form type's
// natural section, then the default.
func personaFor(formType, section string) string {
	if p, ok := personas[section]; ok {
		return p
	}
	if sec, ok := formSections[formType]; ok {
		return personas[sec]
	}
	return defaultPersona
}

// ComposeChat builds the multi-entity extraction prompt: persona, the schema
// contract for every registered entity type, grounding context, prior turns,
// the user's request, and the JSON-only response contract. Identical inputs
// produce byte-identical output.
func ComposeChat(reg *schema.Registry, bundle model.ContextBundle, req ChatRequest) string {
	var b strings.Builder

	b.WriteString(personaFor("", ""))
	b.WriteString("\n\n")

	b.WriteString("You can produce records of the following entity types. Only use fields listed here.\n\n")
	for _, t := range reg.Types() {
		sch, _ := reg.Get(t)
		writeSchemaContract(&b, sch, nil)
		b.WriteString("\n")
	}

	writeContext(&b, bundle)

	if len(req.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range req.History {
			role := "User"
			if turn.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Request: ")
	b.WriteString(req.Message)
	b.WriteString("\n\n")

	b.WriteString(`Respond with valid JSON only, in exactly this shape:
{"entities": [{"type": "<entity type>", "data": {<schema fields>}, "confidence": <0.0-1.0>}], "message": "<one-sentence summary of what you extracted>"}
Return {"entities": [], "message": "<why>"} if the request contains nothing extractable.`)

	return b.String()
}

// ComposeForm builds the single-record assist prompt for one form type.
// Identical inputs produce byte-identical output.
func ComposeForm(sch *model.EntitySchema, bundle model.ContextBundle, req FormRequest) string {
	var b strings.Builder

	b.WriteString(personaFor(sch.Type, req.Section))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Fill in a %q record from the user's request.\n\n", sch.Type)
	writeSchemaContract(&b, sch, req.FieldOptions)
	b.WriteString("\n")

	if len(req.Context) > 0 {
		// json.Marshal sorts map keys, keeping this block deterministic.
		if current, err := json.Marshal(req.Context); err == nil {
			b.WriteString("Current form values (keep unless the request changes them):\n")
			b.Write(current)
			b.WriteString("\n\n")
		}
	}

	writeContext(&b, bundle)

	b.WriteString("Request: ")
	b.WriteString(req.Prompt)
	b.WriteString("\n\n")

	b.WriteString("Respond with valid JSON only: a single object holding the schema fields above, plus an optional \"confidence\" between 0.0 and 1.0.")

	return b.String()
}

// writeSchemaContract renders one entity schema as field contract lines.
// Caller-supplied field options override the schema's allowed values in the
// rendered text (the normalizer still enforces the schema).
func writeSchemaContract(b *strings.Builder, sch *model.EntitySchema, fieldOptions map[string][]string) {
	fmt.Fprintf(b, "Entity type %q:\n", sch.Type)
	for _, f := range sch.Fields {
		fmt.Fprintf(b, "- %s (%s", f.Name, f.Type)
		if f.Required {
			b.WriteString(", required")
		}
		allowed := f.AllowedValues
		if opts, ok := fieldOptions[f.Name]; ok && len(opts) > 0 {
			allowed = opts
		}
		if len(allowed) > 0 {
			fmt.Fprintf(b, ", one of: %s", strings.Join(allowed, "|"))
		}
		if f.Default != nil {
			fmt.Fprintf(b, ", default: %v", f.Default)
		}
		b.WriteString(")\n")
	}

	// Render extra caller options for fields outside the schema in sorted
	// order so output stays deterministic.
	var extra []string
	for name, opts := range fieldOptions {
		if sch.Field(name) == nil && len(opts) > 0 {
			extra = append(extra, fmt.Sprintf("- %s: one of %s", name, strings.Join(opts, "|")))
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		b.WriteString("Additional field options:\n")
		for _, line := range extra {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

// writeContext renders the grounding bundle as category-grouped bullets with
// an anti-duplication instruction. No-op for an empty bundle.
func writeContext(b *strings.Builder, bundle model.ContextBundle) {
	if bundle.Total() == 0 {
		return
	}

	b.WriteString("Existing records in this product. Do not duplicate them; stay consistent with their naming and status values.\n")
	for _, cat := range categoryOrder {
		items := bundle[cat]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s:\n", cat)
		for _, it := range items {
			fmt.Fprintf(b, "- %s", it.Title)
			if it.Status != "" {
				fmt.Fprintf(b, " [%s]", it.Status)
			}
			if it.Detail != "" {
				fmt.Fprintf(b, ": %s", it.Detail)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}
