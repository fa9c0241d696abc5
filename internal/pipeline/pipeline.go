// Package pipeline implements the extraction pipeline: context selection,
// prompt composition, model invocation, response repair, normalization, and
// aggregation. Each call is a stateless invocation; the only I/O-bound step
// is the model call.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prodmap/assist/internal/config"
	"github.com/prodmap/assist/internal/model"
	"github.com/prodmap/assist/internal/schema"
	"github.com/prodmap/assist/internal/store"
	"github.com/prodmap/assist/pkg/anthropic"
	"github.com/prodmap/assist/pkg/product"
)

// ErrUnknownFormType is returned by AssistForm for a form type the schema
// registry does not know.
var ErrUnknownFormType = errors.New("pipeline: unknown form type")

const chatSystemText = "You are a product management copilot that extracts structured records from free-form text. Respond with valid JSON only, matching the requested shape exactly. Never add commentary outside the JSON."

const formSystemText = "You are a product management copilot that fills a single form from free-form text. Respond with valid JSON only: one object of form fields. Never add commentary outside the JSON."

// ChatRequest is one inbound multi-entity extraction request.
type ChatRequest struct {
	Message   string                   `json:"message"`
	History   []model.ConversationTurn `json:"conversation_history,omitempty"`
	ProductID string                   `json:"product_id,omitempty"`
}

// FormRequest is one inbound single-form assist request.
type FormRequest struct {
	Prompt       string              `json:"prompt"`
	FormType     string              `json:"form_type"`
	Context      map[string]any      `json:"context,omitempty"`
	FieldOptions map[string][]string `json:"field_options,omitempty"`
	Section      string              `json:"section,omitempty"`
	ProductID    string              `json:"product_id,omitempty"`
}

// Pipeline wires the extraction stages together. Safe for concurrent use:
// no state is retained across calls.
type Pipeline struct {
	ai       anthropic.Client
	products product.Client // nil disables grounding
	registry *schema.Registry
	store    store.Store
	cfg      *config.Config
}

// New creates a Pipeline.
func New(ai anthropic.Client, products product.Client, registry *schema.Registry, st store.Store, cfg *config.Config) *Pipeline {
	if st == nil {
		st = store.NewNoop()
	}
	return &Pipeline{
		ai:       ai,
		products: products,
		registry: registry,
		store:    st,
		cfg:      cfg,
	}
}

// ExtractEntities runs the multi-entity chatbot flow: one model call, then
// repair, normalization, and aggregation of every candidate the model
// proposed.
func (p *Pipeline) ExtractEntities(ctx context.Context, req ChatRequest) (*model.ExtractionResponse, error) {
	start := time.Now()

	bundle := p.fetchContext(ctx, req.ProductID, "", "")
	prompt := ComposeChat(p.registry, bundle, req)

	raw, usage, err := p.invoke(ctx, chatSystemText, prompt, "chat")
	if err != nil {
		return nil, err
	}

	reply := ParseChatReply(raw)
	action := InferAction(req.Message)

	drafts := make([]model.EntityDraft, 0, len(reply.Entities))
	for _, cand := range reply.Entities {
		entityType := strings.ToLower(strings.TrimSpace(cand.Type))
		sch, ok := p.registry.Get(entityType)
		if !ok {
			zap.L().Warn("pipeline: skipping candidate of unknown entity type",
				zap.String("entity_type", cand.Type),
			)
			continue
		}
		draft := Normalize(sch, cand.Data, cand.Confidence, p.cfg.Pipeline.DefaultConfidence)
		draft.Action = action
		drafts = append(drafts, draft)
	}

	resp := Aggregate(drafts, reply.Message)
	p.audit(ctx, "chat", req.ProductID, "", len(drafts), usage, time.Since(start))
	return &resp, nil
}

// AssistForm runs the single-form flow: one model call producing one
// normalized record for the requested form type.
func (p *Pipeline) AssistForm(ctx context.Context, req FormRequest) (map[string]any, error) {
	start := time.Now()

	formType := strings.ToLower(strings.TrimSpace(req.FormType))
	sch, ok := p.registry.Get(formType)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownFormType, "form type %q", req.FormType)
	}

	bundle := p.fetchContext(ctx, req.ProductID, formType, req.Section)
	prompt := ComposeForm(sch, bundle, req)

	raw, usage, err := p.invoke(ctx, formSystemText, prompt, "form")
	if err != nil {
		return nil, err
	}

	data, recovered := ParseFormReply(raw)
	if !recovered {
		// Degraded success: hand back the raw reply as free text rather
		// than failing the request.
		p.audit(ctx, "form", req.ProductID, formType, 0, usage, time.Since(start))
		return data, nil
	}

	draft := Normalize(sch, data, data["confidence"], p.cfg.Pipeline.DefaultConfidence)
	p.audit(ctx, "form", req.ProductID, formType, 1, usage, time.Since(start))
	return draft.Data, nil
}

// invoke sends the composed prompt to the model with the configured
// request timeout. Typed adapter errors pass through untouched so the
// boundary layer can map them to status codes.
func (p *Pipeline) invoke(ctx context.Context, system, prompt, flow string) (string, anthropic.TokenUsage, error) {
	timeout := time.Duration(p.cfg.Anthropic.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.ai.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.Model,
		MaxTokens: p.cfg.Anthropic.MaxTokens,
		System:    system,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", anthropic.TokenUsage{}, err
	}

	resp.Usage.LogCost(p.cfg.Anthropic.Model, flow)
	return extractText(resp), resp.Usage, nil
}

// fetchContext pulls the product snapshot and selects the grounding bundle.
// Any failure degrades to an empty bundle: grounding is optional, the
// pipeline is not.
func (p *Pipeline) fetchContext(ctx context.Context, productID, formType, section string) model.ContextBundle {
	if productID == "" || p.products == nil {
		return model.ContextBundle{}
	}

	timeout := time.Duration(p.cfg.Products.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap, err := p.products.GetContext(cctx, productID)
	if err != nil {
		zap.L().Warn("pipeline: context fetch failed, proceeding without grounding",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return model.ContextBundle{}
	}

	return SelectContext(snap, formType, section, p.cfg.Pipeline.ContextCeiling)
}

// audit records the invocation best-effort; failures are logged, never
// surfaced.
func (p *Pipeline) audit(ctx context.Context, flow, productID, formType string, entities int, usage anthropic.TokenUsage, dur time.Duration) {
	inv := &store.Invocation{
		ID:           uuid.NewString(),
		Flow:         flow,
		ProductID:    productID,
		FormType:     formType,
		EntityCount:  entities,
		InputTokens:  int(usage.InputTokens),
		OutputTokens: int(usage.OutputTokens),
		CostUSD:      usage.EstimateCost(p.cfg.Anthropic.Model),
		DurationMS:   dur.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.store.RecordInvocation(ctx, inv); err != nil {
		zap.L().Warn("pipeline: audit record failed",
			zap.String("flow", flow),
			zap.Error(err),
		)
	}
}
