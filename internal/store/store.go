// Package store records one audit row per pipeline invocation: token usage,
// cost, and timing. This is operational telemetry; extracted records
// themselves are never persisted here.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/prodmap/assist/internal/config"
)

// Invocation is one audited pipeline call.
type Invocation struct {
	ID           string    `json:"id"`
	Flow         string    `json:"flow"` // "chat" or "form"
	ProductID    string    `json:"product_id,omitempty"`
	FormType     string    `json:"form_type,omitempty"`
	EntityCount  int       `json:"entity_count"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter specifies criteria for listing invocations.
type Filter struct {
	Flow      string `json:"flow,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Store defines the audit persistence interface.
type Store interface {
	RecordInvocation(ctx context.Context, inv *Invocation) error
	ListInvocations(ctx context.Context, filter Filter) ([]Invocation, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver. An empty driver yields a
// no-op store so callers never need a nil check.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return NewNoop(), nil
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// NoopStore discards all writes and lists nothing.
type NoopStore struct{}

// NewNoop creates a NoopStore.
func NewNoop() *NoopStore {
	return &NoopStore{}
}

func (*NoopStore) RecordInvocation(context.Context, *Invocation) error { return nil }

func (*NoopStore) ListInvocations(context.Context, Filter) ([]Invocation, error) {
	return nil, nil
}

func (*NoopStore) Migrate(context.Context) error { return nil }

func (*NoopStore) Close() error { return nil }
