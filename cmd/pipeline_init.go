package main

import (
	"context"

	"github.com/prodmap/assist/internal/pipeline"
	"github.com/prodmap/assist/internal/schema"
	"github.com/prodmap/assist/internal/store"
	"github.com/prodmap/assist/pkg/anthropic"
	"github.com/prodmap/assist/pkg/product"
)

// pipelineEnv holds the initialized clients, registry, store, and pipeline
// needed by the serve/extract/batch commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline loads the schema registry, opens the audit store, builds the
// API clients, and wires the Pipeline. Callers should defer env.Close().
// The Anthropic key is deliberately not validated here: the adapter checks
// it per call so a misconfigured server still starts and reports a clean
// error per request.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	registry, err := schema.Load()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	ai := anthropic.NewClient(cfg.Anthropic.Key,
		anthropic.WithRateLimit(cfg.Anthropic.RequestsPerSecond),
	)

	var products product.Client
	if cfg.Products.BaseURL != "" {
		products = product.NewClient(cfg.Products.BaseURL)
	}

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(ai, products, registry, st, cfg),
	}, nil
}
