package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prodmap/assist/internal/model"
	"github.com/prodmap/assist/internal/pipeline"
	"github.com/prodmap/assist/pkg/anthropic"
)

var servePort int

// extractor is the pipeline surface the HTTP handlers depend on.
type extractor interface {
	ExtractEntities(ctx context.Context, req pipeline.ChatRequest) (*model.ExtractionResponse, error)
	AssistForm(ctx context.Context, req pipeline.FormRequest) (map[string]any, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/v1/chat/extract", handleChatExtract(env.Pipeline))
		r.Post("/v1/forms/assist", handleFormAssist(env.Pipeline))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleChatExtract serves the multi-entity extraction endpoint.
func handleChatExtract(p extractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Message == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}

		resp, err := p.ExtractEntities(r.Context(), req)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleFormAssist serves the single-form assist endpoint.
func handleFormAssist(p extractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.FormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Prompt == "" || req.FormType == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt and form_type are required"})
			return
		}

		data, err := p.AssistForm(r.Context(), req)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": data})
	}
}

// writePipelineError maps pipeline errors to status codes: unknown form
// types are the caller's fault, a missing credential is a deterministic
// 500, upstream statuses are mirrored, and transport failures surface as
// 503.
func writePipelineError(w http.ResponseWriter, err error) {
	var upstream *anthropic.UpstreamError
	var transport *anthropic.TransportError

	switch {
	case errors.Is(err, pipeline.ErrUnknownFormType):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown form type"})
	case errors.Is(err, anthropic.ErrNoAPIKey):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "model credential not configured"})
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		zap.L().Error("extraction upstream failure", zap.Int("status", upstream.StatusCode), zap.Error(err))
		writeJSON(w, status, map[string]string{"error": "the model service rejected the request"})
	case errors.As(err, &transport):
		zap.L().Error("extraction transport failure", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "could not reach the model service"})
	default:
		zap.L().Error("extraction failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "extraction failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
