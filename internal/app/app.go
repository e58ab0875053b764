package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"BrochureGen/internal/config"
	"BrochureGen/internal/infrastructure/console"
	"BrochureGen/internal/infrastructure/fetcher"
	"BrochureGen/internal/infrastructure/llm"
	"BrochureGen/internal/logging"
	"BrochureGen/internal/ports"
	"BrochureGen/internal/usecase"
)

// Application wires configuration into the brochure pipeline.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. A missing Gemini key is a
// configuration error: construction fails before any request can start.
func New(cfg config.Config, sink ports.StatusSink, baseLogger *slog.Logger) (*Application, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured (set %s)", "GEMINI_API_KEY")
	}
	if sink == nil {
		sink = console.New(os.Stderr)
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := &http.Client{Timeout: cfg.Fetch.Timeout()}
	pages := fetcher.New(client, cfg.Fetch.UserAgent)
	gemini := llm.NewGeminiClient(cfg.Gemini)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:    pages,
		Classifier: gemini,
		Writer:     gemini,
		Sink:       sink,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline}, nil
}

// Pipeline exposes the wired use case to the presentation layer.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}
