package server

import (
	"context"
	"image"
	"net/http"

	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/pipeline"
)

// pageProcessor defines the pipeline methods the server depends on.
type pageProcessor interface {
	ProcessPage(ctx context.Context, img image.Image, pageNumber int) (pipeline.Page, error)
	ProcessPages(ctx context.Context, pages []pipeline.PageInput, cfg pipeline.ParallelConfig) ([]pipeline.Page, error)
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	orchestrator   pageProcessor
	maxUploadMB    int64
	timeoutSec     int
	overlayEnabled bool
	pageWorkers    int
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ProcessResponse wraps a processed page or document result.
type ProcessResponse struct {
	Success  bool               `json:"success"`
	Page     *pipeline.Page     `json:"page,omitempty"`
	Document *pipeline.Document `json:"document,omitempty"`
	Overlay  string             `json:"overlay,omitempty"` // base64 PNG when requested
	Error    string             `json:"error,omitempty"`
}

// NewServer creates a document processing server from the application
// configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	orch, err := pipeline.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		orchestrator:   orch,
		maxUploadMB:    int64(cfg.Server.MaxUploadMB),
		timeoutSec:     cfg.Server.TimeoutSec,
		overlayEnabled: cfg.Server.OverlayEnabled,
		pageWorkers:    cfg.Pipeline.Parallel.PageWorkers,
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.orchestrator != nil {
		return s.orchestrator.Close()
	}
	return nil
}

// SetupRoutes registers all HTTP routes on the given mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.loggingMiddleware(s.healthHandler))
	mux.HandleFunc("/process/image", s.loggingMiddleware(s.processImageHandler))
	mux.HandleFunc("/process/pdf", s.loggingMiddleware(s.processPDFHandler))
	mux.HandleFunc("/process/ws", s.processWebSocketHandler)
	mux.Handle("/metrics", metricsHandler())
}
