package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/pdf"
	"github.com/pagesift/pagesift/internal/pipeline"
	"github.com/pagesift/pagesift/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// processImageHandler runs the pipeline on an uploaded page image.
func (s *Server) processImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, ok := s.readUploadedImage(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	page, err := s.orchestrator.ProcessPage(ctx, img, 1)
	if err != nil {
		s.writeError(w, "processing cancelled", http.StatusServiceUnavailable)
		return
	}
	textRegions, imageRegions := countRegions(page)
	recordPage("image", page.Failed, time.Since(start), textRegions, imageRegions)

	response := ProcessResponse{Success: !page.Failed, Page: &page}
	if page.Failed {
		response.Error = page.Error
	}
	if s.overlayEnabled && r.URL.Query().Get("overlay") == "true" {
		if encoded, err := encodeOverlay(img, page); err == nil {
			response.Overlay = encoded
		} else {
			slog.Warn("overlay rendering failed", "error", err)
		}
	}
	s.writeJSON(w, http.StatusOK, response)
}

// processPDFHandler runs the pipeline over an uploaded PDF document.
// Supported query parameters: pages (selection expression, default all).
func (s *Server) processPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	selection, err := config.ParsePageSelection(r.URL.Query().Get("pages"))
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeError(w, "failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeError(w, "no pdf file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	// pdfcpu works on files, so spool the upload to a temp path.
	tmp, err := os.CreateTemp("", "pagesift-upload-*.pdf")
	if err != nil {
		s.writeError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		s.writeError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	_ = tmp.Close()

	pageImages, err := pdf.ExtractPages(tmpPath, selection)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	inputs := make([]pipeline.PageInput, len(pageImages))
	for i, p := range pageImages {
		inputs[i] = pipeline.PageInput{PageNumber: p.PageNumber, Image: p.Image}
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	pages, err := s.orchestrator.ProcessPages(ctx, inputs, pipeline.ParallelConfig{MaxWorkers: s.pageWorkers})
	if err != nil {
		s.writeError(w, "processing cancelled", http.StatusServiceUnavailable)
		return
	}
	for _, page := range pages {
		text, images := countRegions(page)
		recordPage("pdf", page.Failed, time.Since(start)/time.Duration(len(pages)), text, images)
	}

	doc := &pipeline.Document{Source: filepath.Base(header.Filename), Pages: pages}
	s.writeJSON(w, http.StatusOK, ProcessResponse{Success: true, Document: doc})
}

// readUploadedImage parses the multipart "image" field into an image.
func (s *Server) readUploadedImage(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeError(w, "failed to parse form data", http.StatusBadRequest)
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, "no image file provided", http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "failed to read image data", http.StatusInternalServerError)
		return nil, false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, "invalid image format", http.StatusBadRequest)
		return nil, false
	}
	return img, true
}

// requestContext derives the per-request processing context.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeoutSec > 0 {
		return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	}
	return context.WithCancel(r.Context())
}

// encodeOverlay renders the region overlay and base64-encodes it as PNG.
func encodeOverlay(img image.Image, page pipeline.Page) (string, error) {
	overlay := pipeline.RenderOverlay(img, page.Regions)
	var buf bytes.Buffer
	if err := png.Encode(&buf, overlay); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func countRegions(page pipeline.Page) (textRegions, imageRegions int) {
	for _, region := range page.Regions {
		if region.Type == "text" {
			textRegions++
		} else {
			imageRegions++
		}
	}
	return textRegions, imageRegions
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	s.writeJSON(w, status, ProcessResponse{Success: false, Error: msg})
}
