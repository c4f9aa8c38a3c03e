package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// EasyOCR talks to an EasyOCR sidecar service over HTTP. The service
// accepts a PNG upload and responds with recognized lines plus a
// confidence already on a 0-1 scale.
type EasyOCR struct {
	baseURL string
	client  *http.Client
}

// easyOCRResponse is the sidecar's wire format.
type easyOCRResponse struct {
	Lines []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"lines"`
}

// NewEasyOCR creates an HTTP-backed engine for the given service URL.
func NewEasyOCR(baseURL string) *EasyOCR {
	return &EasyOCR{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ID returns the backend name.
func (e *EasyOCR) ID() string { return "easyocr" }

// Recognize posts the region image to the sidecar and joins the returned
// lines. Confidence is the mean line confidence, clamped defensively.
func (e *EasyOCR) Recognize(ctx context.Context, img image.Image, language string) (Result, error) {
	if img == nil {
		return Result{}, fmt.Errorf("easyocr: nil region image")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "region.png")
	if err != nil {
		return Result{}, fmt.Errorf("easyocr: build request: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return Result{}, fmt.Errorf("easyocr: encode region: %w", err)
	}
	if err := writer.WriteField("language", language); err != nil {
		return Result{}, fmt.Errorf("easyocr: build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("easyocr: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/recognize", body)
	if err != nil {
		return Result{}, fmt.Errorf("easyocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("easyocr: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("easyocr: service returned status %d", resp.StatusCode)
	}

	var parsed easyOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("easyocr: decode response: %w", err)
	}

	lines := make([]string, 0, len(parsed.Lines))
	sum := 0.0
	for _, l := range parsed.Lines {
		lines = append(lines, l.Text)
		sum += l.Confidence
	}
	confidence := 0.0
	if len(parsed.Lines) > 0 {
		confidence = sum / float64(len(parsed.Lines))
	}

	return Result{
		Text:       strings.TrimSpace(strings.Join(lines, "\n")),
		Confidence: clampConfidence(confidence),
	}, nil
}

// Close is a no-op; the HTTP client holds no per-engine state.
func (e *EasyOCR) Close() error { return nil }
