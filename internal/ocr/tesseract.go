package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// tesseractLangs maps ISO 639-1 codes to Tesseract's ISO 639-2 traineddata
// names. Unknown codes fall back to English.
var tesseractLangs = map[string]string{
	"en": "eng",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"tr": "tur",
	"it": "ita",
	"pt": "por",
	"nl": "nld",
}

// Tesseract wraps a gosseract client. The underlying Tesseract API is not
// safe for concurrent use, so all calls are serialized behind a mutex.
type Tesseract struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

// NewTesseract creates a Tesseract-backed engine. The native client is
// created lazily on first recognition so that constructing the engine
// never touches the C runtime.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

// ID returns the backend name.
func (t *Tesseract) ID() string { return "tesseract" }

// Recognize runs Tesseract on the region image. Confidence is the mean
// word confidence reported by Tesseract, scaled from 0-100 into [0,1].
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, language string) (Result, error) {
	if img == nil {
		return Result{}, fmt.Errorf("tesseract: nil region image")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("tesseract: encode region: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		t.client = gosseract.NewClient()
	}
	if lang := mapTesseractLanguage(language); lang != t.language {
		if err := t.client.SetLanguage(lang); err != nil {
			return Result{}, fmt.Errorf("tesseract: set language %q: %w", lang, err)
		}
		t.language = lang
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("tesseract: set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: recognition failed: %w", err)
	}

	confidence := 0.0
	if boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
		sum := 0.0
		for _, b := range boxes {
			sum += b.Confidence
		}
		// Tesseract reports word confidence on a 0-100 scale.
		confidence = sum / float64(len(boxes)) / 100.0
	}

	return Result{
		Text:       strings.TrimSpace(text),
		Confidence: clampConfidence(confidence),
	}, nil
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func mapTesseractLanguage(code string) string {
	if lang, ok := tesseractLangs[strings.ToLower(code)]; ok {
		return lang
	}
	return "eng"
}
