// Package correction applies language-aware correction to raw OCR text.
// Correction is a quality enhancement, never a hard requirement: any
// failure leaves the raw text as the usable result.
package correction

import "context"

// Corrector is the capability interface for a language-specific
// correction model.
type Corrector interface {
	// Correct returns an improved version of text. Correcting text that
	// is already orthographically correct returns it unchanged.
	Correct(ctx context.Context, text string) (string, error)
}

// Factory builds a corrector for a language code. Returning an error
// marks the language as unsupported; the caller downgrades affected
// regions instead of failing.
type Factory func(language string) (Corrector, error)
