package correction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Service caches one corrector per language for the lifetime of the
// process. Model construction is expensive relative to a single
// correction call, so correctors are built lazily on first use and never
// rebuilt per region or per page.
type Service struct {
	mu      sync.Mutex
	factory Factory
	cache   map[string]Corrector
	timeout time.Duration
}

// NewService creates a correction service around a corrector factory.
// A zero timeout disables the per-call limit.
func NewService(factory Factory, timeout time.Duration) *Service {
	return &Service{
		factory: factory,
		cache:   make(map[string]Corrector),
		timeout: timeout,
	}
}

// Correct applies the language's correction model to raw text. Errors
// (unsupported language, model failure, timeout) are returned for the
// caller to record; they must never abort sibling regions.
func (s *Service) Correct(ctx context.Context, text, language string) (string, error) {
	corrector, err := s.corrector(language)
	if err != nil {
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return corrector.Correct(ctx, text)
}

// corrector returns the cached corrector for a language, building it on
// first use. A failed build is not cached so a transient failure can
// recover on a later page.
func (s *Service) corrector(language string) (Corrector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[language]; ok {
		return c, nil
	}
	slog.Debug("loading correction model", "language", language)
	c, err := s.factory(language)
	if err != nil {
		return nil, fmt.Errorf("load correction model for %q: %w", language, err)
	}
	s.cache[language] = c
	return c, nil
}

// Close tears down cached correctors that hold resources. Called once at
// process shutdown.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for lang, c := range s.cache {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(s.cache, lang)
	}
	return firstErr
}
