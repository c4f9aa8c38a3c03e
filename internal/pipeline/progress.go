package pipeline

import (
	"log/slog"
	"sync"
)

// ProgressCallback defines the interface for progress reporting during
// multi-page processing.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total page count.
	OnStart(total int)

	// OnProgress is called after each page completes.
	OnProgress(current, total int)

	// OnComplete is called when processing is finished.
	OnComplete()
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)             {}
func (NoOpProgressCallback) OnProgress(current, total int) {}
func (NoOpProgressCallback) OnComplete()                   {}

// LogProgressCallback reports progress through the structured logger.
type LogProgressCallback struct {
	mu    sync.Mutex
	total int
}

func (c *LogProgressCallback) OnStart(total int) {
	c.mu.Lock()
	c.total = total
	c.mu.Unlock()
	slog.Info("processing started", "pages", total)
}

func (c *LogProgressCallback) OnProgress(current, total int) {
	slog.Info("page complete", "current", current, "total", total)
}

func (c *LogProgressCallback) OnComplete() {
	c.mu.Lock()
	total := c.total
	c.mu.Unlock()
	slog.Info("processing complete", "pages", total)
}

// FuncProgressCallback adapts a plain function to the ProgressCallback
// interface.
type FuncProgressCallback struct {
	Progress func(current, total int)
}

func (c FuncProgressCallback) OnStart(total int) {
	if c.Progress != nil {
		c.Progress(0, total)
	}
}

func (c FuncProgressCallback) OnProgress(current, total int) {
	if c.Progress != nil {
		c.Progress(current, total)
	}
}

func (c FuncProgressCallback) OnComplete() {}
