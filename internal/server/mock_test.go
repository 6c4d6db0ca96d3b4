package server

import (
	"context"
	"os"
	"sync"

	"github.com/agenthands/gypsum/internal/core/model"
	"github.com/agenthands/gypsum/internal/llm"
)

// MockLLM pops queued responses, falling back to Response. The pipeline
// endpoint runs on a background goroutine, so access is locked.
type MockLLM struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type fakePDF struct {
	texts []string
	mu    sync.Mutex
}

func (d *fakePDF) NumPages() int { return len(d.texts) }

func (d *fakePDF) PageText(page int) (string, error) { return d.texts[page], nil }

func (d *fakePDF) RenderPNG(page, dpi int, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (d *fakePDF) Close() error { return nil }

type silentOCR struct{}

func (silentOCR) Recognize(imagePath string) ([]model.OCRSpan, error) { return nil, nil }
