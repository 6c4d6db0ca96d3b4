package facts

import (
	"context"

	"github.com/agenthands/gypsum/internal/llm"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Prompts       []string
	Opts          []llm.GenerateOptions
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	m.Opts = append(m.Opts, opts)
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
