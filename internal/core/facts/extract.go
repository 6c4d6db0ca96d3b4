package facts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/gypsum/internal/config"
	"github.com/agenthands/gypsum/internal/core/common"
	"github.com/agenthands/gypsum/internal/core/model"
	"github.com/agenthands/gypsum/internal/core/prep"
	"github.com/agenthands/gypsum/internal/llm"
)

type Extractor struct {
	llm llm.LLMClient
	cfg config.FactsConfig
	log *slog.Logger
}

func NewExtractor(client llm.LLMClient, cfg config.FactsConfig, log *slog.Logger) *Extractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{llm: client, cfg: cfg, log: log}
}

// ExtractInspection runs one extraction call over all inspection chunks and
// returns the validated fact document.
func (e *Extractor) ExtractInspection(ctx context.Context, chunks []prep.Chunk) (model.InspectionFactsDoc, error) {
	schema := BuildInspectionSchema()
	raw, err := e.generateValidated(ctx, inspectionPrompt(schema, chunks), schema, "inspection_facts")
	if err != nil {
		return model.InspectionFactsDoc{}, err
	}

	var doc model.InspectionFactsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.InspectionFactsDoc{}, fmt.Errorf("unmarshal inspection facts: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// ExtractThermal runs one extraction call over all thermal chunks and
// returns the validated fact document.
func (e *Extractor) ExtractThermal(ctx context.Context, chunks []prep.Chunk) (model.ThermalFactsDoc, error) {
	schema := BuildThermalSchema()
	raw, err := e.generateValidated(ctx, thermalPrompt(schema, chunks), schema, "thermal_facts")
	if err != nil {
		return model.ThermalFactsDoc{}, err
	}

	var doc model.ThermalFactsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.ThermalFactsDoc{}, fmt.Errorf("unmarshal thermal facts: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// generateValidated calls the LLM up to MaxAttempts times, feeding the
// previous invalid output back into the prompt, and returns the first
// response that passes schema validation. A transport error fails
// immediately; only invalid output earns a retry.
func (e *Extractor) generateValidated(ctx context.Context, prompt string, schema map[string]any, name string) ([]byte, error) {
	opts := llm.GenerateOptions{Temperature: llm.Temp(0), JSONOnly: true}

	var lastOut string
	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		p := prompt
		if lastOut != "" {
			p = prompt + "\n\n" + retryFeedback + "\nPrevious output:\n" + lastOut
		}

		e.log.Info("facts.extract.attempt", "doc", name, "attempt", attempt)
		out, err := e.llm.Generate(ctx, p, opts)
		if err != nil {
			return nil, fmt.Errorf("llm generate for %s: %w", name, err)
		}
		lastOut = strings.TrimSpace(out)

		candidate, err := common.ExtractJSON(lastOut)
		if err != nil {
			lastErr = err
			e.log.Warn("facts.extract.invalid_json", "doc", name, "attempt", attempt, "error", err)
			continue
		}
		if err := ValidateAgainstSchema(schema, []byte(candidate)); err != nil {
			lastErr = err
			e.log.Warn("facts.extract.schema_mismatch", "doc", name, "attempt", attempt, "error", err)
			continue
		}
		return []byte(candidate), nil
	}
	return nil, fmt.Errorf("extraction failed to produce valid %s JSON after %d attempts: %w", name, e.cfg.MaxAttempts, lastErr)
}
