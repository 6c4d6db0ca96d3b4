// Package reason runs the per-area analytical pass over merged area data:
// root cause inference, severity assessment, and missing-information
// identification, each strictly grounded in the merged observations.
package reason

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/gypsum/internal/config"
	"github.com/agenthands/gypsum/internal/core/model"
	"github.com/agenthands/gypsum/internal/llm"
)

type Engine struct {
	llm       llm.LLMClient
	cfg       config.ReasonConfig
	modelName string
	log       *slog.Logger
}

func NewEngine(client llm.LLMClient, cfg config.ReasonConfig, modelName string, log *slog.Logger) *Engine {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{llm: client, cfg: cfg, modelName: modelName, log: log}
}

// Analyze reasons over every merged area in order. A failed or unparseable
// LLM response degrades that area to a Not Available analysis rather than
// failing the run; only context cancellation aborts.
func (e *Engine) Analyze(ctx context.Context, merged model.MergedDoc, inputFile string) (model.AnalysisDoc, error) {
	analyses := make([]model.AreaAnalysis, 0, len(merged.Areas))
	for _, rec := range merged.Areas {
		if err := ctx.Err(); err != nil {
			return model.AnalysisDoc{}, fmt.Errorf("reasoning aborted: %w", err)
		}
		analyses = append(analyses, e.analyzeArea(ctx, rec))
	}

	doc := model.AnalysisDoc{
		Areas:                     analyses,
		OverallMissingInformation: crossCuttingGaps(analyses),
		AnalysisMetadata: map[string]string{
			"timestamp":      time.Now().Format(time.RFC3339),
			"model":          e.modelName,
			"input_file":     inputFile,
			"areas_analyzed": strconv.Itoa(len(analyses)),
		},
	}
	return doc, nil
}

func (e *Engine) analyzeArea(ctx context.Context, rec model.AreaRecord) model.AreaAnalysis {
	e.log.Info("reason.area.start", "area", rec.Area,
		"inspection_observations", len(rec.InspectionObservations),
		"thermal_observations", len(rec.ThermalObservations),
		"conflicts", len(rec.Conflicts))

	prompt := buildAreaPrompt(rec)
	opts := llm.GenerateOptions{
		Temperature: llm.Temp(e.cfg.Temperature),
		MaxTokens:   e.cfg.MaxTokens,
		JSONOnly:    true,
	}

	responseText, err := e.llm.Generate(ctx, prompt, opts)
	if err != nil {
		e.log.Warn("reason.area.llm_error", "area", rec.Area, "error", err)
		responseText = "{}"
	}

	analysis := parseAnalysis(responseText, rec.Area)

	// The conflict flag comes from the merge engine, never from the model.
	analysis.HasConflict = rec.ConflictDetected
	if rec.ConflictDetected && len(rec.Conflicts) > 0 {
		summaries := make([]string, 0, len(rec.Conflicts))
		for _, c := range rec.Conflicts {
			summaries = append(summaries, fmt.Sprintf("%s: %s vs %s", c.Type, c.InspectionStatement, c.ThermalStatement))
		}
		analysis.ConflictSummary = strings.Join(summaries, "; ")
	}
	return analysis
}

// crossCuttingGaps reports missing-information categories that recur across
// areas, in first-seen order.
func crossCuttingGaps(analyses []model.AreaAnalysis) []string {
	var order []string
	counts := map[string]int{}
	for _, a := range analyses {
		for _, m := range a.MissingInformation {
			if counts[m.Category] == 0 {
				order = append(order, m.Category)
			}
			counts[m.Category]++
		}
	}

	overall := []string{}
	for _, cat := range order {
		if counts[cat] >= 2 {
			overall = append(overall, fmt.Sprintf("%s: affects %d areas", cat, counts[cat]))
		}
	}
	return overall
}
