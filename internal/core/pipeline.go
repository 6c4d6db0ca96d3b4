// Package core wires the five pipeline stages together: PDF extraction,
// LLM fact extraction, deterministic merge with conflict detection,
// analytical reasoning, and report generation. Every stage reads and
// writes JSON artifacts in a run directory, so stages can be re-run
// individually and audited after the fact.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agenthands/gypsum/internal/config"
	"github.com/agenthands/gypsum/internal/core/facts"
	"github.com/agenthands/gypsum/internal/core/ingest"
	"github.com/agenthands/gypsum/internal/core/merge"
	"github.com/agenthands/gypsum/internal/core/model"
	"github.com/agenthands/gypsum/internal/core/prep"
	"github.com/agenthands/gypsum/internal/core/reason"
	"github.com/agenthands/gypsum/internal/core/report"
	"github.com/agenthands/gypsum/internal/llm"
)

// Artifact filenames inside a run directory.
const (
	InputFile           = ingest.OutputFile
	InspectionFactsFile = "inspection_facts.json"
	ThermalFactsFile    = "thermal_facts.json"
	MergedFile          = "merged_area_data.json"
	AnalysisFile        = "analytical_reasoning.json"
)

// Stage names reported through the progress hook.
const (
	StageExtract = "extract"
	StageFacts   = "facts"
	StageMerge   = "merge"
	StageReason  = "reason"
	StageReport  = "report"
)

// Progress statuses reported through the progress hook.
const (
	ProgressRunning = "running"
	ProgressDone    = "done"
	ProgressFailed  = "failed"
)

// ProgressFunc receives (stage, status, detail) notifications around every
// stage so callers can persist run events.
type ProgressFunc func(stage, status, detail string)

type Pipeline struct {
	Config    *config.Config
	LLM       llm.LLMClient
	Ingestor  *ingest.Extractor
	Extractor *facts.Extractor
	Reasoner  *reason.Engine

	// Progress, when set, is called around every stage.
	Progress ProgressFunc

	log *slog.Logger
}

func NewPipeline(cfg *config.Config, llmClient llm.LLMClient, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Config:    cfg,
		LLM:       llmClient,
		Ingestor:  ingest.NewExtractor(nil, nil, cfg.Ingest, log),
		Extractor: facts.NewExtractor(llmClient, cfg.Facts, log),
		Reasoner:  reason.NewEngine(llmClient, cfg.Reason, cfg.LLM.Model, log),
		log:       log,
	}
}

type ExtractResult struct {
	InspectionPages int `json:"inspection_pages"`
	ThermalPages    int `json:"thermal_pages"`
}

type FactsResult struct {
	InspectionFacts int `json:"inspection_facts"`
	ThermalFacts    int `json:"thermal_facts"`
}

type MergeResult struct {
	Areas     int              `json:"areas"`
	Conflicts int              `json:"conflicts"`
	Stats     model.MergeStats `json:"stats"`
}

type ReasonResult struct {
	AreasAnalyzed int `json:"areas_analyzed"`
}

type ReportResult struct {
	// Files maps format name to the written path.
	Files map[string]string `json:"files"`
}

type RunResult struct {
	Extract ExtractResult `json:"extract"`
	Facts   FactsResult   `json:"facts"`
	Merge   MergeResult   `json:"merge"`
	Reason  ReasonResult  `json:"reason"`
	Report  ReportResult  `json:"report"`
}

// Extract runs stage 1: per-page text, images, and OCR for both PDFs.
func (p *Pipeline) Extract(ctx context.Context, dir, inspectionPDF, thermalPDF string) (ExtractResult, error) {
	p.progress(StageExtract, ProgressRunning, "")

	out, err := p.Ingestor.Run(ctx, inspectionPDF, thermalPDF, dir)
	if err != nil {
		return ExtractResult{}, p.fail(StageExtract, err)
	}

	res := ExtractResult{
		InspectionPages: len(out.Inspection.Pages),
		ThermalPages:    len(out.Thermal.Pages),
	}
	p.progress(StageExtract, ProgressDone,
		fmt.Sprintf("%d inspection pages, %d thermal pages", res.InspectionPages, res.ThermalPages))
	return res, nil
}

// Facts runs stage 2: cleans and chunks the extracted pages, then asks
// the LLM for structured facts per source document.
func (p *Pipeline) Facts(ctx context.Context, dir string) (FactsResult, error) {
	p.progress(StageFacts, ProgressRunning, "")

	input, err := readArtifact[model.InputDoc](dir, InputFile)
	if err != nil {
		return FactsResult{}, p.fail(StageFacts, err)
	}

	inspChunks := p.chunksFor(model.DocInspection, input.Inspection)
	thermChunks := p.chunksFor(model.DocThermal, input.Thermal)

	inspDoc, err := p.Extractor.ExtractInspection(ctx, inspChunks)
	if err != nil {
		return FactsResult{}, p.fail(StageFacts, err)
	}
	if err := writeArtifact(dir, InspectionFactsFile, inspDoc); err != nil {
		return FactsResult{}, p.fail(StageFacts, err)
	}

	thermDoc, err := p.Extractor.ExtractThermal(ctx, thermChunks)
	if err != nil {
		return FactsResult{}, p.fail(StageFacts, err)
	}
	if err := writeArtifact(dir, ThermalFactsFile, thermDoc); err != nil {
		return FactsResult{}, p.fail(StageFacts, err)
	}

	res := FactsResult{
		InspectionFacts: len(inspDoc.Facts),
		ThermalFacts:    len(thermDoc.Facts),
	}
	p.progress(StageFacts, ProgressDone,
		fmt.Sprintf("%d inspection facts, %d thermal facts", res.InspectionFacts, res.ThermalFacts))
	return res, nil
}

// Merge runs stage 3: the deterministic merge and conflict engine over
// both fact documents. No LLM involved.
func (p *Pipeline) Merge(ctx context.Context, dir string) (MergeResult, error) {
	p.progress(StageMerge, ProgressRunning, "")

	if err := ctx.Err(); err != nil {
		return MergeResult{}, p.fail(StageMerge, err)
	}

	inspDoc, err := readArtifact[model.InspectionFactsDoc](dir, InspectionFactsFile)
	if err != nil {
		return MergeResult{}, p.fail(StageMerge, err)
	}
	thermDoc, err := readArtifact[model.ThermalFactsDoc](dir, ThermalFactsFile)
	if err != nil {
		return MergeResult{}, p.fail(StageMerge, err)
	}

	merged := merge.Merge(p.mergeConfig(), inspDoc.Observations(), thermDoc.Observations())
	if err := writeArtifact(dir, MergedFile, merged); err != nil {
		return MergeResult{}, p.fail(StageMerge, err)
	}

	res := MergeResult{
		Areas:     len(merged.Areas),
		Conflicts: merged.Stats.Conflicts,
		Stats:     merged.Stats,
	}
	p.progress(StageMerge, ProgressDone,
		fmt.Sprintf("%d areas, %d conflicts", res.Areas, res.Conflicts))
	return res, nil
}

// Reason runs stage 4: per-area root cause, severity, and
// missing-information analysis.
func (p *Pipeline) Reason(ctx context.Context, dir string) (ReasonResult, error) {
	p.progress(StageReason, ProgressRunning, "")

	merged, err := readArtifact[model.MergedDoc](dir, MergedFile)
	if err != nil {
		return ReasonResult{}, p.fail(StageReason, err)
	}

	analysis, err := p.Reasoner.Analyze(ctx, merged, MergedFile)
	if err != nil {
		return ReasonResult{}, p.fail(StageReason, err)
	}
	if err := writeArtifact(dir, AnalysisFile, analysis); err != nil {
		return ReasonResult{}, p.fail(StageReason, err)
	}

	res := ReasonResult{AreasAnalyzed: len(analysis.Areas)}
	p.progress(StageReason, ProgressDone, fmt.Sprintf("%d areas analyzed", res.AreasAnalyzed))
	return res, nil
}

// Report runs stage 5: builds the report and renders the requested
// formats into the run directory.
func (p *Pipeline) Report(ctx context.Context, dir, propertyName string, formats []string) (ReportResult, error) {
	p.progress(StageReport, ProgressRunning, "")

	if err := ctx.Err(); err != nil {
		return ReportResult{}, p.fail(StageReport, err)
	}

	analysis, err := readArtifact[model.AnalysisDoc](dir, AnalysisFile)
	if err != nil {
		return ReportResult{}, p.fail(StageReport, err)
	}

	if propertyName == "" {
		propertyName = p.Config.Report.PropertyName
	}
	if len(formats) == 0 {
		formats = p.Config.Report.Formats
	}

	files, err := report.Save(report.Build(analysis, propertyName), dir, formats)
	if err != nil {
		return ReportResult{}, p.fail(StageReport, err)
	}

	res := ReportResult{Files: files}
	p.progress(StageReport, ProgressDone, fmt.Sprintf("%d report file(s)", len(files)))
	return res, nil
}

// Run executes all five stages in order against one run directory.
func (p *Pipeline) Run(ctx context.Context, dir, inspectionPDF, thermalPDF, propertyName string, formats []string) (RunResult, error) {
	var res RunResult
	var err error

	if res.Extract, err = p.Extract(ctx, dir, inspectionPDF, thermalPDF); err != nil {
		return res, err
	}
	if res.Facts, err = p.Facts(ctx, dir); err != nil {
		return res, err
	}
	if res.Merge, err = p.Merge(ctx, dir); err != nil {
		return res, err
	}
	if res.Reason, err = p.Reason(ctx, dir); err != nil {
		return res, err
	}
	if res.Report, err = p.Report(ctx, dir, propertyName, formats); err != nil {
		return res, err
	}
	return res, nil
}

// chunksFor turns one extracted document into prompt chunks: raw and OCR
// text combined and cleaned per page, recurring boilerplate dropped across
// pages, then paragraph-packed into chunks with page provenance.
func (p *Pipeline) chunksFor(source string, doc *model.DocumentExtraction) []prep.Chunk {
	if doc == nil || len(doc.Pages) == 0 {
		return nil
	}

	texts := make([]string, len(doc.Pages))
	for i, page := range doc.Pages {
		texts[i] = prep.Combine(page.RawText, page.OCRText)
	}
	texts = prep.RemoveCommonBoilerplate(texts, p.Config.Prep.BoilerplateMinFraction)

	pages := make([]prep.Page, len(texts))
	for i, text := range texts {
		pages[i] = prep.Page{Number: doc.Pages[i].PageNumber, Text: text}
	}
	return prep.ChunkPages(source, pages, p.Config.Prep.MaxChunkChars)
}

func (p *Pipeline) mergeConfig() merge.Config {
	cfg := merge.Config{SimilarityThreshold: p.Config.Merge.SimilarityThreshold}
	for _, r := range p.Config.Merge.Rules {
		cfg.Rules = append(cfg.Rules, merge.Rule{
			Type:     r.Type,
			Subjects: r.Subjects,
			Negators: r.Negators,
			Absent:   r.Absent,
		})
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = merge.DefaultRules()
	}
	return cfg
}

func (p *Pipeline) progress(stage, status, detail string) {
	if p.Progress != nil {
		p.Progress(stage, status, detail)
	}
}

func (p *Pipeline) fail(stage string, err error) error {
	p.log.Error("pipeline.stage.failed", "stage", stage, "error", err)
	p.progress(stage, ProgressFailed, err.Error())
	return err
}

func readArtifact[T any](dir, name string) (T, error) {
	var v T
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return v, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func writeArtifact(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
