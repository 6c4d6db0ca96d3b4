// Package ingest extracts per-page content from the source PDF pair:
// selectable text, a rendered PNG per page, and OCR text from that render.
// No interpretation happens here, so every artifact stays auditable.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/gypsum/internal/config"
	"github.com/agenthands/gypsum/internal/core/model"
)

// Artifact filenames written by Run.
const (
	OutputFile          = "input_layer_output.json"
	InspectionAuditFile = "inspection.txt"
	ThermalAuditFile    = "thermal.txt"
)

// Document is one open PDF. Implementations must be safe for concurrent
// method calls, since pages are processed by a worker pool.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
	RenderPNG(page int, dpi int, path string) error
	Close() error
}

// OpenFunc opens a PDF for extraction.
type OpenFunc func(path string) (Document, error)

// OCR recognizes text in a rendered page image. Confidence values are
// normalized to the 0-1 range.
type OCR interface {
	Recognize(imagePath string) ([]model.OCRSpan, error)
}

type Extractor struct {
	open OpenFunc
	ocr  OCR
	cfg  config.IngestConfig
	log  *slog.Logger
}

// NewExtractor builds the stage 1 extractor. A nil open falls back to the
// MuPDF opener and a nil ocr falls back to Tesseract.
func NewExtractor(open OpenFunc, ocr OCR, cfg config.IngestConfig, log *slog.Logger) *Extractor {
	if open == nil {
		open = OpenPDF
	}
	if ocr == nil {
		ocr = NewTesseractOCR(cfg.OCRLanguage)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{open: open, ocr: ocr, cfg: cfg, log: log}
}

// Run extracts both source PDFs and writes the stage artifacts to outDir:
// the combined JSON document plus one plain-text audit file per source.
func (e *Extractor) Run(ctx context.Context, inspectionPDF, thermalPDF, outDir string) (model.InputDoc, error) {
	inspection, err := e.ExtractDocument(ctx, inspectionPDF, model.DocInspection, outDir)
	if err != nil {
		return model.InputDoc{}, fmt.Errorf("extract inspection pdf: %w", err)
	}
	thermal, err := e.ExtractDocument(ctx, thermalPDF, model.DocThermal, outDir)
	if err != nil {
		return model.InputDoc{}, fmt.Errorf("extract thermal pdf: %w", err)
	}

	out := model.InputDoc{Inspection: &inspection, Thermal: &thermal}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return model.InputDoc{}, fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return model.InputDoc{}, fmt.Errorf("marshal extraction output: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, OutputFile), data, 0o644); err != nil {
		return model.InputDoc{}, fmt.Errorf("write extraction output: %w", err)
	}

	if err := os.WriteFile(filepath.Join(outDir, InspectionAuditFile), []byte(auditText(inspection)), 0o644); err != nil {
		return model.InputDoc{}, fmt.Errorf("write inspection audit: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, ThermalAuditFile), []byte(auditText(thermal)), 0o644); err != nil {
		return model.InputDoc{}, fmt.Errorf("write thermal audit: %w", err)
	}

	e.log.Info("ingest.done", "out_dir", outDir,
		"inspection_pages", len(inspection.Pages), "thermal_pages", len(thermal.Pages))
	return out, nil
}

// ExtractDocument processes one PDF. Page images land under
// <outDir>/<images_subdir>/<pdf stem>/page_NNN.png and OCR runs on each
// render. Results keep page order regardless of worker completion order.
func (e *Extractor) ExtractDocument(ctx context.Context, pdfPath, source, outDir string) (model.DocumentExtraction, error) {
	doc, err := e.open(pdfPath)
	if err != nil {
		return model.DocumentExtraction{}, fmt.Errorf("open pdf '%s': %w", pdfPath, err)
	}
	defer doc.Close()

	numPages := doc.NumPages()
	if e.cfg.MaxPages > 0 && numPages > e.cfg.MaxPages {
		numPages = e.cfg.MaxPages
	}

	imagesDir := filepath.Join(outDir, e.cfg.ImagesSubdir, pdfStem(pdfPath))
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return model.DocumentExtraction{}, fmt.Errorf("create images dir: %w", err)
	}

	e.log.Info("ingest.document.start", "source", source, "pdf", pdfPath, "pages", numPages)

	// Selectable text comes out up front on one goroutine. The pool below
	// only renders and OCRs, which is where the time goes.
	rawTexts := make([]string, numPages)
	for i := 0; i < numPages; i++ {
		text, err := doc.PageText(i)
		if err != nil {
			return model.DocumentExtraction{}, fmt.Errorf("read text of page %d: %w", i+1, err)
		}
		rawTexts[i] = tidyText(text)
	}

	pages := make([]model.PageExtraction, numPages)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(4, max(numPages, 1)))
	for i := 0; i < numPages; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pageNumber := i + 1
			imagePath := filepath.Join(imagesDir, fmt.Sprintf("page_%03d.png", pageNumber))
			if err := doc.RenderPNG(i, e.cfg.DPI, imagePath); err != nil {
				return fmt.Errorf("render page %d: %w", pageNumber, err)
			}

			spans, err := e.ocr.Recognize(imagePath)
			if err != nil {
				return fmt.Errorf("ocr page %d: %w", pageNumber, err)
			}
			kept := make([]model.OCRSpan, 0, len(spans))
			var lines []string
			for _, span := range spans {
				if span.Text == "" || span.Confidence < e.cfg.OCRConfidenceThreshold {
					continue
				}
				kept = append(kept, span)
				lines = append(lines, span.Text)
			}

			pages[i] = model.PageExtraction{
				Source:        source,
				PDFPath:       pdfPath,
				PageNumber:    pageNumber,
				RawText:       rawTexts[i],
				OCRText:       strings.TrimSpace(strings.Join(lines, "\n")),
				OCRSpans:      kept,
				PageImagePath: imagePath,
				Fields:        map[string]string{},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.DocumentExtraction{}, err
	}

	return model.DocumentExtraction{Source: source, PDFPath: pdfPath, Pages: pages}, nil
}

// auditText flattens one extracted document into the page-by-page audit
// format written next to the JSON artifact.
func auditText(doc model.DocumentExtraction) string {
	var parts []string
	parts = append(parts, "source: "+doc.Source)
	parts = append(parts, "pdf_path: "+doc.PDFPath)
	parts = append(parts, "")

	for _, page := range doc.Pages {
		parts = append(parts, strings.Repeat("=", 80))
		parts = append(parts, fmt.Sprintf("PAGE %d", page.PageNumber))
		parts = append(parts, "page_image_path: "+page.PageImagePath)
		parts = append(parts, "")

		parts = append(parts, "[raw_text]")
		parts = append(parts, textOrEmpty(page.RawText))
		parts = append(parts, "")

		parts = append(parts, "[ocr_text]")
		parts = append(parts, textOrEmpty(page.OCRText))
		parts = append(parts, "")
	}

	return strings.TrimRight(strings.Join(parts, "\n"), "\n") + "\n"
}

func textOrEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(empty)"
	}
	return s
}

func tidyText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func pdfStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
