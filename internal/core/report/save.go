package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/gypsum/internal/core/model"
)

// Report artifact filenames, one per format.
const (
	MarkdownFile = "DDR_Report.md"
	TextFile     = "DDR_Report.txt"
	PDFFile      = "DDR_Report.pdf"
	XLSXFile     = "DDR_Report.xlsx"
)

// Save renders the report into dir in each requested format and returns
// format -> written path. Unknown format names are ignored; "all" selects
// every format.
func Save(r model.Report, dir string, formats []string) (map[string]string, error) {
	want := map[string]bool{}
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "all":
			want["markdown"] = true
			want["text"] = true
			want["pdf"] = true
			want["xlsx"] = true
		case "markdown", "md":
			want["markdown"] = true
		case "text", "txt":
			want["text"] = true
		case "pdf":
			want["pdf"] = true
		case "xlsx", "excel":
			want["xlsx"] = true
		}
	}
	if len(want) == 0 {
		want["markdown"] = true
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	saved := map[string]string{}
	if want["markdown"] {
		p := filepath.Join(dir, MarkdownFile)
		content, err := RenderMarkdown(r)
		if err != nil {
			return saved, err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return saved, fmt.Errorf("write markdown report: %w", err)
		}
		saved["markdown"] = p
	}
	if want["text"] {
		p := filepath.Join(dir, TextFile)
		if err := os.WriteFile(p, []byte(RenderText(r)), 0o644); err != nil {
			return saved, fmt.Errorf("write text report: %w", err)
		}
		saved["text"] = p
	}
	if want["pdf"] {
		p := filepath.Join(dir, PDFFile)
		if err := RenderPDF(r, p); err != nil {
			return saved, err
		}
		saved["pdf"] = p
	}
	if want["xlsx"] {
		p := filepath.Join(dir, XLSXFile)
		if err := RenderXLSX(r, p); err != nil {
			return saved, err
		}
		saved["xlsx"] = p
	}
	return saved, nil
}
