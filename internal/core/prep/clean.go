// Package prep deterministically cleans extracted page text and splits it
// into chunks for fact extraction. No inference happens here; every
// transformation is a fixed string rule.
package prep

import (
	"regexp"
	"strings"
)

var (
	pageNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*page\s*\d+\s*(of\s*\d+)?\s*$`),
		regexp.MustCompile(`^\s*\d+\s*/\s*\d+\s*$`),
	}
	ctrlRe       = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
	degreeRe     = regexp.MustCompile(`(\d)\s*°\s*C\b`)
	degCRe       = regexp.MustCompile(`(?i)(\d)\s*deg\s*C\b`)
	percentRe    = regexp.MustCompile(`(\d)\s*%`)
	mmRe         = regexp.MustCompile(`(?i)(\d)\s*mm\b`)
)

// NormalizeUnits canonicalizes unit spacing without converting any value.
func NormalizeUnits(text string) string {
	s := text
	s = degreeRe.ReplaceAllString(s, "$1 °C")
	s = degCRe.ReplaceAllString(s, "$1 °C")
	s = percentRe.ReplaceAllString(s, "$1 %")
	s = mmRe.ReplaceAllString(s, "$1 mm")
	return s
}

// CleanText strips non-breaking spaces and control characters (keeping
// newlines and tabs), trims trailing line whitespace, and collapses runs
// of three or more newlines.
func CleanText(text string) string {
	s := strings.ReplaceAll(text, "\u00a0", " ")
	s = ctrlRe.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t\r")
	}
	s = strings.Join(lines, "\n")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// RemoveCommonBoilerplate drops lines that repeat across many pages
// (headers, footers, branding). A line is dropped when it appears on at
// least max(2, pages*minFraction) pages. Conservative: only exact repeats
// go.
func RemoveCommonBoilerplate(pageTexts []string, minFraction float64) []string {
	if len(pageTexts) == 0 {
		return nil
	}

	pagesLines := make([][]string, len(pageTexts))
	counts := map[string]int{}
	for i, t := range pageTexts {
		var lines []string
		seen := map[string]bool{}
		for _, ln := range strings.Split(t, "\n") {
			ln = strings.TrimSpace(ln)
			if ln == "" {
				continue
			}
			lines = append(lines, ln)
			if !seen[ln] {
				seen[ln] = true
				counts[ln]++
			}
		}
		pagesLines[i] = lines
	}

	threshold := int(float64(len(pageTexts)) * minFraction)
	if threshold < 2 {
		threshold = 2
	}

	cleaned := make([]string, len(pageTexts))
	for i, lines := range pagesLines {
		var kept []string
		for _, ln := range lines {
			if counts[ln] >= threshold {
				continue
			}
			kept = append(kept, ln)
		}
		cleaned[i] = strings.TrimSpace(strings.Join(kept, "\n"))
	}
	return cleaned
}

// RemovePageNumbers drops standalone page-number lines ("Page 3 of 12",
// "3/12").
func RemovePageNumbers(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			out = append(out, "")
			continue
		}
		matched := false
		for _, re := range pageNumberRes {
			if re.MatchString(stripped) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// DedupeLines drops repeated lines keeping the first occurrence; blank
// lines are preserved for structure.
func DedupeLines(text string) string {
	seen := map[string]bool{}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		key := strings.TrimSpace(line)
		if key == "" {
			out = append(out, "")
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Combine merges a page's selectable text with its OCR text and runs the
// full cleanup chain over the result.
func Combine(rawText, ocrText string) string {
	merged := strings.TrimSpace(rawText)
	if o := strings.TrimSpace(ocrText); o != "" {
		if merged != "" {
			merged = merged + "\n" + o
		} else {
			merged = o
		}
	}
	merged = DedupeLines(merged)
	merged = RemovePageNumbers(merged)
	merged = NormalizeUnits(merged)
	merged = CleanText(merged)
	return merged
}
