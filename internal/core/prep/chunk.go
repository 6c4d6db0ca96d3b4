package prep

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkChars bounds chunk size so a handful of chunks still fit
// comfortably in one extraction prompt.
const DefaultMaxChunkChars = 1400

// Page is one cleaned page of document text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous run of paragraphs with the pages it was drawn
// from, so downstream evidence can cite page numbers.
type Chunk struct {
	Source      string `json:"source"`
	PageNumbers []int  `json:"page_numbers"`
	Text        string `json:"text"`
}

// ChunkPages splits cleaned pages into chunks of at most maxChars
// characters, breaking on paragraph boundaries. Paragraphs from adjacent
// pages may share a chunk; the chunk then carries both page numbers.
func ChunkPages(source string, pages []Page, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	var chunks []Chunk
	var parts []string
	pageSet := map[int]bool{}

	flush := func() {
		var keep []string
		for _, p := range parts {
			if strings.TrimSpace(p) != "" {
				keep = append(keep, p)
			}
		}
		text := strings.TrimSpace(strings.Join(keep, "\n\n"))
		if text != "" {
			nums := make([]int, 0, len(pageSet))
			for n := range pageSet {
				nums = append(nums, n)
			}
			sort.Ints(nums)
			chunks = append(chunks, Chunk{Source: source, PageNumbers: nums, Text: text})
		}
		parts = nil
		pageSet = map[int]bool{}
	}

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		for _, para := range splitParagraphs(page.Text) {
			if len(parts) > 0 && runeLen(strings.Join(parts, "\n\n"))+2+runeLen(para) > maxChars {
				flush()
			}
			parts = append(parts, para)
			pageSet[page.Number] = true
			if runeLen(strings.Join(parts, "\n\n")) >= maxChars {
				flush()
			}
		}
	}
	flush()
	return chunks
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
