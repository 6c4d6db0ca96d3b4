package merge

import (
	"regexp"
	"strings"

	"github.com/agenthands/gypsum/internal/core/model"
)

var (
	ctrlRe  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
	wsRe    = regexp.MustCompile(`\s+`)
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// normalizeArea produces the canonical grouping key for a free-text area
// label. Empty labels and the sentinel collapse to "not_available".
func normalizeArea(area string) string {
	area = strings.TrimSpace(area)
	if area == "" || strings.EqualFold(area, model.NotAvailable) {
		return "not_available"
	}
	area = ctrlRe.ReplaceAllString(area, " ")
	area = wsRe.ReplaceAllString(area, " ")
	return strings.ToLower(area)
}

// displayArea is the human-facing area name kept on the record: the
// first-seen raw label, trimmed, with the sentinel spelled canonically.
func displayArea(raw string) string {
	display := strings.TrimSpace(raw)
	if display == "" || strings.EqualFold(display, model.NotAvailable) {
		return model.NotAvailable
	}
	return display
}

// normalizeForMatch reduces a statement to its comparable signature:
// lowercased, punctuation and control characters replaced by spaces,
// whitespace collapsed. The sentinel reduces to the empty signature.
func normalizeForMatch(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, model.NotAvailable) {
		return ""
	}
	text = ctrlRe.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	text = punctRe.ReplaceAllString(text, " ")
	text = wsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// similar scores two signatures in [0,1]. Two empty signatures are
// identical; one empty signature matches nothing.
func similar(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return ratio(a, b)
}

// ratio is the Ratcliff/Obershelp similarity over runes: twice the total
// size of all matching blocks divided by the combined length.
func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1.0
	}
	matched := 0
	for _, bl := range matchingBlocks(ra, rb) {
		matched += bl.size
	}
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

type matchBlock struct {
	a, b, size int
}

// matchingBlocks recursively partitions both sequences around the longest
// common block, collecting every matching block.
func matchingBlocks(a, b []rune) []matchBlock {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct {
		alo, ahi, blo, bhi int
	}
	queue := []span{{0, len(a), 0, len(b)}}

	var blocks []matchBlock
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, s.alo, s.ahi, s.blo, s.bhi, b2j)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.a && s.blo < m.b {
			queue = append(queue, span{s.alo, m.a, s.blo, m.b})
		}
		if m.a+m.size < s.ahi && m.b+m.size < s.bhi {
			queue = append(queue, span{m.a + m.size, s.ahi, m.b + m.size, s.bhi})
		}
	}
	return blocks
}

// longestMatch finds the longest block matching within a[alo:ahi] and
// b[blo:bhi], preferring the earliest position in a, then in b.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) matchBlock {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}

	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return matchBlock{besti, bestj, bestsize}
}
