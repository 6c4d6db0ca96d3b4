package facts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agenthands/gypsum/internal/core/prep"
)

const extractionPreamble = "You extract facts from inspection/thermal text. " +
	"Return ONLY valid JSON. Do not add markdown, code fences, or commentary. " +
	"Do not invent facts. If information is missing, use 'Not Available'."

const retryFeedback = "Your previous output did not validate. " +
	"Fix it to be valid JSON matching the schema exactly."

func inspectionPrompt(schema map[string]any, chunks []prep.Chunk) string {
	return extractionPreamble + "\n\n" +
		"Extract inspection facts into the provided JSON schema.\n\n" +
		"Rules:\n" +
		"- Do NOT invent facts.\n" +
		"- If a field is not present, output 'Not Available'.\n" +
		"- Use short, client-friendly text.\n" +
		"- evidence.page must reference a chunk page you used.\n" +
		"- evidence.quote must be an exact short quote from the text (or 'Not Available').\n\n" +
		"JSON SCHEMA (must match):\n" + mustJSON(schema) +
		"\n\nTEXT:\n" + chunksToPrompt(chunks)
}

func thermalPrompt(schema map[string]any, chunks []prep.Chunk) string {
	return extractionPreamble + "\n\n" +
		"Extract thermal facts into the provided JSON schema.\n\n" +
		"Rules:\n" +
		"- Do NOT interpret thermal images. Only use printed labels/text values.\n" +
		"- Do NOT invent facts.\n" +
		"- If a field is not present, output 'Not Available'.\n" +
		"- Put temperatures as strings exactly as seen (e.g., '25.7 °C').\n" +
		"- evidence.page and evidence.quote must come from the text.\n\n" +
		"JSON SCHEMA (must match):\n" + mustJSON(schema) +
		"\n\nTEXT:\n" + chunksToPrompt(chunks)
}

func chunksToPrompt(chunks []prep.Chunk) string {
	var parts []string
	for i, ch := range chunks {
		nums := make([]string, len(ch.PageNumbers))
		for j, n := range ch.PageNumbers {
			nums[j] = strconv.Itoa(n)
		}
		parts = append(parts, fmt.Sprintf("[CHUNK %d | pages=[%s]]\n%s", i+1, strings.Join(nums, ", "), ch.Text))
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}
