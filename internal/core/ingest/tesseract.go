package ingest

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/agenthands/gypsum/internal/core/model"
)

// TesseractOCR recognizes page images with a fresh gosseract client per
// call. Clients hold native state and are not safe to share between the
// pool workers.
type TesseractOCR struct {
	language string
}

func NewTesseractOCR(language string) *TesseractOCR {
	if language == "" {
		language = "eng"
	}
	return &TesseractOCR{language: language}
}

// Recognize returns one span per recognized text line. Tesseract reports
// confidence on a 0-100 scale, rescaled here to 0-1.
func (t *TesseractOCR) Recognize(imagePath string) ([]model.OCRSpan, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("set ocr language '%s': %w", t.language, err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("run ocr: %w", err)
	}

	spans := make([]model.OCRSpan, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		spans = append(spans, model.OCRSpan{Text: text, Confidence: box.Confidence / 100})
	}
	return spans, nil
}
