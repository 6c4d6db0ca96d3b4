package model

// Document source labels used by the ingest stage artifacts.
const (
	DocInspection = "inspection_report"
	DocThermal    = "thermal_report"
)

type OCRSpan struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type PageExtraction struct {
	Source        string    `json:"source"`
	PDFPath       string    `json:"pdf_path"`
	PageNumber    int       `json:"page_number"` // 1-based
	RawText       string    `json:"raw_text"`
	OCRText       string    `json:"ocr_text"`
	OCRSpans      []OCRSpan `json:"ocr_spans"`
	PageImagePath string    `json:"page_image_path,omitempty"`

	// Fields carries structured values copied verbatim from the page, if any.
	// Extraction never infers; downstream stages may fill this in.
	Fields map[string]string `json:"fields"`
}

type DocumentExtraction struct {
	Source  string           `json:"source"`
	PDFPath string           `json:"pdf_path"`
	Pages   []PageExtraction `json:"pages"`
}

// InputDoc is the input_layer_output.json artifact.
type InputDoc struct {
	Inspection *DocumentExtraction `json:"inspection"`
	Thermal    *DocumentExtraction `json:"thermal"`
}
