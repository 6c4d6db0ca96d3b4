package ingest

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// OpenPDF opens a PDF through MuPDF. go-fitz serializes page access
// internally, so one Document can feed the page worker pool.
func OpenPDF(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) PageText(page int) (string, error) {
	return d.doc.Text(page)
}

func (d *fitzDocument) RenderPNG(page int, dpi int, path string) error {
	img, err := d.doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode page image: %w", err)
	}
	return f.Close()
}

func (d *fitzDocument) Close() error {
	d.doc.Close()
	return nil
}
