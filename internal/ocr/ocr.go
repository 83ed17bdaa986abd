// Package ocr wraps the Tesseract OCR engine for Tamil page recognition.
// An Engine interface keeps the pipeline testable without a native
// tesseract installation.
package ocr

import "context"

// Input describes a single page image to recognize.
type Input struct {
	// ImagePath is the path to a rendered page image (PNG).
	ImagePath string
	// Page is the 1-indexed page number in the source document.
	Page int
	// Languages are tesseract language codes, e.g. "tam". Empty means the
	// engine default.
	Languages []string
	// DPI is the rendering resolution, forwarded to tesseract when set.
	DPI int
}

// Engine recognizes text in page images.
type Engine interface {
	// Name identifies the engine implementation.
	Name() string
	// Recognize extracts text from one page image. The returned text is
	// NFC-normalized and trimmed; it may be empty for blank pages.
	Recognize(ctx context.Context, in Input) (string, error)
}

// Option configures an engine input.
type Option func(*Input)

// WithLanguages sets the recognition languages.
func WithLanguages(langs ...string) Option {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI sets the source image DPI hint.
func WithDPI(dpi int) Option {
	return func(in *Input) { in.DPI = dpi }
}

// NewInput builds an Input for a page image with the given options.
func NewInput(imagePath string, page int, opts ...Option) Input {
	in := Input{ImagePath: imagePath, Page: page}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
