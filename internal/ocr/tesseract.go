package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/text/unicode/norm"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

// TesseractEngine implements Engine using the gosseract client.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	// psm is the tesseract page segmentation mode; 6 treats the page as a
	// single uniform block of text, which suits scanned book pages.
	psm        int
	preprocess bool
}

// TesseractOption configures a TesseractEngine.
type TesseractOption func(*TesseractEngine)

// WithPSM sets the page segmentation mode.
func WithPSM(psm int) TesseractOption {
	return func(e *TesseractEngine) { e.psm = psm }
}

// WithPreprocessing toggles grayscale/contrast preprocessing before OCR.
func WithPreprocessing(enabled bool) TesseractOption {
	return func(e *TesseractEngine) { e.preprocess = enabled }
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine(opts ...TesseractOption) *TesseractEngine {
	e := &TesseractEngine{
		clientFactory: gosseract.NewClient,
		psm:           6,
		preprocess:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name identifies the engine.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs tesseract on a single page image. A fresh client is used
// per page; gosseract clients are not safe for concurrent reuse.
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if e.preprocess {
		data, err := PreprocessImageFile(in.ImagePath)
		if err != nil {
			return "", types.NewAppErrorWithDetails(types.ErrOCR,
				"image preprocessing failed", in.ImagePath, err)
		}
		if err := c.SetImageFromBytes(data); err != nil {
			return "", types.NewAppError(types.ErrOCR, "failed to set image", err)
		}
	} else {
		if err := c.SetImage(in.ImagePath); err != nil {
			return "", types.NewAppError(types.ErrOCR, "failed to set image", err)
		}
	}

	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return "", types.NewAppErrorWithDetails(types.ErrOCR,
				"failed to set languages", strings.Join(in.Languages, "+"), err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
		return "", types.NewAppError(types.ErrOCR, "failed to set page segmentation mode", err)
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return "", types.NewAppError(types.ErrOCR, "failed to set dpi", err)
		}
	}
	// Tamil glyph clusters depend on inter-word spacing being kept intact.
	if err := c.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1"); err != nil {
		return "", types.NewAppError(types.ErrOCR, "failed to set tesseract variable", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrOCR,
			"text recognition failed", fmt.Sprintf("page %d", in.Page), err)
	}

	result := NormalizeText(text)
	logger.Debug("page recognized",
		logger.Int("page", in.Page),
		logger.Int("chars", len(result)))
	return result, nil
}

// NormalizeText trims recognized text and normalizes it to Unicode NFC so
// Tamil combining sequences compare and render consistently.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
