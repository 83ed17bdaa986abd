package pdfx

import (
	"os"
	"path/filepath"
	"unicode"

	ledongthucpdf "github.com/ledongthuc/pdf"
	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

// Info holds basic metadata about an input PDF.
type Info struct {
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	PageCount int    `json:"page_count"`
	FileSize  int64  `json:"file_size"`
	// HasTextLayer is true when the PDF already carries extractable text,
	// which usually means OCR is unnecessary.
	HasTextLayer bool `json:"has_text_layer"`
}

// GetInfo reads page count, size and text-layer status for a PDF.
func GetInfo(pdfPath string) (*Info, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppErrorWithDetails(types.ErrFileNotFound,
				"PDF file not found", pdfPath, err)
		}
		return nil, types.NewAppError(types.ErrInvalidInput, "cannot access PDF file", err)
	}
	if fileInfo.IsDir() {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"path is a directory, not a PDF file", pdfPath, nil)
	}

	pageCount, err := pageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	hasText, err := HasTextLayer(pdfPath)
	if err != nil {
		// Text-layer detection is advisory; fall back to false.
		logger.Warn("text-layer detection failed", logger.Err(err))
		hasText = false
	}

	return &Info{
		FilePath:     pdfPath,
		FileName:     filepath.Base(pdfPath),
		PageCount:    pageCount,
		FileSize:     fileInfo.Size(),
		HasTextLayer: hasText,
	}, nil
}

// pageCount reads the number of pages, preferring ledongthuc/pdf and falling
// back to pdfcpu for files its parser rejects.
func pageCount(pdfPath string) (int, error) {
	f, r, err := ledongthucpdf.Open(pdfPath)
	if err == nil {
		defer f.Close()
		if n := r.NumPage(); n > 0 {
			logger.Debug("page count (ledongthuc)", logger.Int("pages", n))
			return n, nil
		}
	}

	n, err := pdfcpuapi.PageCountFile(pdfPath)
	if err != nil {
		return 0, types.NewAppError(types.ErrInvalidInput, "cannot read PDF page count", err)
	}
	logger.Debug("page count (pdfcpu)", logger.Int("pages", n))
	return n, nil
}

// HasTextLayer checks whether the PDF contains extractable text by sampling
// the first few pages. Scanned books come back with little or no text.
func HasTextLayer(pdfPath string) (bool, error) {
	f, r, err := ledongthucpdf.Open(pdfPath)
	if err != nil {
		return false, types.NewAppError(types.ErrInvalidInput, "cannot open PDF file", err)
	}
	defer f.Close()

	maxPagesToCheck := 3
	if r.NumPage() < maxPagesToCheck {
		maxPagesToCheck = r.NumPage()
	}

	totalTextLength := 0
	for pageNum := 1; pageNum <= maxPagesToCheck; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, ch := range content {
			if !unicode.IsSpace(ch) {
				totalTextLength++
			}
		}
		if totalTextLength > 50 {
			return true, nil
		}
	}

	return totalTextLength > 0, nil
}
