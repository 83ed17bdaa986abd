// Package pdfx provides PDF inspection and page rasterization for the OCR
// pipeline. Rasterization shells out to poppler's pdftoppm; document
// metadata is read with pure-Go PDF libraries.
package pdfx

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

// Rasterizer converts single PDF pages to PNG images via pdftoppm. It is
// safe for concurrent use; pages rendered in parallel share one temp
// directory.
type Rasterizer struct {
	dpi    int
	format string

	mu      sync.Mutex
	tempDir string
}

// NewRasterizer creates a rasterizer rendering at the given DPI.
func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = 300
	}
	return &Rasterizer{dpi: dpi, format: "png"}
}

// Available reports whether pdftoppm can be invoked.
func (r *Rasterizer) Available() bool {
	return exec.Command("pdftoppm", "-v").Run() == nil
}

// InstallHint returns a human-readable hint for installing poppler-utils.
func InstallHint() string {
	return "pdftoppm not found, please install poppler-utils: " +
		"Ubuntu/Debian: apt-get install poppler-utils, " +
		"macOS: brew install poppler"
}

// RenderPage renders a single 1-indexed page to a PNG file and returns its
// path. The file lives in a temp directory owned by the rasterizer; callers
// may remove it after use, and Cleanup removes the whole directory.
func (r *Rasterizer) RenderPage(pdfPath string, pageNum int) (string, error) {
	logger.Debug("rasterizing PDF page",
		logger.String("pdf", filepath.Base(pdfPath)),
		logger.Int("page", pageNum),
		logger.Int("dpi", r.dpi))

	if pageNum < 1 {
		return "", types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"page number must be 1-indexed", strconv.Itoa(pageNum), nil)
	}

	tempDir, err := r.ensureTempDir()
	if err != nil {
		return "", err
	}

	outputPrefix := filepath.Join(tempDir, fmt.Sprintf("page_%d", pageNum))

	args := []string{
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		"-" + r.format,
		"-r", strconv.Itoa(r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	}

	cmd := exec.Command("pdftoppm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrRaster,
			"pdftoppm failed", string(output), err)
	}

	imgPath := outputPrefix + "." + r.format
	if _, err := os.Stat(imgPath); err != nil {
		return "", types.NewAppError(types.ErrRaster, "pdftoppm produced no output image", err)
	}

	logger.Debug("page rasterized", logger.String("image", filepath.Base(imgPath)))
	return imgPath, nil
}

// ensureTempDir lazily creates the shared image directory. Concurrent
// renders must all land in the same directory so Cleanup removes every
// page image.
func (r *Rasterizer) ensureTempDir() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tempDir == "" {
		tempDir, err := os.MkdirTemp("", "tamilpdf_pages_*")
		if err != nil {
			return "", types.NewAppError(types.ErrRaster, "failed to create temp dir", err)
		}
		r.tempDir = tempDir
	}
	return r.tempDir, nil
}

// Cleanup removes the temporary image directory.
func (r *Rasterizer) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tempDir != "" {
		os.RemoveAll(r.tempDir)
		r.tempDir = ""
	}
}
