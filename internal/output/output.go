// Package output writes extracted text files and produces the summary
// shown after a run.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tamilpdf/internal/types"
)

// MaxSampleLines bounds how many lines SampleLines returns.
const MaxSampleLines = 8

// DefaultOutputName derives the output text file name from the input PDF.
// Translated runs get "_english", OCR-only runs "_tamil_unicode".
func DefaultOutputName(pdfPath string, translated bool) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	suffix := "_tamil_unicode"
	if translated {
		suffix = "_english"
	}
	return base + suffix + ".txt"
}

// MergePages joins page texts in page order, separated by blank lines.
// Pages must already be sorted by page number.
func MergePages(pages []types.PageText) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(page.Text))
	}
	return strings.Join(parts, "\n\n")
}

// SaveTextFile writes text as UTF-8 to path, creating parent directories as
// needed.
func SaveTextFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewAppError(types.ErrOutput, "failed to create output directory", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return types.NewAppError(types.ErrOutput,
			fmt.Sprintf("failed to write output file %s", path), err)
	}
	return nil
}

// FileSizeKB returns the size of the file at path in kilobytes.
func FileSizeKB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, types.NewAppError(types.ErrOutput, "failed to stat output file", err)
	}
	return float64(info.Size()) / 1024.0, nil
}

// SampleLines returns up to MaxSampleLines non-empty lines from text, for
// display after a run.
func SampleLines(text string) []string {
	var sample []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == MaxSampleLines {
			break
		}
	}
	return sample
}
