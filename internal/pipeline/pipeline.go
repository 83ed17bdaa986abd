// Package pipeline orchestrates the page-range extraction flow: rasterize
// each page, recognize its text, optionally translate the merged result, and
// write the output file.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/ocr"
	"tamilpdf/internal/output"
	"tamilpdf/internal/pdfx"
	"tamilpdf/internal/types"
)

// Rasterizer renders single PDF pages to image files.
type Rasterizer interface {
	RenderPage(pdfPath string, pageNum int) (string, error)
	Cleanup()
}

// TextTranslator translates a merged document to English.
type TextTranslator interface {
	Translate(ctx context.Context, text string) (string, *types.TranslationStats, error)
}

// StatusFunc receives pipeline progress updates.
type StatusFunc func(status types.Status)

// Request describes one extraction run.
type Request struct {
	PDFPath    string
	OutputPath string // empty means derive from PDFPath
	StartPage  int    // 1-indexed, 0 means first page
	EndPage    int    // 1-indexed inclusive, 0 means last page
	Translate  bool
	Languages  []string
	DPI        int
}

// Result summarizes a completed run.
type Result struct {
	OutputPath       string
	PagesProcessed   int
	PagesWithText    int
	Text             string
	TranslationStats *types.TranslationStats
}

// Processor runs extraction requests. OCR concurrency is bounded; results
// are merged in page order regardless of completion order.
type Processor struct {
	rasterizer  Rasterizer
	engine      ocr.Engine
	translator  TextTranslator
	concurrency int
	onStatus    StatusFunc

	inspect func(pdfPath string) (*pdfx.Info, error)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithTranslator supplies the translator used when Request.Translate is set.
func WithTranslator(t TextTranslator) ProcessorOption {
	return func(p *Processor) { p.translator = t }
}

// WithConcurrency bounds how many pages are recognized at once.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithStatusFunc registers a progress callback.
func WithStatusFunc(fn StatusFunc) ProcessorOption {
	return func(p *Processor) { p.onStatus = fn }
}

// NewProcessor creates a Processor over a rasterizer and an OCR engine.
func NewProcessor(rasterizer Rasterizer, engine ocr.Engine, opts ...ProcessorOption) *Processor {
	p := &Processor{
		rasterizer:  rasterizer,
		engine:      engine,
		concurrency: 1,
		inspect:     pdfx.GetInfo,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ResolveRange clamps a requested page range to the document. Zero start or
// end select the first or last page. The returned range is 1-indexed and
// inclusive.
func ResolveRange(start, end, pageCount int) (int, int, error) {
	if pageCount < 1 {
		return 0, 0, types.NewAppError(types.ErrInvalidInput, "document has no pages", nil)
	}
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = pageCount
	}
	if start < 1 || end < 1 {
		return 0, 0, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"page numbers must be positive", fmt.Sprintf("start=%d end=%d", start, end), nil)
	}
	if start > pageCount {
		return 0, 0, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"start page beyond end of document",
			fmt.Sprintf("start=%d pages=%d", start, pageCount), nil)
	}
	if end > pageCount {
		end = pageCount
	}
	if start > end {
		return 0, 0, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"start page after end page", fmt.Sprintf("start=%d end=%d", start, end), nil)
	}
	return start, end, nil
}

// Process runs one extraction request end to end.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	p.report(types.PhaseValidating, 0, "inspecting PDF")

	info, err := p.inspect(req.PDFPath)
	if err != nil {
		return nil, p.fail(err)
	}

	if info.HasTextLayer {
		logger.Warn("PDF appears to have a text layer, OCR may be unnecessary",
			logger.String("pdf", info.FileName))
	}

	start, end, err := ResolveRange(req.StartPage, req.EndPage, info.PageCount)
	if err != nil {
		return nil, p.fail(err)
	}

	logger.Info("processing page range",
		logger.String("pdf", info.FileName),
		logger.Int("start", start),
		logger.Int("end", end),
		logger.Int("totalPages", info.PageCount))

	pages, err := p.recognizeRange(ctx, req, start, end)
	if err != nil {
		return nil, p.fail(err)
	}

	merged := output.MergePages(pages)
	withText := 0
	for _, page := range pages {
		if page.Text != "" {
			withText++
		}
	}
	if withText == 0 {
		return nil, p.fail(types.NewAppError(types.ErrOCR,
			"no text extracted from any pages", nil))
	}

	result := &Result{
		PagesProcessed: end - start + 1,
		PagesWithText:  withText,
		Text:           merged,
	}

	if req.Translate {
		if p.translator == nil {
			return nil, p.fail(types.NewAppError(types.ErrConfig,
				"translation requested but no translator configured", nil))
		}
		p.report(types.PhaseTranslating, 70, "translating extracted text")
		translated, stats, err := p.translator.Translate(ctx, merged)
		if err != nil {
			return nil, p.fail(err)
		}
		result.Text = translated
		result.TranslationStats = stats
	}

	p.report(types.PhaseWriting, 90, "writing output file")
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(req.PDFPath),
			output.DefaultOutputName(req.PDFPath, req.Translate))
	}
	if err := output.SaveTextFile(outputPath, result.Text); err != nil {
		return nil, p.fail(err)
	}
	result.OutputPath = outputPath

	p.report(types.PhaseComplete, 100, "done")
	return result, nil
}

// recognizeRange rasterizes and recognizes pages start..end with bounded
// concurrency, returning results sorted by page number. Blank pages are kept
// with empty text so callers can count them.
func (p *Processor) recognizeRange(ctx context.Context, req Request, start, end int) ([]types.PageText, error) {
	total := end - start + 1
	results := make([]types.PageText, 0, total)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		done     int
	)
	sem := make(chan struct{}, p.concurrency)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer p.rasterizer.Cleanup()

	for pageNum := start; pageNum <= end; pageNum++ {
		if runCtx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)

		go func(pageNum int) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := p.processPage(runCtx, req, pageNum)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			results = append(results, types.PageText{Page: pageNum, Text: text})
			done++
			// Pages span the 10..70 band of the progress scale.
			p.report(types.PhaseRecognizing, 10+done*60/total,
				fmt.Sprintf("recognized page %d of %d", done, total))
		}(pageNum)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Page < results[j].Page })
	return results, nil
}

// processPage renders and recognizes a single page, removing the page image
// when done.
func (p *Processor) processPage(ctx context.Context, req Request, pageNum int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	imgPath, err := p.rasterizer.RenderPage(req.PDFPath, pageNum)
	if err != nil {
		return "", err
	}
	defer os.Remove(imgPath)

	text, err := p.engine.Recognize(ctx, ocr.NewInput(imgPath, pageNum,
		ocr.WithLanguages(req.Languages...),
		ocr.WithDPI(req.DPI)))
	if err != nil {
		return "", err
	}

	if text == "" {
		logger.Debug("page is blank", logger.Int("page", pageNum))
	}
	return text, nil
}

func (p *Processor) report(phase types.ProcessPhase, progress int, message string) {
	if p.onStatus != nil {
		p.onStatus(types.Status{Phase: phase, Progress: progress, Message: message})
	}
}

func (p *Processor) fail(err error) error {
	if p.onStatus != nil {
		p.onStatus(types.Status{Phase: types.PhaseError, Message: "processing failed", Error: err.Error()})
	}
	return err
}
