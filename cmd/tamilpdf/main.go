// Command tamilpdf extracts Tamil text from scanned PDFs via OCR and
// optionally translates it to English.
//
// Usage:
//
//	tamilpdf [flags] input.pdf [output.txt]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tamilpdf/internal/config"
	"tamilpdf/internal/logger"
	"tamilpdf/internal/ocr"
	"tamilpdf/internal/output"
	"tamilpdf/internal/pdfx"
	"tamilpdf/internal/pipeline"
	"tamilpdf/internal/translator"
	"tamilpdf/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		startPage  = flag.Int("start", 0, "first page to process (1-indexed, default: first page)")
		endPage    = flag.Int("end", 0, "last page to process (inclusive, default: last page)")
		translate  = flag.Bool("translate", false, "translate the extracted text to English")
		engineName = flag.String("engine", "", "translation engine: openai or gemini (default: from config)")
		dpi        = flag.Int("dpi", 0, "rasterization resolution (default: from config)")
		langs      = flag.String("lang", "", "comma-separated tesseract language codes (default: tam)")
		configPath = flag.String("config", "", "path to config file")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		return types.NewAppError(types.ErrInvalidInput, "expected an input PDF path", nil)
	}
	pdfPath := flag.Arg(0)
	outputPath := flag.Arg(1)

	logCfg := logger.DefaultConfig()
	if *verbose {
		logCfg.Level = logger.LevelDebug
		logCfg.EnableConsole = true
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	defer logger.Close()

	manager, err := config.NewManager(*configPath)
	if err != nil {
		return err
	}
	if err := manager.Load(); err != nil {
		return err
	}
	cfg := manager.Get()

	// Flags override config file and environment.
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *dpi > 0 {
		cfg.OCRDPI = *dpi
	}
	if *langs != "" {
		cfg.OCRLanguages = strings.Split(*langs, ",")
	}
	if *translate {
		if err := manager.Validate(true); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rasterizer := pdfx.NewRasterizer(cfg.OCRDPI)
	if !rasterizer.Available() {
		return types.NewAppError(types.ErrRaster, pdfx.InstallHint(), nil)
	}

	engine := ocr.NewTesseractEngine(
		ocr.WithPSM(cfg.OCRPSM),
		ocr.WithPreprocessing(cfg.Preprocess),
	)

	opts := []pipeline.ProcessorOption{
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithStatusFunc(printStatus),
	}
	var trans *translator.Translator
	if *translate {
		trans, err = buildTranslator(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithTranslator(trans))
	}
	processor := pipeline.NewProcessor(rasterizer, engine, opts...)

	printInfo(pdfPath, *startPage, *endPage, *translate, cfg)

	result, err := processor.Process(ctx, pipeline.Request{
		PDFPath:    pdfPath,
		OutputPath: resolveOutputPath(outputPath, pdfPath, cfg.OutputDirectory, *translate),
		StartPage:  *startPage,
		EndPage:    *endPage,
		Translate:  *translate,
		Languages:  cfg.OCRLanguages,
		DPI:        cfg.OCRDPI,
	})
	if err != nil {
		return err
	}

	if trans != nil {
		if err := trans.SaveCache(); err != nil {
			logger.Warn("failed to save translation cache", logger.Err(err))
		}
	}

	printSummary(result)
	return nil
}

// buildTranslator constructs the configured translation engine wrapped in
// the chunking translator, with its cache loaded.
func buildTranslator(ctx context.Context, cfg *types.Config) (*translator.Translator, error) {
	var engine translator.Engine
	switch cfg.Engine {
	case "openai":
		oe := translator.NewOpenAIEngine(translator.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
		})
		if err := oe.TestConnection(ctx); err != nil {
			return nil, err
		}
		engine = oe
	case "gemini":
		ge, err := translator.NewGeminiEngine(ctx, translator.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		if err := ge.TestConnection(ctx); err != nil {
			return nil, err
		}
		engine = ge
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"unknown translation engine", cfg.Engine, nil)
	}

	cache := translator.NewCache(cfg.CachePath)
	if err := cache.Load(); err != nil {
		logger.Warn("translation cache unavailable", logger.Err(err))
		cache = translator.NewCache("")
	}

	trans := translator.NewTranslator(engine, cfg.RequestsPerMinute, cfg.MaxChunkSize,
		translator.WithCache(cache),
		translator.WithDocumentMode(cfg.DocumentMode),
		translator.WithProgress(func(done, total int) {
			fmt.Printf("\rtranslating chunk %d/%d", done, total)
			if done == total {
				fmt.Println()
			}
		}),
	)
	return trans, nil
}

// resolveOutputPath picks the output file location: an explicit argument
// wins, then the configured output directory, then the PDF's directory.
func resolveOutputPath(explicit, pdfPath, outputDir string, translated bool) string {
	if explicit != "" {
		return explicit
	}
	if outputDir == "" {
		return "" // pipeline derives it next to the PDF
	}
	return filepath.Join(outputDir, output.DefaultOutputName(pdfPath, translated))
}

func printStatus(s types.Status) {
	switch s.Phase {
	case types.PhaseRecognizing:
		fmt.Printf("\r%s", s.Message)
	case types.PhaseTranslating, types.PhaseWriting:
		fmt.Printf("\n%s...\n", s.Message)
	case types.PhaseError:
		fmt.Println()
	}
}

func printInfo(pdfPath string, start, end int, translate bool, cfg *types.Config) {
	fmt.Printf("input:     %s\n", pdfPath)
	if info, err := pdfx.GetInfo(pdfPath); err == nil {
		fmt.Printf("pages:     %d (%.1f KB)\n", info.PageCount, float64(info.FileSize)/1024.0)
		if info.HasTextLayer {
			fmt.Println("note:      this PDF already has a text layer; OCR may be unnecessary")
		}
	}
	rangeDesc := "all pages"
	if start != 0 || end != 0 {
		rangeDesc = fmt.Sprintf("pages %s to %s", orWord(start, "first"), orWord(end, "last"))
	}
	fmt.Printf("range:     %s\n", rangeDesc)
	fmt.Printf("ocr:       %ddpi, languages %s\n", cfg.OCRDPI, strings.Join(cfg.OCRLanguages, "+"))
	if translate {
		fmt.Printf("translate: yes (%s)\n", cfg.Engine)
	} else {
		fmt.Println("translate: no")
	}
	fmt.Println()
}

func orWord(n int, word string) string {
	if n == 0 {
		return word
	}
	return fmt.Sprintf("%d", n)
}

func printSummary(result *pipeline.Result) {
	fmt.Println()
	fmt.Printf("wrote %s\n", result.OutputPath)
	if sizeKB, err := output.FileSizeKB(result.OutputPath); err == nil {
		fmt.Printf("size:  %.1f KB\n", sizeKB)
	}
	fmt.Printf("pages: %d processed, %d with text\n", result.PagesProcessed, result.PagesWithText)
	if stats := result.TranslationStats; stats != nil {
		fmt.Printf("chunks: %d translated (%d cached, %d failed)\n",
			stats.Chunks-stats.FailedChunks, stats.CachedChunks, stats.FailedChunks)
		if stats.TokensUsed > 0 {
			fmt.Printf("tokens: %d\n", stats.TokensUsed)
		}
	}

	sample := output.SampleLines(result.Text)
	if len(sample) > 0 {
		fmt.Println("\nsample:")
		for _, line := range sample {
			fmt.Printf("  %s\n", line)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: tamilpdf [flags] input.pdf [output.txt]

Extracts Tamil text from a scanned PDF via OCR. With -translate the text is
translated to English through the configured API.

flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
environment:
  OPENAI_API_KEY   API key for the openai engine
  GEMINI_API_KEY   API key for the gemini engine

Keys can also be placed in a .env file in the working directory or in the
config file (default ~/.config/tamilpdf/tamilpdf-config.json).
`)
}
