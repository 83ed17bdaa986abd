package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tamilpdf/internal/types"
)

func TestDefaultOutputName(t *testing.T) {
	tests := []struct {
		pdfPath    string
		translated bool
		want       string
	}{
		{"book.pdf", true, "book_english.txt"},
		{"book.pdf", false, "book_tamil_unicode.txt"},
		{"/docs/scanned book.PDF", true, "scanned book_english.txt"},
		{"archive/novel", false, "novel_tamil_unicode.txt"},
	}

	for _, tt := range tests {
		if got := DefaultOutputName(tt.pdfPath, tt.translated); got != tt.want {
			t.Errorf("DefaultOutputName(%q, %v) = %q, want %q",
				tt.pdfPath, tt.translated, got, tt.want)
		}
	}
}

func TestMergePages(t *testing.T) {
	pages := []types.PageText{
		{Page: 1, Text: "பக்கம் ஒன்று"},
		{Page: 2, Text: "  "},
		{Page: 3, Text: "பக்கம் மூன்று\n"},
	}

	got := MergePages(pages)
	want := "பக்கம் ஒன்று\n\nபக்கம் மூன்று"
	if got != want {
		t.Errorf("MergePages = %q, want %q", got, want)
	}
}

func TestMergePagesEmpty(t *testing.T) {
	if got := MergePages(nil); got != "" {
		t.Errorf("MergePages(nil) = %q, want empty", got)
	}
}

func TestSaveTextFileUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.txt")
	text := "தமிழ் எழுத்து\nsecond line"

	if err := SaveTextFile(path, text); err != nil {
		t.Fatalf("SaveTextFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != text {
		t.Errorf("written content mismatch: %q", string(data))
	}
}

func TestFileSizeKB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sized.txt")
	if err := os.WriteFile(path, make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	size, err := FileSizeKB(path)
	if err != nil {
		t.Fatalf("FileSizeKB failed: %v", err)
	}
	if size != 2.0 {
		t.Errorf("FileSizeKB = %v, want 2.0", size)
	}
}

func TestFileSizeKBMissing(t *testing.T) {
	if _, err := FileSizeKB(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSampleLines(t *testing.T) {
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, "line", "", "  ")
	}
	text := strings.Join(lines, "\n")

	sample := SampleLines(text)
	if len(sample) != MaxSampleLines {
		t.Fatalf("expected %d sample lines, got %d", MaxSampleLines, len(sample))
	}
	for i, line := range sample {
		if line != "line" {
			t.Errorf("sample[%d] = %q", i, line)
		}
	}
}

func TestSampleLinesShortText(t *testing.T) {
	sample := SampleLines("only\n\none line here")
	if len(sample) != 2 {
		t.Errorf("expected 2 lines, got %d: %v", len(sample), sample)
	}
}
