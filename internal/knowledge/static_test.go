package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStaticStore_Load(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, AnalysisFile), []byte("## Reading RSI\ncontent"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStaticStore(dir, nil)
	if got := s.Load(AnalysisFile, 1000); got != "## Reading RSI\ncontent" {
		t.Errorf("Load = %q", got)
	}
}

func TestStaticStore_MissingFileReadsEmpty(t *testing.T) {
	s := NewStaticStore(t.TempDir(), nil)
	if got := s.Load(CasesFile, 1000); got != "" {
		t.Errorf("Load of missing file = %q, want empty", got)
	}
}

func TestStaticStore_Clips(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, AnalysisFile), []byte(strings.Repeat("a", 100)), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStaticStore(dir, nil)
	got := s.Load(AnalysisFile, 10)
	if got != strings.Repeat("a", 10)+"\n... (truncated)" {
		t.Errorf("Load = %q", got)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in       string
		maxChars int
		want     string
	}{
		{"short", 100, "short"},
		{"abcdef", 3, "abc\n... (truncated)"},
		{"长内容测试文本", 2, "长内\n... (truncated)"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.maxChars); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.maxChars, got, tt.want)
		}
	}
}

func TestSplitMarkdown(t *testing.T) {
	content := "# Title\nintro text\n\n## Section One\nbody one\n\n## Section Two\nbody two"
	chunks := SplitMarkdown(content, "test.md", "knowledge")

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Content, "# Title") {
		t.Errorf("first chunk = %q", chunks[0].Content)
	}
	// Section heading prefixes are restored after the split.
	if !strings.HasPrefix(chunks[1].Content, "## Section One") {
		t.Errorf("second chunk = %q", chunks[1].Content)
	}
	if !strings.HasPrefix(chunks[2].Content, "## Section Two") {
		t.Errorf("third chunk = %q", chunks[2].Content)
	}
	for _, c := range chunks {
		if c.Source != "test.md" || c.Category != "knowledge" {
			t.Errorf("chunk metadata = %+v", c)
		}
	}
}

func TestSplitMarkdown_OversizedSectionSplitsOnParagraphs(t *testing.T) {
	para := strings.Repeat("x", 700)
	content := "## Big Section\n" + para + "\n\n" + para + "\n\n" + para
	chunks := SplitMarkdown(content, "big.md", "knowledge")

	if len(chunks) < 2 {
		t.Fatalf("oversized section should split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c.Content)); n > maxChunkRunes+len(para) {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
}

func TestSplitMarkdown_EmptyInput(t *testing.T) {
	if chunks := SplitMarkdown("", "e.md", "k"); len(chunks) != 0 {
		t.Errorf("chunks = %v, want none", chunks)
	}
}
