package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSource_StaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, AnalysisFile), []byte("methodology text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, CasesFile), []byte("cases text"), 0o644); err != nil {
		t.Fatal(err)
	}

	// No retriever: every lookup is static.
	s := NewSource(NewStaticStore(dir, nil), nil, SourceConfig{}, nil)

	if got := s.Methodology(context.Background(), "btc rsi"); got != "methodology text" {
		t.Errorf("Methodology = %q", got)
	}
	if got := s.Cases(context.Background(), "btc crash"); got != "cases text" {
		t.Errorf("Cases = %q", got)
	}
}

func TestSource_MissingFilesReadEmpty(t *testing.T) {
	s := NewSource(NewStaticStore(t.TempDir(), nil), nil, SourceConfig{}, nil)
	if got := s.Methodology(context.Background(), "q"); got != "" {
		t.Errorf("Methodology = %q, want empty", got)
	}
	if got := s.Cases(context.Background(), "q"); got != "" {
		t.Errorf("Cases = %q, want empty", got)
	}
}
