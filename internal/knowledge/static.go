// Package knowledge supplies reference material for report generation: a
// static markdown store and an optional Qdrant-backed semantic retriever.
package knowledge

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Canonical knowledge file names.
const (
	AnalysisFile = "crypto_analysis.md"
	CasesFile    = "crypto_history_cases.md"
)

// StaticStore loads knowledge files straight from disk, truncated to a
// character budget so prompts stay bounded.
type StaticStore struct {
	dir    string
	logger *zap.Logger
}

// NewStaticStore builds a store over a directory of markdown files.
func NewStaticStore(dir string, logger *zap.Logger) *StaticStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticStore{dir: dir, logger: logger}
}

// Load reads a file and clips it to maxChars runes. A missing file is not an
// error; it reads as empty so prompt sections degrade silently.
func (s *StaticStore) Load(name string, maxChars int) string {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("knowledge file not found", zap.String("path", path))
		return ""
	}
	return clip(string(data), maxChars)
}

// clip shortens s to maxChars runes with a truncation note.
func clip(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "\n... (truncated)"
}
