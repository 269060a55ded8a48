package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	methodologyChars = 2800
	casesChars       = 2200
	casesTopK        = 3
)

// SourceConfig holds tuning for the combined source.
type SourceConfig struct {
	TopK     int
	MinScore float32
}

// Source serves report reference material, preferring semantic retrieval and
// falling back to the static files when the retriever is absent or failing.
type Source struct {
	static    *StaticStore
	retriever *Retriever
	topK      int
	minScore  float32
	logger    *zap.Logger
}

// NewSource builds a source. The retriever is optional; with a nil retriever
// every lookup is static.
func NewSource(static *StaticStore, retriever *Retriever, cfg SourceConfig, logger *zap.Logger) *Source {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		static:    static,
		retriever: retriever,
		topK:      cfg.TopK,
		minScore:  cfg.MinScore,
		logger:    logger,
	}
}

// Methodology returns indicator-interpretation guidance for the query.
func (s *Source) Methodology(ctx context.Context, query string) string {
	if text := s.retrieve(ctx, query+" technical analysis RSI MACD Bollinger indicator reading",
		s.topK, methodologyChars); text != "" {
		return text
	}
	return s.static.Load(AnalysisFile, methodologyChars)
}

// Cases returns comparable historical market episodes for the query.
func (s *Source) Cases(ctx context.Context, query string) string {
	if text := s.retrieve(ctx, query+" historical case review fear greed RSI trend",
		casesTopK, casesChars); text != "" {
		return text
	}
	return s.static.Load(CasesFile, casesChars)
}

// retrieve runs a semantic search and renders the hits, or "" so the caller
// falls back to the static file.
func (s *Source) retrieve(ctx context.Context, query string, topK, maxChars int) string {
	if s.retriever == nil {
		return ""
	}
	chunks, err := s.retriever.Search(ctx, query, topK, s.minScore)
	if err != nil {
		s.logger.Warn("knowledge retrieval failed, falling back to static files", zap.Error(err))
		return ""
	}
	if len(chunks) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range chunks {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if c.Source != "" {
			fmt.Fprintf(&sb, "[%s] ", c.Source)
		}
		sb.WriteString(c.Content)
	}
	return clip(sb.String(), maxChars)
}
