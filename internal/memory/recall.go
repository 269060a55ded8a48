package memory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/knowledge"
	"github.com/stratos/coinsage/internal/tools"
)

// RecallStore keeps remembered user context in a Qdrant collection and
// retrieves it semantically for report enrichment.
type RecallStore struct {
	retriever *knowledge.Retriever
	userID    string
	profiles  *ProfileStore
	logger    *zap.Logger
}

// NewRecallStore builds a store over a retriever pointed at the memory
// collection. The profile store is optional; when present, stored memories
// also update the user's profile.
func NewRecallStore(retriever *knowledge.Retriever, userID string, profiles *ProfileStore, logger *zap.Logger) *RecallStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecallStore{
		retriever: retriever,
		userID:    userID,
		profiles:  profiles,
		logger:    logger,
	}
}

// Store remembers one piece of user context.
func (s *RecallStore) Store(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("nothing to store")
	}
	err := s.retriever.Ingest(ctx, []knowledge.Chunk{{
		Content:  content,
		Source:   s.userID,
		Category: "memory",
	}})
	if err != nil {
		return fmt.Errorf("store memory: %w", err)
	}
	if s.profiles != nil {
		s.profiles.UpdateFromText(s.userID, content)
	}
	return nil
}

// Recall returns up to limit remembered items relevant to the query, one per
// line, or "" when nothing matches.
func (s *RecallStore) Recall(ctx context.Context, query string, limit int) (string, error) {
	if limit <= 0 {
		limit = 5
	}
	chunks, err := s.retriever.Search(ctx, query, limit, 0)
	if err != nil {
		return "", fmt.Errorf("memory recall: %w", err)
	}
	var lines []string
	for _, c := range chunks {
		lines = append(lines, "- "+c.Content)
	}
	return strings.Join(lines, "\n"), nil
}

// RegisterTool wires the memory tool into a registry. Input grammar:
// "store=<content>" remembers content, "recall=<query>" retrieves, and
// "action=summary" renders the profile summary.
func (s *RecallStore) RegisterTool(reg *tools.Registry) {
	reg.Register("memory",
		"Store and recall user context. Use memory[store=content] to remember "+
			"something the user shared, memory[recall=query] to retrieve related "+
			"memories, memory[action=summary] for the user's preference summary.",
		func(ctx context.Context, input string) (string, error) {
			input = strings.TrimSpace(input)
			switch {
			case strings.HasPrefix(input, "store="):
				content := strings.TrimPrefix(input, "store=")
				if err := s.Store(ctx, content); err != nil {
					return "", err
				}
				return "remembered.", nil
			case strings.HasPrefix(input, "recall="):
				query := strings.TrimPrefix(input, "recall=")
				out, err := s.Recall(ctx, query, 5)
				if err != nil {
					return "", err
				}
				if out == "" {
					return "no related memories found.", nil
				}
				return out, nil
			case input == "action=summary":
				if s.profiles == nil {
					return "no profile store configured.", nil
				}
				if summary := s.profiles.Summary(s.userID); summary != "" {
					return summary, nil
				}
				return "no profile recorded yet.", nil
			default:
				return "", fmt.Errorf("unknown memory input %q, expected store=, recall= or action=summary", input)
			}
		})
}
