package agent

import (
	"fmt"
	"strings"
	"time"
)

// Message roles in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in an agent's conversation history. Messages are
// immutable once created.
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// History is an append-only conversation log owned by a single agent
// instance. It is not safe for concurrent use; callers must serialize access
// (one agent instance per session).
type History struct {
	messages []Message
}

// Add appends a message.
func (h *History) Add(role, content string) {
	h.messages = append(h.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// Messages returns a copy of the log.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	return len(h.messages)
}

// Clear removes all messages.
func (h *History) Clear() {
	h.messages = nil
}

// RecentDialogue formats the last maxTurns user/assistant exchanges for
// prompt injection, truncating each message to maxContentLen characters.
func (h *History) RecentDialogue(maxTurns, maxContentLen int) string {
	if len(h.messages) == 0 {
		return "(no previous conversation)"
	}
	recent := h.messages
	if n := maxTurns * 2; len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	var lines []string
	for _, m := range recent {
		role := "User"
		if m.Role == RoleAssistant {
			role = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, truncate(strings.TrimSpace(m.Content), maxContentLen)))
	}
	return strings.Join(lines, "\n")
}

// predictionMarkers are the verdict-like keywords that identify a prior
// analysis in conversation history. The set is bilingual because users ask in
// both English and Chinese.
var predictionMarkers = []string{
	"confidence", "verdict", "outlook", "support", "resistance",
	"short-term", "mid-term", "recommend",
	"置信度", "偏向", "结论", "预测", "短线", "中线", "建议", "抄底", "减仓",
}

// LastPrediction scans the history back-to-front for the most recent
// assistant message that reads like an analysis verdict, truncated to maxLen.
// It returns "" when no such message exists.
func LastPrediction(messages []Message, maxLen int) string {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != RoleAssistant || strings.TrimSpace(m.Content) == "" {
			continue
		}
		content := strings.TrimSpace(m.Content)
		lower := strings.ToLower(content)
		for _, marker := range predictionMarkers {
			if strings.Contains(lower, marker) {
				return truncate(content, maxLen)
			}
		}
	}
	return ""
}

// truncate shortens s to maxLen runes, appending an ellipsis. Rune-based so
// multi-byte content is never split mid-character.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
