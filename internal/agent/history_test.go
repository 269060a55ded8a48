package agent

import (
	"strings"
	"testing"
)

func TestHistory_AddAndLen(t *testing.T) {
	h := &History{}
	if h.Len() != 0 {
		t.Fatalf("Len = %d, want 0", h.Len())
	}
	h.Add(RoleUser, "hello")
	h.Add(RoleAssistant, "hi")
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	msgs := h.Messages()
	if msgs[0].Role != RoleUser || msgs[0].Content != "hello" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "hi" {
		t.Errorf("second message = %+v", msgs[1])
	}

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", h.Len())
	}
}

func TestHistory_MessagesIsCopy(t *testing.T) {
	h := &History{}
	h.Add(RoleUser, "original")
	msgs := h.Messages()
	msgs[0].Content = "mutated"
	if h.Messages()[0].Content != "original" {
		t.Error("Messages() must return a copy")
	}
}

func TestRecentDialogue_Empty(t *testing.T) {
	h := &History{}
	if got := h.RecentDialogue(3, 100); got != "(no previous conversation)" {
		t.Errorf("RecentDialogue = %q", got)
	}
}

func TestRecentDialogue_LimitsTurns(t *testing.T) {
	h := &History{}
	for i := 0; i < 5; i++ {
		h.Add(RoleUser, "question")
		h.Add(RoleAssistant, "answer")
	}
	got := h.RecentDialogue(2, 100)
	if n := strings.Count(got, "\n") + 1; n != 4 {
		t.Errorf("RecentDialogue has %d lines, want 4:\n%s", n, got)
	}
	if !strings.HasPrefix(got, "User: ") {
		t.Errorf("RecentDialogue should start with a user line:\n%s", got)
	}
}

func TestRecentDialogue_TruncatesContent(t *testing.T) {
	h := &History{}
	h.Add(RoleUser, strings.Repeat("x", 50))
	got := h.RecentDialogue(3, 10)
	if !strings.Contains(got, strings.Repeat("x", 10)+"...") {
		t.Errorf("content not truncated: %q", got)
	}
	if strings.Contains(got, strings.Repeat("x", 11)) {
		t.Errorf("content longer than limit: %q", got)
	}
}

func TestLastPrediction(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "BTC outlook?"},
		{Role: RoleAssistant, Content: "Leaning bullish, confidence 70%. Support at 60k."},
		{Role: RoleUser, Content: "thanks"},
		{Role: RoleAssistant, Content: "You're welcome!"},
	}
	got := LastPrediction(msgs, 600)
	if !strings.Contains(got, "confidence 70%") {
		t.Errorf("LastPrediction = %q, want the verdict message", got)
	}
}

func TestLastPrediction_None(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello there"},
	}
	if got := LastPrediction(msgs, 600); got != "" {
		t.Errorf("LastPrediction = %q, want empty", got)
	}
}

func TestLastPrediction_Chinese(t *testing.T) {
	msgs := []Message{
		{Role: RoleAssistant, Content: "短线偏多，置信度65%。"},
	}
	if got := LastPrediction(msgs, 600); got == "" {
		t.Error("LastPrediction should match Chinese verdict markers")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"", 5, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc..."},
		{"比特币行情分析", 3, "比特币..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}
