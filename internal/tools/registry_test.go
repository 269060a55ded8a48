package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegistry_Execute(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("echo", "repeats the input", func(_ context.Context, input string) (string, error) {
		return "echo says: " + input, nil
	})

	got := reg.Execute(context.Background(), "echo", "hello")
	if got != "echo says: hello" {
		t.Errorf("Execute = %q", got)
	}
}

func TestRegistry_UnknownToolYieldsObservation(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("price", "spot prices", func(context.Context, string) (string, error) { return "", nil })

	got := reg.Execute(context.Background(), "technical", "btc")
	if !strings.Contains(got, `tool "technical" is not registered`) {
		t.Errorf("Execute = %q", got)
	}
	if !strings.Contains(got, "price") {
		t.Errorf("observation should list available tools, got %q", got)
	}
}

func TestRegistry_ToolErrorYieldsObservation(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("flaky", "fails", func(context.Context, string) (string, error) {
		return "", errors.New("upstream timeout")
	})

	got := reg.Execute(context.Background(), "flaky", "x")
	if !strings.Contains(got, `tool "flaky" failed`) || !strings.Contains(got, "upstream timeout") {
		t.Errorf("Execute = %q", got)
	}
}

func TestRegistry_PanicRecovered(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("boom", "panics", func(context.Context, string) (string, error) {
		panic("nil map write")
	})

	got := reg.Execute(context.Background(), "boom", "x")
	if !strings.Contains(got, `tool "boom" failed`) || !strings.Contains(got, "nil map write") {
		t.Errorf("Execute = %q", got)
	}
}

func TestRegistry_ReRegisterKeepsPosition(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("a", "first", func(context.Context, string) (string, error) { return "v1", nil })
	reg.Register("b", "second", func(context.Context, string) (string, error) { return "", nil })
	reg.Register("a", "replaced", func(context.Context, string) (string, error) { return "v2", nil })

	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}
	names := reg.Names()
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v, want [a b]", names)
	}
	if got := reg.Execute(context.Background(), "a", ""); got != "v2" {
		t.Errorf("Execute after re-register = %q, want v2", got)
	}
	desc := reg.Describe()
	if !strings.Contains(desc, "- a: replaced") || strings.Contains(desc, "first") {
		t.Errorf("Describe = %q", desc)
	}
}

func TestRegistry_Describe(t *testing.T) {
	reg := NewRegistry(nil)
	if got := reg.Describe(); got != NoToolsDescription {
		t.Errorf("empty Describe = %q", got)
	}

	reg.Register("price", "spot prices", nil)
	reg.Register("technical", "indicator report", nil)
	want := "- price: spot prices\n- technical: indicator report"
	if got := reg.Describe(); got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}
