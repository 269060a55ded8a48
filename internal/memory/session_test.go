package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnonymousUserID_Ephemeral(t *testing.T) {
	a := AnonymousUserID(false, "")
	b := AnonymousUserID(false, "")
	if !strings.HasPrefix(a, "anon_") {
		t.Errorf("id = %q, want anon_ prefix", a)
	}
	if a == b {
		t.Error("ephemeral IDs must differ between calls")
	}
}

func TestAnonymousUserID_Persisted(t *testing.T) {
	dir := t.TempDir()
	a := AnonymousUserID(true, dir)
	b := AnonymousUserID(true, dir)
	if a != b {
		t.Errorf("persisted IDs differ: %q vs %q", a, b)
	}

	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != a {
		t.Errorf("session file = %q, want %q", data, a)
	}
}

func TestAnonymousUserID_CorruptFileRegenerates(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, sessionFile), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := AnonymousUserID(true, dir)
	if !strings.HasPrefix(id, "anon_") {
		t.Errorf("id = %q, want anon_ prefix", id)
	}
	if AnonymousUserID(true, dir) != id {
		t.Error("regenerated ID must persist")
	}
}

func TestResetSession(t *testing.T) {
	dir := t.TempDir()
	a := AnonymousUserID(true, dir)
	if err := ResetSession(dir); err != nil {
		t.Fatal(err)
	}
	if b := AnonymousUserID(true, dir); a == b {
		t.Error("reset must start a fresh user")
	}
}

func TestResetSession_NothingToRemove(t *testing.T) {
	if err := ResetSession(t.TempDir()); err != nil {
		t.Errorf("reset of empty dir = %v, want nil", err)
	}
}
