// Package memory provides user identity, profile persistence, and semantic
// recall of remembered user context.
package memory

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionFile = "session_id"
	anonPrefix  = "anon_"
)

// AnonymousUserID returns the anonymous user ID for this installation.
//
// With persist=false a fresh ID is generated on every call. With persist=true
// the ID is written to storageDir/session_id on first use and reused after,
// so the same directory means the same user.
func AnonymousUserID(persist bool, storageDir string) string {
	if !persist {
		return newAnonID()
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return newAnonID()
	}
	path := filepath.Join(storageDir, sessionFile)

	if data, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(data))
		if strings.HasPrefix(id, anonPrefix) {
			return id
		}
	}

	// First run, or the file is corrupt: generate and persist.
	id := newAnonID()
	_ = os.WriteFile(path, []byte(id), 0o644)
	return id
}

// ResetSession removes the persisted ID so the next AnonymousUserID call
// starts a fresh user.
func ResetSession(storageDir string) error {
	err := os.Remove(filepath.Join(storageDir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// newAnonID generates an ID of the form anon_<12 hex chars>.
func newAnonID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return anonPrefix + hex[:12]
}
