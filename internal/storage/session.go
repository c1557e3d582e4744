package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/julianstephens/taskdash/internal/logger"
)

// SessionFile is a SessionStore backed by a small JSON object on disk. A
// missing or unreadable file behaves as an empty session.
type SessionFile struct {
	path string
	mu   sync.Mutex
}

func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

func (f *SessionFile) GetSession(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.read()[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *SessionFile) SetSession(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.read()
	entries[key] = value
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := atomicWriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (f *SessionFile) read() map[string]string {
	entries := map[string]string{}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("Session file unreadable", "path", f.path, "error", err)
		}
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Debug("Session file corrupt, starting fresh", "path", f.path, "error", err)
		return map[string]string{}
	}
	return entries
}
