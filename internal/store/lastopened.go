package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const lastOpenedFile = ".pagemark_last_opened.json"

// LastOpened records when each document (by library-relative path) was last
// opened. The registry lives in a single JSON file at the library root.
type LastOpened struct {
	mu   sync.Mutex
	path string
}

func NewLastOpened(libraryRoot string) *LastOpened {
	return &LastOpened{path: filepath.Join(libraryRoot, lastOpenedFile)}
}

// Touch records now as relPath's last-opened time. Registry corruption is
// not fatal: a broken file is treated as empty and rewritten.
func (l *LastOpened) Touch(relPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := l.readLocked()
	data[relPath] = time.Now().Format(time.RFC3339)

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(l.path, out)
}

// All returns the full registry.
func (l *LastOpened) All() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

func (l *LastOpened) readLocked() map[string]string {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return map[string]string{}
	}
	var data map[string]string
	if json.Unmarshal(raw, &data) != nil || data == nil {
		return map[string]string{}
	}
	return data
}
