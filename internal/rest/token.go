package rest

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"
)

// StaticTokenSource returns a fixed token. Used by tests and the CLI.
type StaticTokenSource string

func (s StaticTokenSource) Token() string { return string(s) }

// FileTokenSource reads the bearer token from a JSON credentials file. Two
// legacy key names are tolerated, accessToken and access_token; the first
// non-empty value wins. The file is re-read at most once per second so a
// login performed by another process is picked up without restarting.
type FileTokenSource struct {
	path string

	mu      sync.Mutex
	token   string
	readAt  time.Time
	refresh time.Duration
}

func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{path: path, refresh: time.Second}
}

func (f *FileTokenSource) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.readAt) < f.refresh {
		return f.token
	}
	f.readAt = time.Now()
	f.token = readTokenFile(f.path)
	return f.token
}

func readTokenFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var creds map[string]any
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	for _, key := range []string{"accessToken", "access_token"} {
		if v, ok := creds[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
