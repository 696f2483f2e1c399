// Package moderation screens free text against a forbidden-word list.
// The list is loaded once per process; a missing or corrupt file degrades
// to an empty set so the filter becomes a no-op instead of an outage.
package moderation

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"unicode"

	"log/slog"

	"teashop/core/logger"
)

// Filter flags text containing words from a static word list.
type Filter struct {
	path string

	once  sync.Once
	words map[string]struct{}
}

// NewFilter creates a filter backed by a JSON array of words at path.
// The file is not touched until the first Contains call.
func NewFilter(path string) *Filter {
	return &Filter{path: path}
}

func (f *Filter) load() {
	f.words = make(map[string]struct{})
	data, err := os.ReadFile(f.path)
	if err != nil {
		logger.Warn(context.Background(), "moderation", "wordlist.load",
			slog.String("status", "skip"),
			slog.String("path", f.path),
			slog.String("err", err.Error()),
		)
		return
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn(context.Background(), "moderation", "wordlist.load",
			slog.String("status", "skip"),
			slog.String("path", f.path),
			slog.String("err", err.Error()),
		)
		return
	}
	for _, w := range raw {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words[w] = struct{}{}
		}
	}
	logger.Info(context.Background(), "moderation", "wordlist.load",
		slog.String("status", "ok"),
		slog.Int("count", len(f.words)),
	)
}

// Contains reports whether text holds at least one forbidden word.
// Tokens are lowercased and stripped of punctuation before matching.
func (f *Filter) Contains(text string) bool {
	f.once.Do(f.load)
	if len(f.words) == 0 || text == "" {
		return false
	}
	for _, token := range strings.Fields(text) {
		clean := normalizeToken(token)
		if clean == "" {
			continue
		}
		if _, ok := f.words[clean]; ok {
			return true
		}
	}
	return false
}

func normalizeToken(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
