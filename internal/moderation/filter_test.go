package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestContains(t *testing.T) {
	f := NewFilter(writeWordList(t, `["спам", "Казино"]`))

	assert.True(t, f.Contains("тут один спам"))
	assert.True(t, f.Contains("СПАМ!!!"), "matching ignores case and punctuation")
	assert.True(t, f.Contains("казино."), "list entries are lowercased on load")
	assert.False(t, f.Contains("обычное сообщение"))
	assert.False(t, f.Contains(""))
	assert.False(t, f.Contains("спамить"), "only whole tokens match")
}

func TestMissingFileDegradesToNoop(t *testing.T) {
	f := NewFilter(filepath.Join(t.TempDir(), "absent.json"))
	assert.False(t, f.Contains("спам"))
}

func TestCorruptFileDegradesToNoop(t *testing.T) {
	f := NewFilter(writeWordList(t, `{"not":"a list"}`))
	assert.False(t, f.Contains("спам"))
}
