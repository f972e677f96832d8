package hashutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFileWholeFileShorterThanWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mkv")
	content := []byte("hello world")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := HashFile(context.Background(), path, DefaultWindow)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestHashFileWindowTruncatesLongerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.mkv")
	content := make([]byte, 100)
	for i := range content {
		content[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := HashFile(context.Background(), path, 10)
	require.NoError(t, err)

	sum := sha256.Sum256(content[:10])
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestHashFileMissingReturnsError(t *testing.T) {
	_, err := HashFile(context.Background(), "/no/such/file", DefaultWindow)
	assert.Error(t, err)
}

func TestHashFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.mkv")
	require.NoError(t, os.WriteFile(path, []byte("same content"), 0o644))

	h1, err := HashFile(context.Background(), path, DefaultWindow)
	require.NoError(t, err)
	h2, err := HashFile(context.Background(), path, DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
