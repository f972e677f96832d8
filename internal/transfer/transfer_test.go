package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/localfs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTransferMovesAndSymlinks(t *testing.T) {
	root := t.TempDir()
	storage := filepath.Join(root, "storage")
	video := filepath.Join(root, "video")
	source := filepath.Join(root, "downloads", "a.mkv")
	writeFile(t, source, "movie bytes")

	tr := New(localfs.New(), storage, video, 1024)
	dest := filepath.Join(storage, "Films", "Divers", "A", "a.mkv")

	res := tr.Transfer(context.Background(), source, dest, true, "")
	require.True(t, res.Success, "%v", res.Error)
	assert.FileExists(t, dest)
	assert.NoFileExists(t, source)

	info, err := os.Lstat(res.SymlinkPath)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)

	resolved, err := filepath.EvalSymlinks(res.SymlinkPath)
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(dest)
	require.NoError(t, err)
	assert.Equal(t, expected, resolved)
}

func TestTransferDetectsDuplicateConflict(t *testing.T) {
	root := t.TempDir()
	storage := filepath.Join(root, "storage")
	video := filepath.Join(root, "video")
	source := filepath.Join(root, "downloads", "a.mkv")
	dest := filepath.Join(storage, "Films", "Divers", "A", "a.mkv")
	writeFile(t, source, "same bytes")
	writeFile(t, dest, "same bytes")

	tr := New(localfs.New(), storage, video, 1024)
	res := tr.Transfer(context.Background(), source, dest, true, "")
	assert.False(t, res.Success)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, ConflictDuplicate, res.Conflict.Type)
}

func TestTransferDetectsNameCollision(t *testing.T) {
	root := t.TempDir()
	storage := filepath.Join(root, "storage")
	video := filepath.Join(root, "video")
	source := filepath.Join(root, "downloads", "a.mkv")
	dest := filepath.Join(storage, "Films", "Divers", "A", "a.mkv")
	writeFile(t, source, "new bytes")
	writeFile(t, dest, "different bytes")

	tr := New(localfs.New(), storage, video, 1024)
	res := tr.Transfer(context.Background(), source, dest, true, "")
	assert.False(t, res.Success)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, ConflictNameCollision, res.Conflict.Type)
}

func TestTransferWithoutSymlink(t *testing.T) {
	root := t.TempDir()
	storage := filepath.Join(root, "storage")
	video := filepath.Join(root, "video")
	source := filepath.Join(root, "downloads", "a.mkv")
	writeFile(t, source, "bytes")
	dest := filepath.Join(storage, "Films", "Divers", "A", "a.mkv")

	tr := New(localfs.New(), storage, video, 1024)
	res := tr.Transfer(context.Background(), source, dest, false, "")
	require.True(t, res.Success)
	assert.Empty(t, res.SymlinkPath)
	assert.NoFileExists(t, filepath.Join(video, "Films", "Divers", "A", "a.mkv"))
}
