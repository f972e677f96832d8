package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/memrepo"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanLibraryImportsNewFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Films", "Divers", "A", "Amelie (2001).mkv"), "bytes")

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, false)

	var results []string
	for res := range im.ScanLibrary(context.Background(), root) {
		results = append(results, string(res.Kind))
	}
	require.Len(t, results, 1)
	assert.Equal(t, "IMPORT", results[0])

	files, err := repo.VideoFiles().List()
	require.NoError(t, err)
	assert.Len(t, files, 1)

	pendings, err := repo.PendingValidations().ListPending()
	require.NoError(t, err)
	assert.Len(t, pendings, 1)
}

func TestScanLibrarySkipsIgnoredNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Films", "Divers", "A", "Amelie.sample.mkv"), "bytes")

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, false)

	var results []string
	for res := range im.ScanLibrary(context.Background(), root) {
		results = append(results, string(res.Kind))
	}
	assert.Empty(t, results)
}

func TestScanLibrarySkipsKnownHash(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Films", "Divers", "A", "Amelie (2001).mkv")
	writeFile(t, path, "identical bytes")

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, false)

	for range im.ScanLibrary(context.Background(), root) {
	}
	var second []string
	for res := range im.ScanLibrary(context.Background(), root) {
		second = append(second, string(res.Kind))
	}
	require.Len(t, second, 1)
	assert.Equal(t, "SKIP_KNOWN", second[0])
}

func TestScanLibraryUpdatesPathOnRename(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "Films", "Divers", "A", "Amelie (2001).mkv")
	writeFile(t, oldPath, "identical bytes")

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, false)
	for range im.ScanLibrary(context.Background(), root) {
	}

	newPath := filepath.Join(root, "Films", "Divers", "A", "Amelie (2001) renamed.mkv")
	require.NoError(t, os.Rename(oldPath, newPath))

	var second []string
	for res := range im.ScanLibrary(context.Background(), root) {
		second = append(second, string(res.Kind))
	}
	require.Len(t, second, 1)
	assert.Equal(t, "UPDATE_PATH", second[0])

	got, err := repo.VideoFiles().GetByHash(mustHash(t, newPath))
	require.NoError(t, err)
	assert.Equal(t, newPath, got.Path)
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	h, err := localfs.New().Hash(context.Background(), path, 1024)
	require.NoError(t, err)
	return h
}

func TestScanFromSymlinksImportsWithBothPaths(t *testing.T) {
	root := t.TempDir()
	storage := filepath.Join(root, "storage", "Films", "Divers", "A", "Amelie (2001).mkv")
	writeFile(t, storage, "bytes")
	video := filepath.Join(root, "video", "Films", "Divers", "A", "Amelie (2001).mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(video), 0o755))
	require.NoError(t, os.Symlink(storage, video))

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, false)

	var results []string
	for res := range im.ScanFromSymlinks(context.Background(), filepath.Join(root, "video")) {
		results = append(results, string(res.Kind))
	}
	require.Len(t, results, 1)
	assert.Equal(t, "IMPORT", results[0])

	files, err := repo.VideoFiles().List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NotNil(t, files[0].SymlinkPath)
	assert.Equal(t, video, *files[0].SymlinkPath)
	assert.Equal(t, storage, files[0].Path)
}

func TestScanFromSymlinksReportsBrokenLink(t *testing.T) {
	root := t.TempDir()
	video := filepath.Join(root, "video", "Films", "Divers", "A", "Gone.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(video), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "storage", "nope.mkv"), video))

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, false)

	var results []string
	for res := range im.ScanFromSymlinks(context.Background(), filepath.Join(root, "video")) {
		results = append(results, string(res.Kind))
	}
	require.Len(t, results, 1)
	assert.Equal(t, "ERROR", results[0])
}

func TestDryRunDoesNotPersist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Films", "Divers", "A", "Amelie (2001).mkv"), "bytes")

	repo := memrepo.New()
	im := New(localfs.New(), nil, repo.VideoFiles(), repo.PendingValidations(), 1024, true)

	for range im.ScanLibrary(context.Background(), root) {
	}
	files, err := repo.VideoFiles().List()
	require.NoError(t, err)
	assert.Empty(t, files)
}
