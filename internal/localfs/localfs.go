// Package localfs implements the concrete Filesystem port adapter over the
// OS filesystem. Grounded on CineVault's internal/scanner walk/stat/rename
// conventions, reduced to exactly the operations port.Filesystem names.
package localfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kbouchard/cineorg/internal/hashutil"
)

// FS is the real, OS-backed Filesystem adapter.
type FS struct{}

// New builds an FS.
func New() *FS { return &FS{} }

func (FS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (FS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (FS) IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func (FS) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (FS) Hash(ctx context.Context, path string, window int64) (string, error) {
	if window <= 0 {
		window = hashutil.DefaultWindow
	}
	return hashutil.HashFile(ctx, path, window)
}

func (FS) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Join(path, e.Name()))
	}
	return out, nil
}

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true, ".mpg": true, ".mpeg": true,
	".ts": true, ".vob": true,
}

// IsVideoExtension reports whether ext (including the leading dot) names a
// recognized video container.
func IsVideoExtension(ext string) bool {
	return videoExtensions[strings.ToLower(ext)]
}

func (f FS) ListVideoFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsVideoExtension(filepath.Ext(path)) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (FS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Rename moves oldPath to newPath, falling back to copy-then-delete when the
// two paths live on different filesystems (os.Rename returns EXDEV).
func (f FS) Rename(oldPath, newPath string) error {
	err := os.Rename(oldPath, newPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := f.Copy(oldPath, newPath); err != nil {
		return err
	}
	return os.Remove(oldPath)
}

func (f FS) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func (FS) Remove(path string) error {
	return os.Remove(path)
}

func (FS) RemoveEmptyDir(path string) error {
	return os.Remove(path)
}

func (FS) ReadLink(path string) (string, error) {
	return os.Readlink(path)
}

func (FS) ResolveLink(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

func (FS) Symlink(target, linkPath string) error {
	return os.Symlink(target, linkPath)
}

func (FS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
