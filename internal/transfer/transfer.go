// Package transfer implements the Transferer (spec.md §4.9): conflict
// detection via content hash, atomic move into storage, relative symlink
// creation into the video mirror tree, and rollback on failure.
// Grounded on original_source/src/services/transferer.py's check_conflict/
// transfer_file/_create_mirror_symlink/_create_custom_symlink sequence.
package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kbouchard/cineorg/internal/port"
)

// ConflictType classifies what kind of existing file blocks a transfer.
type ConflictType string

const (
	ConflictNone          ConflictType = "none"
	ConflictDuplicate     ConflictType = "duplicate"
	ConflictNameCollision ConflictType = "name_collision"
)

// Conflict describes an existing file blocking the destination path.
type Conflict struct {
	Type         ConflictType
	ExistingPath string
	ExistingHash string
	NewHash      string
}

// Result is the outcome of one Transfer call.
type Result struct {
	Success     bool
	FinalPath   string
	SymlinkPath string
	Conflict    *Conflict
	Error       error
}

// Transferer moves accepted files into the storage tree and mirrors them
// with relative symlinks into the video tree. Per-destination-directory
// locking serializes concurrent transfers that would race on the same
// parent directory.
type Transferer struct {
	FS         port.Filesystem
	StorageDir string
	VideoDir   string
	HashWindow int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a Transferer rooted at storageDir/videoDir.
func New(fs port.Filesystem, storageDir, videoDir string, hashWindow int64) *Transferer {
	return &Transferer{
		FS:         fs,
		StorageDir: storageDir,
		VideoDir:   videoDir,
		HashWindow: hashWindow,
		locks:      map[string]*sync.Mutex{},
	}
}

func (t *Transferer) lockFor(dir string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[dir]
	if !ok {
		l = &sync.Mutex{}
		t.locks[dir] = l
	}
	return l
}

// CheckConflict reports whether destination is already occupied, and by
// what: a byte-identical duplicate or a different file with a colliding
// name.
func (t *Transferer) CheckConflict(ctx context.Context, source, destination string) (*Conflict, error) {
	if !t.FS.Exists(destination) {
		return nil, nil
	}
	sourceHash, err := t.FS.Hash(ctx, source, t.HashWindow)
	if err != nil {
		return nil, fmt.Errorf("transfer: hash source: %w", err)
	}
	destHash, err := t.FS.Hash(ctx, destination, t.HashWindow)
	if err != nil {
		return nil, fmt.Errorf("transfer: hash destination: %w", err)
	}
	ct := ConflictNameCollision
	if sourceHash == destHash {
		ct = ConflictDuplicate
	}
	return &Conflict{
		Type:         ct,
		ExistingPath: destination,
		ExistingHash: destHash,
		NewHash:      sourceHash,
	}, nil
}

// Transfer moves source to destination, then (unless createSymlink is
// false) creates a relative symlink into the video tree mirroring
// destination, or at symlinkDestination when provided. Any failure past
// the move is rolled back by moving the file back to source.
func (t *Transferer) Transfer(ctx context.Context, source, destination string, createSymlink bool, symlinkDestination string) Result {
	lock := t.lockFor(filepath.Dir(destination))
	lock.Lock()
	defer lock.Unlock()

	conflict, err := t.CheckConflict(ctx, source, destination)
	if err != nil {
		return Result{Success: false, Error: err}
	}
	if conflict != nil {
		return Result{Success: false, Conflict: conflict}
	}

	if err := t.FS.MkdirAll(filepath.Dir(destination)); err != nil {
		return Result{Success: false, Error: fmt.Errorf("transfer: mkdir destination: %w", err)}
	}
	if err := t.FS.Rename(source, destination); err != nil {
		return Result{Success: false, Error: fmt.Errorf("transfer: atomic move: %w", err)}
	}

	if !createSymlink {
		return Result{Success: true, FinalPath: destination}
	}

	symlinkPath := symlinkDestination
	if symlinkPath == "" {
		mirrored, err := t.mirrorSymlinkPath(destination)
		if err != nil {
			t.rollback(destination, source)
			return Result{Success: false, Error: err}
		}
		symlinkPath = mirrored
	}

	if err := t.createSymlinkAt(destination, symlinkPath); err != nil {
		t.rollback(destination, source)
		return Result{Success: false, Error: err}
	}

	return Result{Success: true, FinalPath: destination, SymlinkPath: symlinkPath}
}

func (t *Transferer) rollback(destination, source string) {
	_ = t.FS.Rename(destination, source)
}

// mirrorSymlinkPath computes the video-tree path mirroring storagePath's
// position under StorageDir.
func (t *Transferer) mirrorSymlinkPath(storagePath string) (string, error) {
	rel, err := filepath.Rel(t.StorageDir, storagePath)
	if err != nil || rel == ".." || len(rel) >= 2 && rel[:2] == ".." {
		return "", fmt.Errorf("transfer: %s is not under storage root %s", storagePath, t.StorageDir)
	}
	return filepath.Join(t.VideoDir, rel), nil
}

func (t *Transferer) createSymlinkAt(targetPath, symlinkPath string) error {
	if err := t.FS.MkdirAll(filepath.Dir(symlinkPath)); err != nil {
		return fmt.Errorf("transfer: mkdir symlink parent: %w", err)
	}
	if t.FS.Exists(symlinkPath) {
		if err := t.FS.Remove(symlinkPath); err != nil {
			return fmt.Errorf("transfer: remove existing symlink: %w", err)
		}
	}
	relTarget, err := filepath.Rel(filepath.Dir(symlinkPath), targetPath)
	if err != nil {
		return fmt.Errorf("transfer: compute relative symlink target: %w", err)
	}
	if err := t.FS.Symlink(relTarget, symlinkPath); err != nil {
		return fmt.Errorf("transfer: create symlink: %w", err)
	}
	return nil
}
