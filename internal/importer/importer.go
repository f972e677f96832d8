// Package importer implements the Importer (spec.md §4.10, §9): bringing
// a pre-existing video library into the catalog by scanning
// physical storage or by following the video tree's symlinks back to their
// targets, deciding IMPORT/SKIP_KNOWN/UPDATE_PATH/ERROR per file by
// content hash. Grounded on
// original_source/src/services/importer.py.
package importer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/port"
)

// ignoredPatterns mirrors the Scanner's ignored-substring gate (spec.md
// §4.3), reused here so the Importer skips the same sample/trailer noise.
var ignoredPatterns = []string{"sample", "trailer", "preview", "extras", "bonus"}

// Importer re-populates VideoFile/PendingValidation records from a library
// that already exists on disk.
type Importer struct {
	FS         port.Filesystem
	MediaInfo  port.MediaInfoExtractor
	VideoFiles port.VideoFileRepository
	Pending    port.PendingValidationRepository
	HashWindow int64
	DryRun     bool
}

// New builds an Importer.
func New(fs port.Filesystem, mi port.MediaInfoExtractor, videoFiles port.VideoFileRepository, pending port.PendingValidationRepository, hashWindow int64, dryRun bool) *Importer {
	return &Importer{FS: fs, MediaInfo: mi, VideoFiles: videoFiles, Pending: pending, HashWindow: hashWindow, DryRun: dryRun}
}

func ignoredName(filename string) bool {
	lower := strings.ToLower(filename)
	for _, pattern := range ignoredPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// ScanLibrary walks storageDir and streams one model.ImportResult per
// eligible physical file over the returned channel, closing it when the
// walk completes or ctx is cancelled (spec.md §9's streaming contract).
func (im *Importer) ScanLibrary(ctx context.Context, storageDir string) <-chan model.ImportResult {
	out := make(chan model.ImportResult)
	go func() {
		defer close(out)
		im.walkPhysical(ctx, storageDir, out)
	}()
	return out
}

func (im *Importer) walkPhysical(ctx context.Context, dir string, out chan<- model.ImportResult) bool {
	entries, err := im.FS.ListDir(dir)
	if err != nil {
		return true
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return false
		}
		if im.FS.IsDir(e) {
			if !im.walkPhysical(ctx, e, out) {
				return false
			}
			continue
		}
		if im.FS.IsSymlink(e) {
			continue
		}
		if !localfs.IsVideoExtension(filepath.Ext(e)) {
			continue
		}
		if ignoredName(filepath.Base(e)) {
			continue
		}
		select {
		case out <- im.processFile(ctx, e):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (im *Importer) processFile(ctx context.Context, path string) model.ImportResult {
	filename := filepath.Base(path)

	hash, err := im.FS.Hash(ctx, path, im.HashWindow)
	if err != nil {
		return model.ImportResult{Kind: model.ImportKindError, Path: path, Message: err.Error()}
	}

	decision, existing := im.shouldImport(path, hash)

	switch decision {
	case model.ImportKindSkipKnown:
		return model.ImportResult{Kind: model.ImportKindSkipKnown, Path: path}

	case model.ImportKindUpdatePath:
		if !im.DryRun && existing != nil {
			existing.Path = path
			existing.ContentHash = hash
			if err := im.VideoFiles.Save(existing); err != nil {
				return model.ImportResult{Kind: model.ImportKindError, Path: path, Message: err.Error()}
			}
		}
		return model.ImportResult{Kind: model.ImportKindUpdatePath, Path: path}

	default:
		return im.importFile(ctx, path, filename, hash, nil)
	}
}

// shouldImport decides by hash alone (the identity that survives a rename
// or a move between subtrees): a known hash at another path is an
// UPDATE_PATH, at the same path a SKIP_KNOWN, and an unknown hash an
// IMPORT. No lookup by path is made, so an existing record at the same
// path with a different hash is not consulted.
func (im *Importer) shouldImport(path, hash string) (model.ImportResultKind, *model.VideoFile) {
	if existingByHash, err := im.VideoFiles.GetByHash(hash); err == nil && existingByHash != nil {
		if existingByHash.Path != path {
			return model.ImportKindUpdatePath, existingByHash
		}
		return model.ImportKindSkipKnown, existingByHash
	}
	return model.ImportKindImport, nil
}

func (im *Importer) importFile(ctx context.Context, path, filename, hash string, symlinkPath *string) model.ImportResult {
	var info *model.MediaInfo
	if im.MediaInfo != nil {
		info, _ = im.MediaInfo.Extract(ctx, path)
	}
	size, err := im.FS.Size(path)
	if err != nil {
		return model.ImportResult{Kind: model.ImportKindError, Path: path, Message: err.Error()}
	}

	vf := &model.VideoFile{
		Path:        path,
		SymlinkPath: symlinkPath,
		Filename:    filename,
		SizeBytes:   size,
		ContentHash: hash,
		MediaInfo:   info,
	}

	if !im.DryRun {
		if err := im.VideoFiles.Save(vf); err != nil {
			return model.ImportResult{Kind: model.ImportKindError, Path: path, Message: err.Error()}
		}
		pending := &model.PendingValidation{
			VideoFile:        *vf,
			ValidationStatus: model.ValidationPending,
		}
		if err := im.Pending.Save(pending); err != nil {
			return model.ImportResult{Kind: model.ImportKindError, Path: path, Message: err.Error()}
		}
	}

	return model.ImportResult{Kind: model.ImportKindImport, Path: path}
}

// ScanFromSymlinks is the import-inverse mode (spec.md §9): it follows the
// video tree's symlinks back to their physical targets instead of walking
// storage directly, recording both paths on the resulting VideoFile.
func (im *Importer) ScanFromSymlinks(ctx context.Context, videoDir string) <-chan model.ImportResult {
	out := make(chan model.ImportResult)
	go func() {
		defer close(out)
		im.walkSymlinks(ctx, videoDir, out)
	}()
	return out
}

func (im *Importer) walkSymlinks(ctx context.Context, dir string, out chan<- model.ImportResult) bool {
	entries, err := im.FS.ListDir(dir)
	if err != nil {
		return true
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return false
		}
		if im.FS.IsDir(e) {
			if !im.walkSymlinks(ctx, e, out) {
				return false
			}
			continue
		}
		if !im.FS.IsSymlink(e) {
			continue
		}
		if !localfs.IsVideoExtension(filepath.Ext(e)) {
			continue
		}
		if ignoredName(filepath.Base(e)) {
			continue
		}
		select {
		case out <- im.processSymlink(ctx, e):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (im *Importer) processSymlink(ctx context.Context, symlinkPath string) model.ImportResult {
	name := filepath.Base(symlinkPath)

	target, err := im.FS.ResolveLink(symlinkPath)
	if err != nil {
		return model.ImportResult{Kind: model.ImportKindError, Path: symlinkPath, Message: "broken symlink: " + err.Error()}
	}
	if !im.FS.Exists(target) {
		return model.ImportResult{Kind: model.ImportKindError, Path: symlinkPath, Message: "target not found: " + target}
	}
	if im.FS.IsSymlink(target) {
		return model.ImportResult{Kind: model.ImportKindError, Path: symlinkPath, Message: "target is itself a symlink"}
	}

	hash, err := im.FS.Hash(ctx, target, im.HashWindow)
	if err != nil {
		return model.ImportResult{Kind: model.ImportKindError, Path: symlinkPath, Message: err.Error()}
	}

	decision, existing := im.shouldImport(target, hash)

	switch decision {
	case model.ImportKindSkipKnown:
		if existing != nil && existing.SymlinkPath == nil {
			if !im.DryRun {
				sp := symlinkPath
				existing.SymlinkPath = &sp
				if err := im.VideoFiles.Save(existing); err != nil {
					return model.ImportResult{Kind: model.ImportKindError, Path: symlinkPath, Message: err.Error()}
				}
			}
			return model.ImportResult{Kind: model.ImportKindUpdatePath, Path: symlinkPath}
		}
		return model.ImportResult{Kind: model.ImportKindSkipKnown, Path: symlinkPath}

	case model.ImportKindUpdatePath:
		if !im.DryRun && existing != nil {
			existing.Path = target
			sp := symlinkPath
			existing.SymlinkPath = &sp
			if err := im.VideoFiles.Save(existing); err != nil {
				return model.ImportResult{Kind: model.ImportKindError, Path: symlinkPath, Message: err.Error()}
			}
		}
		return model.ImportResult{Kind: model.ImportKindUpdatePath, Path: symlinkPath}

	default:
		sp := symlinkPath
		return im.importFile(ctx, target, name, hash, &sp)
	}
}
