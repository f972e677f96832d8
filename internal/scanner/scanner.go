// Package scanner implements the Scanner (spec.md §4.3): it enumerates the
// movies and series subtrees under the downloads root and emits one
// ScanRecord per accepted file, grounded on CineVault's
// internal/scanner/scanner.go walk-and-filter shape and
// original_source/src/services/scanner.py's accept/reject rules.
package scanner

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/mediainfo"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/parser"
	"github.com/kbouchard/cineorg/internal/port"
)

// ignoredSubstrings are checked case-insensitively against the filename;
// any match excludes the file from the main batch (spec.md §4.3).
var ignoredSubstrings = []string{"sample", "trailer", "preview", "extras", "bonus"}

// moviesSubtree and seriesSubtree name the two subtrees under the downloads
// root, matching the storage tree's own top-level names.
const (
	moviesSubtree = "Films"
	seriesSubtree = "Séries"
)

// Scanner enumerates the downloads root's two managed subtrees.
type Scanner struct {
	FS          port.Filesystem
	MediaInfo   port.MediaInfoExtractor
	MinFileSize int64
}

// New builds a Scanner. minFileSize is CINEORG_MIN_FILE_SIZE_BYTES.
func New(fs port.Filesystem, mi port.MediaInfoExtractor, minFileSize int64) *Scanner {
	return &Scanner{FS: fs, MediaInfo: mi, MinFileSize: minFileSize}
}

// Result bundles the accepted batch and the files excluded purely for being
// under the size minimum, so the caller/UI may opt them back in per group
// (spec.md §4.3).
type Result struct {
	Accepted       []model.ScanRecord
	BelowSizeLimit []model.ScanRecord
}

// Scan walks downloadsRoot/Films and downloadsRoot/Séries and classifies
// every video file found.
func (s *Scanner) Scan(ctx context.Context, downloadsRoot string) (Result, error) {
	var result Result

	subtrees := []struct {
		name string
		hint model.MediaType
	}{
		{moviesSubtree, model.MediaTypeMovie},
		{seriesSubtree, model.MediaTypeSeries},
	}

	for _, st := range subtrees {
		root := filepath.Join(downloadsRoot, st.name)
		if !s.FS.Exists(root) {
			continue
		}
		files, err := s.FS.ListVideoFiles(root)
		if err != nil {
			return result, err
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			rec, accepted, belowSize := s.classify(ctx, path, st.name, st.hint)
			if !accepted {
				continue
			}
			if belowSize {
				result.BelowSizeLimit = append(result.BelowSizeLimit, rec)
				continue
			}
			result.Accepted = append(result.Accepted, rec)
		}
	}

	return result, nil
}

// classify builds a ScanRecord for path, reporting whether it passes the
// extension/ignored-name gate and whether it is below the size minimum.
func (s *Scanner) classify(ctx context.Context, path, sourceSubtree string, hint model.MediaType) (model.ScanRecord, bool, bool) {
	filename := filepath.Base(path)

	if !localfs.IsVideoExtension(filepath.Ext(filename)) {
		return model.ScanRecord{}, false, false
	}
	if s.FS.IsSymlink(path) {
		return model.ScanRecord{}, false, false
	}
	if containsIgnoredSubstring(filename) {
		return model.ScanRecord{}, false, false
	}

	size, err := s.FS.Size(path)
	if err != nil {
		return model.ScanRecord{}, false, false
	}

	parsed := parser.Parse(filename, hint)
	naturalType := parser.DetectNaturalType(filename)
	corrected := hint != model.MediaTypeUnknown && naturalType != model.MediaTypeUnknown && naturalType != hint

	var info *model.MediaInfo
	if s.MediaInfo != nil {
		info, _ = s.MediaInfo.Extract(ctx, path)
	}

	rec := model.ScanRecord{
		VideoFile: model.VideoFile{
			Path:      path,
			Filename:  filename,
			SizeBytes: size,
			MediaInfo: info,
		},
		Parsed:            parsed,
		MediaInfo:         info,
		SourceSubtree:     sourceSubtree,
		CorrectedLocation: corrected,
	}

	belowSize := size < s.MinFileSize
	return rec, true, belowSize
}

func containsIgnoredSubstring(filename string) bool {
	lower := strings.ToLower(filename)
	for _, needle := range ignoredSubstrings {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// MoviesSubtree and SeriesSubtree expose the subtree names so the Cleanup
// Engine agrees with the Scanner on where a file came from.
func MoviesSubtree() string { return moviesSubtree }
func SeriesSubtree() string { return seriesSubtree }

// MediaInfoExtractorFromProbe is a convenience constructor matching the
// default mediainfo.Extractor adapter, kept here so cmd/cineorg's wiring
// reads as a single call per component.
func MediaInfoExtractorFromProbe(probePath string) port.MediaInfoExtractor {
	return mediainfo.New(probePath)
}
