// Package prefixgroup implements the Prefix Grouper (spec.md §4.13):
// detects recurring title prefixes inside a leaf directory and regroups the
// matching files into a dedicated subdirectory. Grounded on
// original_source/src/services/prefix_grouper.py.
package prefixgroup

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/port"
	"github.com/kbouchard/cineorg/internal/subdivision"
	"github.com/kbouchard/cineorg/internal/textnorm"
)

// Group is a set of files sharing a recurring first-word prefix, pending a
// move into parentDir/prefix.
type Group struct {
	ParentDir string
	Prefix    string
	Files     []string // basenames
}

var yearParenPattern = regexp.MustCompile(`\(\d{4}\)`)

// ExtractTitleFromFilename returns everything before the first "(YYYY)"
// token, or the extension-stripped name if no year is present.
func ExtractTitleFromFilename(filename string) string {
	if filename == "" {
		return ""
	}
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	loc := yearParenPattern.FindStringIndex(name)
	if loc == nil {
		return name
	}
	return strings.TrimSpace(name[:loc[0]])
}

// ExtractFirstWord returns the first significant word of title after
// stripping a leading article.
func ExtractFirstWord(title string) string {
	if title == "" {
		return ""
	}
	stripped := strings.TrimSpace(textnorm.StripArticle(title))
	if stripped == "" {
		return ""
	}
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// minCommonPrefixLen is the minimum length (in characters) of a first-word
// key for longer keys that start with it to merge into its group.
const minCommonPrefixLen = 4

// Analyze scans videoDir for leaf directories (those directly containing
// media files) and returns the prefix groups meeting minCount, skipping any
// group whose name duplicates an ancestor directory's first word.
func Analyze(fs port.Filesystem, videoDir string, minCount int) []Group {
	var groups []Group
	for _, leaf := range findLeafDirs(fs, videoDir) {
		groups = append(groups, analyzeDirectory(fs, leaf, minCount)...)
	}
	return groups
}

func findLeafDirs(fs port.Filesystem, root string) []string {
	if !fs.Exists(root) {
		return nil
	}
	var leaves []string
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := fs.ListDir(dir)
		if err != nil {
			return
		}
		sort.Strings(entries)
		hasMedia := false
		var subdirs []string
		for _, e := range entries {
			if fs.IsDir(e) {
				subdirs = append(subdirs, e)
				continue
			}
			if localfs.IsVideoExtension(filepath.Ext(e)) {
				hasMedia = true
			}
		}
		if hasMedia {
			leaves = append(leaves, dir)
		}
		for _, sd := range subdirs {
			walk(sd)
		}
	}
	walk(root)
	sort.Strings(leaves)
	return leaves
}

// isPrefixDir reports whether directory is already a prefix subdirectory:
// not a bare letter or range label, and its media files' first words start
// with its own name.
func isPrefixDir(fs port.Filesystem, directory string) bool {
	name := filepath.Base(directory)
	if len(name) <= 1 || subdivision.IsRangeDir(name) {
		return false
	}
	entries, err := fs.ListDir(directory)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if fs.IsDir(e) {
			continue
		}
		if !localfs.IsVideoExtension(filepath.Ext(e)) {
			continue
		}
		title := ExtractTitleFromFilename(filepath.Base(e))
		first := ExtractFirstWord(title)
		if first != "" && strings.HasPrefix(strings.ToLower(first), strings.ToLower(name)) {
			return true
		}
	}
	return false
}

func analyzeDirectory(fs port.Filesystem, directory string, minCount int) []Group {
	if isPrefixDir(fs, directory) {
		return nil
	}

	entries, err := fs.ListDir(directory)
	if err != nil {
		return nil
	}
	sort.Strings(entries)

	wordToFiles := map[string][]string{}
	for _, e := range entries {
		if fs.IsDir(e) {
			continue
		}
		if !localfs.IsVideoExtension(filepath.Ext(e)) {
			continue
		}
		base := filepath.Base(e)
		title := ExtractTitleFromFilename(base)
		first := ExtractFirstWord(title)
		if first == "" {
			continue
		}
		key := strings.ToLower(first)
		wordToFiles[key] = append(wordToFiles[key], base)
	}

	merged := mergeGroups(wordToFiles)

	ancestorWords := map[string]bool{}
	for dir := directory; ; {
		name := filepath.Base(dir)
		if name != "" {
			stripped := strings.TrimSpace(textnorm.StripArticle(name))
			if stripped != "" {
				fields := strings.Fields(stripped)
				if len(fields) > 0 {
					ancestorWords[strings.ToLower(fields[0])] = true
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	var groups []Group
	prefixes := make([]string, 0, len(merged))
	for p := range merged {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		files := merged[prefix]
		if len(files) < minCount {
			continue
		}
		if ancestorWords[strings.ToLower(prefix)] {
			continue
		}
		groups = append(groups, Group{ParentDir: directory, Prefix: prefix, Files: files})
	}
	return groups
}

// mergeGroups folds each key that starts with a shorter, already-merged
// key of at least 4 characters (compared in lowercase) into that group,
// keeping the shorter key's original casing. Keys that only share a
// common prefix, neither being a prefix of the other, are not merged.
func mergeGroups(wordToFiles map[string][]string) map[string][]string {
	if len(wordToFiles) == 0 {
		return nil
	}

	keys := make([]string, 0, len(wordToFiles))
	for k := range wordToFiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	merged := map[string][]string{}
	mergedOrder := []string{}

	for _, key := range keys {
		var foundParent string
		for _, mk := range mergedOrder {
			mergedLower := strings.ToLower(mk)
			if len(mergedLower) >= minCommonPrefixLen && strings.HasPrefix(key, mergedLower) {
				foundParent = mk
				break
			}
		}
		if foundParent != "" {
			merged[foundParent] = append(merged[foundParent], wordToFiles[key]...)
			continue
		}
		originalWord := ExtractFirstWord(ExtractTitleFromFilename(wordToFiles[key][0]))
		if originalWord == "" {
			originalWord = key
		}
		merged[originalWord] = append([]string(nil), wordToFiles[key]...)
		mergedOrder = append(mergedOrder, originalWord)
	}

	return merged
}

// Execute creates the prefix subdirectory in both trees, moves the physical
// file in storage, then recreates the symlink (not renames it) so it stays
// relative, per spec.md §4.13. Returns the number of files moved.
func Execute(fs port.Filesystem, groups []Group, videoDir, storageDir string) (int, error) {
	total := 0
	for _, group := range groups {
		rel, err := filepath.Rel(videoDir, group.ParentDir)
		if err != nil {
			continue
		}

		videoPrefixDir := filepath.Join(videoDir, rel, group.Prefix)
		storagePrefixDir := filepath.Join(storageDir, rel, group.Prefix)
		if err := fs.MkdirAll(videoPrefixDir); err != nil {
			return total, err
		}
		if err := fs.MkdirAll(storagePrefixDir); err != nil {
			return total, err
		}

		for _, filename := range group.Files {
			storageFile := filepath.Join(storageDir, rel, filename)
			storageDest := filepath.Join(storagePrefixDir, filename)
			if fs.Exists(storageFile) {
				if err := fs.Rename(storageFile, storageDest); err != nil {
					return total, err
				}
			}

			videoFile := filepath.Join(videoDir, rel, filename)
			if fs.IsSymlink(videoFile) {
				if err := fs.Remove(videoFile); err != nil {
					return total, err
				}
			} else if fs.Exists(videoFile) {
				if err := fs.Rename(videoFile, filepath.Join(videoPrefixDir, filename)); err != nil {
					return total, err
				}
				total++
				continue
			}

			newLink := filepath.Join(videoPrefixDir, filename)
			relTarget, err := filepath.Rel(videoPrefixDir, storageDest)
			if err != nil {
				return total, err
			}
			if err := fs.Symlink(relTarget, newLink); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
