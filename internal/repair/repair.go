// Package repair implements Symlink Repair (spec.md §4.11, §2): it scans a
// video-tree directory for broken symlinks and proposes storage-tree
// candidates to re-point them at, scored by title similarity with a year
// bonus/malus. Grounded on
// original_source/src/services/symlink_repair.py.
package repair

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/matchscore"
	"github.com/kbouchard/cineorg/internal/port"
)

// Decision classifies the outcome of processing one symlink.
type Decision string

const (
	DecisionRepaired Decision = "repaired"
	DecisionNoMatch  Decision = "no_match"
	DecisionSkipped  Decision = "skipped"
	DecisionError    Decision = "error"
)

// Candidate is a storage-tree file proposed as a replacement target.
type Candidate struct {
	Path        string
	Score       float64
	SizeBytes   int64
	MatchReason string
}

// Result is the outcome of examining (and possibly repairing) one symlink.
type Result struct {
	SymlinkPath    string
	OriginalTarget string
	Decision       Decision
	NewTarget      string
	Candidates     []Candidate
	Error          error
}

// maxCandidates bounds how many candidates are kept per broken symlink.
const maxCandidates = 10

var (
	separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ")
	yearPattern        = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	techPatterns       = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(french|vostfr|multi|truefrench|vff|vf|vo)\b`),
		regexp.MustCompile(`(?i)\b(720p|1080p|2160p|4k|uhd)\b`),
		regexp.MustCompile(`(?i)\b(x264|x265|hevc|h264|h265|avc)\b`),
		regexp.MustCompile(`(?i)\b(bluray|bdrip|webrip|hdtv|dvdrip|web dl|web)\b`),
		regexp.MustCompile(`(?i)\b(dts|ac3|aac|dolby|atmos|truehd)\b`),
	}
)

func normalizeFilename(filename string) string {
	name := strings.ToLower(strings.TrimSuffix(filename, filepath.Ext(filename)))
	name = separatorReplacer.Replace(name)
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	return strings.TrimSpace(name)
}

func extractTitleParts(filename string) (string, *int) {
	normalized := normalizeFilename(filename)

	loc := yearPattern.FindStringIndex(normalized)
	var year *int
	title := normalized
	if loc != nil {
		matched := normalized[loc[0]:loc[1]]
		y := 0
		for _, c := range matched {
			y = y*10 + int(c-'0')
		}
		year = &y
		title = strings.TrimSpace(normalized[:loc[0]])
	}

	for _, pat := range techPatterns {
		title = pat.ReplaceAllString(title, "")
	}
	for strings.Contains(title, "  ") {
		title = strings.ReplaceAll(title, "  ", " ")
	}
	return strings.TrimSpace(title), year
}

// CalculateSimilarity scores name1 against name2 using title ratio plus a
// year bonus/malus (+10 same year, +5 within one year, -10 otherwise),
// clamped to [0, 100].
func CalculateSimilarity(name1, name2 string) float64 {
	title1, year1 := extractTitleParts(name1)
	title2, year2 := extractTitleParts(name2)

	titleRatio := matchscore.Ratio(title1, title2)

	var yearBonus float64
	if year1 != nil && year2 != nil {
		diff := *year1 - *year2
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			yearBonus = 10
		case diff <= 1:
			yearBonus = 5
		default:
			yearBonus = -10
		}
	}

	score := titleRatio + yearBonus
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Service indexes a storage directory and scans a video directory for
// broken symlinks needing repair.
type Service struct {
	FS         port.Filesystem
	StorageDir string
	MinScore   float64
	DryRun     bool

	index    map[string][]string
	indexed  bool
}

// New builds a repair Service rooted at storageDir.
func New(fs port.Filesystem, storageDir string, minScore float64, dryRun bool) *Service {
	return &Service{FS: fs, StorageDir: storageDir, MinScore: minScore, DryRun: dryRun}
}

func (s *Service) buildIndex() {
	if s.indexed {
		return
	}
	s.index = map[string][]string{}

	var walk func(dir string)
	walk = func(dir string) {
		entries, err := s.FS.ListDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if s.FS.IsDir(e) {
				walk(e)
				continue
			}
			if s.FS.IsSymlink(e) {
				continue
			}
			if !localfs.IsVideoExtension(filepath.Ext(e)) {
				continue
			}
			key := normalizeFilename(filepath.Base(e))
			s.index[key] = append(s.index[key], e)
		}
	}
	walk(s.StorageDir)
	s.indexed = true
}

// FindCandidates returns up to maxCandidates storage files scoring at least
// MinScore against either the broken target's basename or the symlink's own
// name, sorted by descending score.
func (s *Service) FindCandidates(brokenTargetName, symlinkName string) []Candidate {
	s.buildIndex()

	var candidates []Candidate
	seen := map[string]bool{}

	for _, paths := range s.index {
		for _, path := range paths {
			if seen[path] {
				continue
			}
			name := filepath.Base(path)
			scoreTarget := CalculateSimilarity(brokenTargetName, name)
			scoreSymlink := CalculateSimilarity(symlinkName, name)
			score := scoreTarget
			if scoreSymlink > score {
				score = scoreSymlink
			}
			if score < s.MinScore {
				continue
			}

			var reasons []string
			if scoreTarget >= s.MinScore {
				reasons = append(reasons, "similar target name")
			}
			if scoreSymlink >= s.MinScore {
				reasons = append(reasons, "similar symlink name")
			}

			size, _ := s.FS.Size(path)
			candidates = append(candidates, Candidate{
				Path:        path,
				Score:       score,
				SizeBytes:   size,
				MatchReason: strings.Join(reasons, ", "),
			})
			seen[path] = true
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// ScanBrokenSymlinks walks videoDir and reports every broken video symlink
// it finds, with its repair candidates.
func (s *Service) ScanBrokenSymlinks(ctx context.Context, videoDir string) ([]Result, error) {
	var results []Result

	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := s.FS.ListDir(dir)
		if err != nil {
			return nil
		}
		for _, e := range entries {
			if s.FS.IsDir(e) {
				if err := walk(e); err != nil {
					return err
				}
				continue
			}
			if !s.FS.IsSymlink(e) {
				continue
			}
			if !localfs.IsVideoExtension(filepath.Ext(e)) {
				continue
			}

			target, err := s.FS.ResolveLink(e)
			if err != nil {
				// EvalSymlinks fails whenever the final target is missing,
				// which is exactly the case this scan exists to find: read
				// the raw link ourselves instead of giving up on it.
				raw, readErr := s.FS.ReadLink(e)
				if readErr != nil {
					results = append(results, Result{
						SymlinkPath: e,
						Decision:    DecisionError,
						Error:       err,
					})
					continue
				}
				target = raw
				if !filepath.IsAbs(target) {
					target = filepath.Join(filepath.Dir(e), target)
				}
			}
			if s.FS.Exists(target) {
				continue
			}

			candidates := s.FindCandidates(filepath.Base(target), filepath.Base(e))
			results = append(results, Result{
				SymlinkPath:    e,
				OriginalTarget: target,
				Decision:       DecisionNoMatch,
				Candidates:     candidates,
			})
		}
		return nil
	}

	if err := walk(videoDir); err != nil {
		return results, err
	}
	return results, nil
}

// RepairSymlink re-points symlinkPath at newTarget, recording the prior
// target. When DryRun is set, no filesystem change is made.
func (s *Service) RepairSymlink(symlinkPath, newTarget string) Result {
	originalTarget, err := s.FS.ResolveLink(symlinkPath)
	if err != nil {
		originalTarget, _ = s.FS.ReadLink(symlinkPath)
	}

	if s.DryRun {
		return Result{
			SymlinkPath:    symlinkPath,
			OriginalTarget: originalTarget,
			Decision:       DecisionRepaired,
			NewTarget:      newTarget,
		}
	}

	if err := s.FS.Remove(symlinkPath); err != nil {
		return Result{SymlinkPath: symlinkPath, Decision: DecisionError, Error: err}
	}
	relTarget, err := filepath.Rel(filepath.Dir(symlinkPath), newTarget)
	if err != nil {
		relTarget = newTarget
	}
	if err := s.FS.Symlink(relTarget, symlinkPath); err != nil {
		return Result{SymlinkPath: symlinkPath, Decision: DecisionError, Error: err}
	}

	return Result{
		SymlinkPath:    symlinkPath,
		OriginalTarget: originalTarget,
		Decision:       DecisionRepaired,
		NewTarget:      newTarget,
	}
}
