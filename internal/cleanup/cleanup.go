// Package cleanup implements the Cleanup Engine (spec.md §4.11): an
// analyze/execute pass over the video tree's managed subtrees (Films,
// Séries) that finds broken, misplaced and duplicate symlinks, oversized
// directories needing subdivision, and empty directories, then applies the
// corresponding fixes. Grounded on
// original_source/src/services/cleanup/analyzers.py and
// original_source/src/services/cleanup/executors.py.
package cleanup

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/organizer"
	"github.com/kbouchard/cineorg/internal/port"
	"github.com/kbouchard/cineorg/internal/repair"
	"github.com/kbouchard/cineorg/internal/scanner"
	"github.com/kbouchard/cineorg/internal/subdivision"
)

// managedSubdirs names the two top-level subtrees the engine will ever
// touch; everything else under the video root is out of scope.
var managedSubdirs = []string{scanner.MoviesSubtree(), scanner.SeriesSubtree()}

// BrokenSymlink is a broken symlink paired with its best repair candidate,
// if any was found.
type BrokenSymlink struct {
	SymlinkPath    string
	OriginalTarget string
	BestCandidate  string
	CandidateScore float64
}

// MisplacedSymlink is a valid symlink sitting outside the directory the
// Organizer would place it in today.
type MisplacedSymlink struct {
	SymlinkPath string
	TargetPath  string
	CurrentDir  string
	ExpectedDir string
}

// DuplicateGroup is a set of symlinks in the same directory resolving to the
// same physical file; Keep is the longest name, Remove the rest.
type DuplicateGroup struct {
	Directory  string
	TargetPath string
	Keep       string
	Remove     []string
}

// Report is the result of one Analyze pass.
type Report struct {
	Broken         []BrokenSymlink
	Misplaced      []MisplacedSymlink
	NotInDB        int
	Duplicates     []DuplicateGroup
	OversizedPlans []model.SubdivisionPlan
	EmptyDirs      []string
}

// Result accumulates the outcome of an Execute pass.
type Result struct {
	RepairedSymlinks         int
	FailedRepairs            int
	BrokenSymlinksDeleted    int
	MovedSymlinks            int
	DuplicateSymlinksRemoved int
	SymlinksRedistributed    int
	SubdivisionsCreated      int
	EmptyDirsRemoved         int
	Errors                   []string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Engine composes the adapters the analyze/execute phases need.
type Engine struct {
	FS         port.Filesystem
	Repo       port.Repository
	Repair     *repair.Service
	StorageDir string
	VideoDir   string
	MaxPerDir  int
}

// New builds a cleanup Engine.
func New(fs port.Filesystem, repo port.Repository, repairSvc *repair.Service, storageDir, videoDir string, maxPerDir int) *Engine {
	return &Engine{FS: fs, Repo: repo, Repair: repairSvc, StorageDir: storageDir, VideoDir: videoDir, MaxPerDir: maxPerDir}
}

func (e *Engine) isInManagedScope(path string) bool {
	rel, err := filepath.Rel(e.VideoDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for _, m := range managedSubdirs {
		if parts[0] == m {
			return true
		}
	}
	return false
}

func (e *Engine) iterManagedPaths(visit func(path string)) {
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := e.FS.ListDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			visit(entry)
			if e.FS.IsDir(entry) && !e.FS.IsSymlink(entry) {
				walk(entry)
			}
		}
	}
	for _, name := range managedSubdirs {
		root := filepath.Join(e.VideoDir, name)
		if e.FS.Exists(root) {
			walk(root)
		}
	}
}

// Analyze runs every scan phase and returns the combined findings.
func (e *Engine) Analyze(ctx context.Context) (Report, error) {
	var report Report

	broken, err := e.scanBrokenSymlinks(ctx)
	if err != nil {
		return report, err
	}
	report.Broken = broken

	misplaced, notInDB := e.scanMisplacedSymlinks()
	report.Misplaced = misplaced
	report.NotInDB = notInDB

	report.Duplicates = e.scanDuplicateSymlinks()
	report.OversizedPlans = e.scanOversizedDirs()
	report.EmptyDirs = e.scanEmptyDirs()

	return report, nil
}

func (e *Engine) scanBrokenSymlinks(ctx context.Context) ([]BrokenSymlink, error) {
	results, err := e.Repair.ScanBrokenSymlinks(ctx, e.VideoDir)
	if err != nil {
		return nil, err
	}
	var out []BrokenSymlink
	for _, r := range results {
		if r.Decision == repair.DecisionError {
			continue
		}
		if !e.isInManagedScope(r.SymlinkPath) {
			continue
		}
		b := BrokenSymlink{SymlinkPath: r.SymlinkPath, OriginalTarget: r.OriginalTarget}
		if len(r.Candidates) > 0 {
			b.BestCandidate = r.Candidates[0].Path
			b.CandidateScore = r.Candidates[0].Score
		}
		out = append(out, b)
	}
	return out, nil
}

func (e *Engine) scanMisplacedSymlinks() ([]MisplacedSymlink, int) {
	var misplaced []MisplacedSymlink
	notInDB := 0

	e.iterManagedPaths(func(path string) {
		if !e.FS.IsSymlink(path) {
			return
		}
		target, err := e.FS.ResolveLink(path)
		if err != nil || !e.FS.Exists(target) {
			return
		}

		vf, err := e.Repo.VideoFiles().GetBySymlinkPath(path)
		if err != nil {
			vf, err = e.Repo.VideoFiles().GetByPath(target)
		}
		if err != nil {
			notInDB++
			return
		}

		expectedDir := e.findExpectedDir(vf)
		if expectedDir == "" {
			return
		}

		currentDir := filepath.Dir(path)
		if currentDir != expectedDir {
			misplaced = append(misplaced, MisplacedSymlink{
				SymlinkPath: path,
				TargetPath:  target,
				CurrentDir:  currentDir,
				ExpectedDir: expectedDir,
			})
		}
	})

	return misplaced, notInDB
}

// findExpectedDir computes the directory the Organizer would place vf's
// symlink in today, by locating the Movie or Episode it belongs to.
func (e *Engine) findExpectedDir(vf *model.VideoFile) string {
	if movie, err := e.Repo.Movies().GetByFilePath(vf.Path); err == nil && movie != nil {
		return organizer.MovieSymlinkDir(e.VideoDir, *movie)
	}
	if episode, err := e.Repo.Episodes().GetByFilePath(vf.Path); err == nil && episode != nil {
		if series, err := e.Repo.Series().Get(episode.SeriesID); err == nil && series != nil {
			return organizer.SeriesSymlinkDir(e.VideoDir, *series, episode.SeasonNumber)
		}
	}
	return ""
}

func (e *Engine) scanDuplicateSymlinks() []DuplicateGroup {
	type key struct {
		dir    string
		target string
	}
	groups := map[key][]string{}

	e.iterManagedPaths(func(path string) {
		if !e.FS.IsSymlink(path) {
			return
		}
		target, err := e.FS.ResolveLink(path)
		if err != nil || !e.FS.Exists(target) {
			return
		}
		k := key{dir: filepath.Dir(path), target: target}
		groups[k] = append(groups[k], path)
	})

	var out []DuplicateGroup
	for k, links := range groups {
		if len(links) < 2 {
			continue
		}
		sort.Slice(links, func(i, j int) bool {
			return len(filepath.Base(links[i])) > len(filepath.Base(links[j]))
		})
		out = append(out, DuplicateGroup{
			Directory:  k.dir,
			TargetPath: k.target,
			Keep:       links[0],
			Remove:     links[1:],
		})
	}
	return out
}

func (e *Engine) scanOversizedDirs() []model.SubdivisionPlan {
	var plans []model.SubdivisionPlan

	e.iterManagedPaths(func(dirPath string) {
		if !e.FS.IsDir(dirPath) {
			return
		}
		entries, err := e.FS.ListDir(dirPath)
		if err != nil {
			return
		}

		var items []string
		allSymlinks := true
		for _, entry := range entries {
			isSymlink := e.FS.IsSymlink(entry)
			isDir := e.FS.IsDir(entry) && !isSymlink
			if !isSymlink && !isDir {
				continue
			}
			items = append(items, filepath.Base(entry))
			if !isSymlink {
				allSymlinks = false
			}
		}
		if len(items) == 0 {
			return
		}
		if allSymlinks && e.isUnderSeries(dirPath) {
			return
		}
		if len(items) <= e.MaxPerDir {
			return
		}

		plan := subdivision.Calculate(dirPath, items, e.MaxPerDir, func(dir string) []string {
			entries, err := e.FS.ListDir(dir)
			if err != nil {
				return nil
			}
			names := make([]string, 0, len(entries))
			for _, en := range entries {
				names = append(names, filepath.Base(en))
			}
			return names
		})
		plans = append(plans, plan)
	})

	for i := range plans {
		for j := range plans[i].OutOfRangeItems {
			plans[i].OutOfRangeItems[j].Destination = subdivision.RefineOutOfRangeDestination(plans[i].OutOfRangeItems[j].Destination, plans)
		}
	}

	return plans
}

func (e *Engine) isUnderSeries(path string) bool {
	rel, err := filepath.Rel(e.VideoDir, path)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	return len(parts) > 0 && parts[0] == scanner.SeriesSubtree()
}

func (e *Engine) scanEmptyDirs() []string {
	var dirs []string
	e.iterManagedPaths(func(path string) {
		if e.FS.IsDir(path) && !e.FS.IsSymlink(path) {
			dirs = append(dirs, path)
		}
	})

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	var empty []string
	for _, dir := range dirs {
		if dir == e.VideoDir {
			continue
		}
		entries, err := e.FS.ListDir(dir)
		if err == nil && len(entries) == 0 {
			empty = append(empty, dir)
		}
	}
	return empty
}

// Execute applies every fix named in report, in the same order the original
// workflow does: repair/delete broken links, move misplaced ones, drop
// duplicates, subdivide oversized directories, then prune empty ones.
func (e *Engine) Execute(report Report, minRepairScore float64, deleteUnrepairable bool) Result {
	var result Result

	for _, b := range report.Broken {
		if b.BestCandidate == "" || b.CandidateScore < minRepairScore {
			if deleteUnrepairable {
				if err := e.FS.Remove(b.SymlinkPath); err != nil {
					result.addError("remove broken symlink %s: %v", b.SymlinkPath, err)
				} else {
					result.BrokenSymlinksDeleted++
				}
			}
			continue
		}
		r := e.Repair.RepairSymlink(b.SymlinkPath, b.BestCandidate)
		if r.Decision == repair.DecisionRepaired {
			result.RepairedSymlinks++
		} else {
			result.FailedRepairs++
			result.addError("repair failed %s: %v", b.SymlinkPath, r.Error)
		}
	}

	for _, m := range report.Misplaced {
		if err := e.FS.MkdirAll(m.ExpectedDir); err != nil {
			result.addError("mkdir %s: %v", m.ExpectedDir, err)
			continue
		}
		newPath := filepath.Join(m.ExpectedDir, filepath.Base(m.SymlinkPath))
		if err := e.FS.Rename(m.SymlinkPath, newPath); err != nil {
			result.addError("move %s: %v", m.SymlinkPath, err)
			continue
		}
		if err := e.Repo.VideoFiles().UpdateSymlinkPath(m.SymlinkPath, newPath); err != nil {
			result.addError("update symlink path %s: %v", newPath, err)
		}
		result.MovedSymlinks++
	}

	for _, dup := range report.Duplicates {
		for _, link := range dup.Remove {
			if err := e.FS.Remove(link); err != nil {
				result.addError("remove duplicate %s: %v", link, err)
				continue
			}
			result.DuplicateSymlinksRemoved++
		}
	}

	e.subdivideOversizedDirs(report.OversizedPlans, &result)

	sortedEmpty := append([]string(nil), report.EmptyDirs...)
	sort.Slice(sortedEmpty, func(i, j int) bool {
		return strings.Count(sortedEmpty[i], string(filepath.Separator)) > strings.Count(sortedEmpty[j], string(filepath.Separator))
	})
	for _, dir := range sortedEmpty {
		if err := e.FS.RemoveEmptyDir(dir); err != nil {
			result.addError("remove empty dir %s: %v", dir, err)
			continue
		}
		result.EmptyDirsRemoved++
	}

	return result
}

func (e *Engine) subdivideOversizedDirs(plans []model.SubdivisionPlan, result *Result) {
	var allOutOfRange []model.PathPair

	for _, plan := range plans {
		destDirs := map[string]bool{}
		for _, pair := range plan.ItemsToMove {
			destDirs[filepath.Dir(pair.Destination)] = true
		}
		for dir := range destDirs {
			if err := e.FS.MkdirAll(dir); err != nil {
				result.addError("mkdir %s: %v", dir, err)
			}
		}

		for _, pair := range plan.ItemsToMove {
			if err := e.FS.Rename(pair.Source, pair.Destination); err != nil {
				result.addError("move %s: %v", pair.Source, err)
				continue
			}
			if err := e.Repo.VideoFiles().UpdateSymlinkPath(pair.Source, pair.Destination); err != nil {
				result.addError("update symlink path %s: %v", pair.Destination, err)
			}
			result.SymlinksRedistributed++
		}

		allOutOfRange = append(allOutOfRange, plan.OutOfRangeItems...)
		result.SubdivisionsCreated++
	}

	for _, pair := range allOutOfRange {
		actualDest := subdivision.RefineOutOfRangeDestination(pair.Destination, plans)
		if err := e.FS.MkdirAll(filepath.Dir(actualDest)); err != nil {
			result.addError("mkdir %s: %v", filepath.Dir(actualDest), err)
			continue
		}
		if err := e.FS.Rename(pair.Source, actualDest); err != nil {
			result.addError("move out-of-range %s: %v", pair.Source, err)
			continue
		}
		if err := e.Repo.VideoFiles().UpdateSymlinkPath(pair.Source, actualDest); err != nil {
			result.addError("update symlink path %s: %v", actualDest, err)
		}
		result.SymlinksRedistributed++
	}
}
