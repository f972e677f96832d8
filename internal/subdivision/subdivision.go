// Package subdivision implements the Subdivision Algorithm (spec.md §4.12):
// balanced alphabetic range splitting for an overfull directory. Grounded on
// original_source/src/services/cleanup/subdivision_algorithm.py, reproduced
// in Go idiom with the exact same group-balancing and boundary-adjustment
// rules.
package subdivision

import (
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/textnorm"
)

// rangeDirPattern matches a ranged subdivision-label directory name "X-Y"
// (each side 1-3 letters); a bare letter "X" is matched by
// singleLetterPattern.
var rangeDirPattern = regexp.MustCompile(`^([A-Za-z]{1,3})-([A-Za-z]{1,3})$`)
var singleLetterPattern = regexp.MustCompile(`^[A-Za-z]$`)

// ParseParentRange parses dirName into a 2-character [start, end] sort-key
// range: a bare letter "C" becomes CA..CZ, "E-F" becomes EA..FZ, "L-Ma"
// becomes LA..MA, and anything else (a genre name) becomes AA..ZZ
// (spec.md §4.12 step 2).
func ParseParentRange(dirName string) (string, string) {
	clean := textnorm.NormalizeAccents(dirName)

	if m := rangeDirPattern.FindStringSubmatch(clean); m != nil {
		startPart := strings.ToUpper(m[1])
		endPart := strings.ToUpper(m[2])
		start := startPart
		if len(startPart) == 1 {
			start = startPart + "A"
		} else {
			start = startPart[:2]
		}
		end := endPart
		if len(endPart) == 1 {
			end = endPart + "Z"
		} else {
			end = endPart[:2]
		}
		return start, end
	}

	if singleLetterPattern.MatchString(clean) {
		letter := strings.ToUpper(clean)
		return letter + "A", letter + "Z"
	}

	return "AA", "ZZ"
}

// IsRangeDir reports whether dirName is itself a subdivision label (as
// opposed to a genre or content directory name).
func IsRangeDir(dirName string) bool {
	start, end := ParseParentRange(dirName)
	return !(start == "AA" && end == "ZZ")
}

// item is one directory entry keyed for subdivision.
type item struct {
	key  string
	path string
}

// sortKeyFor derives an entry's 2-char sort key by delegating to
// textnorm.SortKey (distinct from the Organizer's SortLetter path).
func sortKeyFor(name string) string {
	return textnorm.SortKey(name)
}

// Calculate computes a SubdivisionPlan for parentDir, whose direct entries
// are the basenames in entries (symlinks or directories only — the caller
// filters). maxPerSubdir is CINEORG_MAX_ITEMS_PER_DIR. siblingLister
// resolves the basenames of parentDir's siblings (for out-of-range
// destination lookup); it may return nil if the parent has no accessible
// parent directory.
func Calculate(parentDir string, entries []string, maxPerSubdir int, siblingLister func(dir string) []string) model.SubdivisionPlan {
	items := make([]item, 0, len(entries))
	for _, name := range entries {
		items = append(items, item{key: sortKeyFor(name), path: name})
	}

	parentStart, parentEnd := ParseParentRange(filepath.Base(parentDir))

	var inRange, outOfRange []item
	for _, it := range items {
		if parentStart <= it.key && it.key <= parentEnd {
			inRange = append(inRange, it)
		} else {
			outOfRange = append(outOfRange, it)
		}
	}

	plan := model.SubdivisionPlan{
		ParentDir:    parentDir,
		CurrentCount: len(items),
		MaxAllowed:   maxPerSubdir,
	}

	for _, it := range outOfRange {
		destDir := findSiblingForKey(parentDir, it.key, siblingLister)
		plan.OutOfRangeItems = append(plan.OutOfRangeItems, model.PathPair{
			Source:      filepath.Join(parentDir, it.path),
			Destination: filepath.Join(destDir, it.path),
		})
	}

	if len(inRange) == 0 {
		return plan
	}

	sort.SliceStable(inRange, func(i, j int) bool { return inRange[i].key < inRange[j].key })

	total := len(inRange)
	numGroups := int(math.Ceil(float64(total) / float64(maxPerSubdir)))
	if numGroups < 2 {
		numGroups = 2
	}

	baseSize := total / numGroups
	remainder := total % numGroups

	idx := 0
	for g := 0; g < numGroups && idx < total; g++ {
		groupSize := baseSize
		if g < remainder {
			groupSize++
		}
		if groupSize == 0 {
			continue
		}
		groupEnd := idx + groupSize

		if g < numGroups-1 && groupEnd < total {
			currentKey := inRange[groupEnd-1].key
			for groupEnd < total && inRange[groupEnd].key == currentKey {
				groupEnd++
			}
			if groupEnd >= total {
				groupEnd = idx + groupSize
				currentKey = inRange[groupEnd-1].key
				for groupEnd > idx+1 && inRange[groupEnd-1].key == currentKey {
					groupEnd--
				}
			}
		}

		group := inRange[idx:groupEnd]
		if len(group) == 0 {
			continue
		}

		var startKey, endKey string
		if g == 0 {
			startKey = parentStart
		} else {
			startKey = group[0].key
		}
		if g == numGroups-1 || groupEnd >= total {
			endKey = parentEnd
		} else {
			endKey = group[len(group)-1].key
		}

		rng := model.KeyRange{Start: startKey, End: endKey}
		label := rng.Label()
		destDir := filepath.Join(parentDir, label)

		for _, it := range group {
			plan.ItemsToMove = append(plan.ItemsToMove, model.PathPair{
				Source:      filepath.Join(parentDir, it.path),
				Destination: filepath.Join(destDir, it.path),
			})
		}
		plan.Ranges = append(plan.Ranges, rng)

		idx = groupEnd
	}

	return plan
}

// findSiblingForKey mirrors _find_sibling_for_key: the first alphabetically
// sorted sibling of parentDir whose range contains key, or the grandparent
// directory when none matches.
func findSiblingForKey(parentDir, key string, siblingLister func(dir string) []string) string {
	grandparent := filepath.Dir(parentDir)
	if siblingLister == nil {
		return grandparent
	}
	siblings := siblingLister(grandparent)
	sorted := append([]string(nil), siblings...)
	sort.Strings(sorted)
	parentBase := filepath.Base(parentDir)
	for _, sib := range sorted {
		if sib == parentBase {
			continue
		}
		if sib == "" || !isAlphaFirst(sib) {
			continue
		}
		start, end := ParseParentRange(sib)
		if start <= key && key <= end {
			return filepath.Join(grandparent, sib)
		}
	}
	return grandparent
}

func isAlphaFirst(s string) bool {
	r := []rune(s)
	if len(r) == 0 {
		return false
	}
	return (r[0] >= 'a' && r[0] <= 'z') || (r[0] >= 'A' && r[0] <= 'Z')
}

// RefineOutOfRangeDestination re-resolves plannedDest against the final set
// of plans: if the target sibling directory was itself subdivided, redirect
// into the matching sub-range (spec.md §4.12 step 6).
func RefineOutOfRangeDestination(plannedDest string, plans []model.SubdivisionPlan) string {
	targetDir := filepath.Dir(plannedDest)
	itemName := filepath.Base(plannedDest)
	key := sortKeyFor(itemName)

	for _, plan := range plans {
		if plan.ParentDir != targetDir {
			continue
		}
		for _, rng := range plan.Ranges {
			if rng.Start <= key && key <= rng.End {
				return filepath.Join(targetDir, rng.Label(), itemName)
			}
		}
	}
	return plannedDest
}
