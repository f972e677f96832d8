// Package parser extracts a ParsedFilename (title, year, season/episode,
// technical tokens) from a download filename, grounded on CineVault's
// regex-table filename parser technique (internal/scanner/filename_parser.go)
// and widened to the field set spec.md §4.1 names.
package parser

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kbouchard/cineorg/internal/model"
)

// ──────────────────── Regex table ────────────────────

var (
	// Multi-episode: S01E01E02 or S01E01-E02.
	seriesPattern = regexp.MustCompile(
		`(?i)^(.+?)[.\s_-]+S(\d{1,2})E(\d{1,3})(?:[-]?E(\d{1,3}))?(?:[.\s_-]+(.*))?$`)

	// Alternate "1x05" form.
	seriesAltPattern = regexp.MustCompile(
		`(?i)^(.+?)[.\s_-]+(\d{1,2})x(\d{1,3})(?:[.\s_-]+(.*))?$`)

	yearPattern = regexp.MustCompile(`(?:^|[.\s_(\[-])((?:19|20)\d{2})(?:$|[.\s_)\]-])`)

	resolutionPattern = regexp.MustCompile(`(?i)\b(2160p|4k|1080p|720p|480p|576p)\b`)

	videoCodecPattern = regexp.MustCompile(`(?i)\b(hevc|h\.?265|x265|avc|h\.?264|x264|av1|xvid|divx|vp9)\b`)

	audioCodecPattern = regexp.MustCompile(`(?i)\b(dts-?hd|truehd|dts|eac3|ddp|dd\+|ac-?3|ac3|aac|flac|opus|mp3)\b`)

	sourcePattern = regexp.MustCompile(`(?i)\b(bluray|blu-ray|bdrip|web-?dl|webrip|web|hdtv|dvdrip|hdrip|remux|hdcam|cam)\b`)

	releaseGroupPattern = regexp.MustCompile(`(?i)-([A-Za-z0-9]+)$`)

	languagePattern = regexp.MustCompile(`(?i)\b(multi|vostfr|vost|vff|vfq|vf2|vf|truefrench|french|english|castellano|spanish|german|italian|japanese|en|fr|es|de|it|ja)\b`)
)

var videoCodecTable = []struct {
	match string
	value string
}{
	{"hevc", "x265"}, {"h.265", "x265"}, {"h265", "x265"}, {"x265", "x265"},
	{"avc", "x264"}, {"h.264", "x264"}, {"h264", "x264"}, {"x264", "x264"},
	{"av1", "AV1"},
	{"xvid", "XviD"}, {"divx", "DivX"}, {"vp9", "VP9"},
}

var audioCodecTable = []struct {
	match string
	value string
}{
	{"dtshd", "DTS-HD"}, {"dts-hd", "DTS-HD"},
	{"truehd", "TrueHD"},
	{"dts", "DTS"},
	{"eac3", "EAC3"}, {"ddp", "EAC3"}, {"dd+", "EAC3"},
	{"ac-3", "AC3"}, {"ac3", "AC3"},
	{"aac", "AAC"}, {"flac", "FLAC"}, {"opus", "Opus"}, {"mp3", "MP3"},
}

var languageTable = map[string]string{
	"multi":       "MULTI",
	"vostfr":      "FR",
	"vost":        "FR",
	"vff":         "FR",
	"vfq":         "FR",
	"vf2":         "FR",
	"vf":          "FR",
	"truefrench":  "FR",
	"french":      "FR",
	"fr":          "FR",
	"english":     "EN",
	"en":          "EN",
	"castellano":  "ES",
	"spanish":     "ES",
	"es":          "ES",
	"german":      "DE",
	"de":          "DE",
	"italian":     "IT",
	"it":          "IT",
	"japanese":    "JA",
	"ja":          "JA",
}

// Parse extracts a ParsedFilename from filename. hint is the media type
// detected from the source subtree (movies or series root); per spec.md
// §4.1, when hint != unknown it OVERRIDES whatever the parser would
// otherwise have guessed.
func Parse(filename string, hint model.MediaType) model.ParsedFilename {
	natural := detectNatural(filename)
	if hint != model.MediaTypeUnknown {
		natural.Type = hint
		if hint == model.MediaTypeMovie {
			natural.Season = nil
			natural.Episode = nil
			natural.EpisodeEnd = nil
			natural.EpisodeTitle = nil
		}
	}
	return natural
}

// DetectNaturalType returns the media type the parser would guess from the
// filename alone, ignoring any hint — used by the Scanner to compute
// corrected_location (spec.md §4.3).
func DetectNaturalType(filename string) model.MediaType {
	return detectNatural(filename).Type
}

func detectNatural(filename string) model.ParsedFilename {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	base = strings.TrimSpace(base)

	result := model.ParsedFilename{Type: model.MediaTypeUnknown}

	if m := seriesPattern.FindStringSubmatch(base); len(m) > 0 {
		fillSeries(&result, m[1], m[2], m[3], m[4], m[5])
	} else if m := seriesAltPattern.FindStringSubmatch(base); len(m) > 0 {
		fillSeries(&result, m[1], m[2], m[3], "", m[4])
	} else {
		fillMovie(&result, base)
	}

	fillTechnicalTokens(&result, base)

	if result.Title == "" {
		result.Title = cleanTitle(base)
	}
	if result.Title == "" {
		result.Title = strings.TrimSuffix(filename, ext)
	}
	return result
}

func fillSeries(result *model.ParsedFilename, title, season, episode, episodeEnd, rest string) {
	result.Type = model.MediaTypeSeries
	result.Title = cleanTitle(title)

	if s, err := strconv.Atoi(season); err == nil {
		result.Season = &s
	}
	if e, err := strconv.Atoi(episode); err == nil {
		result.Episode = &e
	}
	if episodeEnd != "" {
		if e, err := strconv.Atoi(episodeEnd); err == nil {
			result.EpisodeEnd = &e
		}
	}

	rest = strings.TrimSpace(rest)
	if rest != "" {
		if title := extractEpisodeTitle(rest); title != "" {
			result.EpisodeTitle = &title
		}
	}
}

func fillMovie(result *model.ParsedFilename, base string) {
	result.Type = model.MediaTypeMovie

	if m := yearPattern.FindStringSubmatchIndex(base); m != nil {
		yearStr := base[m[2]:m[3]]
		if y, err := strconv.Atoi(yearStr); err == nil {
			result.Year = &y
		}
		result.Title = cleanTitle(base[:m[2]])
		return
	}
	result.Title = cleanTitle(base)
}

// extractEpisodeTitle strips trailing technical tokens from the remainder
// after S{NN}E{NN}, leaving just the episode title portion if any.
func extractEpisodeTitle(rest string) string {
	rest = resolutionPattern.ReplaceAllString(rest, "")
	rest = videoCodecPattern.ReplaceAllString(rest, "")
	rest = audioCodecPattern.ReplaceAllString(rest, "")
	rest = sourcePattern.ReplaceAllString(rest, "")
	rest = languagePattern.ReplaceAllString(rest, "")
	rest = releaseGroupPattern.ReplaceAllString(rest, "")
	rest = strings.Trim(strings.TrimSpace(rest), ".-_ ")
	rest = strings.ReplaceAll(rest, ".", " ")
	rest = strings.ReplaceAll(rest, "_", " ")
	return strings.TrimSpace(collapseSpaces(rest))
}

func fillTechnicalTokens(result *model.ParsedFilename, base string) {
	if m := resolutionPattern.FindStringSubmatch(base); len(m) > 1 {
		v := normalizeResolution(m[1])
		result.Resolution = &v
	}
	if v, ok := matchTable(base, videoCodecPattern, videoCodecTable); ok {
		result.VideoCodec = &v
	}
	if v, ok := matchTable(base, audioCodecPattern, audioCodecTable); ok {
		result.AudioCodec = &v
	}
	if m := sourcePattern.FindStringSubmatch(base); len(m) > 1 {
		v := strings.ToUpper(m[1])
		result.Source = &v
	}
	if m := languagePattern.FindStringSubmatch(base); len(m) > 1 {
		key := strings.ToLower(m[1])
		if v, ok := languageTable[key]; ok {
			result.Language = &v
		}
	}
	if m := releaseGroupPattern.FindStringSubmatch(base); len(m) > 1 {
		v := m[1]
		if !isTechnicalToken(v) {
			result.ReleaseGroup = &v
		}
	}
}

func matchTable(base string, re *regexp.Regexp, table []struct {
	match string
	value string
}) (string, bool) {
	m := re.FindStringSubmatch(base)
	if len(m) < 2 {
		return "", false
	}
	needle := strings.ToLower(strings.ReplaceAll(m[1], " ", ""))
	for _, row := range table {
		if row.match == needle {
			return row.value, true
		}
	}
	return "", false
}

func normalizeResolution(raw string) string {
	lower := strings.ToLower(raw)
	if lower == "4k" {
		return "2160p"
	}
	return lower
}

func isTechnicalToken(s string) bool {
	lower := strings.ToLower(s)
	switch lower {
	case "mkv", "mp4", "avi":
		return true
	}
	return resolutionPattern.MatchString(s) || videoCodecPattern.MatchString(s) ||
		audioCodecPattern.MatchString(s) || sourcePattern.MatchString(s)
}

// cleanTitle replaces dots/underscores with spaces and collapses whitespace.
func cleanTitle(s string) string {
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Trim(s, " -")
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
