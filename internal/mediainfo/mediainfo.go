// Package mediainfo implements the Media Info Extractor (spec.md §4.2): an
// external-probe adapter shelling out with ffprobe's arguments, grounded on
// CineVault's internal/scanner/ffprobe.go exec.Command + JSON-decode shape,
// with the codec/channel/resolution normalization tables reproduced from
// the original Python extractor.
package mediainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kbouchard/cineorg/internal/model"
)

// Extractor probes a video file by running ProbePath with ffprobe's
// command-line flags and normalizes ffprobe's JSON output into a
// model.MediaInfo. mediainfo's own command line and output are not handled.
type Extractor struct {
	ProbePath string
}

// New builds an Extractor invoking the executable at probePath.
func New(probePath string) *Extractor {
	return &Extractor{ProbePath: probePath}
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Channels   int               `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

type probeFormat struct {
	DurationMS string `json:"duration"`
}

// Extract returns nil, nil on any probe failure (missing file, unreadable,
// non-video container) per spec.md §4.2 — a probe failure is not an error
// the caller must surface, just an absent MediaInfo.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, e.ProbePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path)

	out, err := cmd.Output()
	if err != nil {
		return nil, nil
	}

	var data probeOutput
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, nil
	}

	info := &model.MediaInfo{}
	seenLangs := map[string]bool{}

	for _, s := range data.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec == nil {
				vc := normalizeVideoCodec(s.CodecName)
				info.VideoCodec = &vc
				if s.Width > 0 {
					w := s.Width
					info.Width = &w
				}
				if s.Height > 0 {
					h := s.Height
					info.Height = &h
				}
				info.Resolution = resolutionLabel(s.Width, s.Height)
			}
		case "audio":
			ch := channelLayout(s.Channels)
			info.AudioCodecs = append(info.AudioCodecs, model.AudioCodec{
				Name:     normalizeAudioCodec(s.CodecName),
				Channels: &ch,
			})
			if lang, ok := s.Tags["language"]; ok && lang != "" && lang != "und" {
				key := strings.ToLower(lang)
				if len(key) >= 2 {
					key = key[:2]
				}
				if !seenLangs[key] {
					seenLangs[key] = true
					info.AudioLanguages = append(info.AudioLanguages, key)
				}
			}
		}
	}

	if data.Format.DurationMS != "" {
		if f, err := strconv.ParseFloat(data.Format.DurationMS, 64); err == nil {
			secs := int(f)
			info.DurationSeconds = &secs
		}
	}

	return info, nil
}

// videoCodecTable lowercase-substring-matches a raw codec name to a
// canonical token, per spec.md §4.2.
var videoCodecTable = []struct {
	substrs []string
	value   string
}{
	{[]string{"hevc", "h.265", "h265", "x265"}, "x265"},
	{[]string{"avc", "h.264", "h264", "x264"}, "x264"},
	{[]string{"av1"}, "AV1"},
	{[]string{"vp9"}, "VP9"},
	{[]string{"xvid"}, "XviD"},
	{[]string{"mpeg4", "divx"}, "DivX"},
}

var audioCodecTable = []struct {
	substrs []string
	value   string
}{
	{[]string{"ac-3", "ac3"}, "AC3"},
	{[]string{"eac3", "e-ac-3"}, "EAC3"},
	{[]string{"dts-hd", "dtshd"}, "DTS-HD"},
	{[]string{"dts"}, "DTS"},
	{[]string{"truehd"}, "TrueHD"},
	{[]string{"aac"}, "AAC"},
	{[]string{"flac"}, "FLAC"},
	{[]string{"opus"}, "Opus"},
	{[]string{"mp3"}, "MP3"},
}

func normalizeVideoCodec(raw string) string {
	lower := strings.ToLower(raw)
	for _, row := range videoCodecTable {
		for _, s := range row.substrs {
			if strings.Contains(lower, s) {
				return row.value
			}
		}
	}
	return raw
}

func normalizeAudioCodec(raw string) string {
	lower := strings.ToLower(raw)
	for _, row := range audioCodecTable {
		for _, s := range row.substrs {
			if strings.Contains(lower, s) {
				return row.value
			}
		}
	}
	return raw
}

// channelLayout maps an audio channel count to its display layout per
// spec.md §4.2's fixed table, falling back to "N.0".
func channelLayout(channels int) string {
	switch channels {
	case 1:
		return "1.0"
	case 2:
		return "2.0"
	case 3:
		return "2.1"
	case 6:
		return "5.1"
	case 7:
		return "6.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%d.0", channels)
	}
}

// resolutionLabel applies spec.md §4.2's width/height threshold table.
func resolutionLabel(width, height int) model.ResolutionLabel {
	switch {
	case width >= 3800:
		return model.Resolution4K
	case width >= 1900 || height >= 1000:
		return model.Resolution1080p
	case width >= 1260 || height >= 720:
		return model.Resolution720p
	default:
		return model.ResolutionSD
	}
}
