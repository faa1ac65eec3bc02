// Package mediaprobe shells out to ffprobe to read container and stream
// metadata from a source video before the rest of the pipeline runs.
package mediaprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/clipforge/engine/internal/clipperr"
	"github.com/clipforge/engine/internal/model"
)

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

// Prober runs ffprobe against local files.
type Prober struct {
	binary string
}

// New returns a Prober that invokes the "ffprobe" binary on PATH.
func New() *Prober {
	return &Prober{binary: "ffprobe"}
}

// Probe reads container/stream metadata for path. It returns a
// *clipperr.MediaInvalid if the file does not exist or ffprobe rejects it.
func (p *Prober) Probe(ctx context.Context, path string) (model.MediaInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return model.MediaInfo{}, &clipperr.MediaInvalid{Path: path, Cause: err}
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	cmd := exec.CommandContext(ctx, p.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		return model.MediaInfo{}, &clipperr.MediaInvalid{Path: path, Cause: fmt.Errorf("ffprobe: %w", err)}
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return model.MediaInfo{}, &clipperr.MediaInvalid{Path: path, Cause: fmt.Errorf("parsing ffprobe output: %w", err)}
	}

	info := model.MediaInfo{Path: path}

	durationSec, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil {
		return model.MediaInfo{}, &clipperr.MediaInvalid{Path: path, Cause: fmt.Errorf("unparseable duration %q: %w", parsed.Format.Duration, err)}
	}
	info.DurationS = durationSec

	if size, err := strconv.ParseInt(strings.TrimSpace(parsed.Format.Size), 10, 64); err == nil {
		info.SizeBytes = size
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
				info.Width = s.Width
				info.Height = s.Height
				info.FPS = parseFrameRate(s.RFrameRate)
			}
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
				info.HasAudio = true
			}
		}
	}

	if info.VideoCodec == "" {
		return model.MediaInfo{}, &clipperr.MediaInvalid{Path: path, Cause: fmt.Errorf("no video stream found")}
	}

	return info, nil
}

// parseFrameRate converts ffprobe's "num/den" rational frame rate string
// into a float, returning 0 if it cannot be parsed.
func parseFrameRate(s string) float64 {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
