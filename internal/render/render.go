// Package render orchestrates ffmpeg subprocesses to turn a ranked window
// into a finished 9:16 clip: extract the window's time range, crop and
// scale to portrait, then burn in an SRT caption track.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clipforge/engine/internal/clipperr"
	"github.com/clipforge/engine/internal/config"
	"github.com/clipforge/engine/internal/model"
)

const (
	outputWidth  = 1080
	outputHeight = 1920
)

// qualityPreset maps a quality tier to an encoder and its rate-control
// setting, matching the original system's high/medium/fast presets.
type qualityPreset struct {
	videoCodec string
	rateFlag   string
	rateValue  string
	preset     string
}

var softwarePresets = map[config.RenderQuality]qualityPreset{
	config.QualityHigh:   {videoCodec: "libx264", rateFlag: "-crf", rateValue: "18", preset: "slow"},
	config.QualityMedium: {videoCodec: "libx264", rateFlag: "-crf", rateValue: "23", preset: "medium"},
	config.QualityFast:   {videoCodec: "libx264", rateFlag: "-crf", rateValue: "28", preset: "fast"},
}

var nvencPresets = map[config.RenderQuality]qualityPreset{
	config.QualityHigh:   {videoCodec: "h264_nvenc", rateFlag: "-cq", rateValue: "18", preset: "p7"},
	config.QualityMedium: {videoCodec: "h264_nvenc", rateFlag: "-cq", rateValue: "23", preset: "p4"},
	config.QualityFast:   {videoCodec: "h264_nvenc", rateFlag: "-cq", rateValue: "28", preset: "p1"},
}

// Renderer extracts, reframes, and captions clips via ffmpeg.
type Renderer struct {
	binary  string
	tempDir string

	nvencOnce sync.Once
	nvencOK   bool
}

// New returns a Renderer using the given scratch directory for
// intermediate files.
func New(tempDir string) *Renderer {
	return &Renderer{binary: "ffmpeg", tempDir: tempDir}
}

// hasNVENC probes `ffmpeg -hide_banner -encoders` once per Renderer for
// h264_nvenc support, caching the result.
func (r *Renderer) hasNVENC(ctx context.Context) bool {
	r.nvencOnce.Do(func() {
		cmd := exec.CommandContext(ctx, r.binary, "-hide_banner", "-encoders")
		out, err := cmd.Output()
		if err != nil {
			r.nvencOK = false
			return
		}
		r.nvencOK = strings.Contains(string(out), "h264_nvenc")
	})
	return r.nvencOK
}

func (r *Renderer) preset(ctx context.Context, quality config.RenderQuality) qualityPreset {
	if r.hasNVENC(ctx) {
		if p, ok := nvencPresets[quality]; ok {
			return p
		}
	}
	if p, ok := softwarePresets[quality]; ok {
		return p
	}
	return softwarePresets[config.QualityMedium]
}

// Render extracts windowRange from sourcePath, reframes it to 9:16, burns
// in the given SRT content, and writes the result to outputVideoPath.
// Returns the path of the .srt sidecar file it wrote alongside the video,
// or "" when srtContent is empty (no sidecar is written and the clip is
// left uncaptioned).
func (r *Renderer) Render(ctx context.Context, windowID, sourcePath string, windowRange model.TimeRange, srtContent string, quality config.RenderQuality, outputVideoPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputVideoPath), 0o755); err != nil {
		return "", &clipperr.RenderFailed{WindowID: windowID, Cause: err}
	}

	preset := r.preset(ctx, quality)

	extracted := filepath.Join(r.tempDir, fmt.Sprintf("extract-%s.mp4", windowID))
	defer os.Remove(extracted)

	if err := r.extractAndReframe(ctx, sourcePath, windowRange, preset, extracted); err != nil {
		return "", &clipperr.RenderFailed{WindowID: windowID, Cause: err}
	}

	srtPath := strings.TrimSuffix(outputVideoPath, filepath.Ext(outputVideoPath)) + ".srt"
	if srtContent != "" {
		if err := os.WriteFile(srtPath, []byte(srtContent), 0o644); err != nil {
			return "", &clipperr.RenderFailed{WindowID: windowID, Cause: fmt.Errorf("writing srt: %w", err)}
		}
	}

	if srtContent == "" {
		if err := copyFile(extracted, outputVideoPath); err != nil {
			return "", &clipperr.RenderFailed{WindowID: windowID, Cause: err}
		}
		return "", nil
	}

	if err := r.burnCaptions(ctx, extracted, srtPath, preset, outputVideoPath); err != nil {
		return "", &clipperr.RenderFailed{WindowID: windowID, Cause: err}
	}

	return srtPath, nil
}

// extractAndReframe seeks to windowRange, cuts its duration, applies a
// centered crop to a 9:16 aspect ratio followed by a scale to the final
// output resolution, and re-encodes audio to AAC 128kbps so every
// downstream step works from a consistent audio codec and bitrate.
func (r *Renderer) extractAndReframe(ctx context.Context, sourcePath string, windowRange model.TimeRange, preset qualityPreset, outPath string) error {
	cropFilter := shortsCropFilter()
	args := []string{
		"-ss", fmt.Sprintf("%.3f", windowRange.Start),
		"-i", sourcePath,
		"-t", fmt.Sprintf("%.3f", windowRange.Duration()),
		"-vf", cropFilter,
		"-c:v", preset.videoCodec,
		preset.rateFlag, preset.rateValue,
		"-preset", preset.preset,
		"-c:a", "aac",
		"-b:a", "128k",
		"-y",
		outPath,
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract failed: %w: %s", err, truncate(string(out), 2000))
	}
	return nil
}

// shortsCropFilter builds the crop+scale filter that turns a source of
// any aspect ratio into a centered 9:16 portrait frame: crop to 9:16
// around the center, then scale to the final resolution.
func shortsCropFilter() string {
	return fmt.Sprintf(
		"crop='if(gt(iw/ih,%d/%d),ih*%d/%d,iw)':'if(gt(iw/ih,%d/%d),ih,iw*%d/%d)',scale=%d:%d",
		outputWidth, outputHeight, outputWidth, outputHeight,
		outputWidth, outputHeight, outputHeight, outputWidth,
		outputWidth, outputHeight,
	)
}

// burnCaptions re-encodes the video with the SRT file burned in via the
// subtitles filter, copying audio unchanged.
func (r *Renderer) burnCaptions(ctx context.Context, inputPath, srtPath string, preset qualityPreset, outPath string) error {
	style := "FontName=Noto Sans,Bold=1,FontSize=48,PrimaryColour=&H00FFFFFF,OutlineColour=&H80000000,BackColour=&H80000000,BorderStyle=3,Outline=2,Alignment=2,MarginV=80"
	filter := fmt.Sprintf("subtitles='%s':force_style='%s'", escapeFilterPath(srtPath), style)

	args := []string{
		"-i", inputPath,
		"-vf", filter,
		"-c:v", preset.videoCodec,
		preset.rateFlag, preset.rateValue,
		"-preset", preset.preset,
		"-c:a", "copy",
		"-y",
		outPath,
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg caption burn-in failed: %w: %s", err, truncate(string(out), 2000))
	}
	return nil
}

// escapeFilterPath escapes characters ffmpeg's filter-graph parser treats
// specially in quoted path arguments.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
