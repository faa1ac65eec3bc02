// Package scenes detects scene cuts in a source video by shelling out to
// ffmpeg's own "scene" select filter rather than a dedicated computer-vision
// library — see DESIGN.md for why no such library exists in this module's
// dependency set.
package scenes

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/clipforge/engine/internal/clipperr"
	"github.com/clipforge/engine/internal/model"
)

// pktPtsTimeRe matches the "pts_time:123.456000" field of the frame lines
// that the metadata=print filter writes to stderr for each frame the scene
// filter selects.
var pktPtsTimeRe = regexp.MustCompile(`pts_time:([0-9]+\.?[0-9]*)`)
var sceneScoreRe = regexp.MustCompile(`lavfi\.scene_score=([0-9]+\.?[0-9]*)`)

// Detector runs ffmpeg's scene-change filter to find cut points.
type Detector struct {
	binary    string
	Threshold float64 // 0..1, ffmpeg's scene-score cut sensitivity
}

// New returns a Detector using the given scene-score threshold (a typical
// default is 0.3 — higher values only report harder cuts).
func New(threshold float64) *Detector {
	return &Detector{binary: "ffmpeg", Threshold: threshold}
}

// Detect scans path for scene cuts and returns them in ascending time order.
// A failure here is non-fatal to the caller (see clipperr.SceneDetectionFailed):
// the batch can proceed treating the video as having no scene cuts.
func (d *Detector) Detect(ctx context.Context, path string) ([]model.SceneCut, error) {
	filter := fmt.Sprintf("select='gt(scene,%s)',metadata=print", strconv.FormatFloat(d.Threshold, 'f', -1, 64))
	args := []string{
		"-hide_banner",
		"-i", path,
		"-vf", filter,
		"-an",
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, d.binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &clipperr.SceneDetectionFailed{Cause: err}
	}

	var cuts []model.SceneCut
	scanErr := make(chan error, 1)
	go func() {
		scanErr <- scanCuts(stderr, &cuts)
	}()

	if err := cmd.Start(); err != nil {
		return nil, &clipperr.SceneDetectionFailed{Cause: err}
	}
	if err := <-scanErr; err != nil {
		_ = cmd.Wait()
		return nil, &clipperr.SceneDetectionFailed{Cause: err}
	}
	if err := cmd.Wait(); err != nil {
		// ffmpeg commonly exits non-zero on "-f null" pipelines even when the
		// filter ran fine; only report a (non-fatal) detection failure if no
		// cuts were found.
		if len(cuts) == 0 {
			return nil, &clipperr.SceneDetectionFailed{Cause: err}
		}
	}

	return cuts, nil
}

// scanCuts reads ffmpeg's stderr metadata=print output looking for paired
// pts_time/scene_score lines and appends a SceneCut for each detected frame.
func scanCuts(r io.Reader, out *[]model.SceneCut) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pendingTime float64
	var havePendingTime bool

	for scanner.Scan() {
		line := scanner.Text()
		if m := pktPtsTimeRe.FindStringSubmatch(line); m != nil {
			if t, err := strconv.ParseFloat(m[1], 64); err == nil {
				pendingTime = t
				havePendingTime = true
			}
			continue
		}
		if m := sceneScoreRe.FindStringSubmatch(line); m != nil && havePendingTime {
			score, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			*out = append(*out, model.SceneCut{TimeS: pendingTime, Score: score})
			havePendingTime = false
		}
	}
	return scanner.Err()
}
