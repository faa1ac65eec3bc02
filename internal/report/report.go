// Package report writes the per-run output artifacts: a JSON summary of
// every ranked/rendered clip and a flat CSV log for spreadsheet review.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clipforge/engine/internal/model"
)

const textPreviewLen = 200

// ClipResult is one row of the run's output: the ranked window, its
// score breakdown, and the render outcome (if rendering was attempted).
type ClipResult struct {
	Rank    int                  `json:"rank"`
	Window  model.RankedWindow   `json:"window"`
	Clip    *model.RenderedClip  `json:"clip,omitempty"`
	Failure string               `json:"failure,omitempty"`
}

// Report is the full output of one batch run.
type Report struct {
	RunID       string       `json:"run_id"`
	VideoID     string       `json:"video_id"`
	SourcePath  string       `json:"source_path"`
	GeneratedAt time.Time    `json:"generated_at"`
	Results     []ClipResult `json:"results"`
}

// WriteJSON marshals r to path as indented JSON.
func WriteJSON(r Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report json: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"video_id", "rank", "window_id", "start_time", "end_time", "duration",
	"words", "keyphrases", "keyphrase_score", "density_score",
	"cogency_score", "cogency_raw", "quotes", "quote_count", "salient_terms",
	"scene_cuts", "scene_penalty", "filler_penalty", "final_score",
	"file_path", "text_preview",
}

// WriteCSV writes a flat CSV log of r's results to path, one row per
// ranked window with every term of the scoring formula broken out.
func WriteCSV(r Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, res := range r.Results {
		var filePath string
		if res.Clip != nil {
			filePath = res.Clip.OutputPath
		}
		win := res.Window.Window
		phrases := make([]string, len(res.Window.KeyPhrases))
		for i, p := range res.Window.KeyPhrases {
			phrases[i] = p.Phrase
		}
		sceneCuts := make([]string, len(win.SceneCuts))
		for i, c := range win.SceneCuts {
			sceneCuts[i] = strconv.FormatFloat(c.TimeS, 'f', 3, 64)
		}

		row := []string{
			r.VideoID,
			strconv.Itoa(res.Rank),
			win.ID,
			strconv.FormatFloat(win.Range.Start, 'f', 3, 64),
			strconv.FormatFloat(win.Range.End, 'f', 3, 64),
			strconv.FormatFloat(win.Range.Duration(), 'f', 3, 64),
			strconv.Itoa(len(strings.Fields(win.Text))),
			strings.Join(phrases, "|"),
			strconv.FormatFloat(res.Window.Score.KeyphraseScore, 'f', 4, 64),
			strconv.FormatFloat(res.Window.Score.DensityScore, 'f', 4, 64),
			strconv.FormatFloat(res.Window.Score.CogencyScore, 'f', 4, 64),
			strconv.Itoa(res.Window.Cogency.Cogency),
			strings.Join(res.Window.Cogency.Quotes, "|"),
			strconv.Itoa(len(res.Window.Cogency.Quotes)),
			strings.Join(res.Window.Cogency.SalientTerms, "|"),
			strings.Join(sceneCuts, "|"),
			strconv.FormatFloat(res.Window.Score.ScenePenalty, 'f', 4, 64),
			strconv.FormatFloat(res.Window.Score.FillerPenalty, 'f', 4, 64),
			strconv.FormatFloat(res.Window.Score.Final, 'f', 4, 64),
			filePath,
			truncate(win.Text, textPreviewLen),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row for window %s: %w", win.ID, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
