// Package window generates fixed-duration candidate clip windows across a
// video's timeline, snapping window boundaries to nearby scene cuts and
// attaching the transcript sentences that fall inside each window.
package window

import (
	"sort"

	"github.com/clipforge/engine/internal/model"
)

// Generator produces candidate windows with sliding-window parameters.
type Generator struct {
	WindowDuration float64
	Stride         float64
	SnapThreshold  float64
	MinWindowRatio float64
}

// New returns a Generator with the given sliding-window parameters.
func New(windowDuration, stride, snapThreshold, minWindowRatio float64) *Generator {
	return &Generator{
		WindowDuration: windowDuration,
		Stride:         stride,
		SnapThreshold:  snapThreshold,
		MinWindowRatio: minWindowRatio,
	}
}

// Generate slides a window of Generator.WindowDuration seconds across the
// video at Generator.Stride intervals, stopping once the remaining
// footage is shorter than one window (`t < D - window_dur`), snaps each
// window's start and end to the nearest scene cut within SnapThreshold
// seconds, and attaches the sentences whose duration overlaps the window
// by more than half. A video no longer than one window yields exactly
// one unsnapped window spanning the whole thing.
func (g *Generator) Generate(totalDuration float64, cuts []model.SceneCut, sentences []model.Sentence) []model.Window {
	if totalDuration <= 0 || g.WindowDuration <= 0 || g.Stride <= 0 {
		return nil
	}

	sortedCuts := make([]model.SceneCut, len(cuts))
	copy(sortedCuts, cuts)
	sort.Slice(sortedCuts, func(i, j int) bool { return sortedCuts[i].TimeS < sortedCuts[j].TimeS })

	if totalDuration <= g.WindowDuration {
		r := model.TimeRange{Start: 0, End: totalDuration}
		return []model.Window{g.buildWindow(r, sortedCuts, sentences)}
	}

	var windows []model.Window
	for start := 0.0; start < totalDuration-g.WindowDuration; start += g.Stride {
		end := start + g.WindowDuration

		snappedStart, _ := g.snapTo(sortedCuts, start)
		snappedEnd, _ := g.snapTo(sortedCuts, end)
		if snappedEnd > totalDuration {
			snappedEnd = totalDuration
		}

		rangeOut := model.TimeRange{Start: snappedStart, End: snappedEnd}
		minDuration := g.WindowDuration * g.MinWindowRatio
		if rangeOut.Duration() < minDuration {
			// Snapping shrank the window below the minimum acceptable
			// duration; revert both edges to the unsnapped window so the
			// clip still runs close to the intended length.
			rangeOut = model.TimeRange{Start: start, End: end}
			if rangeOut.End > totalDuration {
				rangeOut.End = totalDuration
			}
		}

		windows = append(windows, g.buildWindow(rangeOut, sortedCuts, sentences))
	}
	return windows
}

// buildWindow assembles a Window from a finalized range, the scene cuts
// that fall inside it, and the transcript sentences overlapping it.
func (g *Generator) buildWindow(r model.TimeRange, sortedCuts []model.SceneCut, sentences []model.Sentence) model.Window {
	w := model.Window{
		ID:        model.NewWindowID(),
		Range:     r,
		SceneCuts: cutsWithin(sortedCuts, r),
		Sentences: sentencesIn(sentences, r),
	}
	w.Text = joinSentenceText(w.Sentences)
	return w
}

// snapTo returns the nearest scene cut to t within SnapThreshold seconds,
// or t unchanged if no cut qualifies.
func (g *Generator) snapTo(cuts []model.SceneCut, t float64) (float64, bool) {
	best := t
	bestDist := g.SnapThreshold
	found := false
	for _, c := range cuts {
		d := c.TimeS - t
		if d < 0 {
			d = -d
		}
		if d <= bestDist {
			bestDist = d
			best = c.TimeS
			found = true
		}
	}
	return best, found
}

// cutsWithin returns every scene cut whose timestamp falls inside the
// half-open range r, matching the original system's scene_cuts window field.
func cutsWithin(sortedCuts []model.SceneCut, r model.TimeRange) []model.SceneCut {
	var out []model.SceneCut
	for _, c := range sortedCuts {
		if c.TimeS >= r.Start && c.TimeS < r.End {
			out = append(out, c)
		}
	}
	return out
}

// sentencesIn returns the sentences whose duration overlaps r by more
// than half of the sentence's own duration.
func sentencesIn(sentences []model.Sentence, r model.TimeRange) []model.Sentence {
	var out []model.Sentence
	for _, s := range sentences {
		dur := s.Range.Duration()
		if dur <= 0 {
			continue
		}
		if r.Overlap(s.Range)/dur > 0.5 {
			out = append(out, s)
		}
	}
	return out
}

func joinSentenceText(sentences []model.Sentence) string {
	out := ""
	for i, s := range sentences {
		if i > 0 {
			out += " "
		}
		out += s.Text
	}
	return out
}
