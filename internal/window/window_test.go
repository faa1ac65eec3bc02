package window

import (
	"testing"

	"github.com/clipforge/engine/internal/model"
)

func TestGenerateBasicSliding(t *testing.T) {
	g := New(90, 15, 5, 0.8)
	windows := g.Generate(200, nil, nil)
	if len(windows) == 0 {
		t.Fatal("expected at least one window")
	}
	if windows[0].Range.Start != 0 {
		t.Errorf("first window should start at 0, got %v", windows[0].Range.Start)
	}
	// The loop stops once start >= D - window_dur (110), so the last start
	// is 105, not a truncated trailing window reaching all the way to D.
	last := windows[len(windows)-1]
	if last.Range.Start != 105 || last.Range.End != 195 {
		t.Errorf("last window should be [105,195], got %+v", last.Range)
	}
}

func TestGenerateExactWindowCountForSpecExample(t *testing.T) {
	// D=120, window_dur=90, stride=15: spec expects exactly two windows,
	// [0,90] and [15,105].
	g := New(90, 15, 5, 0.8)
	windows := g.Generate(120, nil, nil)
	if len(windows) != 2 {
		t.Fatalf("expected exactly 2 windows, got %d: %+v", len(windows), windows)
	}
	if windows[0].Range != (model.TimeRange{Start: 0, End: 90}) {
		t.Errorf("expected first window [0,90], got %+v", windows[0].Range)
	}
	if windows[1].Range != (model.TimeRange{Start: 15, End: 105}) {
		t.Errorf("expected second window [15,105], got %+v", windows[1].Range)
	}
}

func TestGenerateExactlyOneWindowAtWindowDurationBoundary(t *testing.T) {
	// D == window_dur is the boundary case: exactly one unsnapped window
	// spanning the whole video, not zero windows.
	g := New(90, 15, 5, 0.8)
	windows := g.Generate(90, nil, nil)
	if len(windows) != 1 {
		t.Fatalf("expected exactly 1 window, got %d: %+v", len(windows), windows)
	}
	if windows[0].Range != (model.TimeRange{Start: 0, End: 90}) {
		t.Errorf("expected single window [0,90], got %+v", windows[0].Range)
	}
}

func TestGenerateSingleWindowWhenShorterThanWindowDuration(t *testing.T) {
	// D < window_dur: a single window spanning the whole video, unsnapped.
	g := New(90, 15, 5, 0.8)
	windows := g.Generate(40, nil, nil)
	if len(windows) != 1 {
		t.Fatalf("expected exactly 1 window, got %d: %+v", len(windows), windows)
	}
	if windows[0].Range != (model.TimeRange{Start: 0, End: 40}) {
		t.Errorf("expected single window [0,40], got %+v", windows[0].Range)
	}
}

func TestGenerateSnapsToSceneCut(t *testing.T) {
	g := New(90, 15, 5, 0.8)
	cuts := []model.SceneCut{{TimeS: 92, Score: 0.5}}
	windows := g.Generate(200, cuts, nil)
	// The first window nominally ends at 90; a cut at 92 is within the
	// 5s snap threshold and should pull the end to 92.
	if windows[0].Range.End != 92 {
		t.Errorf("expected snap to 92, got %v", windows[0].Range.End)
	}
}

func TestGenerateRevertsWhenSnapShrinksBelowMinRatio(t *testing.T) {
	// A wide snap threshold lets both edges pull inward enough to breach
	// the min-ratio floor, which should revert the whole window rather
	// than keep the over-shrunk snapped result.
	g := New(90, 15, 20, 0.9)
	cuts := []model.SceneCut{{TimeS: 5, Score: 0.5}, {TimeS: 75, Score: 0.5}}
	windows := g.Generate(200, cuts, nil)
	first := windows[0]
	if first.Range != (model.TimeRange{Start: 0, End: 90}) {
		t.Errorf("expected revert to unsnapped [0,90], got %+v", first.Range)
	}
}

func TestGenerateAttachesOverlappingSentences(t *testing.T) {
	g := New(90, 15, 5, 0.8)
	sentences := []model.Sentence{
		{Text: "inside", Range: model.TimeRange{Start: 10, End: 20}},
		{Text: "mostly outside", Range: model.TimeRange{Start: 85, End: 200}},
	}
	windows := g.Generate(200, nil, sentences)
	if len(windows[0].Sentences) != 1 || windows[0].Sentences[0].Text != "inside" {
		t.Errorf("expected only the fully-inside sentence, got %+v", windows[0].Sentences)
	}
}

func TestGenerateZeroDuration(t *testing.T) {
	g := New(90, 15, 5, 0.8)
	if windows := g.Generate(0, nil, nil); windows != nil {
		t.Errorf("expected nil windows for zero duration, got %+v", windows)
	}
}
