package scenes

import (
	"strings"
	"testing"

	"github.com/clipforge/engine/internal/model"
)

func TestScanCuts(t *testing.T) {
	// Representative lines from `ffmpeg -vf select=...,metadata=print` stderr.
	sample := strings.Join([]string{
		"frame:120 pts:123456 pts_time:12.345000",
		"lavfi.scene_score=0.412300",
		"frame:340 pts:234567 pts_time:34.210000",
		"lavfi.scene_score=0.550000",
		"not a metadata line at all",
	}, "\n")

	var cuts []model.SceneCut
	if err := scanCuts(strings.NewReader(sample), &cuts); err != nil {
		t.Fatalf("scanCuts returned error: %v", err)
	}
	if len(cuts) != 2 {
		t.Fatalf("expected 2 cuts, got %d: %+v", len(cuts), cuts)
	}
	if cuts[0].TimeS != 12.345 || cuts[0].Score != 0.4123 {
		t.Errorf("unexpected first cut: %+v", cuts[0])
	}
	if cuts[1].TimeS != 34.21 || cuts[1].Score != 0.55 {
		t.Errorf("unexpected second cut: %+v", cuts[1])
	}
}

func TestScanCutsIgnoresOrphanScore(t *testing.T) {
	// A scene_score line with no preceding pts_time should be skipped.
	sample := "lavfi.scene_score=0.9\n"
	var cuts []model.SceneCut
	if err := scanCuts(strings.NewReader(sample), &cuts); err != nil {
		t.Fatalf("scanCuts returned error: %v", err)
	}
	if len(cuts) != 0 {
		t.Errorf("expected no cuts, got %+v", cuts)
	}
}
