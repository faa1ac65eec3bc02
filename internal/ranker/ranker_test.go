package ranker

import (
	"testing"

	"github.com/clipforge/engine/internal/model"
)

func TestScoreEmptyTextShortCircuits(t *testing.T) {
	r := New()
	got := r.Score(model.Window{Text: ""}, nil, model.DensityMetrics{}, model.CogencyResult{Cogency: 1})
	if got != (model.ScoreBreakdown{}) {
		t.Errorf("expected zero breakdown for empty text, got %+v", got)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	r := New()
	w := model.Window{Text: "some text here", SceneCuts: []model.SceneCut{{TimeS: 1}, {TimeS: 2}}}
	phrases := []model.KeyPhrase{{Phrase: "x", Score: 1, Occurrences: 3}}
	density := model.DensityMetrics{LexicalDiversity: 1, Entropy: 6, TFIDFMean: 1}
	cogency := model.CogencyResult{Cogency: 1}
	got := r.Score(w, phrases, density, cogency)
	if got.Final < 0 {
		t.Errorf("expected final score >= 0, got %v", got.Final)
	}
}

func TestScoreScenePenaltyScalesWithCutCount(t *testing.T) {
	r := New()
	density := model.DensityMetrics{}
	cogency := model.CogencyResult{Cogency: 1}
	oneCut := model.Window{Text: "text", SceneCuts: []model.SceneCut{{TimeS: 1}}}
	fiveCuts := model.Window{Text: "text", SceneCuts: []model.SceneCut{{TimeS: 1}, {TimeS: 2}, {TimeS: 3}, {TimeS: 4}, {TimeS: 5}}}
	got1 := r.Score(oneCut, nil, density, cogency)
	got5 := r.Score(fiveCuts, nil, density, cogency)
	if got1.ScenePenalty != 0.1 {
		t.Errorf("expected scene penalty 0.1 for one cut, got %v", got1.ScenePenalty)
	}
	if got5.ScenePenalty != 0.5 {
		t.Errorf("expected scene penalty 0.5 for five cuts, got %v", got5.ScenePenalty)
	}
}

func TestScoreQuoteBonusScalesWithQuoteCount(t *testing.T) {
	r := New()
	w := model.Window{Text: "text"}
	got := r.Score(w, nil, model.DensityMetrics{}, model.CogencyResult{Cogency: 1, Quotes: []string{"a", "b", "c"}})
	if got.QuoteBonus != 0.3 {
		t.Errorf("expected quote bonus 0.3 for three quotes, got %v", got.QuoteBonus)
	}
}

func TestScoreCogencyScoreNormalizedToFive(t *testing.T) {
	r := New()
	w := model.Window{Text: "text"}
	got := r.Score(w, nil, model.DensityMetrics{}, model.CogencyResult{Cogency: 1})
	if got.CogencyScore != 0.2 {
		t.Errorf("expected cogency score 0.2 for degraded cogency=1, got %v", got.CogencyScore)
	}
}

func TestAveragePhraseScoreWeightsByOccurrence(t *testing.T) {
	// A phrase occurring 3+ times earns full credit; one occurring once
	// earns only a third, even at the same raw importance.
	frequent := []model.KeyPhrase{{Phrase: "x", Score: 1, Occurrences: 3}}
	rare := []model.KeyPhrase{{Phrase: "x", Score: 1, Occurrences: 1}}
	if got := averagePhraseScore(frequent); got != 1.0 {
		t.Errorf("expected 1.0 for occurrences>=3, got %v", got)
	}
	if got := averagePhraseScore(rare); got < 0.33 || got > 0.34 {
		t.Errorf("expected ~0.33 for a single occurrence, got %v", got)
	}
}

func TestRankSortsDescendingWithTiebreak(t *testing.T) {
	windows := []model.RankedWindow{
		{Window: model.Window{ID: "b", Range: model.TimeRange{Start: 10}}, Score: model.ScoreBreakdown{Final: 0.5}},
		{Window: model.Window{ID: "a", Range: model.TimeRange{Start: 0}}, Score: model.ScoreBreakdown{Final: 0.9}},
		{Window: model.Window{ID: "c", Range: model.TimeRange{Start: 5}}, Score: model.ScoreBreakdown{Final: 0.5}},
	}
	ranked := Rank(windows, 0)
	if ranked[0].Window.ID != "a" {
		t.Errorf("expected highest score first, got %s", ranked[0].Window.ID)
	}
	// b and c tie at 0.5; c starts earlier (5 < 10) so it should come first.
	if ranked[1].Window.ID != "c" || ranked[2].Window.ID != "b" {
		t.Errorf("expected tie-break by start time, got order %s,%s", ranked[1].Window.ID, ranked[2].Window.ID)
	}
}

func TestRankRespectsTopK(t *testing.T) {
	windows := make([]model.RankedWindow, 5)
	for i := range windows {
		windows[i] = model.RankedWindow{Window: model.Window{ID: string(rune('a' + i))}, Score: model.ScoreBreakdown{Final: float64(i)}}
	}
	ranked := Rank(windows, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(ranked))
	}
}

func TestFillerDensityDetectsHedges(t *testing.T) {
	score := fillerDensity("um, you know, I mean this is kind of obvious")
	if score <= 0 {
		t.Errorf("expected nonzero filler density, got %v", score)
	}
}

func TestFillerDensityMatchesSpecExample(t *testing.T) {
	// "um uh like you know basically" is 5 fillers in 6 words:
	// min(2*5/6, 1) = 1.0.
	score := fillerDensity("um uh like you know basically")
	if score != 1.0 {
		t.Errorf("expected filler penalty 1.0, got %v", score)
	}
}
