package grader

import (
	"strings"
	"testing"
)

func TestBuildPromptEmbedsText(t *testing.T) {
	prompt, err := buildPrompt("a coherent excerpt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "a coherent excerpt") {
		t.Errorf("expected prompt to embed the input text, got: %s", prompt)
	}
	if !strings.Contains(prompt, "cogency") {
		t.Errorf("expected prompt to mention cogency, got: %s", prompt)
	}
}

func TestDegradedReturnsNeutralResult(t *testing.T) {
	d := degraded()
	if !d.Degraded {
		t.Error("expected Degraded to be true")
	}
	if d.Cogency != 1 {
		t.Errorf("expected neutral cogency of 1, got %d", d.Cogency)
	}
	if d.Quotes != nil || d.SalientTerms != nil {
		t.Error("expected nil quotes/salient terms in degraded result")
	}
}

func TestClampResultClampsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{3, 3},
		{5, 5},
		{6, 5},
	}
	for _, c := range cases {
		got := clampResult(cogencyResponse{Cogency: c.in}).Cogency
		if got != c.want {
			t.Errorf("clampResult(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClampResultCapsQuotesAndTermsToLimits(t *testing.T) {
	r := clampResult(cogencyResponse{
		Cogency:      3,
		Quotes:       []string{"a", "b", "c", "d"},
		SalientTerms: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
	})
	if len(r.Quotes) != 3 {
		t.Errorf("expected quotes capped to 3, got %d", len(r.Quotes))
	}
	if len(r.SalientTerms) != 8 {
		t.Errorf("expected salient terms capped to 8, got %d", len(r.SalientTerms))
	}
}

func TestClampResultPreservesQuotesAndTerms(t *testing.T) {
	r := clampResult(cogencyResponse{
		Cogency:      4,
		Quotes:       []string{"a quote"},
		SalientTerms: []string{"a term"},
	})
	if len(r.Quotes) != 1 || r.Quotes[0] != "a quote" {
		t.Errorf("expected quotes to be preserved, got %v", r.Quotes)
	}
	if len(r.SalientTerms) != 1 || r.SalientTerms[0] != "a term" {
		t.Errorf("expected salient terms to be preserved, got %v", r.SalientTerms)
	}
	if r.Degraded {
		t.Error("a successfully clamped result should not be marked degraded")
	}
}
