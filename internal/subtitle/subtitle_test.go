package subtitle

import (
	"strings"
	"testing"

	"github.com/clipforge/engine/internal/model"
)

func TestFormatSRTTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{61.5, "00:01:01,500"},
		{3661.25, "01:01:01,250"},
		{-5, "00:00:00,000"},
	}
	for _, c := range cases {
		if got := formatSRTTime(c.in); got != c.want {
			t.Errorf("formatSRTTime(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildSRTRebasesToWindowLocal(t *testing.T) {
	sentences := []model.Sentence{
		{
			Text: "Hello there friend.",
			Words: []model.WordToken{
				{Word: "Hello", Start: 100, End: 100.4},
				{Word: "there", Start: 100.4, End: 100.8},
				{Word: "friend.", Start: 100.8, End: 101.2},
			},
			Range: model.TimeRange{Start: 100, End: 101.2},
		},
	}
	srt := BuildSRT(sentences, model.TimeRange{Start: 100, End: 110})
	if !strings.Contains(srt, "00:00:00,000") {
		t.Errorf("expected rebased start at 0, got:\n%s", srt)
	}
	if !strings.Contains(srt, "Hello there friend.") {
		t.Errorf("expected cue text present, got:\n%s", srt)
	}
}

func TestBuildSRTEmpty(t *testing.T) {
	if got := BuildSRT(nil, model.TimeRange{}); got != "" {
		t.Errorf("expected empty string for no sentences, got %q", got)
	}
}
