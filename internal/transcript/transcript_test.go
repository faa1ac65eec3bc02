package transcript

import (
	"testing"

	"github.com/clipforge/engine/internal/model"
)

func words(pairs ...string) []model.WordToken {
	out := make([]model.WordToken, len(pairs))
	for i, w := range pairs {
		out[i] = model.WordToken{Word: w, Start: float64(i), End: float64(i) + 0.5}
	}
	return out
}

func TestAlignToSentencesSplitsOnPunctuation(t *testing.T) {
	in := words("This", "is", "one.", "Here", "is", "two!", "And", "three")
	sentences := AlignToSentences(in)
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %+v", len(sentences), sentences)
	}
	if sentences[0].Text != "This is one." {
		t.Errorf("sentence 0 = %q", sentences[0].Text)
	}
	if sentences[2].Text != "And three" {
		t.Errorf("trailing sentence = %q", sentences[2].Text)
	}
	if sentences[2].Range.Start != 6 || sentences[2].Range.End != 7.5 {
		t.Errorf("trailing sentence range = %+v", sentences[2].Range)
	}
}

func TestAlignToSentencesEmpty(t *testing.T) {
	if got := AlignToSentences(nil); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
}

func TestAlignToSentencesAllTerminated(t *testing.T) {
	in := words("One.", "Two.")
	sentences := AlignToSentences(in)
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
}
