package keyphrase

import "testing"

func TestExtractReturnsPhrasesSortedDescending(t *testing.T) {
	e := NewExtractor()
	e.FitCorpus([]string{
		"machine learning models require large training datasets",
		"large training datasets improve machine learning accuracy",
		"the cat sat on the mat",
	})

	phrases := e.Extract("machine learning models require large training datasets", 5)
	if len(phrases) == 0 {
		t.Fatal("expected at least one phrase")
	}
	for i := 1; i < len(phrases); i++ {
		if phrases[i].Score > phrases[i-1].Score {
			t.Fatalf("phrases not sorted descending at index %d: %+v", i, phrases)
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	e := NewExtractor()
	if got := e.Extract("", 5); got != nil {
		t.Errorf("expected nil for empty text, got %+v", got)
	}
}

func TestExtractWithoutFitStillWorks(t *testing.T) {
	e := NewExtractor()
	phrases := e.Extract("standalone unfitted extraction test", 3)
	if len(phrases) == 0 {
		t.Fatal("expected phrases even without FitCorpus")
	}
}

func TestExtractTracksOccurrenceCount(t *testing.T) {
	e := NewExtractor()
	phrases := e.Extract("signal signal signal noise", 10)
	found := false
	for _, p := range phrases {
		if p.Text == "signal" {
			found = true
			if p.Count != 3 {
				t.Errorf("expected signal to occur 3 times, got %d", p.Count)
			}
		}
	}
	if !found {
		t.Fatal("expected \"signal\" among extracted phrases")
	}
}
