package density

import "testing"

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewAnalyzer()
	got := a.Analyze("")
	if got.LexicalDiversity != 0 || got.Entropy != 0 {
		t.Errorf("expected zero metrics for empty text, got %+v", got)
	}
}

func TestAnalyzeLexicalDiversity(t *testing.T) {
	a := NewAnalyzer()
	got := a.Analyze("the the the the")
	if got.LexicalDiversity != 0.25 {
		t.Errorf("expected lexical diversity 0.25, got %v", got.LexicalDiversity)
	}
	if got.Entropy != 0 {
		t.Errorf("expected zero entropy for a single repeated token, got %v", got.Entropy)
	}
}

func TestFitCorpusThenAnalyzeIsDeterministic(t *testing.T) {
	a := NewAnalyzer()
	a.FitCorpus([]string{
		"artificial intelligence transforms modern industry",
		"modern industry adopts artificial intelligence quickly",
	})
	m1 := a.Analyze("artificial intelligence transforms modern industry")
	m2 := a.Analyze("artificial intelligence transforms modern industry")
	if m1 != m2 {
		t.Errorf("expected deterministic output, got %+v vs %+v", m1, m2)
	}
}

func TestAnalyzeContentWordRatio(t *testing.T) {
	a := NewAnalyzer()
	got := a.Analyze("the cat and the dog")
	// tokens: the cat and the dog -> stopwords: the, and, the (3 of 5)
	want := 2.0 / 5.0
	if diff := got.ContentWordRatio - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("content word ratio = %v, want %v", got.ContentWordRatio, want)
	}
}
