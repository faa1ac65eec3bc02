// Package ranker fuses the keyphrase, density, and cogency signals for
// each window into a single ranking score and sorts candidates by it.
package ranker

import (
	"regexp"
	"sort"

	"github.com/clipforge/engine/internal/model"
)

// Weights holds the hybrid scoring formula's coefficients.
type Weights struct {
	Keyphrase float64
	Density   float64
	Cogency   float64
	QuoteBonus float64
	ScenePenalty float64
	FillerPenalty float64
}

// DefaultWeights matches the reference ranking formula.
var DefaultWeights = Weights{
	Keyphrase:     0.35,
	Density:       0.20,
	Cogency:       0.25,
	QuoteBonus:    0.10,
	ScenePenalty:  0.05,
	FillerPenalty: 0.05,
}

// fillerWords is the fixed filler/hedge vocabulary the scoring formula
// counts occurrences of.
var fillerWords = []string{
	"um", "uh", "er", "ah", "like", "you know", "sort of", "kind of",
	"basically", "actually", "literally", "obviously", "i mean", "i think",
	"i guess", "i suppose",
}

// fillerPatterns match each fillerWords entry as a whole word/phrase.
var fillerPatterns = buildFillerPatterns()

func buildFillerPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(fillerWords))
	for i, w := range fillerWords {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

var wordSplitRe = regexp.MustCompile(`\s+`)

// Ranker scores and orders windows by the hybrid formula.
type Ranker struct {
	Weights Weights
}

// New returns a Ranker using DefaultWeights.
func New() *Ranker {
	return &Ranker{Weights: DefaultWeights}
}

// NewWithWeights returns a Ranker using custom weights (for testing or
// tuning experiments).
func NewWithWeights(w Weights) *Ranker {
	return &Ranker{Weights: w}
}

// Score computes the ScoreBreakdown for one window given its already
// computed keyphrases, density metrics, and cogency result.
func (r *Ranker) Score(w model.Window, phrases []model.KeyPhrase, density model.DensityMetrics, cogency model.CogencyResult) model.ScoreBreakdown {
	if w.Text == "" {
		return model.ScoreBreakdown{}
	}

	keyphraseScore := averagePhraseScore(phrases)
	densityScore := combineDensity(density)
	cogencyScore := float64(cogency.Cogency) / 5.0
	quoteBonus := float64(len(cogency.Quotes)) / 10
	scenePenalty := 0.1 * float64(len(w.SceneCuts))
	fillerPenalty := fillerDensity(w.Text)

	final := r.Weights.Keyphrase*keyphraseScore +
		r.Weights.Density*densityScore +
		r.Weights.Cogency*cogencyScore +
		r.Weights.QuoteBonus*quoteBonus -
		r.Weights.ScenePenalty*scenePenalty -
		r.Weights.FillerPenalty*fillerPenalty

	if final < 0 {
		final = 0
	}

	return model.ScoreBreakdown{
		KeyphraseScore: keyphraseScore,
		DensityScore:   densityScore,
		CogencyScore:   cogencyScore,
		QuoteBonus:     quoteBonus,
		ScenePenalty:   scenePenalty,
		FillerPenalty:  fillerPenalty,
		Final:          final,
	}
}

// Rank sorts windows by ScoreBreakdown.Final descending, breaking ties by
// earlier start time and then by window ID, and returns the top k (or all
// of them if k <= 0).
func Rank(windows []model.RankedWindow, k int) []model.RankedWindow {
	out := make([]model.RankedWindow, len(windows))
	copy(out, windows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score.Final != out[j].Score.Final {
			return out[i].Score.Final > out[j].Score.Final
		}
		if out[i].Window.Range.Start != out[j].Window.Range.Start {
			return out[i].Window.Range.Start < out[j].Window.Range.Start
		}
		return out[i].Window.ID < out[j].Window.ID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// averagePhraseScore is the keyphrase_score term: each phrase's importance
// (its fused score) weighted by how much of its occurrence credit it has
// earned (occurrences/3, capped at 1), averaged over all candidate phrases.
func averagePhraseScore(phrases []model.KeyPhrase) float64 {
	if len(phrases) == 0 {
		return 0
	}
	var sum float64
	for _, p := range phrases {
		occurrenceCredit := float64(p.Occurrences) / 3.0
		if occurrenceCredit > 1 {
			occurrenceCredit = 1
		}
		sum += p.Score * occurrenceCredit
	}
	return sum / float64(len(phrases))
}

// combineDensity folds the density sub-metrics into the density_score term:
// 0.30 diversity + 0.20 entropy (capped at 5 bits) + 0.20 TF-IDF mean +
// 0.15 content-word ratio + 0.15 average word length (capped at 6 chars).
func combineDensity(d model.DensityMetrics) float64 {
	entropyNorm := d.Entropy / 5.0
	if entropyNorm > 1 {
		entropyNorm = 1
	}
	avgLenNorm := d.AvgWordLength / 6.0
	if avgLenNorm > 1 {
		avgLenNorm = 1
	}
	return 0.30*d.LexicalDiversity +
		0.20*entropyNorm +
		0.20*d.TFIDFMean +
		0.15*d.ContentWordRatio +
		0.15*avgLenNorm
}

// fillerDensity is the filler_penalty term: min(2*filler_count/word_count, 1).
func fillerDensity(text string) float64 {
	hits := 0
	for _, re := range fillerPatterns {
		hits += len(re.FindAllStringIndex(text, -1))
	}
	if hits == 0 {
		return 0
	}
	wordCount := len(wordSplitRe.Split(text, -1))
	if wordCount == 0 {
		return 0
	}
	ratio := 2 * float64(hits) / float64(wordCount)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}
