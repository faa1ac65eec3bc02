// Package density computes information-density features for a window's
// text: lexical diversity, Shannon entropy, TF-IDF statistics against the
// current run's corpus, content-word ratio, and average word length.
//
// No third-party TF-IDF implementation exists in this module's dependency
// set (there is no analog of scikit-learn's TfidfVectorizer among the
// example repos) so the vectorizer is implemented directly — see
// DESIGN.md for the documented exception.
package density

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/clipforge/engine/internal/model"
)

var tokenRe = regexp.MustCompile(`[A-Za-z']+`)
var caser = cases.Lower(language.English)

// contentStopWords is the fixed ~30-word English stopword set used only
// for the content-word-ratio feature (a coarser list than keyphrase's,
// matching the original ranker's narrower function-word set).
var contentStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"at": true, "by": true, "from": true, "as": true, "that": true, "this": true,
	"it": true, "i": true, "you": true, "we": true, "they": true,
}

// Analyzer computes TF-IDF against a corpus fitted once per run.
type Analyzer struct {
	vocabDocFreq map[string]int // 1-2 gram -> number of documents containing it
	docCount     int
	fitted       bool
}

// NewAnalyzer returns an unfitted Analyzer; call FitCorpus before Analyze.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vocabDocFreq: make(map[string]int)}
}

// maxFeatures caps the vocabulary the same way scikit-learn's
// max_features=1000 does: only the most frequent n-grams are kept.
const maxFeatures = 1000

// FitCorpus builds document-frequency statistics over the whole run's
// window texts. Known limitation: the corpus is this run's windows only,
// not a larger reference corpus, so TF-IDF values are relative to this
// video rather than to general English usage.
func (a *Analyzer) FitCorpus(texts []string) {
	a.docCount = len(texts)
	freq := make(map[string]int)
	for _, text := range texts {
		grams := ngrams(tokenize(text), 1, 2)
		seen := make(map[string]bool)
		for _, g := range grams {
			if !seen[g] {
				freq[g]++
				seen[g] = true
			}
		}
	}
	a.vocabDocFreq = topByFreq(freq, maxFeatures)
	a.fitted = true
}

func topByFreq(freq map[string]int, limit int) map[string]int {
	if len(freq) <= limit {
		return freq
	}
	type kv struct {
		k string
		v int
	}
	all := make([]kv, 0, len(freq))
	for k, v := range freq {
		all = append(all, kv{k, v})
	}
	// simple partial selection: sort descending by count, keep top `limit`
	for i := 0; i < limit; i++ {
		maxIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].v > all[maxIdx].v {
				maxIdx = j
			}
		}
		all[i], all[maxIdx] = all[maxIdx], all[i]
	}
	out := make(map[string]int, limit)
	for _, e := range all[:limit] {
		out[e.k] = e.v
	}
	return out
}

// Analyze computes density metrics for a single window's text.
func (a *Analyzer) Analyze(text string) model.DensityMetrics {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return model.DensityMetrics{}
	}

	uniq := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		uniq[t] = true
	}
	lexicalDiversity := float64(len(uniq)) / float64(len(tokens))

	entropy := shannonEntropy(tokens)

	tfMean, tfMax := a.tfidf(text)

	contentWords := 0
	totalLen := 0
	for _, t := range tokens {
		totalLen += len(t)
		if !contentStopWords[t] {
			contentWords++
		}
	}
	contentWordRatio := float64(contentWords) / float64(len(tokens))
	avgWordLength := float64(totalLen) / float64(len(tokens))

	return model.DensityMetrics{
		LexicalDiversity: lexicalDiversity,
		Entropy:          entropy,
		TFIDFMean:        tfMean,
		TFIDFMax:         tfMax,
		ContentWordRatio: contentWordRatio,
		AvgWordLength:    avgWordLength,
	}
}

func shannonEntropy(tokens []string) float64 {
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	n := float64(len(tokens))
	var entropy float64
	for _, c := range counts {
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// tfidf computes the mean and max TF-IDF weight over the 1-2 grams of
// text against the fitted corpus. If the analyzer was never fitted, IDF
// defaults to 1 for every term (equivalent to plain term frequency).
func (a *Analyzer) tfidf(text string) (mean, max float64) {
	tokens := tokenize(text)
	grams := ngrams(tokens, 1, 2)
	if len(grams) == 0 {
		return 0, 0
	}

	tf := make(map[string]int)
	for _, g := range grams {
		tf[g]++
	}

	var sum float64
	for g, count := range tf {
		termFreq := float64(count) / float64(len(grams))
		idf := 1.0
		if a.fitted {
			df := a.vocabDocFreq[g]
			idf = math.Log(float64(1+a.docCount) / float64(1+df))
			if idf < 0 {
				idf = 0
			}
		}
		weight := termFreq * idf
		sum += weight
		if weight > max {
			max = weight
		}
	}
	mean = sum / float64(len(tf))
	return mean, max
}

func ngrams(tokens []string, minN, maxN int) []string {
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func tokenize(text string) []string {
	matches := tokenRe.FindAllString(text, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = caser.String(m)
	}
	return out
}
