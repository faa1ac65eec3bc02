// Package keyphrase extracts and scores candidate keyphrases from a
// window's text by fusing two signals: a corpus-aware co-occurrence score
// (standing in for a semantic embedding similarity, since this module's
// dependency set has no embedding model — see DESIGN.md) and a YAKE-style
// statistical score driven by term position and frequency, discounted by
// how many of the run's windows contain the phrase.
//
// Neither scorer alone is reliable; phrases that score well on both
// methods are the ones most likely to be genuinely salient, so a phrase
// found by only one method is down-weighted in the fused result.
package keyphrase

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minNGram = 1
	maxNGram = 3
	// statisticalOnlyWeight down-weights phrases the co-occurrence method
	// never surfaced, mirroring the YAKE-only discount in the original ranker.
	statisticalOnlyWeight = 0.5
)

var wordRe = regexp.MustCompile(`[A-Za-z']+`)

var caser = cases.Lower(language.English)

// stopWords is the fixed English stopword set for keyphrase extraction.
// Density analysis keeps its own list, which is the same minus "he" and
// "she".
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"at": true, "by": true, "from": true, "as": true, "that": true, "this": true,
	"it": true, "i": true, "you": true, "we": true, "they": true, "he": true,
	"she": true,
}

// Extractor scores candidate keyphrases against a corpus built from all
// windows in the current run, so a phrase's salience is relative to this
// video rather than to a fixed vocabulary.
type Extractor struct {
	corpusCooccur map[string]map[string]int // word -> co-occurring word -> count, built over the whole corpus
	corpusFreq    map[string]int            // phrase -> document (window) frequency
	docCount      int
	fitted        bool
}

// NewExtractor returns an unfitted Extractor; call FitCorpus before Extract.
func NewExtractor() *Extractor {
	return &Extractor{
		corpusCooccur: make(map[string]map[string]int),
		corpusFreq:    make(map[string]int),
	}
}

// FitCorpus builds the co-occurrence and document-frequency tables the
// Extract scorer needs, from every window's text in the current run.
func (e *Extractor) FitCorpus(texts []string) {
	e.docCount = len(texts)
	for _, text := range texts {
		tokens := tokenize(text)
		seen := map[string]bool{}
		for i, w := range tokens {
			if stopWords[w] {
				continue
			}
			for _, phrase := range phrasesAt(tokens, i) {
				if !seen[phrase] {
					e.corpusFreq[phrase]++
					seen[phrase] = true
				}
			}
			window := 4
			for j := i + 1; j < len(tokens) && j <= i+window; j++ {
				if stopWords[tokens[j]] {
					continue
				}
				e.addCooccur(w, tokens[j])
			}
		}
	}
	e.fitted = true
}

func (e *Extractor) addCooccur(a, b string) {
	if e.corpusCooccur[a] == nil {
		e.corpusCooccur[a] = make(map[string]int)
	}
	if e.corpusCooccur[b] == nil {
		e.corpusCooccur[b] = make(map[string]int)
	}
	e.corpusCooccur[a][b]++
	e.corpusCooccur[b][a]++
}

// Phrase is a scored candidate keyphrase, with the number of times it
// occurs in the source text (the ranker needs this to weight coverage,
// not just salience).
type Phrase struct {
	Text  string
	Score float64
	Count int
}

// Extract scores candidate phrases in text, fusing a co-occurrence-based
// "contextual" score with a statistical score, and returns the top
// candidates sorted by descending score.
func (e *Extractor) Extract(text string, topN int) []Phrase {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	cooccurScores := e.cooccurScores(tokens)
	statScores := e.statisticalScores(tokens)

	fused := make(map[string]float64)
	for phrase, s := range cooccurScores {
		if st, ok := statScores[phrase]; ok {
			fused[phrase] = (s + st) / 2
		} else {
			fused[phrase] = s
		}
	}
	for phrase, st := range statScores {
		if _, ok := cooccurScores[phrase]; !ok {
			fused[phrase] = st * statisticalOnlyWeight
		}
	}

	counts := phraseOccurrences(tokens)

	out := make([]Phrase, 0, len(fused))
	for phrase, score := range fused {
		out = append(out, Phrase{Text: phrase, Score: score, Count: counts[phrase]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Text < out[j].Text
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// cooccurScores scores each phrase in tokens by how strongly its words
// co-occur with the rest of the corpus — a cheap, embedding-free stand-in
// for semantic relatedness.
func (e *Extractor) cooccurScores(tokens []string) map[string]float64 {
	scores := make(map[string]float64)
	for i, w := range tokens {
		if stopWords[w] {
			continue
		}
		for _, phrase := range phrasesAt(tokens, i) {
			words := strings.Fields(phrase)
			total := 0.0
			for _, pw := range words {
				total += float64(sumValues(e.corpusCooccur[pw]))
			}
			avg := total / float64(len(words))
			norm := avg / (avg + 10) // squash into (0,1)
			if norm > scores[phrase] {
				scores[phrase] = norm
			}
		}
	}
	return scores
}

func sumValues(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// statisticalScores implements a YAKE-style score: phrases that occur
// earlier in the text and more frequently score higher, and phrases found
// in more of the fitted corpus's windows score lower.
func (e *Extractor) statisticalScores(tokens []string) map[string]float64 {
	positions := make(map[string][]int)
	for i, w := range tokens {
		if stopWords[w] {
			continue
		}
		for _, phrase := range phrasesAt(tokens, i) {
			positions[phrase] = append(positions[phrase], i)
		}
	}

	scores := make(map[string]float64)
	n := float64(len(tokens))
	for phrase, pos := range positions {
		freq := float64(len(pos))
		firstPos := float64(pos[0])
		positionScore := 1.0 - (firstPos / n) // earlier = higher
		freqScore := math.Log(1+freq) / math.Log(1+n)

		docFreqPenalty := 1.0
		if e.fitted && e.docCount > 0 {
			df := float64(e.corpusFreq[phrase])
			docFreqPenalty = 1.0 / (1.0 + df/float64(e.docCount))
		}

		scores[phrase] = (0.5*positionScore + 0.5*freqScore) * docFreqPenalty
	}
	return scores
}

// phraseOccurrences counts how many times each candidate phrase occurs
// in tokens, independent of which scorer surfaced it.
func phraseOccurrences(tokens []string) map[string]int {
	counts := make(map[string]int)
	for i := range tokens {
		for _, phrase := range phrasesAt(tokens, i) {
			counts[phrase]++
		}
	}
	return counts
}

// phrasesAt returns every 1..maxNGram phrase starting at index i in
// tokens, skipping any n-gram that would include a stopword at its
// boundary.
func phrasesAt(tokens []string, i int) []string {
	var out []string
	for n := minNGram; n <= maxNGram; n++ {
		if i+n > len(tokens) {
			break
		}
		gram := tokens[i : i+n]
		if stopWords[gram[0]] || stopWords[gram[len(gram)-1]] {
			continue
		}
		out = append(out, strings.Join(gram, " "))
	}
	return out
}

func tokenize(text string) []string {
	matches := wordRe.FindAllString(text, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = caser.String(m)
	}
	return out
}
