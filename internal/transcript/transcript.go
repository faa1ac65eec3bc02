// Package transcript turns a flat list of timed words from an ASR backend
// into sentences, by splitting on terminal punctuation the way a reader
// would naturally chunk them.
package transcript

import (
	"regexp"
	"strings"

	"github.com/clipforge/engine/internal/model"
)

// sentenceEndRe matches one or more sentence-final punctuation marks at
// the end of a word token, e.g. "done." or "really?!"
var sentenceEndRe = regexp.MustCompile(`[.!?]+$`)

// AlignToSentences groups words into sentences, flushing the accumulated
// buffer whenever a word ends in sentence-final punctuation, and flushing
// any trailing words as a final (unterminated) sentence.
func AlignToSentences(words []model.WordToken) []model.Sentence {
	var sentences []model.Sentence
	var buf []model.WordToken

	for _, w := range words {
		buf = append(buf, w)
		if sentenceEndRe.MatchString(strings.TrimSpace(w.Word)) {
			sentences = append(sentences, buildSentence(buf))
			buf = nil
		}
	}
	if len(buf) > 0 {
		sentences = append(sentences, buildSentence(buf))
	}
	return sentences
}

func buildSentence(words []model.WordToken) model.Sentence {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	cp := make([]model.WordToken, len(words))
	copy(cp, words)
	return model.Sentence{
		Text:  strings.Join(parts, " "),
		Words: cp,
		Range: model.TimeRange{Start: words[0].Start, End: words[len(words)-1].End},
	}
}
