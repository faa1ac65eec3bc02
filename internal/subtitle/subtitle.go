// Package subtitle generates classic SRT caption files from word-level
// transcript timing, rebased to a window's local time axis.
//
// This is a plain, non-highlighted caption track (unlike the teacher's
// word-by-word highlighted ASS style), matching the fixed-style burn-in
// the render stage applies.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/clipforge/engine/internal/model"
)

// wordsPerCue is how many words are grouped into a single caption cue.
const wordsPerCue = 10

// BuildSRT renders an SRT file's contents from the sentences that fall
// inside a window, with all timestamps rebased to be relative to the
// window's own start (0 = the first frame of the rendered clip) and
// clamped to the window's duration.
func BuildSRT(sentences []model.Sentence, windowRange model.TimeRange) string {
	var words []model.WordToken
	for _, s := range sentences {
		words = append(words, s.Words...)
	}
	if len(words) == 0 {
		return ""
	}

	cues := chunkWords(words, wordsPerCue)

	var sb strings.Builder
	index := 1
	duration := windowRange.Duration()
	for _, cue := range cues {
		start := rebase(cue[0].Start, windowRange.Start, duration)
		end := rebase(cue[len(cue)-1].End, windowRange.Start, duration)
		if end <= start {
			continue
		}

		text := cueText(cue)
		if text == "" {
			continue
		}

		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", index, formatSRTTime(start), formatSRTTime(end), text)
		index++
	}

	return sb.String()
}

// rebase shifts an absolute timestamp onto the window's local axis and
// clamps it to [0, duration].
func rebase(absolute, windowStart, duration float64) float64 {
	t := absolute - windowStart
	if t < 0 {
		t = 0
	}
	if t > duration {
		t = duration
	}
	return t
}

// chunkWords groups words into cues of the given size, also breaking
// early at sentence-ending punctuation once a cue holds at least two
// words. A one-word sentence does not close its cue, so it shares a cue
// with the words that follow it.
func chunkWords(words []model.WordToken, size int) [][]model.WordToken {
	var chunks [][]model.WordToken
	var current []model.WordToken

	for _, w := range words {
		current = append(current, w)
		isSentenceEnd := strings.ContainsAny(w.Word, ".!?")
		if len(current) >= size || (isSentenceEnd && len(current) >= 2) {
			chunks = append(chunks, current)
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func cueText(words []model.WordToken) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		trimmed := strings.TrimSpace(w.Word)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// formatSRTTime converts seconds to the classic SRT timestamp format,
// HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds-float64(int(seconds)))*1000 + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
