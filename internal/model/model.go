// Package model defines the shared data types that flow between the
// pipeline stages: media metadata, scene cuts, transcript structures,
// candidate windows, score breakdowns, and the final rendered clip record.
package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeRange is a half-open interval [Start, End) measured in seconds
// from the start of the source video.
type TimeRange struct {
	Start float64 `json:"start_s"`
	End   float64 `json:"end_s"`
}

// Duration returns End - Start.
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// Overlap returns the duration that r and other share, or 0 if disjoint.
func (r TimeRange) Overlap(other TimeRange) float64 {
	start := r.Start
	if other.Start > start {
		start = other.Start
	}
	end := r.End
	if other.End < end {
		end = other.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// MediaInfo is the probed metadata of a source media file.
type MediaInfo struct {
	Path       string  `json:"path"`
	DurationS  float64 `json:"duration_s"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	VideoCodec string  `json:"video_codec"`
	AudioCodec string  `json:"audio_codec"`
	SizeBytes  int64   `json:"size_bytes"`
	HasAudio   bool    `json:"has_audio"`
}

// SceneCut is a detected content discontinuity at TimeS seconds.
type SceneCut struct {
	TimeS float64 `json:"time_s"`
	Score float64 `json:"score"`
}

// WordToken is a single transcribed word with its timing.
type WordToken struct {
	Word  string  `json:"word"`
	Start float64 `json:"start_s"`
	End   float64 `json:"end_s"`
}

// Sentence is a run of WordTokens ending on sentence-final punctuation
// (or the end of the transcript).
type Sentence struct {
	Text  string      `json:"text"`
	Words []WordToken `json:"words"`
	Range TimeRange   `json:"range"`
}

// Window is a candidate clip region before scoring.
type Window struct {
	ID        string     `json:"id"`
	Range     TimeRange  `json:"range"`
	Sentences []Sentence `json:"sentences"`
	Text      string     `json:"text"`
	// SceneCuts holds every detected scene cut falling inside Range, used
	// by the ranker's scene_penalty term (one penalty unit per cut).
	SceneCuts []SceneCut `json:"scene_cuts"`
}

// NewWindowID returns a stable-looking random identifier for a window.
func NewWindowID() string {
	return uuid.NewString()
}

// KeyPhrase is a scored phrase extracted from a window's text, with the
// number of times it occurs there.
type KeyPhrase struct {
	Phrase      string  `json:"phrase"`
	Score       float64 `json:"score"`
	Occurrences int     `json:"occurrences"`
}

// DensityMetrics holds the lexical/statistical density features for a window.
type DensityMetrics struct {
	LexicalDiversity float64 `json:"lexical_diversity"`
	Entropy          float64 `json:"entropy"`
	TFIDFMean        float64 `json:"tfidf_mean"`
	TFIDFMax         float64 `json:"tfidf_max"`
	ContentWordRatio float64 `json:"content_word_ratio"`
	AvgWordLength    float64 `json:"avg_word_length"`
}

// CogencyResult is the grader's verdict on a window's text. Cogency is an
// integer 1-5 coherence rating, matching the chat back-end's wire
// contract; the ranker divides by 5 to fold it into the [0,1] score.
type CogencyResult struct {
	Cogency      int      `json:"cogency"`
	Quotes       []string `json:"quotes"`
	SalientTerms []string `json:"salient_terms"`
	Degraded     bool     `json:"degraded"`
}

// ScoreBreakdown records every term of the hybrid ranking formula for a
// window, for explainability and for the CSV report.
type ScoreBreakdown struct {
	KeyphraseScore float64 `json:"keyphrase_score"`
	DensityScore   float64 `json:"density_score"`
	CogencyScore   float64 `json:"cogency_score"`
	QuoteBonus     float64 `json:"quote_bonus"`
	ScenePenalty   float64 `json:"scene_penalty"`
	FillerPenalty  float64 `json:"filler_penalty"`
	Final          float64 `json:"final"`
}

// RankedWindow is a Window together with its computed scores, ordered by
// Score.Final descending after ranking.
type RankedWindow struct {
	Window    Window         `json:"window"`
	KeyPhrases []KeyPhrase   `json:"key_phrases"`
	Density   DensityMetrics `json:"density"`
	Cogency   CogencyResult  `json:"cogency"`
	Score     ScoreBreakdown `json:"score"`
}

// RenderedClip is the output of the render stage for one ranked window.
type RenderedClip struct {
	WindowID    string    `json:"window_id"`
	Rank        int       `json:"rank"`
	Range       TimeRange `json:"range"`
	OutputPath  string    `json:"output_path"`
	SubtitlePath string   `json:"subtitle_path"`
	RenderedAt  time.Time `json:"rendered_at"`
}
