// Package asr transcribes an audio track to word-level timestamps via a
// Whisper-compatible endpoint (OpenAI's hosted API, or a self-hosted
// server pointed at by a custom base URL).
package asr

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clipforge/engine/internal/clipperr"
	"github.com/clipforge/engine/internal/model"
)

// Client transcribes raw audio into timed words.
type Client struct {
	client *openai.Client
}

// New returns a Client. If baseURL is non-empty it talks to that endpoint
// instead of api.openai.com.
func New(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg)}
}

// Transcribe sends audioData (in any ffmpeg-readable container/codec
// combination Whisper accepts) for transcription and returns word-level
// timestamps in order.
func (c *Client) Transcribe(ctx context.Context, audioData []byte, language string) ([]model.WordToken, error) {
	if language == "" {
		language = "en"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audioData),
		FilePath: "audio.wav",
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return nil, &clipperr.TranscriptionFailed{Cause: fmt.Errorf("whisper request: %w", err)}
	}
	if len(resp.Words) == 0 {
		return nil, &clipperr.TranscriptionFailed{Cause: fmt.Errorf("no word timestamps returned (text: %q)", resp.Text)}
	}

	words := make([]model.WordToken, len(resp.Words))
	for i, w := range resp.Words {
		words[i] = model.WordToken{
			Word:  strings.TrimSpace(w.Word),
			Start: w.Start,
			End:   w.End,
		}
	}

	log.Printf("[asr] transcribed %d words (duration %.1fs)", len(words), resp.Duration)
	return words, nil
}
