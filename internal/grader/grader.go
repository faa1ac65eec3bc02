// Package grader scores a window's text for logical cogency using a
// language model, with a selectable backend (OpenAI chat completions or
// Gemini via the Gen AI SDK). A malformed or failing grading call degrades
// to a neutral result rather than aborting the run — see clipperr.GradingDegraded.
package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"text/template"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/clipforge/engine/internal/clipperr"
	"github.com/clipforge/engine/internal/model"
)

// Grader scores a single window's text for cogency.
type Grader interface {
	GradeCogency(ctx context.Context, windowID, text string) (model.CogencyResult, error)
}

const maxLogLen = 2000

var promptTmpl = template.Must(template.New("cogency").Parse(
	`You are grading a short transcript excerpt for how logically coherent and
self-contained it is as a standalone video clip. Rate its cogency on an
integer scale from 1 (incoherent, depends entirely on missing context) to
5 (a complete, self-contained thought). Also extract up to 3 directly
quotable lines and up to 8 of the most salient terms.

Respond with a JSON object: {"cogency": <int 1-5>, "quotes": [<string>],
"salient_terms": [<string>]}

Transcript excerpt:
{{.Text}}`))

func buildPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// degraded is the neutral fallback result used whenever grading fails or
// returns unparsable output: the lowest cogency score, so a degraded
// window sinks in the ranking rather than floating to the top on a
// grade it never actually received.
func degraded() model.CogencyResult {
	return model.CogencyResult{Cogency: 1, Quotes: nil, SalientTerms: nil, Degraded: true}
}

// OpenAIGrader grades cogency via an OpenAI-compatible chat completions
// endpoint (the default OpenAI API, or a self-hosted vLLM server pointed
// at by a custom BaseURL).
type OpenAIGrader struct {
	client *openai.Client
	model  string
}

// NewOpenAIGrader returns an OpenAIGrader. If baseURL is non-empty the
// client talks to that endpoint instead of api.openai.com, matching the
// original system's ability to grade against a self-hosted backend.
func NewOpenAIGrader(apiKey, modelName, baseURL string) *OpenAIGrader {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGrader{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}
}

type cogencyResponse struct {
	Cogency      int      `json:"cogency"`
	Quotes       []string `json:"quotes"`
	SalientTerms []string `json:"salient_terms"`
}

// UnmarshalJSON tolerates a grader returning cogency as an integer-shaped
// string ("4") instead of a bare integer, since the wire contract is a
// chat model's free-form JSON, not a strict schema.
func (c *cogencyResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cogency      json.Number `json:"cogency"`
		Quotes       []string    `json:"quotes"`
		SalientTerms []string    `json:"salient_terms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cogency, _ := raw.Cogency.Int64()
	c.Cogency = int(cogency)
	c.Quotes = raw.Quotes
	c.SalientTerms = raw.SalientTerms
	return nil
}

// GradeCogency sends text to the chat completions endpoint in JSON-object
// mode and parses the result, degrading gracefully on any failure.
func (g *OpenAIGrader) GradeCogency(ctx context.Context, windowID, text string) (model.CogencyResult, error) {
	prompt, err := buildPrompt(text)
	if err != nil {
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		log.Printf("[grader:openai] window=%s request failed: %v", windowID, err)
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}
	if len(resp.Choices) == 0 {
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: fmt.Errorf("no choices in response")}
	}

	raw := resp.Choices[0].Message.Content
	var parsed cogencyResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logTruncated("openai", windowID, raw)
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}

	return clampResult(parsed), nil
}

// GeminiGrader grades cogency via the Google Gen AI SDK.
type GeminiGrader struct {
	apiKey string
	model  string
}

// NewGeminiGrader returns a GeminiGrader. model defaults to
// "gemini-2.0-flash" when empty.
func NewGeminiGrader(apiKey, modelName string) *GeminiGrader {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiGrader{apiKey: apiKey, model: modelName}
}

// GradeCogency sends text to Gemini requesting structured JSON output.
func (g *GeminiGrader) GradeCogency(ctx context.Context, windowID, text string) (model.CogencyResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}

	prompt, err := buildPrompt(text)
	if err != nil {
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		log.Printf("[grader:gemini] window=%s request failed: %v", windowID, err)
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}

	raw := resp.Text()
	var parsed cogencyResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logTruncated("gemini", windowID, raw)
		return degraded(), &clipperr.GradingDegraded{WindowID: windowID, Cause: err}
	}

	return clampResult(parsed), nil
}

// clampResult clamps the grader's reported cogency to the valid 1-5 range.
// A reported 0 (out of spec) clamps to 1, the same as an explicit 1: both
// describe the least coherent rating, never the most.
func clampResult(parsed cogencyResponse) model.CogencyResult {
	c := parsed.Cogency
	if c < 1 {
		c = 1
	}
	if c > 5 {
		c = 5
	}
	return model.CogencyResult{
		Cogency:      c,
		Quotes:       capStrings(parsed.Quotes, 3),
		SalientTerms: capStrings(parsed.SalientTerms, 8),
	}
}

// capStrings truncates ss to at most n elements, guarding against a grader
// that ignores the "up to N" limits in the prompt.
func capStrings(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}

func logTruncated(backend, windowID, raw string) {
	if len(raw) > maxLogLen {
		raw = raw[:maxLogLen] + "..."
	}
	log.Printf("[grader:%s] window=%s parse failed, raw response: %s", backend, windowID, raw)
}
