// Package batch coordinates a single run of the full pipeline over one
// source video: probe, scene detection and transcription in parallel,
// window generation, scoring (bounded concurrency), ranking, and
// rendering of the top-K windows (bounded concurrency).
package batch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/clipforge/engine/internal/asr"
	"github.com/clipforge/engine/internal/clipperr"
	"github.com/clipforge/engine/internal/config"
	"github.com/clipforge/engine/internal/density"
	"github.com/clipforge/engine/internal/grader"
	"github.com/clipforge/engine/internal/keyphrase"
	"github.com/clipforge/engine/internal/mediaprobe"
	"github.com/clipforge/engine/internal/model"
	"github.com/clipforge/engine/internal/ranker"
	"github.com/clipforge/engine/internal/render"
	"github.com/clipforge/engine/internal/report"
	"github.com/clipforge/engine/internal/scenes"
	"github.com/clipforge/engine/internal/subtitle"
	"github.com/clipforge/engine/internal/transcript"
	"github.com/clipforge/engine/internal/window"
)

// Coordinator wires every pipeline stage together and drives one run.
type Coordinator struct {
	cfg *config.Config

	prober    *mediaprobe.Prober
	detector  *scenes.Detector
	asrClient *asr.Client
	winGen    *window.Generator
	grader    grader.Grader
	ranker    *ranker.Ranker
	renderer  *render.Renderer

	scoreSem  chan struct{}
	renderSem chan struct{}
}

// New builds a Coordinator from cfg, selecting the grader backend cfg
// names and sizing the scoring/rendering semaphores from cfg's
// concurrency caps.
func New(cfg *config.Config) (*Coordinator, error) {
	var g grader.Grader
	switch cfg.Grader {
	case config.GraderOpenAI:
		g = grader.NewOpenAIGrader(cfg.OpenAIKey, cfg.GraderModel, cfg.ASRBaseURL)
	case config.GraderGemini:
		g = grader.NewGeminiGrader(cfg.GeminiAPIKey, cfg.GraderModel)
	default:
		return nil, fmt.Errorf("unknown grader backend %q", cfg.Grader)
	}

	return &Coordinator{
		cfg:       cfg,
		prober:    mediaprobe.New(),
		detector:  scenes.New(cfg.SceneThreshold),
		asrClient: asr.New(cfg.OpenAIKey, cfg.ASRBaseURL),
		winGen:    window.New(cfg.WindowDurationS, cfg.WindowStrideS, cfg.SceneSnapThresholdS, cfg.MinWindowRatio),
		grader:    g,
		ranker:    ranker.New(),
		renderer:  render.New(cfg.TempDir),
		scoreSem:  make(chan struct{}, cfg.ScoreConcurrency),
		renderSem: make(chan struct{}, cfg.RenderConcurrency),
	}, nil
}

// withSemaphore bounds concurrent execution of fn through sem, returning
// early if ctx is cancelled while waiting for a slot.
func withSemaphore(ctx context.Context, sem chan struct{}, label string, fn func() error) error {
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%s cancelled while waiting for slot: %w", label, ctx.Err())
	}
	defer func() { <-sem }()
	return fn()
}

// Run executes the full pipeline against sourcePath and writes a JSON
// report + CSV log under outputDir, returning the report.
func (c *Coordinator) Run(ctx context.Context, sourcePath string, outputDir string) (report.Report, error) {
	runID := uuid.NewString()
	log.Printf("[batch %s] starting run on %s", runID, sourcePath)

	info, err := c.prober.Probe(ctx, sourcePath)
	if err != nil {
		return report.Report{}, err
	}

	// Scenes and transcript are independent of each other; run them
	// concurrently and converge before window generation.
	var cuts []model.SceneCut
	var words []model.WordToken
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detected, err := c.detector.Detect(gctx, sourcePath)
		if err != nil {
			if clipperr.IsFatal(err) {
				return err
			}
			log.Printf("[batch %s] scene detection degraded: %v", runID, err)
			return nil
		}
		cuts = detected
		return nil
	})
	g.Go(func() error {
		audio, err := extractAudioTrack(gctx, sourcePath, c.cfg.TempDir)
		if err != nil {
			return err
		}
		transcribed, err := c.asrClient.Transcribe(gctx, audio, "en")
		if err != nil {
			return err
		}
		words = transcribed
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Report{}, err
	}

	sentences := transcript.AlignToSentences(words)
	windows := c.winGen.Generate(info.DurationS, cuts, sentences)
	if len(windows) == 0 {
		return report.Report{}, fmt.Errorf("no candidate windows generated for %s", sourcePath)
	}

	texts := make([]string, len(windows))
	for i, w := range windows {
		texts[i] = w.Text
	}
	phraseExtractor := keyphrase.NewExtractor()
	phraseExtractor.FitCorpus(texts)
	densityAnalyzer := density.NewAnalyzer()
	densityAnalyzer.FitCorpus(texts)

	ranked, err := c.scoreWindows(ctx, runID, windows, phraseExtractor, densityAnalyzer)
	if err != nil {
		return report.Report{}, err
	}

	topRanked := ranker.Rank(ranked, c.cfg.TopK)

	results := c.renderWindows(ctx, sourcePath, topRanked, outputDir)

	videoID := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	rep := report.Report{
		RunID:       runID,
		VideoID:     videoID,
		SourcePath:  sourcePath,
		GeneratedAt: time.Now(),
		Results:     results,
	}

	if err := report.WriteJSON(rep, filepath.Join(outputDir, "report.json")); err != nil {
		return rep, err
	}
	if err := report.WriteCSV(rep, filepath.Join(outputDir, "report.csv")); err != nil {
		return rep, err
	}

	return rep, nil
}

// scoreWindows scores every window concurrently (bounded by
// scoreConcurrency), tolerating per-window grading failures by degrading
// that window's cogency rather than aborting the whole run.
func (c *Coordinator) scoreWindows(ctx context.Context, runID string, windows []model.Window, phrases *keyphrase.Extractor, densities *density.Analyzer) ([]model.RankedWindow, error) {
	results := make([]model.RankedWindow, len(windows))
	g, gctx := errgroup.WithContext(ctx)

	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			return withSemaphore(gctx, c.scoreSem, fmt.Sprintf("score:%s", w.ID), func() error {
				results[i] = c.scoreOne(gctx, runID, w, phrases, densities)
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Coordinator) scoreOne(ctx context.Context, runID string, w model.Window, phrases *keyphrase.Extractor, densities *density.Analyzer) model.RankedWindow {
	if w.Text == "" {
		return model.RankedWindow{Window: w}
	}

	extracted := phrases.Extract(w.Text, 10)
	kp := make([]model.KeyPhrase, len(extracted))
	for i, p := range extracted {
		kp[i] = model.KeyPhrase{Phrase: p.Text, Score: p.Score, Occurrences: p.Count}
	}

	dm := densities.Analyze(w.Text)

	cogency, err := c.grader.GradeCogency(ctx, w.ID, w.Text)
	if err != nil {
		log.Printf("[batch %s] %v", runID, err)
	}

	score := c.ranker.Score(w, kp, dm, cogency)

	return model.RankedWindow{
		Window:     w,
		KeyPhrases: kp,
		Density:    dm,
		Cogency:    cogency,
		Score:      score,
	}
}

// renderWindows renders the top-ranked windows concurrently (bounded by
// renderConcurrency). A render failure is recorded in the result but does
// not abort rendering of sibling windows.
func (c *Coordinator) renderWindows(ctx context.Context, sourcePath string, ranked []model.RankedWindow, outputDir string) []report.ClipResult {
	results := make([]report.ClipResult, len(ranked))
	var wg errgroup.Group

	for i, rw := range ranked {
		i, rw := i, rw
		rank := i + 1
		wg.Go(func() error {
			_ = withSemaphore(ctx, c.renderSem, fmt.Sprintf("render:%s", rw.Window.ID), func() error {
				results[i] = c.renderOne(ctx, sourcePath, rank, rw, outputDir)
				return nil
			})
			return nil
		})
	}
	_ = wg.Wait()
	return results
}

func (c *Coordinator) renderOne(ctx context.Context, sourcePath string, rank int, rw model.RankedWindow, outputDir string) report.ClipResult {
	outPath := filepath.Join(outputDir, fmt.Sprintf("clip-%02d-%s.mp4", rank, rw.Window.ID))
	srtContent := subtitle.BuildSRT(rw.Window.Sentences, rw.Window.Range)

	srtPath, err := c.renderer.Render(ctx, rw.Window.ID, sourcePath, rw.Window.Range, srtContent, c.cfg.Quality, outPath)
	if err != nil {
		log.Printf("[batch] render failed for window %s: %v", rw.Window.ID, err)
		return report.ClipResult{Rank: rank, Window: rw, Failure: err.Error()}
	}

	clip := &model.RenderedClip{
		WindowID:     rw.Window.ID,
		Rank:         rank,
		Range:        rw.Window.Range,
		OutputPath:   outPath,
		SubtitlePath: srtPath,
	}
	return report.ClipResult{Rank: rank, Window: rw, Clip: clip}
}
