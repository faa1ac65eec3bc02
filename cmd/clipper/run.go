package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipforge/engine/internal/batch"
	"github.com/clipforge/engine/internal/config"
	"github.com/clipforge/engine/internal/external"
)

func newRunCmd() *cobra.Command {
	var (
		sourceURL   string
		topK        int
		outputDir   string
		quality     string
		grader      string
		healthCheck bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full clip pipeline once against a single source video",
		RunE: func(cmd *cobra.Command, args []string) error {
			if healthCheck {
				return runHealthCheck()
			}
			if sourceURL == "" {
				return fmt.Errorf("--url is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if topK > 0 {
				cfg.TopK = topK
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if quality != "" {
				cfg.Quality = config.RenderQuality(quality)
			}
			if grader != "" {
				cfg.Grader = config.GraderBackend(grader)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			fetcher := fetcherFor(sourceURL, cfg.TempDir)
			localPath, err := fetcher.Fetch(ctx, sourceURL)
			if err != nil {
				return fmt.Errorf("fetching source: %w", err)
			}

			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}

			coordinator, err := batch.New(cfg)
			if err != nil {
				return fmt.Errorf("building coordinator: %w", err)
			}

			rep, err := coordinator.Run(ctx, localPath, cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("running pipeline: %w", err)
			}

			log.Printf("run %s complete: %d clips written to %s", rep.RunID, len(rep.Results), cfg.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURL, "url", "", "source video path or URL")
	cmd.Flags().IntVar(&topK, "k", 0, "number of top clips to render (overrides config default)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory to write rendered clips and report to")
	cmd.Flags().StringVar(&quality, "quality", "", "render quality: high, medium, or fast")
	cmd.Flags().StringVar(&grader, "grader", "", "cogency grader backend: openai or gemini")
	cmd.Flags().BoolVar(&healthCheck, "health-check", false, "verify ffmpeg/ffprobe are reachable and exit")

	return cmd
}

// fetcherFor picks a Fetcher based on source's scheme: http(s) URLs are
// downloaded, everything else is treated as a local path.
func fetcherFor(source, tempDir string) external.Fetcher {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return external.NewHTTPFetcher(tempDir)
	}
	return external.NewLocalFileFetcher()
}

func runHealthCheck() error {
	for _, binary := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("%s not found on PATH: %w", binary, err)
		}
	}
	fmt.Println("ok")
	return nil
}
