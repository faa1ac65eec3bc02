package batch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// extractAudioTrack pulls the audio track out of sourcePath as 16kHz mono
// WAV, the format the transcription backend expects, and returns its
// bytes. The temp file is removed before returning.
func extractAudioTrack(ctx context.Context, sourcePath, tempDir string) ([]byte, error) {
	outPath := filepath.Join(tempDir, fmt.Sprintf("audio-%s.wav", uuid.NewString()))
	defer os.Remove(outPath)

	args := []string{
		"-i", sourcePath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		"-y",
		outPath,
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("extracting audio track: %w: %s", err, truncate(string(out), 2000))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading extracted audio: %w", err)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
