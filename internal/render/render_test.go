package render

import (
	"strings"
	"testing"
)

func TestShortsCropFilterProducesTargetAspect(t *testing.T) {
	filter := shortsCropFilter()
	if !strings.Contains(filter, "crop=") || !strings.Contains(filter, "scale=1080:1920") {
		t.Errorf("unexpected crop filter: %s", filter)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\clips\out.srt`)
	want := `C\:\\clips\\out.srt`
	if got != want {
		t.Errorf("escapeFilterPath = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate should not alter short strings, got %q", got)
	}
	if got := truncate("abcdefgh", 4); got != "abcd..." {
		t.Errorf("truncate = %q", got)
	}
}
