package mediaprobe

import "testing"

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"", 0},
		{"garbage", 0},
		{"1/0", 0},
	}
	for _, c := range cases {
		got := parseFrameRate(c.in)
		if diff := got - c.want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("parseFrameRate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestProbeMissingFile(t *testing.T) {
	p := New()
	_, err := p.Probe(t.Context(), "/nonexistent/path/video.mp4")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
