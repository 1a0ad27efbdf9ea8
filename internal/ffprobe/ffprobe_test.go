package ffprobe

import (
	"context"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "duration": "12.480000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2}
  ],
  "format": {"filename": "clip.mp4", "duration": "12.520000", "size": "1048576", "format_name": "mov,mp4,m4a"}
}`

func TestParse(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}

	w, h := result.Dimensions()
	if w != 1920 || h != 1080 {
		t.Fatalf("dimensions = %dx%d, want 1920x1080", w, h)
	}
	if !result.HasAudio() {
		t.Fatal("expected audio stream")
	}
	if got := result.DurationSeconds(); got != 12.52 {
		t.Fatalf("duration = %v, want 12.52", got)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDurationFallsBackToVideoStream(t *testing.T) {
	result, err := Parse([]byte(`{
	  "streams": [{"codec_type": "video", "width": 640, "height": 480, "duration": "3.5"}],
	  "format": {}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := result.DurationSeconds(); got != 3.5 {
		t.Fatalf("duration = %v, want 3.5", got)
	}
}

func TestNoVideoStream(t *testing.T) {
	result, err := Parse([]byte(`{"streams": [{"codec_type": "audio"}], "format": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.VideoStream(); ok {
		t.Fatal("expected no video stream")
	}
	if w, h := result.Dimensions(); w != 0 || h != 0 {
		t.Fatalf("dimensions = %dx%d, want zeros", w, h)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := NewCLI("").Inspect(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
