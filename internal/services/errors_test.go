package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "runner", "execute", "transcode failed", base)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "stager", "commit", "rename failed", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestMessageStripsMarkerPrefix(t *testing.T) {
	err := Wrap(ErrValidation, "builder", "build", "unknown mode", nil)
	got := Message(err)
	want := "builder: build: unknown mode"
	if got != want {
		t.Fatalf("Message() = %q, want %q", got, want)
	}
}

func TestMessageNil(t *testing.T) {
	if got := Message(nil); got != "" {
		t.Fatalf("Message(nil) = %q, want empty", got)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrTimeout, "", "", "", nil)
	if Message(err) != "service failure" {
		t.Fatalf("unexpected detail: %q", Message(err))
	}
}
