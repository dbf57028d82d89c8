package services_test

import (
	"errors"
	"strings"
	"testing"

	"vadseg/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrIO, "smoothing", "load", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"smoothing", "load", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToIO(t *testing.T) {
	err := services.Wrap(nil, "segtable", "write", "", errors.New("disk full"))
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		marker error
		want   string
	}{
		{services.ErrConfiguration, "configuration"},
		{services.ErrDegenerateInput, "degenerate_input"},
		{services.ErrDecode, "decode"},
		{services.ErrIO, "io"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "postprocess", "calibrate", "", nil)
		if got := services.Kind(err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.marker, got, tc.want)
		}
	}
	if got := services.Kind(errors.New("plain")); got != "failure" {
		t.Fatalf("expected failure for untagged error, got %q", got)
	}
	if got := services.Kind(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
}
