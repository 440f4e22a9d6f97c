package models

import (
	"errors"
	"testing"
)

// TestParseFocalStack verifies argument parsing for the focalstack command
func TestParseFocalStack(t *testing.T) {
	p, err := ParseFocalStack([]string{"16", "12", "-1", "1", "0.1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Lenslet != (Lenslet{Width: 16, Height: 12}) {
		t.Errorf("Unexpected lenslet %+v", p.Lenslet)
	}
	if p.MinAlpha != -1 || p.MaxAlpha != 1 || p.DeltaAlpha != 0.1 {
		t.Errorf("Unexpected alphas %+v", p)
	}
}

// TestParseWarp verifies the optional quick flag
func TestParseWarp(t *testing.T) {
	p, err := ParseWarp([]string{"8", "8"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Quick {
		t.Error("Quick mode should be off by default")
	}

	p, err = ParseWarp([]string{"8", "8", "other", "quick"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !p.Quick {
		t.Error("Expected quick mode to be enabled")
	}
}

// TestParsePoint verifies argument parsing for the point command
func TestParsePoint(t *testing.T) {
	p, err := ParsePoint([]string{"4", "4", "0.5", "0.25", "-0.1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.X != 0.5 || p.Y != 0.25 || p.Z != -0.1 {
		t.Errorf("Unexpected point %+v", p)
	}
}

// TestParseUsageErrors verifies that malformed arguments are usage errors
func TestParseUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{"focalstack too few", func() error { _, err := ParseFocalStack([]string{"16", "16", "-1", "1"}); return err }},
		{"focalstack too many", func() error { _, err := ParseFocalStack([]string{"16", "16", "-1", "1", "0.1", "2"}); return err }},
		{"focalstack bad float", func() error { _, err := ParseFocalStack([]string{"16", "16", "x", "1", "0.1"}); return err }},
		{"warp too few", func() error { _, err := ParseWarp([]string{"8"}); return err }},
		{"warp bad int", func() error { _, err := ParseWarp([]string{"8.5", "8"}); return err }},
		{"point too few", func() error { _, err := ParsePoint([]string{"4", "4", "0.5"}); return err }},
		{"point zero lenslet", func() error { _, err := ParsePoint([]string{"0", "4", "0.5", "0.5", "0"}); return err }},
		{"views too many", func() error { _, err := ParseViews([]string{"4", "4", "4"}); return err }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, ErrUsage) {
				t.Errorf("Expected ErrUsage, got %v", err)
			}
		})
	}
}
