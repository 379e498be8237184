// ABOUTME: Tests for the command-line pattern notation parser
// ABOUTME: Bare pitch lists, onset:pitch:duration triples and rejections

package main

import (
	"testing"

	"melodysearch/song"
)

// TestParsePattern verifies both notations and their error paths.
func TestParsePattern(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expectLen   int
	}{
		{"bare pitches", "60,62,64", false, 3},
		{"with spaces", " 60, 62 ,64 ", false, 3},
		{"triples", "0:60:480,960:64:480", false, 2},
		{"trailing comma", "60,62,", false, 2},
		{"empty", "", true, 0},
		{"bad pitch", "60,banana", true, 0},
		{"pitch out of range", "60,200", true, 0},
		{"negative pitch", "-5", true, 0},
		{"malformed triple", "0:60", true, 0},
		{"bad duration", "0:60:zz", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePattern(tt.input)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(p) != tt.expectLen {
				t.Errorf("Expected %d notes, got %d", tt.expectLen, len(p))
			}
		})
	}
}

// TestParsePatternBareLayout verifies that bare pitches land one canonical
// quarter apart with the default duration.
func TestParsePatternBareLayout(t *testing.T) {
	p, err := ParsePattern("60,64")
	if err != nil {
		t.Fatalf("ParsePattern failed: %v", err)
	}
	if p[0].Onset != 0 || p[1].Onset != song.PatternResolution {
		t.Errorf("Onsets %d, %d; want 0, %d", p[0].Onset, p[1].Onset, song.PatternResolution)
	}
	if p[1].Pitch != 64 || p[1].Duration != defaultNoteDuration {
		t.Errorf("Note 1 = %+v", p[1])
	}
}

// TestParsePatternLimit verifies the note-count cap.
func TestParsePatternLimit(t *testing.T) {
	input := ""
	for i := 0; i <= song.MaxPatternNotes; i++ {
		if i > 0 {
			input += ","
		}
		input += "60"
	}
	if _, err := ParsePattern(input); err == nil {
		t.Error("Expected error for an oversized pattern")
	}
}
