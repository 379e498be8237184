// ABOUTME: Tests for the geometric sweepline kernels P1, P2 and P3
// ABOUTME: Exact translation, partial occurrence counting and common-time matching

package search

import (
	"testing"
)

// TestGeometricP1Exact verifies the resolution-scaling scenario: pattern
// onsets in canonical 960 units against a 480-unit song.
func TestGeometricP1Exact(t *testing.T) {
	s := buildMonoSong(t, []int8{60, 64, 67, 69})

	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 64, Duration: 480},
		{Onset: 1920, Pitch: 67, Duration: 480},
	}
	info := mustInit(t, GeometricP1, pattern, Options{})

	matches := GeometricP1.Scan(s, info)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Transposition != 0 {
		t.Errorf("Expected transposition 0, got %+d", m.Transposition)
	}
	if len(m.Notes) != 3 {
		t.Fatalf("Expected 3 matched notes, got %d", len(m.Notes))
	}
	for i, want := range []int8{60, 64, 67} {
		if got := s.NotePitch(m.Notes[i]); got != want {
			t.Errorf("Matched note %d has pitch %d, want %d", i, got, want)
		}
	}
}

// TestGeometricP1Translated verifies matching under a nonzero translation
// vector and the round-trip property: shifting the pattern shifts the
// reported transposition the opposite way.
func TestGeometricP1Translated(t *testing.T) {
	s := buildMonoSong(t, []int8{50, 65, 69, 72, 80})

	base := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 64, Duration: 480},
		{Onset: 1920, Pitch: 67, Duration: 480},
	}
	info := mustInit(t, GeometricP1, base, Options{})
	matches := GeometricP1.Scan(s, info)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Transposition != 5 {
		t.Errorf("Expected transposition +5, got %+d", matches[0].Transposition)
	}

	shifted := make(Pattern, len(base))
	for i, n := range base {
		shifted[i] = n
		shifted[i].Pitch += 2
	}
	info = mustInit(t, GeometricP1, shifted, Options{})
	matches = GeometricP1.Scan(s, info)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match for the shifted pattern, got %d", len(matches))
	}
	if matches[0].Transposition != 3 {
		t.Errorf("Expected transposition +3 after shifting the pattern by +2, got %+d", matches[0].Transposition)
	}
}

// TestGeometricP1NoMatch verifies that near misses in either dimension fail.
func TestGeometricP1NoMatch(t *testing.T) {
	tests := []struct {
		name    string
		pitches []int8
	}{
		{"wrong pitch", []int8{60, 64, 68}},
		{"missing middle note", []int8{60, 62, 67}},
	}
	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 64, Duration: 480},
		{Onset: 1920, Pitch: 67, Duration: 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildMonoSong(t, tt.pitches)
			info := mustInit(t, GeometricP1, pattern, Options{})
			if matches := GeometricP1.Scan(s, info); len(matches) != 0 {
				t.Errorf("Expected no matches, got %d", len(matches))
			}
		})
	}
}

// TestGeometricP2Partial verifies partial occurrences: with an error budget,
// translations hit by enough pattern points are reported.
func TestGeometricP2Partial(t *testing.T) {
	// notes at quarters: 60, 64, 69 -- the pattern's third point (67) is absent
	s := buildMonoSong(t, []int8{60, 64, 69})
	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 64, Duration: 480},
		{Onset: 1920, Pitch: 67, Duration: 480},
	}

	info := mustInit(t, GeometricP2, pattern, Options{Errors: 1})
	matches := GeometricP2.Scan(s, info)

	found := false
	for _, m := range matches {
		if m.Transposition == 0 && m.Errors == 1 {
			found = true
			if len(m.Notes) != 2 {
				t.Errorf("Expected 2 matched notes, got %d", len(m.Notes))
			}
		}
	}
	if !found {
		t.Errorf("Expected a 2-of-3 match at translation 0, got %+v", matches)
	}
}

// TestGeometricP2Exact verifies that with no error budget only complete
// translations are reported.
func TestGeometricP2Exact(t *testing.T) {
	s := buildMonoSong(t, []int8{60, 62, 64})
	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 62, Duration: 480},
	}
	info := mustInit(t, GeometricP2, pattern, Options{})
	matches := GeometricP2.Scan(s, info)

	// translations (0,0) and (480,+2) both map the whole pattern into the song
	if len(matches) != 2 {
		t.Fatalf("Expected 2 complete translations, got %d: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if m.Errors != 0 {
			t.Errorf("Expected errors 0, got %d", m.Errors)
		}
	}
	if matches[0].Transposition != 0 || matches[1].Transposition != 2 {
		t.Errorf("Expected transpositions 0 and +2, got %+d and %+d",
			matches[0].Transposition, matches[1].Transposition)
	}
}

// TestGeometricP3CommonTime verifies the best-translation report and its
// approximate chord range.
func TestGeometricP3CommonTime(t *testing.T) {
	s := buildMonoSong(t, []int8{60, 64, 67})

	// eighth-length notes lining up with the song's notes at translation 0
	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 64, Duration: 480},
		{Onset: 1920, Pitch: 67, Duration: 480},
	}
	info := mustInit(t, GeometricP3, pattern, Options{})
	matches := GeometricP3.Scan(s, info)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Transposition != 0 {
		t.Errorf("Expected transposition 0, got %+d", m.Transposition)
	}
	if m.FirstChord != 0 {
		t.Errorf("Expected approximate first chord 0, got %d", m.FirstChord)
	}
	if m.Duration <= 0 {
		t.Errorf("Expected a positive common time, got %d", m.Duration)
	}
}

// TestGeometricP3BelowThreshold verifies that a translation covering less
// than three quarters of the pattern duration is not reported.
func TestGeometricP3BelowThreshold(t *testing.T) {
	s := buildMonoSong(t, []int8{60, 99, 101})
	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 240},
		{Onset: 960, Pitch: 64, Duration: 240},
		{Onset: 1920, Pitch: 67, Duration: 240},
	}
	info := mustInit(t, GeometricP3, pattern, Options{})
	if matches := GeometricP3.Scan(s, info); len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}

// TestGeometricOversizedPattern verifies the empty-result contract across
// the geometric kernels.
func TestGeometricOversizedPattern(t *testing.T) {
	s := buildMonoSong(t, []int8{60})
	pattern := Pattern{
		{Onset: 0, Pitch: 60, Duration: 480},
		{Onset: 960, Pitch: 64, Duration: 480},
	}
	for _, alg := range []Algorithm{GeometricP1, GeometricP2, GeometricP3} {
		info := mustInit(t, alg, pattern, Options{})
		if matches := alg.Scan(s, info); len(matches) != 0 {
			t.Errorf("%s: expected no matches, got %d", alg, len(matches))
		}
	}
}
