// ABOUTME: Shared fixtures for kernel tests
// ABOUTME: Builds small columnar songs from pitch grids

package search

import (
	"testing"

	"melodysearch/song"
)

// testQuarter is the quarter-note duration used by test songs.
const testQuarter = 480

// buildMonoSong builds a song of single-note chords, one per quarter note,
// all on track 0.
func buildMonoSong(t *testing.T, pitches []int8) *song.Song {
	t.Helper()
	notes := make([]song.Note, len(pitches))
	for i, p := range pitches {
		notes[i] = song.Note{
			Onset:    uint32(i) * testQuarter,
			Pitch:    p,
			Duration: testQuarter / 2,
			Track:    0,
		}
	}
	return mustBuild(t, notes)
}

// buildChordSong builds a song from a chord grid, one chord per quarter note,
// all on track 0.
func buildChordSong(t *testing.T, chords [][]int8) *song.Song {
	t.Helper()
	var notes []song.Note
	for c, chord := range chords {
		for _, p := range chord {
			notes = append(notes, song.Note{
				Onset:    uint32(c) * testQuarter,
				Pitch:    p,
				Duration: testQuarter / 2,
				Track:    0,
			})
		}
	}
	return mustBuild(t, notes)
}

// buildTrackSong builds a song from per-track pitch rows, song.Gap marking
// silent cells. Row k becomes track k.
func buildTrackSong(t *testing.T, rows [][]int16) *song.Song {
	t.Helper()
	var notes []song.Note
	for k, row := range rows {
		for c, p := range row {
			if p == song.Gap {
				continue
			}
			notes = append(notes, song.Note{
				Onset:    uint32(c) * testQuarter,
				Pitch:    int8(p),
				Duration: testQuarter / 2,
				Track:    uint8(k),
			})
		}
	}
	return mustBuild(t, notes)
}

func mustBuild(t *testing.T, notes []song.Note) *song.Song {
	t.Helper()
	s, err := song.Build("test", "Test Song", notes, testQuarter, nil)
	if err != nil {
		t.Fatalf("Failed to build song: %v", err)
	}
	return s
}

// monoPattern lays pattern pitches one canonical quarter note apart.
func monoPattern(pitches ...int8) Pattern {
	p := make(Pattern, len(pitches))
	for i, pitch := range pitches {
		p[i] = song.Note{
			Onset:    uint32(i) * song.PatternResolution,
			Pitch:    pitch,
			Duration: song.PatternResolution / 2,
		}
	}
	return p
}

// mustInit initializes a kernel or fails the test.
func mustInit(t *testing.T, a Algorithm, p Pattern, opts Options) *InitInfo {
	t.Helper()
	info, err := a.Init(p, opts)
	if err != nil {
		t.Fatalf("Init(%s) failed: %v", a, err)
	}
	return info
}
