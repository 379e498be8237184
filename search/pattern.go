// ABOUTME: Query pattern type and its monophonic/polyphonic views
// ABOUTME: Pattern onsets use the canonical 960 units-per-quarter-note resolution

package search

import (
	"sort"

	"melodysearch/song"
)

// Pattern is the query: an ordered note sequence with onsets in the
// canonical resolution of 960 units per quarter note. Kernels rescale to
// each song's own resolution at scan time.
type Pattern []song.Note

// Monophonic returns the pattern reduced to one note per distinct onset,
// keeping the lowest pitch. Interval-only filters run on this view.
func (p Pattern) Monophonic() []song.Note {
	poly := p.Polyphonic()
	mono := make([]song.Note, 0, len(poly))
	for _, n := range poly {
		if len(mono) > 0 && mono[len(mono)-1].Onset == n.Onset {
			continue
		}
		mono = append(mono, n)
	}
	return mono
}

// Polyphonic returns all pattern notes sorted by (onset, pitch), the order
// the checkers and geometric kernels require.
func (p Pattern) Polyphonic() []song.Note {
	poly := make([]song.Note, len(p))
	copy(poly, p)
	sort.SliceStable(poly, func(i, j int) bool {
		if poly[i].Onset != poly[j].Onset {
			return poly[i].Onset < poly[j].Onset
		}
		return poly[i].Pitch < poly[j].Pitch
	})
	return poly
}

// scaleOnset converts a canonical pattern onset to the song's resolution.
func scaleOnset(onset uint32, quarterNoteDuration uint32) uint32 {
	return onset * quarterNoteDuration / song.PatternResolution
}
