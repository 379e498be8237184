// ABOUTME: Naive transposition-invariant weighted edit distance over tracks
// ABOUTME: Column-sweep reference kernel kept as a correctness oracle

package search

import (
	"math"

	"melodysearch/song"
)

// scanDynprog runs the full dynamic program over every track and every
// transposition: substitution costs the absolute pitch difference after
// transposing, insert/delete cost one. Only the single best endpoint across
// tracks and transpositions is reported, when within the error budget.
func scanDynprog(s *song.Song, info *InitInfo) []Match {
	m := info.patternSize
	if m > s.NumChords || info.patternNotes > song.MaxPatternNotes {
		return nil
	}

	const sigma = 128 // MIDI pitch range
	const indel = 1

	pattern := make([]int, m+1)
	for i, n := range info.mono {
		pattern[i+1] = int(n.Pitch)
	}

	oldColumn := make([]int, m+1)
	column := make([]int, m+1)

	minDistance := math.MaxInt32
	minChordIdx := 0
	minTransposition := 0

	for k := 0; k < s.NumTracks; k++ {
		track := s.Tracks[k]
		for tp := -sigma + 1; tp < sigma; tp++ {
			for i := 0; i <= m; i++ {
				oldColumn[i] = i * indel
			}

			for j := 0; j < s.NumChords; j++ {
				column[0] = j * indel
				cell := int(int8(track[j]))
				for i := 1; i <= m; i++ {
					subst := abs(cell-pattern[i]-tp) + oldColumn[i-1]
					ins := indel + column[i-1]
					del := indel + oldColumn[i]

					best := subst
					if ins < best {
						best = ins
					}
					if del < best {
						best = del
					}
					column[i] = best
				}

				if column[m] <= minDistance {
					minDistance = column[m]
					minChordIdx = j
					minTransposition = tp
				}

				oldColumn, column = column, oldColumn
			}
		}
	}

	if minDistance > info.errors*indel {
		return nil
	}
	first := minChordIdx - m + 1
	if first < 0 {
		first = 0
	}
	return []Match{{
		Song:          s,
		FirstChord:    first,
		LastChord:     minChordIdx,
		Transposition: minTransposition,
		Errors:        minDistance,
	}}
}
