// ABOUTME: Geometric kernel P2: partial occurrences with missing pattern points
// ABOUTME: Tournament queue drains translation vectors in sorted order and counts votes

package search

import (
	"melodysearch/song"
)

// p2Cursor is one per-pattern-note position in the source.
type p2Cursor struct {
	chordIndex int
	chordOff   uint32
	noteOff    uint32
	notesLeft  int
}

// scanGeometricP2 keeps one source cursor per pattern note and extracts the
// pending translation vectors in ascending (onset, pitch) order through a
// tournament queue. Runs of equal vectors vote for the same translation; a
// run of c >= patternNotes - errors votes is reported as a match with
// patternNotes - c missing points. Matches are emitted in extraction order,
// deterministic for a given (song, pattern) pair; a run still open when the
// vector stream ends is not reported.
func scanGeometricP2(s *song.Song, info *InitInfo) []Match {
	m := info.patternNotes
	if info.patternSize > s.NumChords || m > song.MaxPatternNotes {
		return nil
	}
	minPatternSize := m - info.errors

	p := make([]song.Note, m)
	for i, n := range info.poly {
		p[i] = n
		p[i].Onset = scaleOnset(n.Onset, s.QuarterNoteDuration)
	}

	pq := newPairQueue(m)
	q := make([]p2Cursor, m)
	for i := range q {
		q[i] = p2Cursor{
			chordIndex: 0,
			chordOff:   0,
			noteOff:    song.ChordHeaderLen,
			notesLeft:  s.ChordLen(0) - 1,
		}
		pq.update(i,
			int64(s.ChordOnset(0))-int64(p[i].Onset),
			int(s.NotePitch(q[i].noteOff))-int(p[i].Pitch))
	}

	var out []Match
	matched := make([]uint32, song.MaxPatternNotes)
	var (
		prevSet              bool
		prevOnset            int64
		prevPitch            int
		c                    int
		minChordIdx, maxChordIdx int
	)

	numLoops := s.NumNotes * m
	for loop := 0; loop < numLoops; loop++ {
		min := pq.min()
		h := min.slot

		if prevSet && prevOnset == min.onset && prevPitch == min.pitch {
			maxChordIdx = q[h].chordIndex
			c++
			if c <= len(matched) {
				matched[c-1] = q[h].noteOff
			}
		} else {
			if prevSet && c >= minPatternSize {
				notes := make([]uint32, c)
				copy(notes, matched[:c])
				out = append(out, Match{
					Song:          s,
					FirstChord:    minChordIdx,
					LastChord:     maxChordIdx,
					Notes:         notes,
					Transposition: prevPitch,
					Errors:        m - c,
				})
			}
			prevSet = true
			prevOnset = min.onset
			prevPitch = min.pitch
			minChordIdx = q[h].chordIndex
			maxChordIdx = q[h].chordIndex
			matched[0] = q[h].noteOff
			c = 1
		}

		// advance cursor h to the next source note
		switch {
		case q[h].notesLeft > 0:
			q[h].notesLeft--
			q[h].noteOff += song.NoteLen
			pq.update(h,
				int64(s.ChordOnset(q[h].chordOff))-int64(p[h].Onset),
				int(s.NotePitch(q[h].noteOff))-int(p[h].Pitch))
		case q[h].chordIndex < s.NumChords-1:
			q[h].chordIndex++
			q[h].chordOff = q[h].noteOff + song.NoteLen
			q[h].noteOff = q[h].chordOff + song.ChordHeaderLen
			q[h].notesLeft = s.ChordLen(q[h].chordOff) - 1
			pq.update(h,
				int64(s.ChordOnset(q[h].chordOff))-int64(p[h].Onset),
				int(s.NotePitch(q[h].noteOff))-int(p[h].Pitch))
		default:
			pq.remove(h)
		}
	}
	return out
}
