// ABOUTME: Geometric kernel P1: exact occurrence of the full pattern point set
// ABOUTME: Sweepline over (onset, pitch) points with persistent per-note cursors

package search

import (
	"math"

	"melodysearch/song"
)

// p1Cursor tracks the furthest source point reached for one pattern note.
// Onset/pitch are kept alongside the note's byte offset and chord index so
// comparisons do not re-decode the buffer.
type p1Cursor struct {
	onset      int64
	pitch      int
	noteOff    uint32
	chordIndex int
}

// scanGeometricP1 anchors the first pattern point on every source note in
// turn, derives the translation f, and advances the remaining pattern
// points' cursors until each either lands exactly on its translated target
// or overshoots it. For every anchor each walk restarts just past the anchor
// note; the stored cursor decides an anchor without walking only when it
// already lies at or past the target.
func scanGeometricP1(s *song.Song, info *InitInfo) []Match {
	m := info.patternNotes
	if m > s.NumChords || m > song.MaxPatternNotes || m > s.NumNotes {
		return nil
	}

	// rescale pattern onsets to the song's resolution
	p := make([]song.Note, m)
	for i, n := range info.poly {
		p[i] = n
		p[i].Onset = scaleOnset(n.Onset, s.QuarterNoteDuration)
	}

	q := make([]p1Cursor, m)
	for i := range q {
		q[i] = p1Cursor{onset: math.MinInt64, pitch: math.MinInt32}
	}

	var out []Match
	cur := s.Start()
	for anchor := 0; anchor <= s.NumNotes-m; anchor++ {
		fOnset := int64(s.ChordOnset(cur.ChordOffset)) - int64(p[0].Onset)
		fPitch := int(s.NotePitch(cur.NoteOffset)) - int(p[0].Pitch)

		matched := []uint32{cur.NoteOffset}

		ok := true
		for pi := 1; pi < m; pi++ {
			target := p1Cursor{
				onset: int64(p[pi].Onset) + fOnset,
				pitch: int(p[pi].Pitch) + fPitch,
			}

			// restart a walk just past the anchor; the persistent cursor may
			// already be ahead of it
			temp := cur
			if !s.NextNote(&temp) {
				ok = false
				break
			}
			if cursorLess(q[pi], noteCursor(s, temp)) {
				q[pi] = noteCursor(s, temp)
			}
			for cursorLess(q[pi], target) {
				if !s.NextNote(&temp) {
					ok = false
					break
				}
				q[pi] = noteCursor(s, temp)
			}
			if !ok || cursorLess(target, q[pi]) {
				ok = false
				break
			}
			matched = append(matched, q[pi].noteOff)
		}

		if ok {
			last := cur.ChordIndex
			if m > 1 {
				last = q[m-1].chordIndex
			}
			out = append(out, Match{
				Song:          s,
				FirstChord:    cur.ChordIndex,
				LastChord:     last,
				Notes:         matched,
				Transposition: fPitch,
			})
		}

		if !s.NextNote(&cur) {
			break
		}
	}
	return out
}

// noteCursor snapshots the note under a walking cursor.
func noteCursor(s *song.Song, c song.Cursor) p1Cursor {
	return p1Cursor{
		onset:      int64(s.ChordOnset(c.ChordOffset)),
		pitch:      int(s.NotePitch(c.NoteOffset)),
		noteOff:    c.NoteOffset,
		chordIndex: c.ChordIndex,
	}
}

// cursorLess orders cursors lexicographically by (onset, pitch).
func cursorLess(a, b p1Cursor) bool {
	if a.onset != b.onset {
		return a.onset < b.onset
	}
	return a.pitch < b.pitch
}
