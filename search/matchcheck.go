// ABOUTME: Verification of filter candidates against the pattern
// ABOUTME: matchCheck walks interval chains, polyCheck walks sorted chords in lockstep

package search

import "melodysearch/song"

// matchCheck confirms a candidate first chord found by a filtering kernel:
// starting from each note of that chord it follows one note per subsequent
// chord whose pitch continues the pattern's interval chain. Every confirmed
// chain is reported; overlapping matches differing only in the starting note
// all surface, matches sharing every note but the last collapse to one.
func matchCheck(s *song.Song, chordIndex int, spos uint32, pattern []song.Note, out []Match) []Match {
	chordLen := s.ChordLen(spos)
	matchedNotes := make([]uint32, song.MaxPatternNotes)

	for noteIndex := 0; noteIndex < chordLen; noteIndex++ {
		patternIndex := 0
		found := true
		currentPos := spos
		currentLen := uint32(s.ChordLen(currentPos))

		pitch := int(s.NotePitch(spos + song.ChordHeaderLen + uint32(noteIndex)*song.NoteLen))
		matchedNotes[0] = spos + song.ChordHeaderLen + uint32(noteIndex)*song.NoteLen

		for found && patternIndex < len(pattern)-1 {
			// pitch the next chord must contain
			want := pitch + int(pattern[patternIndex+1].Pitch) - int(pattern[patternIndex].Pitch)

			nextPos := currentPos + song.ChordHeaderLen + currentLen*song.NoteLen
			nextLen := uint32(s.ChordLen(nextPos))

			found = false
			for next := uint32(0); next < nextLen; next++ {
				got := int(s.NotePitch(nextPos + song.ChordHeaderLen + next*song.NoteLen))
				for got < 0 {
					got += song.VocSize
				}
				if want == got {
					found = true
					pitch = want
					matchedNotes[patternIndex+1] = nextPos + song.ChordHeaderLen + next*song.NoteLen
					break
				}
			}

			currentPos = nextPos
			currentLen = nextLen
			patternIndex++
		}

		if found {
			// exact matching implies every note is transposed by the same amount
			transposition := int(s.NotePitch(matchedNotes[0])) - int(pattern[0].Pitch)
			notes := make([]uint32, len(pattern))
			copy(notes, matchedNotes[:len(pattern)])
			out = append(out, Match{
				Song:          s,
				FirstChord:    chordIndex,
				LastChord:     chordIndex + len(pattern) - 1,
				Notes:         notes,
				Transposition: transposition,
			})
		}
	}
	return out
}

// polyCheck confirms a polyphonic candidate: both the source chord and the
// pattern chord are pitch-ascending, so one lockstep walk decides the
// candidate. Exact matching; matched notes are not collected.
func polyCheck(s *song.Song, chordIndex int, spos uint32, pattern []song.Note, patternSize int, out []Match) []Match {
	pi := 0
	ni := uint32(0)
	chordLen := uint32(s.ChordLen(spos))

	for pi < len(pattern) {
		got := s.NotePitch(spos + song.ChordHeaderLen + ni*song.NoteLen)
		switch {
		case got > pattern[pi].Pitch:
			// source pitch overshot the pattern pitch
			return out
		case got < pattern[pi].Pitch:
			if ni == chordLen-1 {
				return out
			}
			ni++
		default:
			if pi == len(pattern)-1 {
				// all pattern notes matched
				pi++
				continue
			}
			if pattern[pi].Onset != pattern[pi+1].Onset {
				// end of pattern chord: advance both to the next chord
				pi++
				ni = 0
				spos += song.ChordHeaderLen + chordLen*song.NoteLen
				chordLen = uint32(s.ChordLen(spos))
			} else {
				if ni == chordLen-1 {
					return out
				}
				ni++
				pi++
			}
		}
	}

	return append(out, Match{
		Song:       s,
		FirstChord: chordIndex,
		LastChord:  chordIndex + patternSize - 1,
	})
}
