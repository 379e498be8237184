// ABOUTME: Builds the columnar song layout from a flat note list
// ABOUTME: Packs chords, computes interval bitmaps, track rows and P3 turning points

package song

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

var errNoNotes = errors.New("song has no notes")

// Build packs a flat note list into the columnar layout. Notes are grouped
// into chords by onset, sorted pitch-ascending within a chord, and the
// parallel preprocessed, track and turning-point structures are derived in
// the same pass over the packed buffer.
func Build(id, title string, notes []Note, quarterNoteDuration uint32, sigs []TimeSignature) (*Song, error) {
	if len(notes) == 0 {
		return nil, errNoNotes
	}
	if quarterNoteDuration == 0 {
		return nil, errors.New("quarter-note duration must be positive")
	}

	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Onset != sorted[j].Onset {
			return sorted[i].Onset < sorted[j].Onset
		}
		return sorted[i].Pitch < sorted[j].Pitch
	})

	numTracks := 0
	for _, n := range sorted {
		if int(n.Track)+1 > numTracks {
			numTracks = int(n.Track) + 1
		}
	}

	s := &Song{
		ID:                  id,
		Title:               title,
		NumNotes:            len(sorted),
		NumTracks:           numTracks,
		QuarterNoteDuration: quarterNoteDuration,
		TimeSignatures:      sigs,
	}

	if err := packChords(s, sorted); err != nil {
		return nil, err
	}
	preprocess(s)
	buildTracks(s)
	buildTurningPoints(s, sorted)
	return s, nil
}

// packChords writes the chord buffer and counts chords.
func packChords(s *Song, sorted []Note) error {
	var buf []byte
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Onset == sorted[i].Onset {
			j++
		}
		if j-i > math.MaxUint8 {
			return fmt.Errorf("chord at onset %d has %d notes", sorted[i].Onset, j-i)
		}
		var hdr [ChordHeaderLen]byte
		hdr[0] = byte(j - i)
		binary.LittleEndian.PutUint32(hdr[1:], sorted[i].Onset)
		buf = append(buf, hdr[:]...)
		for ; i < j; i++ {
			var nb [NoteLen]byte
			nb[0] = byte(sorted[i].Pitch)
			binary.LittleEndian.PutUint16(nb[1:], sorted[i].Duration)
			nb[3] = sorted[i].Track
			buf = append(buf, nb[:]...)
		}
		s.NumChords++
	}
	if len(buf) > math.MaxUint32 {
		return fmt.Errorf("chord buffer overflows offset space: %d bytes", len(buf))
	}
	s.Chords = buf
	return nil
}

// rcs is a right circular shift within the low width bits.
func rcs(value, width, amount uint16) uint16 {
	mask := uint16(1)<<width - 1
	return ((value << (width - amount)) | (value >> amount)) & mask
}

// preprocess fills Preprocessed: per-chord byte offsets and 12-bit interval
// bitmaps between successive chords. A cleared bit means the interval is
// present. Intervals are octave equivalent; intervals of chords with more
// than one note are combined by circular-shifting the base intervals by the
// in-chord pitch differences.
func preprocess(s *Song) {
	const ones = uint16(1)<<VocSize - 1
	s.Preprocessed = make([]byte, s.NumChords*PPItemSize+4)

	var spos uint32
	for c := 0; c < s.NumChords; c++ {
		item := s.Preprocessed[c*PPItemSize:]
		binary.LittleEndian.PutUint32(item, spos)

		chordLen := uint32(s.Chords[spos])
		bitmap := ones
		if c < s.NumChords-1 {
			nextPos := spos + ChordHeaderLen + chordLen*NoteLen
			nextLen := uint32(s.Chords[nextPos])

			base := int(int8(s.Chords[spos+ChordHeaderLen]))

			// intervals between the base note and every note of the next chord
			for i := uint32(0); i < nextLen; i++ {
				b := pitchClass(int(int8(s.Chords[nextPos+ChordHeaderLen+i*NoteLen])) - base)
				bitmap &^= 1 << b
			}

			// fold in the other notes of this chord by shifting the base intervals
			shifts := ones
			for i := uint32(1); i < chordLen; i++ {
				amount := pitchClass(int(int8(s.Chords[spos+ChordHeaderLen+i*NoteLen])) - base)
				shifts &= rcs(bitmap, VocSize, uint16(amount))
			}
			bitmap &= shifts
		}
		binary.LittleEndian.PutUint16(item[4:], bitmap)

		spos += ChordHeaderLen + chordLen*NoteLen
	}
	binary.LittleEndian.PutUint32(s.Preprocessed[s.NumChords*PPItemSize:], spos)
}

// pitchClass maps a pitch difference to [0, VocSize).
func pitchClass(d int) int {
	d %= VocSize
	if d < 0 {
		d += VocSize
	}
	return d
}

// buildTracks fills Tracks[k][c] with the highest pitch on track k in chord
// c, or Gap where the track is silent. Notes within a chord are
// pitch-ascending, so the last note of a track in a chord wins.
func buildTracks(s *Song) {
	s.Tracks = make([][]byte, s.NumTracks)
	for k := range s.Tracks {
		row := make([]byte, s.NumChords)
		for c := range row {
			row[c] = Gap
		}
		s.Tracks[k] = row
	}
	for c := 0; c < s.NumChords; c++ {
		off := s.ChordOffset(c)
		n := s.ChordLen(off)
		for i := 0; i < n; i++ {
			noff := off + ChordHeaderLen + uint32(i)*NoteLen
			s.Tracks[s.Chords[noff+3]][c] = s.Chords[noff]
		}
	}
}

// segment is one (pitch, onset, end) interval used while merging for P3.
type segment struct {
	pitch      uint8
	start, end uint32
	chordIndex uint32
}

// buildTurningPoints derives the x-sorted start and end point arrays for the
// P3 sweepline. Overlapping or touching segments on the same pitch are merged
// first; without merging the accumulated common time of a sustained repeat
// would exceed the pattern duration.
func buildTurningPoints(s *Song, sorted []Note) {
	segs := make([]segment, 0, len(sorted))
	chordIndex := uint32(0)
	prevOnset := sorted[0].Onset
	for _, n := range sorted {
		if n.Onset != prevOnset {
			chordIndex++
			prevOnset = n.Onset
		}
		segs = append(segs, segment{
			pitch:      uint8(n.Pitch),
			start:      n.Onset,
			end:        n.Onset + uint32(n.Duration),
			chordIndex: chordIndex,
		})
	}

	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].pitch != segs[j].pitch {
			return segs[i].pitch < segs[j].pitch
		}
		return segs[i].start < segs[j].start
	})

	merged := segs[:0]
	for _, sg := range segs {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.pitch == sg.pitch && sg.start <= last.end {
				if sg.end > last.end {
					last.end = sg.end
				}
				continue
			}
		}
		merged = append(merged, sg)
	}

	s.StartPoints = make([]TurningPoint, len(merged))
	s.EndPoints = make([]TurningPoint, len(merged))
	for i, sg := range merged {
		s.StartPoints[i] = TurningPoint{X: sg.start, Y: sg.pitch, ChordIndex: sg.chordIndex}
		s.EndPoints[i] = TurningPoint{X: sg.end, Y: sg.pitch, ChordIndex: sg.chordIndex}
	}
	sort.SliceStable(s.StartPoints, func(i, j int) bool { return s.StartPoints[i].X < s.StartPoints[j].X })
	sort.SliceStable(s.EndPoints, func(i, j int) bool { return s.EndPoints[i].X < s.EndPoints[j].X })
}
