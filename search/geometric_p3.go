// ABOUTME: Geometric kernel P3: longest common sounding time under translation
// ABOUTME: Sweepline over note turning points with a 256-slot vertical table

package search

import (
	"math"

	"melodysearch/song"
)

// verticalSlot accumulates common time for one vertical translation y:
// the slope counts currently open segment overlaps, value integrates
// slope over the swept x distance.
type verticalSlot struct {
	slope int
	value int
	prevX int64
}

// scanGeometricP3 sweeps translation vectors in ascending x. Every pattern
// note crossed with every source turning point yields four vectors
// (pattern start/end x text start/end); extracting them in order drives the
// slope/value integration per vertical translation. Only the best
// translation is reported, and only when its common time exceeds 3/4 of the
// total pattern duration. The reported chord range is an approximation
// widened by the pattern note count around the chord of the best turning
// point.
func scanGeometricP3(s *song.Song, info *InitInfo) []Match {
	m := info.patternNotes
	if info.patternSize > s.NumChords || m > song.MaxPatternNotes {
		return nil
	}
	numTPoints := len(s.StartPoints)
	if numTPoints == 0 {
		return nil
	}

	p := make([]song.Note, m)
	durSum := 0
	for i, n := range info.poly {
		p[i] = n
		p[i].Onset = scaleOnset(n.Onset, s.QuarterNoteDuration)
		p[i].Duration = uint16(scaleOnset(uint32(n.Duration), s.QuarterNoteDuration))
		durSum += int(p[i].Duration)
	}
	// matches must cover more than three quarters of the pattern's total time
	minDurSum := int(float64(durSum) * 0.75)

	table := make([]verticalSlot, 256)
	pq := newP3Queue(4 * m)

	slot := 0
	for i := 0; i < m; i++ {
		start := s.StartPoints[0]
		end := s.EndPoints[0]
		pStart := int64(p[i].Onset)
		pEnd := int64(p[i].Onset) + int64(p[i].Duration)

		for _, v := range []translationVector{
			{tpIndex: 0, patternIndex: i, y: int64(start.Y) - int64(p[i].Pitch), x: int64(start.X) - pEnd, textStart: true, patternStart: false},
			{tpIndex: 0, patternIndex: i, y: int64(start.Y) - int64(p[i].Pitch), x: int64(start.X) - pStart, textStart: true, patternStart: true},
			{tpIndex: 0, patternIndex: i, y: int64(end.Y) - int64(p[i].Pitch), x: int64(end.X) - pEnd, textStart: false, patternStart: false},
			{tpIndex: 0, patternIndex: i, y: int64(end.Y) - int64(p[i].Pitch), x: int64(end.X) - pStart, textStart: false, patternStart: true},
		} {
			pq.update(p3Node{key: slot, vector: v})
			slot++
		}
	}

	best := 0
	transposition := math.MaxInt32
	endChordIdx := 0

	numLoops := m * numTPoints * 4
	for loop := 0; loop < numLoops; loop++ {
		min := pq.min()
		v := min.vector

		if idx := 127 + int(v.y); idx >= 0 && idx < len(table) {
			item := &table[idx]
			item.value += item.slope * int(v.x-item.prevX)
			item.prevX = v.x

			if v.textStart != v.patternStart {
				item.slope++
			} else {
				item.slope--
			}

			if item.value > best || (item.value == best && abs(int(v.y)) < abs(transposition)) {
				transposition = int(v.y)
				best = item.value
				if v.textStart {
					endChordIdx = int(s.StartPoints[v.tpIndex].ChordIndex)
				} else {
					endChordIdx = int(s.EndPoints[v.tpIndex].ChordIndex)
				}
			}
		}

		// slide this slot to the next turning point of its kind
		if v.tpIndex < numTPoints-1 {
			v.tpIndex++
			pi := v.patternIndex
			var tp song.TurningPoint
			if v.textStart {
				tp = s.StartPoints[v.tpIndex]
			} else {
				tp = s.EndPoints[v.tpIndex]
			}
			v.y = int64(tp.Y) - int64(p[pi].Pitch)
			if v.patternStart {
				v.x = int64(tp.X) - int64(p[pi].Onset)
			} else {
				v.x = int64(tp.X) - int64(p[pi].Onset) - int64(p[pi].Duration)
			}
			pq.update(p3Node{key: min.key, vector: v})
		} else {
			v.x = math.MaxInt64
			pq.update(p3Node{key: min.key, vector: v})
		}
	}

	if best <= minDurSum {
		return nil
	}
	first := endChordIdx - m
	if first < 0 {
		first = 0
	}
	last := endChordIdx + m
	if last > s.NumChords-1 {
		last = s.NumChords - 1
	}
	return []Match{{
		Song:          s,
		FirstChord:    first,
		LastChord:     last,
		Transposition: transposition,
		Duration:      best / int(s.QuarterNoteDuration),
	}}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
