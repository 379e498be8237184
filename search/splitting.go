// ABOUTME: Splitting kernel: minimum-splits multi-track matching with alpha-gaps
// ABOUTME: Sparse (i,j,k) triples swept row by row with a sliding-window minimum

package search

import (
	"melodysearch/song"
)

// triple is one element of the sparse match set M = {(i,j,k) | P_i matches
// T^k_j}: pattern row i, chord column j, track k (all 1-based), the best
// split count kappa reaching it, and the previous match on the optimal path.
// Triples live in an arena; prevTrace is an arena index, -1 for none.
type triple struct {
	i, j, k   int
	kappa     int
	prevTrace int
}

// splitResult carries one processing pass's arena plus the row-m entry
// points used for reporting.
type splitResult struct {
	arena []triple
	// lastRow[k][j] is the arena index of the (m, j, k) triple, -1 if absent.
	lastRow [][]int
	// best is the arena index of the best row-m triple (songOnce), -1 if none.
	best int
}

// gapCounters returns, per track, the number of consecutive gap cells ending
// at each column, so gap-only stretches can be crossed for free.
func gapCounters(tracks [][]byte, n int) [][]int {
	counters := make([][]int, len(tracks))
	for k, row := range tracks {
		gc := make([]int, n+1)
		for j := 1; j <= n; j++ {
			if row[j-1] == song.Gap {
				gc[j] = gc[j-1] + 1
			}
		}
		counters[k] = gc
	}
	return counters
}

// sweepRows runs the split DP over one ordered triple list. rows[i] indexes
// the arena entries of pattern row i, ascending in (j, k). For each row-i
// triple the best predecessor is either the sliding-window minimum of row
// i-1 within the alpha-gap, plus one split, or the trailing match on the
// same track when only gaps separate them, for free.
func sweepRows(arena []triple, rows [][]int, gapCounter [][]int, m, numTracks, alpha int) {
	ct := newCartTree()
	track := make([]int, numTracks+1)

	for i := 2; i <= m; i++ {
		for k := range track {
			track[k] = -1
		}
		prev := rows[i-1]
		pi := 0
		for _, ui := range rows[i] {
			u := &arena[ui]

			for pi < len(prev) && arena[prev[pi]].j < u.j {
				pn := prev[pi]
				ct.push(arena[pn].kappa, pn)
				track[arena[pn].k] = pn
				pi++
			}
			for !ct.empty() && arena[ct.firstKey()].j < u.j-alpha-1 {
				ct.eject()
			}

			if !ct.empty() {
				u.kappa = ct.min() + 1
				u.prevTrace = ct.minKey()
			} else {
				u.kappa = m + 1
			}

			if tn := track[u.k]; tn != -1 &&
				arena[tn].j >= u.j-gapCounter[u.k-1][u.j-1]-1 &&
				arena[tn].kappa < u.kappa {
				u.kappa = arena[tn].kappa
				u.prevTrace = tn
			}
		}
		ct.drain()
	}
}

// processTI is the transposition-invariant pass: triples are bucketed by
// transposition t = T^k_j - P_i + 128 and the row sweep runs per bucket.
func processTI(pattern []int, tracks [][]byte, m, n, alpha int) *splitResult {
	numTracks := len(tracks)
	res := &splitResult{best: -1}

	res.lastRow = make([][]int, numTracks+1)
	for k := 1; k <= numTracks; k++ {
		res.lastRow[k] = make([]int, n+1)
		for j := range res.lastRow[k] {
			res.lastRow[k][j] = -1
		}
	}

	buckets := make([][]int, MaxTransposition)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			for k := 1; k <= numTracks; k++ {
				cell := tracks[k-1][j-1]
				if cell == song.Gap {
					continue
				}
				kappa := lctsInf
				if i == 1 {
					kappa = 0
				}
				res.arena = append(res.arena, triple{i: i, j: j, k: k, kappa: kappa, prevTrace: -1})
				idx := len(res.arena) - 1
				if i == m {
					res.lastRow[k][j] = idx
				}
				t := int(cell) - pattern[i-1] + MaxTransposition/2
				if t < 0 || t >= MaxTransposition {
					continue
				}
				buckets[t] = append(buckets[t], idx)
			}
		}
	}

	gapCounter := gapCounters(tracks, n)
	rows := make([][]int, m+1)

	bestKappa := m + 1
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		for i := range rows {
			rows[i] = nil
		}
		for _, idx := range bucket {
			rows[res.arena[idx].i] = append(rows[res.arena[idx].i], idx)
		}

		sweepRows(res.arena, rows, gapCounter, m, numTracks, alpha)

		for _, idx := range rows[m] {
			if res.arena[idx].kappa < bestKappa {
				bestKappa = res.arena[idx].kappa
				res.best = idx
			}
		}
	}
	return res
}

// process is the non-transposed pass: triples exist only where the text cell
// equals the pattern pitch exactly, and the sweep runs once.
func process(pattern []int, tracks [][]byte, m, n, alpha int) *splitResult {
	numTracks := len(tracks)
	res := &splitResult{best: -1}

	rows := make([][]int, m+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			for k := 1; k <= numTracks; k++ {
				if int(tracks[k-1][j-1]) != pattern[i-1] {
					continue
				}
				kappa := lctsInf
				if i == 1 {
					kappa = 0
				}
				res.arena = append(res.arena, triple{i: i, j: j, k: k, kappa: kappa, prevTrace: -1})
				rows[i] = append(rows[i], len(res.arena)-1)
			}
		}
	}
	if len(rows[1]) == 0 || len(rows[m]) == 0 {
		return res
	}

	sweepRows(res.arena, rows, gapCounters(tracks, n), m, numTracks, alpha)

	res.lastRow = make([][]int, numTracks+1)
	for k := 1; k <= numTracks; k++ {
		res.lastRow[k] = make([]int, n+1)
		for j := range res.lastRow[k] {
			res.lastRow[k][j] = -1
		}
	}
	bestKappa := m + 1
	for _, idx := range rows[m] {
		t := res.arena[idx]
		res.lastRow[t.k][t.j] = idx
		if t.kappa < bestKappa {
			bestKappa = t.kappa
			res.best = idx
		}
	}
	return res
}

// scanSplitting finds split occurrences of the pattern across the song's
// tracks. Every row-m triple within the error budget is reported with its
// trace. With SongOnce only the best triple is reported, so the list then
// holds at most one match and the number of other matches is not reported.
func scanSplitting(s *song.Song, info *InitInfo) []Match {
	m := info.patternSize
	n := s.NumChords
	if m > n || info.patternNotes > song.MaxPatternNotes || s.NumTracks == 0 {
		return nil
	}

	pattern := make([]int, m)
	for i, note := range info.mono {
		pattern[i] = int(note.Pitch)
	}

	var res *splitResult
	if info.noTranspose {
		res = process(pattern, s.Tracks, m, n, info.gap)
	} else {
		res = processTI(pattern, s.Tracks, m, n, info.gap)
	}

	if info.songOnce {
		if res.best == -1 || res.arena[res.best].kappa > info.errors {
			return nil
		}
		return []Match{splitMatch(s, res.arena, res.best)}
	}

	var out []Match
	if res.lastRow == nil {
		return nil
	}
	for k := 1; k <= s.NumTracks; k++ {
		for j := 1; j <= n; j++ {
			idx := res.lastRow[k][j]
			if idx != -1 && res.arena[idx].kappa <= info.errors {
				out = append(out, splitMatch(s, res.arena, idx))
			}
		}
	}
	return out
}

// splitMatch resolves a trace chain to a match record. Each trace step names
// only (pitch row, chord, track); the note's byte offset is recovered by
// scanning the chord for the note on that track with the track-row pitch.
func splitMatch(s *song.Song, arena []triple, idx int) Match {
	var notes []uint32
	first := idx
	for cur := idx; cur != -1; cur = arena[cur].prevTrace {
		node := arena[cur]
		spos := s.ChordOffset(node.j - 1)
		chordLen := uint32(s.ChordLen(spos))
		for i := uint32(0); i < chordLen; i++ {
			noteOff := spos + song.ChordHeaderLen + i*song.NoteLen
			if s.Chords[noteOff+3] == uint8(node.k-1) &&
				s.Chords[noteOff] == s.Tracks[node.k-1][node.j-1] {
				notes = append([]uint32{noteOff}, notes...)
				break
			}
		}
		first = cur
	}
	return Match{
		Song:       s,
		FirstChord: arena[first].j - 1,
		LastChord:  arena[idx].j - 1,
		Notes:      notes,
		Splits:     arena[idx].kappa,
	}
}
