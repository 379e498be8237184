// ABOUTME: LCTS kernel: transposition-invariant insert/delete edit distance
// ABOUTME: Sparse DP with 1-D range minima over per-transposition match buckets

package search

import (
	"math"

	"melodysearch/song"
)

// MaxTransposition is the number of transposition buckets: integer shifts
// in [-128, 127] mapped to [0, 256).
const MaxTransposition = 256

const lctsInf = math.MaxInt32

// matchPair is one matching character pair (i in A, j in B).
type matchPair struct {
	i, j int
}

// bucketMatches distributes the matching pairs of A (1..m) and B (1..n) into
// one bucket per transposition t = B[j] - A[i] + 128, in column-major reverse
// row order: within a bucket, pairs are ascending in j and descending in i.
func bucketMatches(a, b []int, m, n int) [][]matchPair {
	buckets := make([][]matchPair, MaxTransposition)
	for j := 1; j <= n; j++ {
		for i := m; i >= 1; i-- {
			t := b[j] - a[i] + MaxTransposition/2
			if t < 0 || t >= MaxTransposition {
				continue
			}
			buckets[t] = append(buckets[t], matchPair{i, j})
		}
	}
	return buckets
}

// processSparseFast computes d_ID(A+t, B) = m + n - 2*LCS(A+t, B) for one
// bucket with one-dimensional range searching: values[] holds the lower
// envelope of partial distances, the index tree answers predecessor queries.
func processSparseFast(m, n int, bucket []matchPair) int {
	values := make([]int, m+2)
	tree := newIndexTree(m + 1)

	values[0] = 0
	tree.insert(0)
	for i := 1; i <= m+1; i++ {
		values[i] = lctsInf
	}

	for _, pair := range append(bucket, matchPair{m + 1, n + 1}) {
		i := tree.predecessor(pair.i)
		tree.insert(pair.i)
		if v := values[i] - 2; v < values[pair.i] {
			values[pair.i] = v
			tree.deleteGreaterSuccessors(pair.i, values)
		}
	}
	return values[m+1] + m + n + 2
}

// occurrence is the best match ending at one text column.
type occurrence struct {
	value int
	t     int
}

// searchOccurrences records, for a single transposition, the columns j with
// d_ID(A+t, T_{j'...j}) at most k. Starting a fresh occurrence at j competes
// with extending the envelope.
func searchOccurrences(m, k, t int, bucket []matchPair, occ []occurrence) {
	values := make([]int, m+2)
	tree := newIndexTree(m + 1)

	values[0] = 0
	tree.insert(0)
	for i := 1; i <= m+1; i++ {
		values[i] = lctsInf
	}

	for _, pair := range bucket {
		i := tree.predecessor(pair.i)

		d := values[i] - 2
		if fresh := -pair.j - 1; fresh < d {
			d = fresh
		}
		tree.insert(pair.i)

		if d < values[pair.i] {
			values[pair.i] = d
			tree.deleteGreaterSuccessors(pair.i, values)
		}

		// the best occurrence induced by this pair ends at column j
		value := d + pair.j + m
		if value <= k && value < occ[pair.j].value {
			occ[pair.j].value = value
			occ[pair.j].t = t
		}
	}
}

// ComputeAllTranspositions returns min over all transpositions t of
// d_ID(A+t, B), the insert/delete edit distance between the two pitch
// sequences. Sequences are 0-based pitch slices.
func ComputeAllTranspositions(a, b []int) int {
	m, n := len(a), len(b)
	a1 := make([]int, m+1)
	b1 := make([]int, n+1)
	copy(a1[1:], a)
	copy(b1[1:], b)

	buckets := bucketMatches(a1, b1, m, n)
	min := lctsInf
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		if d := processSparseFast(m, n, bucket); d < min {
			min = d
		}
	}
	if min == lctsInf {
		// no common character under any transposition: all indels
		return m + n
	}
	return min
}

// SearchAllTranspositions reports, per text column j (1-based), the best
// occurrence value of pattern p ending at j over all transpositions, with
// occurrences worse than k left at the infinity sentinel. occ[0] is unused.
func SearchAllTranspositions(p, t []int, k int) []occurrence {
	m, n := len(p), len(t)
	p1 := make([]int, m+1)
	t1 := make([]int, n+1)
	copy(p1[1:], p)
	copy(t1[1:], t)

	occ := make([]occurrence, n+1)
	for j := range occ {
		occ[j].value = lctsInf
	}

	buckets := bucketMatches(p1, t1, m, n)
	for ti, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		searchOccurrences(m, k, ti-MaxTransposition/2, bucket, occ)
	}
	return occ
}

// scanLCTS searches every track separately: gap cells are squeezed out with
// an index mapping back to chord indexes, occurrences are minimised per
// column, and each reported match carries its alignment trace.
func scanLCTS(s *song.Song, info *InitInfo) []Match {
	m := info.patternSize
	if m > s.NumChords || info.patternNotes > song.MaxPatternNotes {
		return nil
	}

	pattern := make([]int, m)
	for i, n := range info.mono {
		pattern[i] = int(n.Pitch)
	}

	var out []Match
	track := make([]int, 0, s.NumChords)
	mapping := make([]int, 0, s.NumChords)

	for k := 0; k < s.NumTracks; k++ {
		track = track[:0]
		mapping = mapping[:0]
		for c := 0; c < s.NumChords; c++ {
			if s.Tracks[k][c] != song.Gap {
				track = append(track, int(int8(s.Tracks[k][c])))
				mapping = append(mapping, c)
			}
		}
		n := len(track)
		if n == 0 {
			continue
		}

		occ := SearchAllTranspositions(pattern, track, info.errors)

		prev := lctsInf
		for j := 1; j <= n; j++ {
			if occ[j].value <= info.errors && occ[j].value < prev {
				out = append(out, lctsMatch(s, pattern, track, mapping, occ[j], j, info.errors))
			}
			prev = occ[j].value
		}
	}
	return out
}

// lctsMatch aligns the pattern against the window of the track ending at
// column j and builds the match record from the trace.
func lctsMatch(s *song.Song, pattern, track, mapping []int, o occurrence, j, errors int) Match {
	lo := j - len(pattern) - errors
	if lo < 0 {
		lo = 0
	}
	window := track[lo:j]

	alignP, alignT, start, _ := align(pattern, window, o.t)

	first := j - len(window) + start
	if first < 0 {
		first = 0
	}
	if first > j-1 {
		first = j - 1
	}
	return Match{
		Song:          s,
		FirstChord:    mapping[first],
		LastChord:     mapping[j-1],
		Transposition: o.t,
		Errors:        o.value,
		AlignPattern:  alignP,
		AlignSource:   alignT,
	}
}

// LCTSDistances compares every track of a against every track of b and
// returns the flattened matrix of transposition-invariant edit distances,
// row-major in a's tracks. Gap cells are removed before comparison.
func LCTSDistances(a, b *song.Song) []int {
	collect := func(s *song.Song, k int) []int {
		var seq []int
		for c := 0; c < s.NumChords; c++ {
			if s.Tracks[k][c] != song.Gap {
				seq = append(seq, int(int8(s.Tracks[k][c])))
			}
		}
		return seq
	}

	out := make([]int, 0, a.NumTracks*b.NumTracks)
	for i := 0; i < a.NumTracks; i++ {
		ta := collect(a, i)
		for j := 0; j < b.NumTracks; j++ {
			out = append(out, ComputeAllTranspositions(ta, collect(b, j)))
		}
	}
	return out
}
