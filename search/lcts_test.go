// ABOUTME: Tests for the LCTS kernel: distances, search and alignment
// ABOUTME: Sparse-DP edit distance under transposition plus trace reconstruction

package search

import (
	"testing"

	"melodysearch/song"
)

// TestComputeAllTranspositions verifies the distance over a table of
// sequence pairs.
func TestComputeAllTranspositions(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{
			name: "two deletions",
			a:    []int{60, 62, 64, 65, 67},
			b:    []int{60, 62, 67},
			want: 2,
		},
		{
			name: "identical",
			a:    []int{60, 62, 64},
			b:    []int{60, 62, 64},
			want: 0,
		},
		{
			name: "pure transposition",
			a:    []int{60, 62, 64},
			b:    []int{65, 67, 69},
			want: 0,
		},
		{
			name: "no shared pitch untransposed still aligns one note under transposition",
			a:    []int{60},
			b:    []int{61, 62},
			want: 1,
		},
		{
			name: "one substitution costs one deletion and one insertion",
			a:    []int{60, 62, 64},
			b:    []int{60, 63, 64},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAllTranspositions(tt.a, tt.b); got != tt.want {
				t.Errorf("ComputeAllTranspositions(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestLCTSDistanceSymmetry verifies d(A, B) == d(-B, -A).
func TestLCTSDistanceSymmetry(t *testing.T) {
	pairs := [][2][]int{
		{{60, 62, 64, 65, 67}, {60, 62, 67}},
		{{50, 55, 60}, {52, 57, 62, 64}},
		{{70, 69, 68}, {40, 41, 42}},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		neg := func(s []int) []int {
			out := make([]int, len(s))
			for i, v := range s {
				out[i] = -v
			}
			return out
		}
		d1 := ComputeAllTranspositions(a, b)
		d2 := ComputeAllTranspositions(neg(b), neg(a))
		if d1 != d2 {
			t.Errorf("d(%v, %v) = %d but d(-B, -A) = %d", a, b, d1, d2)
		}
	}
}

// TestSearchAllTranspositions verifies the search variant: occurrence
// positions, values and transpositions.
func TestSearchAllTranspositions(t *testing.T) {
	p := []int{60, 62, 64, 65, 67}
	text := []int{60, 62, 67}

	occ := SearchAllTranspositions(p, text, 4)
	if occ[3].value != 2 || occ[3].t != 0 {
		t.Errorf("Expected occurrence value 2 at transposition 0 ending at column 3, got value %d t %d",
			occ[3].value, occ[3].t)
	}
}

// TestSearchAllTranspositionsTransposed verifies that a transposed embedded
// occurrence is found with the right transposition.
func TestSearchAllTranspositionsTransposed(t *testing.T) {
	p := []int{60, 62, 64}
	text := []int{40, 63, 65, 67, 40}

	occ := SearchAllTranspositions(p, text, 0)
	if occ[4].value != 0 || occ[4].t != 3 {
		t.Errorf("Expected exact occurrence at column 4 with transposition +3, got value %d t %d",
			occ[4].value, occ[4].t)
	}
}

// TestAlignReproducesDistance verifies that the trace's cost equals the
// reported errors and that collapsing gaps reproduces the inputs.
func TestAlignReproducesDistance(t *testing.T) {
	a := []int{60, 62, 64, 65, 67}
	b := []int{60, 62, 67}

	alignA, alignB, start, errs := align(a, b, 0)
	if errs != 2 {
		t.Errorf("Expected 2 errors, got %d", errs)
	}
	if start != 0 {
		t.Errorf("Expected alignment to start at 0, got %d", start)
	}
	if len(alignA) != len(alignB) {
		t.Fatalf("Trace lengths differ: %d vs %d", len(alignA), len(alignB))
	}

	var gotA, gotB []int
	gaps := 0
	for i := range alignA {
		if alignA[i] != AlignGap {
			gotA = append(gotA, int(alignA[i]))
		}
		if alignB[i] != AlignGap {
			gotB = append(gotB, int(alignB[i]))
		} else {
			gaps++
		}
	}
	if len(gotA) != len(a) {
		t.Errorf("Collapsed pattern trace has %d notes, want %d", len(gotA), len(a))
	}
	for i := range gotA {
		if gotA[i] != a[i] {
			t.Errorf("Pattern trace note %d is %d, want %d", i, gotA[i], a[i])
		}
	}
	if gaps != 2 {
		t.Errorf("Expected 2 gaps in the source trace, got %d", gaps)
	}
	for i, j := 0, 0; i < len(alignB); i++ {
		if alignB[i] != AlignGap {
			if int(alignB[i]) != b[j] {
				t.Errorf("Source trace note %d is %d, want %d", j, alignB[i], b[j])
			}
			j++
		}
	}
}

// TestScanLCTS verifies the kernel end to end on a single-track song.
func TestScanLCTS(t *testing.T) {
	s := buildMonoSong(t, []int8{40, 63, 65, 67, 40})
	info := mustInit(t, LCTS, monoPattern(60, 62, 64), Options{Errors: 0})

	matches := LCTS.Scan(s, info)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d: %+v", len(matches), matches)
	}
	m := matches[0]
	if m.Transposition != 3 {
		t.Errorf("Expected transposition +3, got %+d", m.Transposition)
	}
	if m.Errors != 0 {
		t.Errorf("Expected 0 errors, got %d", m.Errors)
	}
	if m.FirstChord != 1 || m.LastChord != 3 {
		t.Errorf("Expected chords 1-3, got %d-%d", m.FirstChord, m.LastChord)
	}
	if m.AlignPattern == nil || m.AlignSource == nil {
		t.Error("Expected alignment traces on the match")
	}
}

// TestScanLCTSSkipsGaps verifies that gap cells are squeezed out and chord
// indexes map back through them.
func TestScanLCTSSkipsGaps(t *testing.T) {
	s := buildTrackSong(t, [][]int16{
		{40, song.Gap, 63, song.Gap, 65, 67, song.Gap},
		{50, 51, song.Gap, 52, song.Gap, song.Gap, 53},
	})
	info := mustInit(t, LCTS, monoPattern(60, 62, 64), Options{Errors: 0})

	matches := LCTS.Scan(s, info)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d: %+v", len(matches), matches)
	}
	m := matches[0]
	if m.FirstChord != 2 || m.LastChord != 5 {
		t.Errorf("Expected chords 2-5, got %d-%d", m.FirstChord, m.LastChord)
	}
	if m.Transposition != 3 {
		t.Errorf("Expected transposition +3, got %+d", m.Transposition)
	}
}

// TestLCTSDistances verifies the pairwise track distance matrix.
func TestLCTSDistances(t *testing.T) {
	a := buildTrackSong(t, [][]int16{{60, 62, 64}})
	b := buildTrackSong(t, [][]int16{
		{65, 67, 69},
		{60, 64, 65, 67},
	})

	got := LCTSDistances(a, b)
	if len(got) != 2 {
		t.Fatalf("Expected 2 distances, got %d", len(got))
	}
	if got[0] != 0 {
		t.Errorf("Expected transposed identity distance 0, got %d", got[0])
	}
	if got[1] == 0 {
		t.Errorf("Expected nonzero distance, got %d", got[1])
	}
}
