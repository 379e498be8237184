// ABOUTME: Matching-kernel registry, query options and match records
// ABOUTME: Closed set of algorithms with per-variant init and scan entry points

// Package search implements the pattern-matching kernels of the engine:
// exact bit-parallel matching, transposition-invariant interval filters,
// geometric sweepline matching, edit-distance matching and multi-track
// pattern splitting, all over the columnar layout of package song.
//
// Every kernel is a pure function of (song, init info): scans never mutate
// the song, scratch state is owned by the call, and the result is always a
// well-formed (possibly empty) match list. Callers may run scans for
// different songs concurrently.
package search

import (
	"fmt"

	"melodysearch/song"
)

// Algorithm selects a matching kernel.
type Algorithm int

const (
	// ShiftOrAnd finds exact occurrences of a monophonic pattern in a
	// polyphonic source with bit-parallel scanning.
	ShiftOrAnd Algorithm = iota
	// MonoPoly is the offline transposition-invariant interval filter over
	// precomputed interval bitmaps, with an exact checking stage.
	MonoPoly
	// IntervalMatching is the online variant of MonoPoly; results are
	// identical for monophonic patterns.
	IntervalMatching
	// GeometricP1 finds exact occurrences of the full pattern point set
	// under translation.
	GeometricP1
	// GeometricP2 finds partial occurrences with up to Errors missing
	// pattern points.
	GeometricP2
	// GeometricP3 finds the translation maximising common sounding time.
	GeometricP3
	// LCTS matches under insert/delete edit distance, minimised over all
	// transpositions.
	LCTS
	// Splitting splits the pattern into a minimum number of pieces found
	// consecutively across tracks.
	Splitting
	// Dynprog is the naive transposition-invariant weighted edit distance,
	// kept as a test oracle.
	Dynprog
)

var algorithmNames = map[Algorithm]string{
	ShiftOrAnd:       "shiftorand",
	MonoPoly:         "monopoly",
	IntervalMatching: "intervalmatching",
	GeometricP1:      "geometric_p1",
	GeometricP2:      "geometric_p2",
	GeometricP3:      "geometric_p3",
	LCTS:             "lcts",
	Splitting:        "splitting",
	Dynprog:          "dynprog",
}

// String returns the wire name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// ParseAlgorithm maps a wire name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", name)
}

// Algorithms lists all kernels in registry order.
func Algorithms() []Algorithm {
	return []Algorithm{ShiftOrAnd, MonoPoly, IntervalMatching, GeometricP1, GeometricP2, GeometricP3, LCTS, Splitting, Dynprog}
}

// Options carries the per-query parameters shared by the kernels.
type Options struct {
	// Errors is the edit/missing-point budget for approximate kernels.
	Errors int
	// Gap is the maximum chord-index gap between consecutive pieces for
	// Splitting.
	Gap int
	// SongOnce makes Splitting report only the best match per song.
	SongOnce bool
	// Polyphonic selects the polyphonic checking function for MonoPoly.
	Polyphonic bool
	// NoTranspose disables transposition invariance in Splitting.
	NoTranspose bool
}

// Match is one reported occurrence. FirstChord and LastChord delimit the
// matched chord range; for GeometricP3 the range is an approximation widened
// by the pattern note count in both directions.
type Match struct {
	Song       *song.Song
	FirstChord int
	LastChord  int

	// Notes holds byte offsets into the song's chord buffer, one per matched
	// note, when the kernel reports them.
	Notes []uint32

	Transposition int
	Errors        int

	// Splits is the piece count kappa for Splitting matches.
	Splits int
	// Duration is the common sounding time in quarter notes for GeometricP3.
	Duration int
	// AlignPattern and AlignSource are the LCTS edit traces, AlignGap marking
	// an inserted gap.
	AlignPattern []int8
	AlignSource  []int8
}

// AlignGap marks a gap position in LCTS alignment traces.
const AlignGap = int8(-2)

// InitInfo is the per-query state built by Init and shared read-only across
// the songs of one query: the pattern views plus kernel-specific tables.
type InitInfo struct {
	alg Algorithm

	mono []song.Note // one note per distinct onset, lowest pitch kept
	poly []song.Note // all notes, (onset, pitch)-sorted

	patternSize  int // len(mono)
	patternNotes int // len(poly)

	errors      int
	gap         int
	songOnce    bool
	polyCheck   bool
	noTranspose bool

	// bit-parallel tables (ShiftOrAnd, MonoPoly, IntervalMatching)
	t    []uint32
	e    uint32
	em   uint32
	mask uint32
}

// Init builds the kernel's per-query tables. Oversized patterns are not an
// init-time error: each kernel's scan returns an empty result for songs it
// cannot hold the pattern against. Every kernel rejects an empty pattern;
// beyond that only the bit-parallel kernels reject at init, when the pattern
// exceeds their word width, and MonoPoly and IntervalMatching also when it
// spans fewer than two chords.
func (a Algorithm) Init(p Pattern, opts Options) (*InitInfo, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	info := &InitInfo{
		alg:          a,
		mono:         p.Monophonic(),
		poly:         p.Polyphonic(),
		errors:       opts.Errors,
		gap:          opts.Gap,
		songOnce:     opts.SongOnce,
		polyCheck:    opts.Polyphonic,
		noTranspose:  opts.NoTranspose,
	}
	info.patternSize = len(info.mono)
	info.patternNotes = len(info.poly)

	var err error
	switch a {
	case ShiftOrAnd:
		err = initShiftOrAnd(info)
	case MonoPoly:
		err = initMonoPoly(info)
	case IntervalMatching:
		err = initIntervalMatching(info)
	case GeometricP1, GeometricP2, GeometricP3, LCTS, Splitting, Dynprog:
	default:
		err = fmt.Errorf("unknown algorithm %d", int(a))
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Scan runs the kernel over one song. Scan never fails: nil inputs, init info
// built for another kernel, oversized patterns, empty sources and overflowing
// layouts yield an empty (nil) list.
func (a Algorithm) Scan(s *song.Song, info *InitInfo) []Match {
	if s == nil || info == nil || s.NumChords == 0 || info.alg != a {
		return nil
	}
	switch a {
	case ShiftOrAnd:
		return scanShiftOrAnd(s, info)
	case MonoPoly:
		return scanMonoPoly(s, info)
	case IntervalMatching:
		return scanIntervalMatching(s, info)
	case GeometricP1:
		return scanGeometricP1(s, info)
	case GeometricP2:
		return scanGeometricP2(s, info)
	case GeometricP3:
		return scanGeometricP3(s, info)
	case LCTS:
		return scanLCTS(s, info)
	case Splitting:
		return scanSplitting(s, info)
	case Dynprog:
		return scanDynprog(s, info)
	}
	return nil
}
