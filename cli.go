// ABOUTME: CLI mode: scan the local corpus and print a match table
// ABOUTME: Loads the corpus, runs the selected kernel, renders with tabwriter

package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"melodysearch/corpus"
	"melodysearch/search"
)

// RunCLI executes one local search and prints the matches.
func RunCLI(opts RunOptions) error {
	matches, elapsed, err := localSearch(opts)
	if err != nil {
		return err
	}

	fmt.Printf("%d matches in %v\n\n", len(matches), elapsed.Round(time.Millisecond))
	printMatches(os.Stdout, matches)
	return nil
}

// localSearch loads the corpus and runs the configured kernel over it.
func localSearch(opts RunOptions) ([]search.Match, time.Duration, error) {
	alg, err := search.ParseAlgorithm(opts.Config.Algorithm)
	if err != nil {
		return nil, 0, err
	}

	info, err := alg.Init(opts.Pattern, searchOptions(opts))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to initialize %s: %w", alg, err)
	}

	store := corpus.NewStore(opts.Config.CorpusDir)
	if err := store.Load(); err != nil {
		return nil, 0, err
	}
	songs := store.Songs()
	debugf("searching %d songs with %s", len(songs), alg)

	start := time.Now()
	var matches []search.Match
	for _, s := range songs {
		matches = append(matches, alg.Scan(s, info)...)
		if limit := opts.Config.ResultLimit; limit > 0 && len(matches) >= limit {
			matches = matches[:limit]
			break
		}
	}
	return matches, time.Since(start), nil
}

// printMatches renders a match table.
func printMatches(out *os.File, matches []search.Match) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Song\tTitle\tChords\tBar\tTransp\tErrors\tExtra"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	for _, m := range matches {
		extra := ""
		switch {
		case m.Splits > 0:
			extra = fmt.Sprintf("%d splits", m.Splits)
		case m.Duration > 0:
			extra = fmt.Sprintf("%d quarters", m.Duration)
		case m.AlignPattern != nil:
			extra = formatAlignment(m.AlignPattern, m.AlignSource)
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%d-%d\t%d\t%+d\t%d\t%s\n",
			m.Song.ID,
			truncate(m.Song.Title, 30),
			m.FirstChord, m.LastChord,
			m.Song.BarNumber(m.FirstChord),
			m.Transposition,
			m.Errors,
			extra,
		); err != nil {
			log.Printf("Warning: failed to write match: %v", err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}
}

// formatAlignment renders an LCTS trace pair, gaps as dashes.
func formatAlignment(p, t []int8) string {
	render := func(seq []int8) string {
		out := ""
		for i, v := range seq {
			if i > 0 {
				out += " "
			}
			if v == search.AlignGap {
				out += "-"
			} else {
				out += fmt.Sprintf("%d", v)
			}
		}
		return out
	}
	return render(p) + " / " + render(t)
}

// truncate truncates a string to maxLen characters, adding "..." if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
