// ABOUTME: Browse mode: run a local search and page through matches in the TUI
// ABOUTME: Renders match records as fixed-width rows and wires the rerun hook

package main

import (
	"fmt"

	"melodysearch/search"
	"melodysearch/tui"
)

// RunBrowser runs one local search and opens the interactive result browser.
// Pressing r inside the browser reruns the search against the current corpus.
func RunBrowser(opts RunOptions) error {
	rows, err := browserRows(opts)
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Title:  fmt.Sprintf("melodysearch · %s · %d-note pattern", opts.Config.Algorithm, len(opts.Pattern)),
		Header: fmt.Sprintf("%-20s %-30s %-11s %5s %6s %6s  %s", "Song", "Title", "Chords", "Bar", "Transp", "Errors", "Extra"),
		Rows:   rows,
		Rerun:  func() ([]string, error) { return browserRows(opts) },
	})
}

// browserRows runs the search and renders one fixed-width row per match.
func browserRows(opts RunOptions) ([]string, error) {
	matches, _, err := localSearch(opts)
	if err != nil {
		return nil, err
	}

	rows := make([]string, len(matches))
	for i, m := range matches {
		rows[i] = formatBrowserRow(m)
	}
	return rows, nil
}

func formatBrowserRow(m search.Match) string {
	extra := ""
	switch {
	case m.Splits > 0:
		extra = fmt.Sprintf("%d splits", m.Splits)
	case m.Duration > 0:
		extra = fmt.Sprintf("%d quarters", m.Duration)
	case m.AlignPattern != nil:
		extra = formatAlignment(m.AlignPattern, m.AlignSource)
	}
	return fmt.Sprintf("%-20s %-30s %5d-%-5d %5d %+6d %6d  %s",
		truncate(m.Song.ID, 20),
		truncate(m.Song.Title, 30),
		m.FirstChord, m.LastChord,
		m.Song.BarNumber(m.FirstChord),
		m.Transposition,
		m.Errors,
		extra,
	)
}
