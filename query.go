// ABOUTME: Remote query mode: send a pattern to a running search server
// ABOUTME: Resty client with server address from .env or environment

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
)

// serverAddrEnv names the environment variable holding the server base URL,
// loadable from a .env file in the working directory.
const serverAddrEnv = "MELODYSEARCH_SERVER"

// RunQuery sends the pattern to a remote server and prints its matches.
func RunQuery(opts RunOptions) error {
	// .env is optional; the variable may come from the environment proper
	_ = godotenv.Load()

	base := os.Getenv(serverAddrEnv)
	if base == "" {
		base = "http://localhost:8080"
	}

	req := searchRequest{
		Algorithm:  opts.Config.Algorithm,
		Errors:     opts.Config.Errors,
		Gap:        opts.Config.Gap,
		SongOnce:   opts.SongOnce,
		Polyphonic: opts.Poly,
	}
	for _, n := range opts.Pattern {
		req.Pattern = append(req.Pattern, patternNote{Onset: n.Onset, Pitch: n.Pitch, Duration: n.Duration})
	}

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(30 * time.Second)

	var resp searchResponse
	res, err := client.R().
		SetBody(req).
		SetResult(&resp).
		Post("/api/search")
	if err != nil {
		return fmt.Errorf("search request failed: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("server returned %s: %s", res.Status(), res.String())
	}

	fmt.Printf("%d matches on %s (%s)\n\n", resp.Total, base, resp.Elapsed)
	printRemoteMatches(resp.Matches)
	return nil
}

// printRemoteMatches renders the server's match list.
func printRemoteMatches(matches []matchJSON) {
	for _, m := range matches {
		extra := ""
		switch {
		case m.Splits > 0:
			extra = fmt.Sprintf("  %d splits", m.Splits)
		case m.Duration > 0:
			extra = fmt.Sprintf("  %d quarters", m.Duration)
		case m.AlignPattern != nil:
			extra = "  " + formatAlignment(m.AlignPattern, m.AlignSource)
		}
		fmt.Printf("%-20s chords %d-%d bar %d transp %+d errors %d%s\n",
			m.SongID, m.FirstChord, m.LastChord, m.Bar, m.Transposition, m.Errors, extra)
	}
}
